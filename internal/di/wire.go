//go:build wireinject
// +build wireinject

package di

import (
	"EarnPull/pkg/config"
	"EarnPull/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,
		ProvideCache,

		// Provider clients
		ProvideFinnhub,
		ProvideAlphaVantage,
		ProvideTradier,
		ProvideYahooQuotes,
		ProvideYahooOptions,

		// Domain services
		ProvideEngine,
		ProvideRateLimiter,
		ProvideOrchestrator,

		// HTTP surface
		ProvideHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
