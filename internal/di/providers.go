package di

import (
	"EarnPull/internal/domain/repository"
	"EarnPull/internal/handler/api"
	"EarnPull/internal/service/alphavantage"
	"EarnPull/internal/service/finnhub"
	"EarnPull/internal/service/ratelimit"
	"EarnPull/internal/service/tradier"
	"EarnPull/internal/service/yahoo"
	"EarnPull/internal/services/strategy"
	"EarnPull/internal/usecase"
	"EarnPull/pkg/cache"
	"EarnPull/pkg/config"
	xhttp "EarnPull/pkg/http"
	"EarnPull/pkg/logger"
	"EarnPull/pkg/metrics"
	"EarnPull/pkg/server"
)

// ProvideLogger creates the application logger from configuration.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideMetrics creates the Prometheus metrics recorder.
func ProvideMetrics() *metrics.Recorder {
	return metrics.New()
}

// ProvideCache creates the cache stack: layered memory+redis when redis is
// configured and reachable, memory-only otherwise. An unreachable redis
// degrades the app instead of failing startup.
func ProvideCache(cfg *config.Config, log *logger.Logger) cache.Service {
	if !cfg.Cache.Redis.Enabled {
		return cache.NewMemoryCache()
	}

	redisCache, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Cache.Redis.Host),
		cache.WithRedisPort(cfg.Cache.Redis.Port),
		cache.WithRedisPassword(cfg.Cache.Redis.Password),
		cache.WithRedisDB(cfg.Cache.Redis.DB),
	)
	if err != nil {
		log.Warn("redis unavailable, using memory cache only", logger.Error(err))
		return cache.NewMemoryCache()
	}
	return cache.NewLayeredCache(redisCache)
}

// ProvideFinnhub creates the Finnhub client.
func ProvideFinnhub(cfg *config.Config) *finnhub.Client {
	p := cfg.Providers.Finnhub
	return finnhub.New(p.APIKey, p.BaseURL, p.Timeout)
}

// ProvideAlphaVantage creates the Alpha Vantage client.
func ProvideAlphaVantage(cfg *config.Config) *alphavantage.Client {
	p := cfg.Providers.AlphaVantage
	return alphavantage.New(p.APIKey, p.BaseURL, p.Timeout)
}

// ProvideTradier creates the Tradier client.
func ProvideTradier(cfg *config.Config) *tradier.Client {
	p := cfg.Providers.Tradier
	return tradier.New(p.Token, p.BaseURL, p.Timeout)
}

// ProvideYahooQuotes creates the Yahoo quote client.
func ProvideYahooQuotes(cfg *config.Config) *yahoo.QuoteClient {
	return yahoo.NewQuoteClient(cfg.Providers.Yahoo.Timeout)
}

// ProvideYahooOptions creates the Yahoo options fallback with its crumb
// session manager.
func ProvideYahooOptions(cfg *config.Config, c cache.Service) *yahoo.OptionsClient {
	httpClient := xhttp.NewClient(xhttp.WithTimeout(cfg.Providers.Yahoo.Timeout))
	session := yahoo.NewSessionManager(httpClient, c, cfg.Cache.TTL.Session)
	return yahoo.NewOptionsClient(httpClient, session)
}

// ProvideEngine creates the strategy engine with production thresholds.
func ProvideEngine() *strategy.Engine {
	return strategy.NewEngine(strategy.DefaultPolicy())
}

// ProvideRateLimiter creates the inbound token-bucket limiter.
func ProvideRateLimiter() *ratelimit.Limiter {
	return ratelimit.New()
}

// ProvideOrchestrator assembles the earnings orchestrator. Provider order
// encodes the fallback chains: finnhub before alphavantage for calendars,
// tradier before yahoo for implied moves.
func ProvideOrchestrator(
	cfg *config.Config,
	log *logger.Logger,
	rec *metrics.Recorder,
	c cache.Service,
	fh *finnhub.Client,
	av *alphavantage.Client,
	td *tradier.Client,
	yq *yahoo.QuoteClient,
	yo *yahoo.OptionsClient,
	engine *strategy.Engine,
) *usecase.Orchestrator {
	implied := []repository.ImpliedMoveProvider{td}
	if cfg.Providers.Yahoo.Enabled {
		implied = append(implied, yo)
	}

	deps := usecase.Deps{
		Calendars:  []repository.CalendarProvider{fh, av},
		Quotes:     yq,
		Profiles:   fh,
		EPSHistory: fh,
		PriceMoves: td,
		Implied:    implied,
		News:       fh,
		Engine:     engine,
		Cache:      c,
		Logger:     log,
		Metrics:    rec,
	}
	return usecase.NewOrchestrator(deps, usecase.Config{
		BatchSize:        cfg.Orchestrator.BatchSize,
		BatchDelay:       cfg.Orchestrator.BatchDelay,
		MaxQuarters:      cfg.Orchestrator.MaxQuarters,
		WeeklyOptionsCap: cfg.Orchestrator.WeeklyOptionsCap,
		NewsLookbackDays: cfg.Orchestrator.NewsLookbackDays,
		CalendarTTL:      cfg.Cache.TTL.Calendar,
		HistoryTTL:       cfg.Cache.TTL.History,
		OptionsTTL:       cfg.Cache.TTL.Options,
		NewsTTL:          cfg.Cache.TTL.News,
	})
}

// ProvideHandler creates the API handler.
func ProvideHandler(orch *usecase.Orchestrator, rl *ratelimit.Limiter, log *logger.Logger) xhttp.Handler {
	return api.NewEarningsHandler(orch, rl, log)
}

// ProvideApp creates the application.
func ProvideApp(cfg *config.Config, log *logger.Logger, handler xhttp.Handler, c cache.Service) *server.App {
	return server.New(cfg, log, handler, c)
}
