package repository

import (
	"context"
	"time"

	"EarnPull/internal/domain/models"
)

// Provider names used for source tagging and metrics labels.
const (
	ProviderFinnhub      = "finnhub"
	ProviderAlphaVantage = "alphavantage"
	ProviderTradier      = "tradier"
	ProviderYahoo        = "yahoo"
)

// CalendarProvider lists upcoming earnings announcements in a date range.
type CalendarProvider interface {
	Name() string
	FetchCalendar(ctx context.Context, from, to time.Time) ([]models.EarningsEntry, error)
}

// QuoteProvider fetches a spot quote for a ticker.
type QuoteProvider interface {
	Name() string
	FetchQuote(ctx context.Context, ticker string) (*models.Quote, error)
}

// ProfileProvider fetches static company data.
type ProfileProvider interface {
	Name() string
	FetchProfile(ctx context.Context, ticker string) (*models.CompanyProfile, error)
}

// HistoricalMovesProvider returns past earnings moves for a ticker, newest
// first. Implementations based on EPS surprises return a proxy for the real
// price move; callers tag HistorySource accordingly.
type HistoricalMovesProvider interface {
	Name() string
	FetchHistoricalMoves(ctx context.Context, ticker string) ([]models.HistoricalMove, error)
}

// PriceMovesProvider computes the actual earnings-day price moves for the
// given past announcement dates.
type PriceMovesProvider interface {
	Name() string
	FetchPriceMoves(ctx context.Context, ticker string, dates []string) ([]models.HistoricalMove, error)
}

// ImpliedMoveProvider derives the ATM-straddle expected move for the nearest
// expiration. A nil quote with nil error means the chain had no usable data.
type ImpliedMoveProvider interface {
	Name() string
	FetchImpliedMove(ctx context.Context, ticker string, price float64) (*models.ImpliedMoveQuote, error)
}

// NewsProvider returns recent headlines with sentiment tags.
type NewsProvider interface {
	Name() string
	FetchNews(ctx context.Context, ticker string, from, to time.Time) ([]models.NewsItem, error)
}
