// Package usecase wires the provider clients, caches and the pure stats and
// strategy libraries into the earnings aggregation flows.
package usecase

import (
	"context"
	"time"

	"EarnPull/internal/domain/models"
	drepo "EarnPull/internal/domain/repository"
	"EarnPull/internal/services/movestats"
	"EarnPull/internal/services/strategy"
	"EarnPull/pkg/cache"
	"EarnPull/pkg/logger"
	"EarnPull/pkg/metrics"
	"EarnPull/pkg/pool"
	"EarnPull/pkg/util"
)

// Config carries the orchestration knobs, mapped from the config file.
type Config struct {
	BatchSize        int
	BatchDelay       time.Duration
	MaxQuarters      int
	WeeklyOptionsCap float64
	NewsLookbackDays int

	CalendarTTL time.Duration
	HistoryTTL  time.Duration
	OptionsTTL  time.Duration
	NewsTTL     time.Duration
}

// Orchestrator resolves upcoming earnings with provider fallback, batched
// enrichment and per-purpose caching. Provider slices are ordered primary
// first; any provider may be absent from configuration and then fails with
// its typed not-configured error, which counts as one more fallback step.
type Orchestrator struct {
	calendars  []drepo.CalendarProvider
	quotes     drepo.QuoteProvider
	profiles   drepo.ProfileProvider
	epsHistory drepo.HistoricalMovesProvider
	priceMoves drepo.PriceMovesProvider
	implied    []drepo.ImpliedMoveProvider
	news       drepo.NewsProvider

	engine *strategy.Engine
	cache  cache.Service
	log    *logger.Logger
	rec    *metrics.Recorder
	cfg    Config

	now func() time.Time
}

// Deps groups the orchestrator dependencies for construction.
type Deps struct {
	Calendars  []drepo.CalendarProvider
	Quotes     drepo.QuoteProvider
	Profiles   drepo.ProfileProvider
	EPSHistory drepo.HistoricalMovesProvider
	PriceMoves drepo.PriceMovesProvider
	Implied    []drepo.ImpliedMoveProvider
	News       drepo.NewsProvider
	Engine     *strategy.Engine
	Cache      cache.Service
	Logger     *logger.Logger
	Metrics    *metrics.Recorder
}

func NewOrchestrator(deps Deps, cfg Config) *Orchestrator {
	return &Orchestrator{
		calendars:  deps.Calendars,
		quotes:     deps.Quotes,
		profiles:   deps.Profiles,
		epsHistory: deps.EPSHistory,
		priceMoves: deps.PriceMoves,
		implied:    deps.Implied,
		news:       deps.News,
		engine:     deps.Engine,
		cache:      deps.Cache,
		log:        deps.Logger,
		rec:        deps.Metrics,
		cfg:        cfg,
		now:        time.Now,
	}
}

// ResolveEarnings returns the enriched earnings list for one date and timing
// slot. Timing "" means both slots. Calendar failures never surface as
// errors; a fully failed resolution comes back with the error source
// sentinel and a message. The only error returned is ctx cancellation.
func (o *Orchestrator) ResolveEarnings(ctx context.Context, date string, timing models.Timing) (*models.EarningsResult, error) {
	key := cache.Key("calendar", date, string(timing))

	var cached models.EarningsResult
	if err := o.cache.Get(ctx, key, &cached); err == nil {
		o.rec.RecordCache("calendar", "hit")
		return &cached, nil
	}
	o.rec.RecordCache("calendar", "miss")

	entries, source := o.fetchCalendar(ctx, date)
	if source == "" {
		return &models.EarningsResult{
			Date:    date,
			Timing:  timing,
			Source:  models.SourceError,
			Message: "no earnings calendar provider available",
		}, nil
	}

	if timing != "" {
		filtered := entries[:0]
		for _, e := range entries {
			if e.Timing == timing {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	enriched, err := o.enrichAll(ctx, entries)
	if err != nil {
		return nil, err
	}

	result := &models.EarningsResult{
		Date:     date,
		Timing:   timing,
		Source:   source,
		Count:    len(enriched),
		Earnings: enriched,
	}
	if err := o.cache.Set(ctx, key, result, o.cfg.CalendarTTL); err != nil {
		o.log.Warn("calendar cache store failed", logger.Error(err))
	}
	return result, nil
}

// ResolveTodaysPlays pairs today's after-close names with the next trading
// day's before-open names.
func (o *Orchestrator) ResolveTodaysPlays(ctx context.Context) (*models.TodaysPlays, error) {
	today := o.now()
	next := util.NextTradingDay(today)

	amc, err := o.ResolveEarnings(ctx, util.FormatDate(today), models.TimingAfterClose)
	if err != nil {
		return nil, err
	}
	bmo, err := o.ResolveEarnings(ctx, util.FormatDate(next), models.TimingBeforeOpen)
	if err != nil {
		return nil, err
	}

	return &models.TodaysPlays{
		Today:          util.FormatDate(today),
		NextTradingDay: util.FormatDate(next),
		AMCEarnings:    amc.Earnings,
		BMOEarnings:    bmo.Earnings,
		Sources:        map[string]string{"amc": amc.Source, "bmo": bmo.Source},
	}, nil
}

// RecommendTicker resolves the date's earnings and runs the strategy engine
// for one ticker. A nil recommendation means the ticker does not report on
// that date.
func (o *Orchestrator) RecommendTicker(ctx context.Context, ticker, date string) (*models.StrategyRecommendation, error) {
	result, err := o.ResolveEarnings(ctx, date, "")
	if err != nil {
		return nil, err
	}
	for i := range result.Earnings {
		if result.Earnings[i].Ticker == ticker {
			rec := o.engine.Recommend(&result.Earnings[i])
			o.rec.RecordRecommendation(string(rec.Strategy))
			return &rec, nil
		}
	}
	return nil, nil
}

// fetchCalendar walks the ordered provider list. An empty success counts as
// a fallback trigger the same way a failure does; the next provider may
// simply cover dates the previous one misses. Returns the serving provider's
// name, the name of the first provider that answered empty when every answer
// was empty, or "" when every provider failed.
func (o *Orchestrator) fetchCalendar(ctx context.Context, date string) ([]models.EarningsEntry, string) {
	day, err := util.ParseDate(date)
	if err != nil {
		o.log.Warn("invalid calendar date", logger.String("date", date), logger.Error(err))
		return nil, ""
	}

	var emptySource string
	for i, p := range o.calendars {
		entries, err := p.FetchCalendar(ctx, day, day)
		if err != nil {
			kind := drepo.KindOf(err)
			o.rec.RecordProviderRequest(p.Name(), string(kind))
			o.log.Warn("calendar provider failed",
				logger.String("provider", p.Name()),
				logger.String("kind", string(kind)),
				logger.Error(err))
			if i+1 < len(o.calendars) {
				o.rec.RecordFallback(p.Name(), o.calendars[i+1].Name())
			}
			continue
		}
		o.rec.RecordProviderRequest(p.Name(), "ok")
		if len(entries) == 0 {
			if emptySource == "" {
				emptySource = p.Name()
			}
			o.log.Warn("calendar provider returned no entries",
				logger.String("provider", p.Name()),
				logger.String("date", date))
			if i+1 < len(o.calendars) {
				o.rec.RecordFallback(p.Name(), o.calendars[i+1].Name())
			}
			continue
		}
		return entries, p.Name()
	}
	return nil, emptySource
}

// enrichAll runs enrichment in fixed-size batches with a fixed delay between
// them. Per-ticker failures are logged and dropped; ctx cancellation aborts
// the remaining batches.
func (o *Orchestrator) enrichAll(ctx context.Context, entries []models.EarningsEntry) ([]models.EnrichedStock, error) {
	started := o.now()
	enriched := make([]models.EnrichedStock, 0, len(entries))

	batches := pool.Batches(entries, o.cfg.BatchSize)
	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if i > 0 {
			if err := sleepCtx(ctx, o.cfg.BatchDelay); err != nil {
				return nil, err
			}
		}
		results := pool.RunAllSettled(ctx, batch, len(batch), o.enrich)
		for _, r := range results {
			if r.Err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				o.rec.RecordEnrichSkipped(string(drepo.KindOf(r.Err)))
				o.log.Warn("enrichment skipped",
					logger.String("ticker", r.Item.Ticker),
					logger.Error(r.Err))
				continue
			}
			enriched = append(enriched, *r.Value)
		}
	}

	o.rec.RecordLatency("enrich_all", o.now().Sub(started).Seconds())
	return enriched, nil
}

// enrich builds one EnrichedStock. The quote is mandatory; everything else
// degrades to tagged absence.
func (o *Orchestrator) enrich(ctx context.Context, entry models.EarningsEntry) (*models.EnrichedStock, error) {
	histCh := make(chan historyRecord, 1)
	go func() { histCh <- o.fetchHistory(ctx, entry.Ticker) }()

	quote, err := o.quotes.FetchQuote(ctx, entry.Ticker)
	if err != nil {
		o.rec.RecordProviderRequest(o.quotes.Name(), string(drepo.KindOf(err)))
		<-histCh
		return nil, err
	}
	o.rec.RecordProviderRequest(o.quotes.Name(), "ok")

	hist := <-histCh

	stock := &models.EnrichedStock{
		Ticker:           entry.Ticker,
		CompanyName:      quote.CompanyName,
		Price:            quote.Price,
		MarketCap:        quote.MarketCap,
		Date:             entry.Date,
		Timing:           entry.Timing,
		HistoricalMoves:  hist.Moves,
		HistorySource:    hist.Source,
		EPSEstimate:      entry.EPSEstimate,
		EPSPrior:         entry.EPSPrior,
		RevenueEstimate:  entry.RevenueEstimate,
		HasWeeklyOptions: quote.MarketCap >= o.cfg.WeeklyOptionsCap,
	}

	if o.profiles != nil {
		if profile, err := o.profiles.FetchProfile(ctx, entry.Ticker); err == nil {
			stock.Sector = profile.Sector
			if stock.CompanyName == "" {
				stock.CompanyName = profile.Name
			}
		}
	}

	stock.ImpliedMove, stock.IVSource = o.fetchImpliedMove(ctx, entry.Ticker, quote.Price, hist.Moves)
	stock.News = o.fetchNews(ctx, entry.Ticker)

	return stock, nil
}

type historyRecord struct {
	Moves  []models.HistoricalMove `json:"moves"`
	Source models.HistorySource    `json:"source"`
}

// fetchHistory prefers actual price moves at past announcement dates and
// falls back to the EPS-surprise proxy. The announcement dates themselves
// only come from the surprise rows, so the proxy fetch always runs first.
func (o *Orchestrator) fetchHistory(ctx context.Context, ticker string) historyRecord {
	key := cache.Key("history", ticker)
	var cached historyRecord
	if err := o.cache.Get(ctx, key, &cached); err == nil {
		o.rec.RecordCache("history", "hit")
		return cached
	}
	o.rec.RecordCache("history", "miss")

	record := historyRecord{Source: models.HistorySourceEPSSurprise}
	if o.epsHistory != nil {
		moves, err := o.epsHistory.FetchHistoricalMoves(ctx, ticker)
		if err != nil {
			o.rec.RecordProviderRequest(o.epsHistory.Name(), string(drepo.KindOf(err)))
			o.log.Warn("history fetch failed",
				logger.String("ticker", ticker), logger.Error(err))
		} else {
			o.rec.RecordProviderRequest(o.epsHistory.Name(), "ok")
			record.Moves = moves
		}
	}
	if len(record.Moves) > o.cfg.MaxQuarters {
		record.Moves = record.Moves[:o.cfg.MaxQuarters]
	}

	if o.priceMoves != nil && len(record.Moves) > 0 {
		dates := make([]string, 0, len(record.Moves))
		for _, m := range record.Moves {
			dates = append(dates, m.Date)
		}
		actual, err := o.priceMoves.FetchPriceMoves(ctx, ticker, dates)
		switch {
		case err != nil:
			o.rec.RecordProviderRequest(o.priceMoves.Name(), string(drepo.KindOf(err)))
			o.log.Warn("price moves fetch failed",
				logger.String("ticker", ticker), logger.Error(err))
		case len(actual) > 0:
			o.rec.RecordProviderRequest(o.priceMoves.Name(), "ok")
			record.Moves = actual
			record.Source = models.HistorySourcePrice
		default:
			o.rec.RecordProviderRequest(o.priceMoves.Name(), "empty")
		}
	}

	if err := o.cache.Set(ctx, key, record, o.cfg.HistoryTTL); err != nil {
		o.log.Warn("history cache store failed", logger.Error(err))
	}
	return record
}

type impliedRecord struct {
	Pct    float64         `json:"pct"`
	Source models.IVSource `json:"source"`
}

// fetchImpliedMove walks the implied-move providers in order, then estimates
// from the historical average as a last resort. Only provider-backed values
// are cached; estimates are recomputable for free.
func (o *Orchestrator) fetchImpliedMove(ctx context.Context, ticker string, price float64, moves []models.HistoricalMove) (float64, models.IVSource) {
	key := cache.Key("options", ticker)
	var cached impliedRecord
	if err := o.cache.Get(ctx, key, &cached); err == nil {
		o.rec.RecordCache("options", "hit")
		return cached.Pct, cached.Source
	}
	o.rec.RecordCache("options", "miss")

	for i, p := range o.implied {
		quote, err := p.FetchImpliedMove(ctx, ticker, price)
		if err != nil {
			kind := drepo.KindOf(err)
			o.rec.RecordProviderRequest(p.Name(), string(kind))
			o.log.Warn("implied move fetch failed",
				logger.String("provider", p.Name()),
				logger.String("ticker", ticker),
				logger.Error(err))
			if i+1 < len(o.implied) {
				o.rec.RecordFallback(p.Name(), o.implied[i+1].Name())
			}
			continue
		}
		if quote == nil {
			o.rec.RecordProviderRequest(p.Name(), "empty")
			continue
		}
		o.rec.RecordProviderRequest(p.Name(), "ok")
		record := impliedRecord{Pct: quote.ImpliedMovePct, Source: models.IVSource(p.Name())}
		if err := o.cache.Set(ctx, key, record, o.cfg.OptionsTTL); err != nil {
			o.log.Warn("options cache store failed", logger.Error(err))
		}
		return record.Pct, record.Source
	}

	if avg := movestats.AverageAbsMove(moves); avg > 0 {
		return avg, models.IVSourceEstimated
	}
	return 0, models.IVSourceNone
}

// fetchNews is best effort; failures leave the stock without headlines.
func (o *Orchestrator) fetchNews(ctx context.Context, ticker string) []models.NewsItem {
	if o.news == nil {
		return nil
	}

	key := cache.Key("news", ticker)
	var cached []models.NewsItem
	if err := o.cache.Get(ctx, key, &cached); err == nil {
		o.rec.RecordCache("news", "hit")
		return cached
	}
	o.rec.RecordCache("news", "miss")

	to := o.now()
	from := to.AddDate(0, 0, -o.cfg.NewsLookbackDays)
	items, err := o.news.FetchNews(ctx, ticker, from, to)
	if err != nil {
		o.rec.RecordProviderRequest(o.news.Name(), string(drepo.KindOf(err)))
		return nil
	}
	o.rec.RecordProviderRequest(o.news.Name(), "ok")

	if err := o.cache.Set(ctx, key, items, o.cfg.NewsTTL); err != nil {
		o.log.Warn("news cache store failed", logger.Error(err))
	}
	return items
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
