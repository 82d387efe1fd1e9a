// Package finnhub implements the primary earnings-calendar provider plus
// EPS-surprise history, company profiles and news.
package finnhub

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	pkgerrors "github.com/pkg/errors"

	"EarnPull/internal/domain/models"
	drepo "EarnPull/internal/domain/repository"
	"EarnPull/pkg/http"
	"EarnPull/pkg/util"
)

// Client talks to the Finnhub REST API. The zero API key is a valid state;
// every call then fails fast with ErrKindNotConfigured.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// New creates a Finnhub client.
func New(apiKey, baseURL string, timeout time.Duration) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    http.NewClient(http.WithTimeout(timeout)),
	}
}

func (c *Client) Name() string { return drepo.ProviderFinnhub }

// Configured reports whether an API key is present.
func (c *Client) Configured() bool { return c.apiKey != "" }

func (c *Client) get(ctx context.Context, path string, params map[string][]string, dest interface{}) error {
	if !c.Configured() {
		return drepo.NewProviderError(c.Name(), drepo.ErrKindNotConfigured, 0,
			errors.New("no api key"))
	}
	params["token"] = []string{c.apiKey}

	err := c.http.SendAndParse(ctx, &http.RequestOptions{
		Method:      http.MethodGet,
		URL:         c.baseURL + path,
		QueryParams: params,
	}, dest)
	if err != nil {
		var se *http.StatusError
		if errors.As(err, &se) {
			return drepo.NewProviderError(c.Name(), drepo.ClassifyStatus(se.StatusCode), se.StatusCode, err)
		}
		return drepo.NewProviderError(c.Name(), drepo.ErrKindUnavailable, 0,
			pkgerrors.Wrap(err, path))
	}
	return nil
}

type calendarResponse struct {
	EarningsCalendar []struct {
		Symbol          string  `json:"symbol"`
		Date            string  `json:"date"`
		Hour            string  `json:"hour"` // bmo, amc, dmh
		EPSEstimate     float64 `json:"epsEstimate"`
		EPSActual       float64 `json:"epsActual"`
		RevenueEstimate float64 `json:"revenueEstimate"`
	} `json:"earningsCalendar"`
}

// FetchCalendar lists upcoming announcements between from and to inclusive.
func (c *Client) FetchCalendar(ctx context.Context, from, to time.Time) ([]models.EarningsEntry, error) {
	var resp calendarResponse
	err := c.get(ctx, "/calendar/earnings", map[string][]string{
		"from": {util.FormatDate(from)},
		"to":   {util.FormatDate(to)},
	}, &resp)
	if err != nil {
		return nil, err
	}

	entries := make([]models.EarningsEntry, 0, len(resp.EarningsCalendar))
	for _, row := range resp.EarningsCalendar {
		if row.Symbol == "" || row.Date == "" {
			continue
		}
		timing := models.TimingAfterClose
		if row.Hour == "bmo" {
			timing = models.TimingBeforeOpen
		}
		entries = append(entries, models.EarningsEntry{
			Ticker:          row.Symbol,
			Date:            row.Date,
			Timing:          timing,
			EPSEstimate:     row.EPSEstimate,
			RevenueEstimate: row.RevenueEstimate,
			Provider:        c.Name(),
		})
	}
	return entries, nil
}

type surpriseRow struct {
	Actual          float64 `json:"actual"`
	Estimate        float64 `json:"estimate"`
	Period          string  `json:"period"` // YYYY-MM-DD
	SurprisePercent float64 `json:"surprisePercent"`
}

// FetchHistoricalMoves returns past quarters as EPS-surprise proxies, newest
// first. The surprise percentage stands in for the unknown price move; the
// caller tags HistorySource accordingly.
func (c *Client) FetchHistoricalMoves(ctx context.Context, ticker string) ([]models.HistoricalMove, error) {
	var rows []surpriseRow
	err := c.get(ctx, "/stock/earnings", map[string][]string{
		"symbol": {ticker},
	}, &rows)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Period > rows[j].Period })

	moves := make([]models.HistoricalMove, 0, len(rows))
	for _, row := range rows {
		if row.Period == "" {
			continue
		}
		dir := models.DirectionUp
		pct := row.SurprisePercent
		if pct < 0 {
			dir = models.DirectionDown
			pct = -pct
		}
		moves = append(moves, models.HistoricalMove{
			Quarter:   quarterLabel(row.Period),
			Date:      row.Period,
			MovePct:   pct,
			Direction: dir,
		})
	}
	return moves, nil
}

type profileResponse struct {
	Name     string `json:"name"`
	Industry string `json:"finnhubIndustry"`
}

// FetchProfile returns static company data.
func (c *Client) FetchProfile(ctx context.Context, ticker string) (*models.CompanyProfile, error) {
	var resp profileResponse
	err := c.get(ctx, "/stock/profile2", map[string][]string{
		"symbol": {ticker},
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Name == "" {
		return nil, drepo.NewProviderError(c.Name(), drepo.ErrKindMalformed, 0,
			fmt.Errorf("empty profile for %s", ticker))
	}
	return &models.CompanyProfile{Ticker: ticker, Name: resp.Name, Sector: resp.Industry}, nil
}

type newsRow struct {
	Headline string `json:"headline"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
	Datetime int64  `json:"datetime"` // unix seconds
}

// FetchNews returns recent headlines with a coarse keyword sentiment tag.
func (c *Client) FetchNews(ctx context.Context, ticker string, from, to time.Time) ([]models.NewsItem, error) {
	var rows []newsRow
	err := c.get(ctx, "/company-news", map[string][]string{
		"symbol": {ticker},
		"from":   {util.FormatDate(from)},
		"to":     {util.FormatDate(to)},
	}, &rows)
	if err != nil {
		return nil, err
	}

	items := make([]models.NewsItem, 0, len(rows))
	for _, row := range rows {
		if row.Headline == "" {
			continue
		}
		items = append(items, models.NewsItem{
			Headline:  row.Headline,
			Sentiment: string(TagSentiment(row.Headline + " " + row.Summary)),
			URL:       row.URL,
			Date:      util.FormatDate(time.Unix(row.Datetime, 0).UTC()),
		})
	}
	return items, nil
}

func quarterLabel(date string) string {
	t, err := util.ParseDate(date)
	if err != nil {
		return date
	}
	return fmt.Sprintf("Q%d %d", (int(t.Month())-1)/3+1, t.Year())
}
