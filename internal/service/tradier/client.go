// Package tradier implements the primary options provider (implied move via
// the nearest-expiry ATM straddle) and actual earnings-day price moves from
// daily history candles.
package tradier

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	pkgerrors "github.com/pkg/errors"

	"EarnPull/internal/domain/models"
	drepo "EarnPull/internal/domain/repository"
	"EarnPull/internal/service/options"
	"EarnPull/pkg/http"
	"EarnPull/pkg/util"
)

type Client struct {
	token   string
	baseURL string
	http    *http.Client

	now func() time.Time // swapped in tests
}

func New(token, baseURL string, timeout time.Duration) *Client {
	return &Client{
		token:   token,
		baseURL: baseURL,
		http:    http.NewClient(http.WithTimeout(timeout)),
		now:     time.Now,
	}
}

func (c *Client) Name() string { return drepo.ProviderTradier }

func (c *Client) Configured() bool { return c.token != "" }

func (c *Client) get(ctx context.Context, path string, params map[string][]string, dest interface{}) error {
	if !c.Configured() {
		return drepo.NewProviderError(c.Name(), drepo.ErrKindNotConfigured, 0,
			errors.New("no token"))
	}

	err := c.http.SendAndParse(ctx, &http.RequestOptions{
		Method: http.MethodGet,
		URL:    c.baseURL + path,
		Headers: map[string]string{
			"Authorization": "Bearer " + c.token,
			"Accept":        "application/json",
		},
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

type expirationsResponse struct {
	Expirations struct {
		Date []string `json:"date"`
	} `json:"expirations"`
}

type chainResponse struct {
	Options struct {
		Option []struct {
			Strike     float64 `json:"strike"`
			Bid        float64 `json:"bid"`
			Ask        float64 `json:"ask"`
			OptionType string  `json:"option_type"`
			Greeks     *struct {
				MidIV float64 `json:"mid_iv"`
			} `json:"greeks"`
		} `json:"option"`
	} `json:"options"`
}

// FetchImpliedMove computes the ATM-straddle expected move for the nearest
// expiration on or after today.
func (c *Client) FetchImpliedMove(ctx context.Context, ticker string, price float64) (*models.ImpliedMoveQuote, error) {
	var expResp expirationsResponse
	err := c.get(ctx, "/markets/options/expirations", map[string][]string{
		"symbol":          {ticker},
		"includeAllRoots": {"true"},
	}, &expResp)
	if err != nil {
		return nil, err
	}

	expiry := nearestExpiry(expResp.Expirations.Date, util.FormatDate(c.now()))
	if expiry == "" {
		return nil, nil // no listed options, not an error
	}

	var chResp chainResponse
	err = c.get(ctx, "/markets/options/chains", map[string][]string{
		"symbol":     {ticker},
		"expiration": {expiry},
		"greeks":     {"true"},
	}, &chResp)
	if err != nil {
		return nil, err
	}

	var calls, puts []options.Contract
	for _, o := range chResp.Options.Option {
		contract := options.Contract{Strike: o.Strike, Bid: o.Bid, Ask: o.Ask}
		if o.Greeks != nil {
			contract.ImpliedVol = o.Greeks.MidIV
		}
		switch o.OptionType {
		case "call":
			calls = append(calls, contract)
		case "put":
			puts = append(puts, contract)
		}
	}

	straddle, err := options.ATMStraddle(price, calls, puts)
	if err != nil {
		return nil, nil // unusable chain, treat as no data
	}
	return &models.ImpliedMoveQuote{
		ImpliedMovePct: straddle.ImpliedMovePct,
		ImpliedVol:     straddle.ImpliedVol,
		NearestExpiry:  expiry,
	}, nil
}

type candle struct {
	Date  string  `json:"date"`
	Close float64 `json:"close"`
}

type historyResponse struct {
	History struct {
		Day []candle `json:"day"`
	} `json:"history"`
}

// FetchPriceMoves computes the close-to-close reaction for each past
// announcement date: baseline is the last close on or before the date, the
// reaction close is the first trading day after it. Dates with no
// surrounding candles are skipped. Results come back newest first.
func (c *Client) FetchPriceMoves(ctx context.Context, ticker string, dates []string) ([]models.HistoricalMove, error) {
	if len(dates) == 0 {
		return nil, nil
	}

	sorted := append([]string(nil), dates...)
	sort.Strings(sorted)
	start, err := util.ParseDate(sorted[0])
	if err != nil {
		return nil, drepo.NewProviderError(c.Name(), drepo.ErrKindMalformed, 0,
			pkgerrors.Wrapf(err, "date %s", sorted[0]))
	}
	end, err := util.ParseDate(sorted[len(sorted)-1])
	if err != nil {
		return nil, drepo.NewProviderError(c.Name(), drepo.ErrKindMalformed, 0,
			pkgerrors.Wrapf(err, "date %s", sorted[len(sorted)-1]))
	}

	var resp historyResponse
	err = c.get(ctx, "/markets/history", map[string][]string{
		"symbol":   {ticker},
		"interval": {"daily"},
		"start":    {util.FormatDate(start.AddDate(0, 0, -7))},
		"end":      {util.FormatDate(end.AddDate(0, 0, 7))},
	}, &resp)
	if err != nil {
		return nil, err
	}

	days := resp.History.Day
	moves := make([]models.HistoricalMove, 0, len(sorted))
	for _, date := range sorted {
		baseline, reaction, ok := bracketingCloses(days, date)
		if !ok || baseline == 0 {
			continue
		}
		pct := (reaction - baseline) / baseline * 100
		dir := models.DirectionUp
		if pct < 0 {
			dir = models.DirectionDown
			pct = -pct
		}
		moves = append(moves, models.HistoricalMove{
			Quarter:   quarterLabel(date),
			Date:      date,
			MovePct:   pct,
			Direction: dir,
		})
	}

	// newest first
	sort.SliceStable(moves, func(i, j int) bool { return moves[i].Date > moves[j].Date })
	return moves, nil
}

// bracketingCloses finds the last close on or before date and the first
// close strictly after it. Candles are assumed date-ascending.
func bracketingCloses(days []candle, date string) (baseline, reaction float64, ok bool) {
	baselineIdx := -1
	for i, d := range days {
		if d.Date <= date {
			baselineIdx = i
		} else {
			break
		}
	}
	if baselineIdx < 0 || baselineIdx+1 >= len(days) {
		return 0, 0, false
	}
	return days[baselineIdx].Close, days[baselineIdx+1].Close, true
}

func nearestExpiry(dates []string, today string) string {
	best := ""
	for _, d := range dates {
		if d < today {
			continue
		}
		if best == "" || d < best {
			best = d
		}
	}
	return best
}

func quarterLabel(date string) string {
	t, err := util.ParseDate(date)
	if err != nil {
		return date
	}
	return fmt.Sprintf("Q%d %d", (int(t.Month())-1)/3+1, t.Year())
}
