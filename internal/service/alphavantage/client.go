// Package alphavantage implements the fallback earnings-calendar provider.
// The EARNINGS_CALENDAR endpoint returns CSV and carries no announcement
// timing, so every entry is tagged after-close.
package alphavantage

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"

	"EarnPull/internal/domain/models"
	drepo "EarnPull/internal/domain/repository"
	"EarnPull/pkg/http"
	"EarnPull/pkg/util"
)

type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func New(apiKey, baseURL string, timeout time.Duration) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    http.NewClient(http.WithTimeout(timeout)),
	}
}

func (c *Client) Name() string { return drepo.ProviderAlphaVantage }

func (c *Client) Configured() bool { return c.apiKey != "" }

// FetchCalendar downloads the 3-month calendar and filters it to the
// requested range. The endpoint has no range parameters of its own.
func (c *Client) FetchCalendar(ctx context.Context, from, to time.Time) ([]models.EarningsEntry, error) {
	if !c.Configured() {
		return nil, drepo.NewProviderError(c.Name(), drepo.ErrKindNotConfigured, 0,
			errors.New("no api key"))
	}

	var body []byte
	err := c.http.SendAndParse(ctx, &http.RequestOptions{
		Method: http.MethodGet,
		URL:    c.baseURL,
		QueryParams: map[string][]string{
			"function": {"EARNINGS_CALENDAR"},
			"horizon":  {"3month"},
			"apikey":   {c.apiKey},
		},
	}, &body)
	if err != nil {
		var se *http.StatusError
		if errors.As(err, &se) {
			return nil, drepo.NewProviderError(c.Name(), drepo.ClassifyStatus(se.StatusCode), se.StatusCode, err)
		}
		return nil, drepo.NewProviderError(c.Name(), drepo.ErrKindUnavailable, 0,
			pkgerrors.Wrap(err, "earnings calendar"))
	}

	// Throttle notices come back as 200 with a JSON body instead of CSV.
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '{' {
		return nil, drepo.NewProviderError(c.Name(), drepo.ErrKindRateLimited, 0,
			errors.New("throttle notice instead of csv payload"))
	}

	return c.parseCSV(body, from, to)
}

// CSV columns: symbol, name, reportDate, fiscalDateEnding, estimate, currency.
func (c *Client) parseCSV(body []byte, from, to time.Time) ([]models.EarningsEntry, error) {
	r := csv.NewReader(bytes.NewReader(body))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, drepo.NewProviderError(c.Name(), drepo.ErrKindMalformed, 0,
			pkgerrors.Wrap(err, "csv header"))
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	symIdx, dateIdx := col["symbol"], col["reportDate"]
	estIdx, okEst := col["estimate"]

	fromStr, toStr := util.FormatDate(from), util.FormatDate(to)

	var entries []models.EarningsEntry
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, drepo.NewProviderError(c.Name(), drepo.ErrKindMalformed, 0,
				pkgerrors.Wrap(err, "csv row"))
		}
		if symIdx >= len(row) || dateIdx >= len(row) {
			continue
		}
		sym, date := row[symIdx], row[dateIdx]
		if sym == "" || date < fromStr || date > toStr {
			continue
		}
		var estimate float64
		if okEst && estIdx < len(row) {
			estimate, _ = strconv.ParseFloat(row[estIdx], 64)
		}
		entries = append(entries, models.EarningsEntry{
			Ticker:      sym,
			Date:        date,
			Timing:      models.TimingAfterClose,
			EPSEstimate: estimate,
			Provider:    c.Name(),
		})
	}
	return entries, nil
}
