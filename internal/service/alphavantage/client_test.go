package alphavantage

import (
	"context"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	drepo "EarnPull/internal/domain/repository"
)

const sampleCSV = `symbol,name,reportDate,fiscalDateEnding,estimate,currency
AAPL,Apple Inc,2026-03-02,2026-01-31,2.10,USD
WMT,Walmart Inc,2026-03-03,2026-01-31,1.62,USD
TSLA,Tesla Inc,2026-04-20,2026-03-31,0.85,USD
BAD,,2026-03-02,2026-01-31,,USD
`

func newTestClient(t *testing.T, handler nethttp.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New("av-key", srv.URL, 2*time.Second)
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestFetchCalendarFiltersRange(t *testing.T) {
	c := newTestClient(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.URL.Query().Get("function") != "EARNINGS_CALENDAR" {
			t.Errorf("unexpected function param %q", r.URL.Query().Get("function"))
		}
		w.Write([]byte(sampleCSV))
	})

	entries, err := c.FetchCalendar(context.Background(), day(t, "2026-03-02"), day(t, "2026-03-03"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// TSLA is outside the range; BAD has an empty estimate but a symbol.
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Ticker != "AAPL" || entries[0].EPSEstimate != 2.10 {
		t.Fatalf("unexpected first entry %+v", entries[0])
	}
	if entries[0].Provider != drepo.ProviderAlphaVantage {
		t.Fatalf("provider tag missing: %q", entries[0].Provider)
	}
}

func TestFetchCalendarThrottleNotice(t *testing.T) {
	c := newTestClient(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Write([]byte(`{"Note":"API call frequency is 25 requests per day"}`))
	})

	_, err := c.FetchCalendar(context.Background(), day(t, "2026-03-02"), day(t, "2026-03-02"))
	if drepo.KindOf(err) != drepo.ErrKindRateLimited {
		t.Fatalf("expected rate_limited for json notice, got %v", err)
	}
}

func TestFetchCalendarNotConfigured(t *testing.T) {
	c := New("", "http://unused", time.Second)
	_, err := c.FetchCalendar(context.Background(), day(t, "2026-03-02"), day(t, "2026-03-02"))
	if drepo.KindOf(err) != drepo.ErrKindNotConfigured {
		t.Fatalf("expected not_configured, got %v", err)
	}
}

func TestFetchCalendarMalformedCSV(t *testing.T) {
	c := newTestClient(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Write([]byte("symbol,name\n\"unterminated"))
	})

	_, err := c.FetchCalendar(context.Background(), day(t, "2026-03-02"), day(t, "2026-03-02"))
	if drepo.KindOf(err) != drepo.ErrKindMalformed {
		t.Fatalf("expected malformed, got %v", err)
	}
}
