package finnhub

import (
	"context"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"EarnPull/internal/domain/models"
	drepo "EarnPull/internal/domain/repository"
)

func testServer(t *testing.T, handler nethttp.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, New("test-key", srv.URL, 2*time.Second)
}

func TestFetchCalendar(t *testing.T) {
	_, c := testServer(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.URL.Path != "/calendar/earnings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("token") != "test-key" {
			t.Error("missing token")
		}
		w.Write([]byte(`{"earningsCalendar":[
			{"symbol":"AAPL","date":"2026-03-02","hour":"amc","epsEstimate":2.1,"revenueEstimate":120000},
			{"symbol":"WMT","date":"2026-03-02","hour":"bmo","epsEstimate":1.6},
			{"symbol":"","date":"2026-03-02","hour":"amc"}
		]}`))
	})

	from, _ := time.Parse("2006-01-02", "2026-03-02")
	entries, err := c.FetchCalendar(context.Background(), from, from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries (blank symbol dropped), got %d", len(entries))
	}
	if entries[0].Timing != models.TimingAfterClose || entries[1].Timing != models.TimingBeforeOpen {
		t.Fatalf("timing mapping wrong: %+v", entries)
	}
	if entries[0].Provider != drepo.ProviderFinnhub {
		t.Fatalf("provider tag missing: %q", entries[0].Provider)
	}
}

func TestFetchCalendarNotConfigured(t *testing.T) {
	c := New("", "http://unused", time.Second)
	_, err := c.FetchCalendar(context.Background(), time.Now(), time.Now())
	if drepo.KindOf(err) != drepo.ErrKindNotConfigured {
		t.Fatalf("expected not_configured, got %v", err)
	}
}

func TestFetchCalendarStatusClassification(t *testing.T) {
	cases := []struct {
		status int
		kind   drepo.ErrKind
	}{
		{401, drepo.ErrKindAuth},
		{429, drepo.ErrKindRateLimited},
		{503, drepo.ErrKindUnavailable},
	}
	for _, tc := range cases {
		_, c := testServer(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
			w.WriteHeader(tc.status)
		})
		_, err := c.FetchCalendar(context.Background(), time.Now(), time.Now())
		if drepo.KindOf(err) != tc.kind {
			t.Fatalf("status %d: expected %s, got %v", tc.status, tc.kind, err)
		}
	}
}

func TestFetchHistoricalMoves(t *testing.T) {
	_, c := testServer(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Write([]byte(`[
			{"period":"2025-07-30","surprisePercent":-3.2},
			{"period":"2025-10-29","surprisePercent":5.1},
			{"period":"2025-04-30","surprisePercent":2.0}
		]`))
	})

	moves, err := c.FetchHistoricalMoves(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(moves) != 3 {
		t.Fatalf("expected 3 moves, got %d", len(moves))
	}
	if moves[0].Date != "2025-10-29" {
		t.Fatalf("expected newest first, got %s", moves[0].Date)
	}
	if moves[1].MovePct != 3.2 || moves[1].Direction != models.DirectionDown {
		t.Fatalf("negative surprise must become abs pct + down: %+v", moves[1])
	}
	if moves[0].Quarter != "Q4 2025" {
		t.Fatalf("unexpected quarter label %q", moves[0].Quarter)
	}
}

func TestFetchProfileEmpty(t *testing.T) {
	_, c := testServer(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Write([]byte(`{}`))
	})
	_, err := c.FetchProfile(context.Background(), "ZZZZ")
	if drepo.KindOf(err) != drepo.ErrKindMalformed {
		t.Fatalf("expected malformed for empty profile, got %v", err)
	}
}

func TestTagSentiment(t *testing.T) {
	cases := []struct {
		text string
		want Sentiment
	}{
		{"Company beats estimates, shares surge", SentimentPositive},
		{"Earnings miss sparks downgrade", SentimentNegative},
		{"Company reports quarterly results", SentimentNeutral},
		{"Record growth but lawsuit probe and weak outlook", SentimentNegative},
	}
	for _, tc := range cases {
		if got := TagSentiment(tc.text); got != tc.want {
			t.Errorf("%q: expected %s, got %s", tc.text, tc.want, got)
		}
	}
}
