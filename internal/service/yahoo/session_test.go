package yahoo

import (
	"context"
	nethttp "net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	drepo "EarnPull/internal/domain/repository"
	"EarnPull/pkg/cache"
	"EarnPull/pkg/http"
)

func newSessionFixture(t *testing.T) (*SessionManager, *atomic.Int32) {
	t.Helper()

	var cookieCalls atomic.Int32
	mux := nethttp.NewServeMux()
	mux.HandleFunc("/cookie", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		cookieCalls.Add(1)
		w.Header().Set("Set-Cookie", "A3=session-token; Path=/; Domain=.yahoo.com")
		w.WriteHeader(nethttp.StatusNotFound) // cookie endpoint always 404s
	})
	mux.HandleFunc("/getcrumb", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Header.Get("Cookie") != "A3=session-token" {
			t.Errorf("crumb request missing cookie, got %q", r.Header.Get("Cookie"))
		}
		w.Write([]byte("crumb-value"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mem := cache.NewMemoryCache()
	t.Cleanup(func() { mem.Close() })

	m := NewSessionManager(http.NewClient(http.WithTimeout(2*time.Second)), mem, 10*time.Minute)
	m.cookieURL = srv.URL + "/cookie"
	m.crumbURL = srv.URL + "/getcrumb"
	return m, &cookieCalls
}

func TestSessionMintAndCache(t *testing.T) {
	m, cookieCalls := newSessionFixture(t)
	ctx := context.Background()

	s, err := m.Get(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Cookie != "A3=session-token" || s.Crumb != "crumb-value" {
		t.Fatalf("unexpected session %+v", s)
	}

	if _, err := m.Get(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cookieCalls.Load(); got != 1 {
		t.Fatalf("second Get must come from cache, got %d cookie fetches", got)
	}
}

func TestSessionInvalidate(t *testing.T) {
	m, cookieCalls := newSessionFixture(t)
	ctx := context.Background()

	if _, err := m.Get(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m.Invalidate(ctx)
	if _, err := m.Get(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cookieCalls.Load(); got != 2 {
		t.Fatalf("invalidate must force a re-mint, got %d cookie fetches", got)
	}
}

func TestSessionNoCookieIssued(t *testing.T) {
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.WriteHeader(nethttp.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	mem := cache.NewMemoryCache()
	t.Cleanup(func() { mem.Close() })

	m := NewSessionManager(http.NewClient(), mem, 10*time.Minute)
	m.cookieURL = srv.URL
	m.crumbURL = srv.URL

	_, err := m.Get(context.Background())
	if drepo.KindOf(err) != drepo.ErrKindMalformed {
		t.Fatalf("expected malformed, got %v", err)
	}
}
