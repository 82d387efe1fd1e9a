package yahoo

import (
	"context"
	"math"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	drepo "EarnPull/internal/domain/repository"
	"EarnPull/pkg/cache"
	"EarnPull/pkg/http"
)

const chainBody = `{"optionChain":{"result":[{
	"expirationDates":[1772668800],
	"options":[{
		"calls":[{"strike":100,"bid":1.9,"ask":2.1,"impliedVolatility":0.62,"expiration":1772668800}],
		"puts":[{"strike":100,"bid":1.8,"ask":2.2,"impliedVolatility":0.58,"expiration":1772668800}]
	}]
}]}}`

func newOptionsFixture(t *testing.T, chainHandler nethttp.HandlerFunc) (*OptionsClient, cache.Service) {
	t.Helper()

	mux := nethttp.NewServeMux()
	mux.HandleFunc("/cookie", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Set-Cookie", "A3=tok; Path=/")
		w.WriteHeader(nethttp.StatusNotFound)
	})
	mux.HandleFunc("/getcrumb", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Write([]byte("crumb"))
	})
	mux.HandleFunc("/chain/", chainHandler)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mem := cache.NewMemoryCache()
	t.Cleanup(func() { mem.Close() })

	client := http.NewClient(http.WithTimeout(2 * time.Second))
	session := NewSessionManager(client, mem, 10*time.Minute)
	session.cookieURL = srv.URL + "/cookie"
	session.crumbURL = srv.URL + "/getcrumb"

	oc := NewOptionsClient(client, session)
	oc.baseURL = srv.URL + "/chain"
	return oc, mem
}

func TestOptionsFetchImpliedMove(t *testing.T) {
	oc, _ := newOptionsFixture(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.URL.Query().Get("crumb") != "crumb" {
			t.Errorf("missing crumb param")
		}
		if r.Header.Get("Cookie") != "A3=tok" {
			t.Errorf("missing session cookie")
		}
		w.Write([]byte(chainBody))
	})

	quote, err := oc.FetchImpliedMove(context.Background(), "AAPL", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote == nil {
		t.Fatal("expected a quote")
	}
	if math.Abs(quote.ImpliedMovePct-4) > 1e-9 {
		t.Fatalf("expected 4%%, got %v", quote.ImpliedMovePct)
	}
	if quote.NearestExpiry != "2026-03-05" {
		t.Fatalf("unexpected expiry %q", quote.NearestExpiry)
	}
}

func TestOptionsAuthFailureInvalidatesSession(t *testing.T) {
	oc, mem := newOptionsFixture(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.WriteHeader(nethttp.StatusUnauthorized)
	})
	ctx := context.Background()

	_, err := oc.FetchImpliedMove(ctx, "AAPL", 100)
	if drepo.KindOf(err) != drepo.ErrKindAuth {
		t.Fatalf("expected auth error, got %v", err)
	}

	exists, err := mem.Exists(ctx, sessionKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exists {
		t.Fatal("session must be dropped after a 401")
	}
}

func TestOptionsEmptyChain(t *testing.T) {
	oc, _ := newOptionsFixture(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Write([]byte(`{"optionChain":{"result":[]}}`))
	})

	quote, err := oc.FetchImpliedMove(context.Background(), "ZZZZ", 100)
	if err != nil || quote != nil {
		t.Fatalf("expected nil/nil for empty chain, got %v/%v", quote, err)
	}
}
