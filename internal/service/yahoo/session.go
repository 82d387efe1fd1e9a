package yahoo

import (
	"context"
	"errors"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"

	drepo "EarnPull/internal/domain/repository"
	"EarnPull/pkg/cache"
	"EarnPull/pkg/http"
)

const (
	defaultCookieURL = "https://fc.yahoo.com"
	defaultCrumbURL  = "https://query1.finance.yahoo.com/v1/test/getcrumb"

	sessionKey = "session:yahoo"
)

// Session is the cookie/crumb pair the finance endpoints require. It is
// cached under its own short TTL, separate from any content cache, so an
// expired session never pins stale content and vice versa.
type Session struct {
	Cookie string `json:"cookie"`
	Crumb  string `json:"crumb"`
}

// SessionManager mints and caches sessions.
type SessionManager struct {
	http  *http.Client
	cache cache.Service
	ttl   time.Duration

	cookieURL string
	crumbURL  string
}

func NewSessionManager(httpClient *http.Client, c cache.Service, ttl time.Duration) *SessionManager {
	return &SessionManager{
		http:      httpClient,
		cache:     c,
		ttl:       ttl,
		cookieURL: defaultCookieURL,
		crumbURL:  defaultCrumbURL,
	}
}

// Get returns the cached session or mints a fresh one.
func (m *SessionManager) Get(ctx context.Context) (*Session, error) {
	var s Session
	if err := m.cache.Get(ctx, sessionKey, &s); err == nil && s.Crumb != "" {
		return &s, nil
	}

	fresh, err := m.mint(ctx)
	if err != nil {
		return nil, err
	}
	// Best effort; a failed store only costs a re-mint on the next call.
	_ = m.cache.Set(ctx, sessionKey, fresh, m.ttl)
	return fresh, nil
}

// Invalidate drops the cached session. Called on any 401/403 content
// response so the next request starts from a fresh cookie.
func (m *SessionManager) Invalidate(ctx context.Context) {
	_ = m.cache.Delete(ctx, sessionKey)
}

func (m *SessionManager) mint(ctx context.Context) (*Session, error) {
	// The cookie endpoint always answers 404; only its Set-Cookie
	// header matters.
	resp, err := m.http.SendRequest(ctx, &http.RequestOptions{
		Method:  http.MethodGet,
		URL:     m.cookieURL,
		Headers: map[string]string{"User-Agent": userAgent},
	})
	if err != nil {
		return nil, drepo.NewProviderError(drepo.ProviderYahoo, drepo.ErrKindUnavailable, 0,
			pkgerrors.Wrap(err, "session cookie"))
	}
	resp.Body.Close()

	cookie := firstCookie(resp.Header.Values("Set-Cookie"))
	if cookie == "" {
		return nil, drepo.NewProviderError(drepo.ProviderYahoo, drepo.ErrKindMalformed, 0,
			errors.New("no session cookie issued"))
	}

	var crumb []byte
	err = m.http.SendAndParse(ctx, &http.RequestOptions{
		Method: http.MethodGet,
		URL:    m.crumbURL,
		Headers: map[string]string{
			"User-Agent": userAgent,
			"Cookie":     cookie,
		},
	}, &crumb)
	if err != nil {
		var se *http.StatusError
		if errors.As(err, &se) {
			return nil, drepo.NewProviderError(drepo.ProviderYahoo, drepo.ClassifyStatus(se.StatusCode), se.StatusCode, err)
		}
		return nil, drepo.NewProviderError(drepo.ProviderYahoo, drepo.ErrKindUnavailable, 0,
			pkgerrors.Wrap(err, "session crumb"))
	}
	if len(crumb) == 0 {
		return nil, drepo.NewProviderError(drepo.ProviderYahoo, drepo.ErrKindMalformed, 0,
			errors.New("empty crumb"))
	}

	return &Session{Cookie: cookie, Crumb: string(crumb)}, nil
}

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

func firstCookie(setCookies []string) string {
	if len(setCookies) == 0 {
		return ""
	}
	cookie, _, _ := strings.Cut(setCookies[0], ";")
	return strings.TrimSpace(cookie)
}
