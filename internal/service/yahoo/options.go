package yahoo

import (
	"context"
	"errors"
	"fmt"
	"time"

	pkgerrors "github.com/pkg/errors"

	"EarnPull/internal/domain/models"
	drepo "EarnPull/internal/domain/repository"
	"EarnPull/internal/service/options"
	"EarnPull/pkg/http"
)

const defaultOptionsURL = "https://query1.finance.yahoo.com/v7/finance/options"

// OptionsClient is the implied-move fallback. It reuses the crumb session
// across calls and drops it the moment the API answers 401/403.
type OptionsClient struct {
	http    *http.Client
	session *SessionManager

	baseURL string
}

func NewOptionsClient(httpClient *http.Client, session *SessionManager) *OptionsClient {
	return &OptionsClient{http: httpClient, session: session, baseURL: defaultOptionsURL}
}

func (c *OptionsClient) Name() string { return drepo.ProviderYahoo }

type chainResponse struct {
	OptionChain struct {
		Result []struct {
			ExpirationDates []int64 `json:"expirationDates"`
			Options         []struct {
				Calls []chainContract `json:"calls"`
				Puts  []chainContract `json:"puts"`
			} `json:"options"`
		} `json:"result"`
	} `json:"optionChain"`
}

type chainContract struct {
	Strike            float64 `json:"strike"`
	Bid               float64 `json:"bid"`
	Ask               float64 `json:"ask"`
	ImpliedVolatility float64 `json:"impliedVolatility"`
	Expiration        int64   `json:"expiration"`
}

// FetchImpliedMove computes the ATM-straddle move from the nearest-expiry
// chain the v7 endpoint returns by default.
func (c *OptionsClient) FetchImpliedMove(ctx context.Context, ticker string, price float64) (*models.ImpliedMoveQuote, error) {
	s, err := c.session.Get(ctx)
	if err != nil {
		return nil, err
	}

	var resp chainResponse
	err = c.http.SendAndParse(ctx, &http.RequestOptions{
		Method: http.MethodGet,
		URL:    fmt.Sprintf("%s/%s", c.baseURL, ticker),
		Headers: map[string]string{
			"User-Agent": userAgent,
			"Cookie":     s.Cookie,
		},
		QueryParams: map[string][]string{"crumb": {s.Crumb}},
	}, &resp)
	if err != nil {
		var se *http.StatusError
		if errors.As(err, &se) {
			kind := drepo.ClassifyStatus(se.StatusCode)
			if kind == drepo.ErrKindAuth {
				c.session.Invalidate(ctx)
			}
			return nil, drepo.NewProviderError(c.Name(), kind, se.StatusCode, err)
		}
		return nil, drepo.NewProviderError(c.Name(), drepo.ErrKindUnavailable, 0,
			pkgerrors.Wrap(err, "options chain"))
	}

	if len(resp.OptionChain.Result) == 0 || len(resp.OptionChain.Result[0].Options) == 0 {
		return nil, nil // no listed options
	}
	chain := resp.OptionChain.Result[0].Options[0]

	calls := toContracts(chain.Calls)
	puts := toContracts(chain.Puts)
	straddle, err := options.ATMStraddle(price, calls, puts)
	if err != nil {
		return nil, nil // unusable chain, treat as no data
	}

	expiry := ""
	if len(chain.Calls) > 0 {
		expiry = unixDate(chain.Calls[0].Expiration)
	}
	return &models.ImpliedMoveQuote{
		ImpliedMovePct: straddle.ImpliedMovePct,
		ImpliedVol:     straddle.ImpliedVol,
		NearestExpiry:  expiry,
	}, nil
}

func unixDate(sec int64) string {
	if sec == 0 {
		return ""
	}
	return time.Unix(sec, 0).UTC().Format("2006-01-02")
}

func toContracts(rows []chainContract) []options.Contract {
	out := make([]options.Contract, 0, len(rows))
	for _, r := range rows {
		out = append(out, options.Contract{
			Strike:     r.Strike,
			Bid:        r.Bid,
			Ask:        r.Ask,
			ImpliedVol: r.ImpliedVolatility,
		})
	}
	return out
}
