// Package yahoo provides spot quotes and the options-chain fallback.
// Quotes go through piquette/finance-go; the options fallback speaks the
// public finance API directly, which requires a cookie/crumb session.
package yahoo

import (
	"context"
	"time"

	"github.com/piquette/finance-go/equity"
	pkgerrors "github.com/pkg/errors"

	"EarnPull/internal/domain/models"
	drepo "EarnPull/internal/domain/repository"
)

// QuoteClient fetches spot quotes. No credential is needed.
type QuoteClient struct {
	timeout time.Duration
}

func NewQuoteClient(timeout time.Duration) *QuoteClient {
	if timeout == 0 {
		timeout = 8 * time.Second
	}
	return &QuoteClient{timeout: timeout}
}

func (c *QuoteClient) Name() string { return drepo.ProviderYahoo }

// FetchQuote fetches a quote. The finance-go call has no context support,
// so it runs in a goroutine raced against the deadline.
func (c *QuoteClient) FetchQuote(ctx context.Context, ticker string) (*models.Quote, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resultCh := make(chan *models.Quote, 1)
	errCh := make(chan error, 1)

	go func() {
		q, err := equity.Get(ticker)
		if err != nil {
			errCh <- drepo.NewProviderError(drepo.ProviderYahoo, drepo.ErrKindUnavailable, 0,
				pkgerrors.Wrap(err, "quote"))
			return
		}
		if q == nil || q.RegularMarketPrice <= 0 {
			errCh <- drepo.NewProviderError(drepo.ProviderYahoo, drepo.ErrKindMalformed, 0,
				pkgerrors.Errorf("no usable quote for %s", ticker))
			return
		}
		name := q.ShortName
		if name == "" {
			name = q.LongName
		}
		resultCh <- &models.Quote{
			Ticker:      q.Symbol,
			CompanyName: name,
			Price:       q.RegularMarketPrice,
			MarketCap:   float64(q.MarketCap),
		}
	}()

	select {
	case <-ctx.Done():
		return nil, drepo.NewProviderError(drepo.ProviderYahoo, drepo.ErrKindUnavailable, 0,
			pkgerrors.Wrap(ctx.Err(), "quote"))
	case err := <-errCh:
		return nil, err
	case q := <-resultCh:
		return q, nil
	}
}
