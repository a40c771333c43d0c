package usecase

import (
	"context"
	"time"

	"github.com/loanleads/backoffice/domain"
)

const retryBaseDelay = 200 * time.Millisecond

// RetryQuery retries an idempotent read up to attempts times with linear
// backoff. Mutations must not go through this helper: they are never
// retried automatically. Authorization denials are not retried either.
func RetryQuery(ctx context.Context, attempts int, fn func(context.Context) error) error {
	if attempts <= 0 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if domain.IsDomainError(err, domain.ErrCodeForbidden) ||
			domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
			return err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-time.After(retryBaseDelay * time.Duration(i+1)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
