package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/loanleads/backoffice/domain"
)

func TestRetryQueryRetriesTransientErrors(t *testing.T) {
	calls := 0
	err := RetryQuery(context.Background(), 3, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection reset")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success after retries: %v", err)
	}
	if calls != 3 {
		t.Fatalf("unexpected call count: %d", calls)
	}
}

func TestRetryQueryNeverRetriesAuthorizationDenial(t *testing.T) {
	calls := 0
	err := RetryQuery(context.Background(), 3, func(context.Context) error {
		calls++
		return domain.ErrForbidden
	})
	if !domain.IsDomainError(err, domain.ErrCodeForbidden) {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("authorization denial was retried: %d calls", calls)
	}
}

func TestRetryQueryGivesUpAfterAttempts(t *testing.T) {
	calls := 0
	err := RetryQuery(context.Background(), 2, func(context.Context) error {
		calls++
		return errors.New("still down")
	})
	if err == nil || calls != 2 {
		t.Fatalf("expected failure after 2 attempts, got err=%v calls=%d", err, calls)
	}
}
