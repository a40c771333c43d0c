package outbound

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/loanleads/backoffice/domain"
	"github.com/loanleads/backoffice/internal/infrastructure/outboundq"
)

func openTestStore(t *testing.T) *outboundq.Store {
	t.Helper()
	store, err := outboundq.Open(filepath.Join(t.TempDir(), "outbound.db"), "outbound")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestDispatcher(t *testing.T, url string, maxRetries int) *Dispatcher {
	t.Helper()
	return NewDispatcher(openTestStore(t), Config{
		BaseURL:    url,
		Timeout:    2 * time.Second,
		MaxRetries: maxRetries,
	}, nil)
}

func TestSendDelivers(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	d := newTestDispatcher(t, server.URL, 3)
	if err := d.Send(context.Background(), "919876543210", "hello"); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("expected one gateway call, got %d", hits.Load())
	}
	if d.Size() != 0 {
		t.Fatalf("delivered reply should not be queued, size=%d", d.Size())
	}
}

func TestSendQueuesWhenGatewayDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	d := newTestDispatcher(t, server.URL, 3)
	if err := d.Send(context.Background(), "919876543210", "hello"); err != nil {
		t.Fatalf("queueing should absorb the failure, got: %v", err)
	}
	if d.Size() != 1 {
		t.Fatalf("expected queued reply, size=%d", d.Size())
	}
}

func TestSendSurfacesRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	d := newTestDispatcher(t, server.URL, 3)
	err := d.Send(context.Background(), "919876543210", "hello")
	if !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Fatalf("expected INVALID for a 4xx rejection, got: %v", err)
	}
	if d.Size() != 0 {
		t.Fatalf("rejected reply must not be queued, size=%d", d.Size())
	}
}

func TestDrainEmptiesQueueOnRecovery(t *testing.T) {
	var healthy atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	d := newTestDispatcher(t, server.URL, 3)
	for i := 0; i < 3; i++ {
		if err := d.Send(context.Background(), "919876543210", "queued"); err != nil {
			t.Fatalf("send failed: %v", err)
		}
	}
	if d.Size() != 3 {
		t.Fatalf("expected 3 queued, got %d", d.Size())
	}

	healthy.Store(true)
	if err := d.Drain(context.Background()); err != nil {
		t.Fatalf("drain failed: %v", err)
	}
	if d.Size() != 0 {
		t.Fatalf("drain should empty the queue, size=%d", d.Size())
	}
}

func TestDrainDropsAfterMaxRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	d := newTestDispatcher(t, server.URL, 2)
	if err := d.Send(context.Background(), "919876543210", "doomed"); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	// Each drain pass adds one retry; the item is dropped at the limit.
	for i := 0; i < 2; i++ {
		if err := d.Drain(context.Background()); err != nil {
			t.Fatalf("drain failed: %v", err)
		}
	}
	if d.Size() != 0 {
		t.Fatalf("item past retry limit should be dropped, size=%d", d.Size())
	}
}
