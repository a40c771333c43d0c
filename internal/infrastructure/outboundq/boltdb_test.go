package outboundq

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "outbound.db"), "outbound")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestEnqueueAndDrainOrder(t *testing.T) {
	store := openTestStore(t)
	base := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

	newest := Item{SessionKey: "919876543210", Body: "second", Timestamp: base.Add(time.Minute)}
	oldest := Item{SessionKey: "919876543210", Body: "first", Timestamp: base}
	if err := store.Enqueue(newest); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	if err := store.Enqueue(oldest); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	items, err := store.GetBatch(10)
	if err != nil {
		t.Fatalf("get batch failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("unexpected batch size: %d", len(items))
	}
	if items[0].Body != "first" || items[1].Body != "second" {
		t.Fatalf("drain order not oldest-first: %s, %s", items[0].Body, items[1].Body)
	}
}

func TestRemove(t *testing.T) {
	store := openTestStore(t)
	if err := store.Enqueue(Item{SessionKey: "919876543210", Body: "hello"}); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	items, err := store.GetBatch(1)
	if err != nil || len(items) != 1 {
		t.Fatalf("get batch failed: %v len=%d", err, len(items))
	}
	if err := store.Remove(items[0]); err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	size, err := store.Size()
	if err != nil {
		t.Fatalf("size failed: %v", err)
	}
	if size != 0 {
		t.Fatalf("expected empty store, got %d", size)
	}
}

func TestRequeueKeepsRetryCount(t *testing.T) {
	store := openTestStore(t)
	if err := store.Enqueue(Item{SessionKey: "919876543210", Body: "hello"}); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	items, _ := store.GetBatch(1)
	item := items[0]
	item.Retries++
	if err := store.Requeue(item); err != nil {
		t.Fatalf("requeue failed: %v", err)
	}

	items, _ = store.GetBatch(1)
	if len(items) != 1 || items[0].Retries != 1 {
		t.Fatalf("retry count lost on requeue: %+v", items)
	}
}

func TestRequeueMovesWithoutDuplicating(t *testing.T) {
	store := openTestStore(t)
	if err := store.Enqueue(Item{SessionKey: "919876543210", Body: "hello"}); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	items, _ := store.GetBatch(1)
	if err := store.Requeue(items[0]); err != nil {
		t.Fatalf("requeue failed: %v", err)
	}

	size, err := store.Size()
	if err != nil {
		t.Fatalf("size failed: %v", err)
	}
	if size != 1 {
		t.Fatalf("requeue must move the item, not copy or drop it, size=%d", size)
	}
}
