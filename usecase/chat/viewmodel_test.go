package chat

import (
	"testing"
	"time"

	"github.com/loanleads/backoffice/domain"
	"github.com/loanleads/backoffice/internal/services/feed"
)

func msg(id int64, ts time.Time) domain.Message {
	return domain.Message{
		ID:         id,
		SessionKey: "919876543210",
		Direction:  domain.DirectionCustomer,
		Body:       "hello",
		Timestamp:  ts,
	}
}

var base = time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

func TestApplyInsertDeduplicatesByID(t *testing.T) {
	var list []domain.Message
	list = ApplyInsert(list, msg(42, base))
	list = ApplyInsert(list, msg(42, base))

	if len(list) != 1 {
		t.Fatalf("expected one entry for id 42, got %d", len(list))
	}
}

func TestApplyInsertSortsOutOfOrderArrivals(t *testing.T) {
	var list []domain.Message
	list = ApplyInsert(list, msg(3, base.Add(2*time.Minute)))
	list = ApplyInsert(list, msg(1, base))
	list = ApplyInsert(list, msg(2, base.Add(time.Minute)))

	for i, want := range []int64{1, 2, 3} {
		if list[i].ID != want {
			t.Fatalf("position %d: got id %d, want %d", i, list[i].ID, want)
		}
	}
}

func TestApplyInsertTieBreaksByID(t *testing.T) {
	var list []domain.Message
	list = ApplyInsert(list, msg(7, base))
	list = ApplyInsert(list, msg(5, base))

	if list[0].ID != 5 || list[1].ID != 7 {
		t.Fatalf("equal timestamps must order by id: got %d, %d", list[0].ID, list[1].ID)
	}
}

func TestApplyUpdatePatchesWithoutDuplicating(t *testing.T) {
	list := []domain.Message{msg(1, base), msg(2, base.Add(time.Minute))}

	updated := msg(1, base)
	updated.Body = "edited"
	list = ApplyUpdate(list, updated)

	if len(list) != 2 {
		t.Fatalf("update must not change length, got %d", len(list))
	}
	if list[0].Body != "edited" {
		t.Fatalf("update not reflected: %s", list[0].Body)
	}
}

func TestApplyDelete(t *testing.T) {
	list := []domain.Message{msg(1, base), msg(2, base.Add(time.Minute))}
	list = ApplyDelete(list, 1)

	if len(list) != 1 || list[0].ID != 2 {
		t.Fatalf("unexpected list after delete: %+v", list)
	}
}

func TestMergeHistoryDedupsAgainstEarlyEvents(t *testing.T) {
	// A live event for id 3 arrives before the history fetch resolves;
	// the fetch response also contains id 3.
	live := ApplyInsert(nil, msg(3, base.Add(2*time.Minute)))
	history := []domain.Message{
		msg(1, base),
		msg(2, base.Add(time.Minute)),
		msg(3, base.Add(2*time.Minute)),
	}

	merged := MergeHistory(live, history)
	if len(merged) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(merged))
	}
	seen := map[int64]int{}
	for _, m := range merged {
		seen[m.ID]++
	}
	for id, n := range seen {
		if n != 1 {
			t.Fatalf("id %d appears %d times", id, n)
		}
	}
}

func TestViewStoreStaleResponseRejection(t *testing.T) {
	store := NewViewStore()
	store.Select("B")
	store.ApplyHistory("B", []domain.Message{msg(10, base)})

	// Conversation A's fetch resolves after the user switched to B.
	stale := []domain.Message{{ID: 99, SessionKey: "A", Timestamp: base}}
	store.ApplyHistory("A", stale)

	key, current := store.Current()
	if key != "B" {
		t.Fatalf("unexpected selection: %s", key)
	}
	if len(current) != 1 || current[0].ID != 10 {
		t.Fatalf("stale response overwrote displayed state: %+v", current)
	}
	if got := store.Messages("A"); len(got) != 1 || got[0].ID != 99 {
		t.Fatalf("stale response should still land in its own entry: %+v", got)
	}
}

func TestViewStoreApplyChange(t *testing.T) {
	store := NewViewStore()
	first := msg(1, base)
	second := msg(2, base.Add(time.Minute))

	store.ApplyChange(feed.Change{Op: feed.OpInsert, New: &first})
	store.ApplyChange(feed.Change{Op: feed.OpInsert, New: &second})
	store.ApplyChange(feed.Change{Op: feed.OpInsert, New: &second}) // duplicate delivery

	list := store.Messages("919876543210")
	if len(list) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(list))
	}

	edited := second
	edited.Body = "edited"
	store.ApplyChange(feed.Change{Op: feed.OpUpdate, New: &edited})
	list = store.Messages("919876543210")
	if list[1].Body != "edited" {
		t.Fatalf("update not applied: %+v", list[1])
	}

	store.ApplyChange(feed.Change{Op: feed.OpDelete, Old: &first})
	list = store.Messages("919876543210")
	if len(list) != 1 || list[0].ID != 2 {
		t.Fatalf("unexpected list after delete: %+v", list)
	}
}
