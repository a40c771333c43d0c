package chat

import (
	"sort"
	"sync"

	"github.com/loanleads/backoffice/domain"
	"github.com/loanleads/backoffice/internal/services/feed"
)

// ApplyInsert merges one message into an ordered timeline. Delivery is
// at-least-once, so an id already present is a duplicate and the list is
// returned unchanged. Events usually arrive in order but the merge never
// assumes it: the result is always sorted ascending by (timestamp, id).
func ApplyInsert(list []domain.Message, msg domain.Message) []domain.Message {
	for _, existing := range list {
		if existing.ID == msg.ID {
			return list
		}
	}
	merged := append(append([]domain.Message(nil), list...), msg)
	sortTimeline(merged)
	return merged
}

// ApplyUpdate patches the matching id in place. A miss leaves the list
// unchanged; the row will appear on the next insert event or refetch.
func ApplyUpdate(list []domain.Message, msg domain.Message) []domain.Message {
	for i, existing := range list {
		if existing.ID == msg.ID {
			patched := append([]domain.Message(nil), list...)
			patched[i] = msg
			sortTimeline(patched)
			return patched
		}
	}
	return list
}

// ApplyDelete removes the matching id.
func ApplyDelete(list []domain.Message, id int64) []domain.Message {
	for i, existing := range list {
		if existing.ID == id {
			trimmed := append([]domain.Message(nil), list[:i]...)
			return append(trimmed, list[i+1:]...)
		}
	}
	return list
}

// MergeHistory folds a full history fetch into whatever events already
// arrived. The fetch and the live feed race; dedup by id resolves the
// overlap in either direction.
func MergeHistory(list, history []domain.Message) []domain.Message {
	merged := list
	for _, msg := range history {
		merged = ApplyInsert(merged, msg)
	}
	return merged
}

func sortTimeline(list []domain.Message) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Before(list[j])
	})
}

// ViewStore holds the per-conversation timelines, keyed by canonical
// session key. Keying by conversation is what discards stale responses:
// a late history fetch for conversation A lands in A's entry and can
// never clobber the currently selected conversation B.
type ViewStore struct {
	mu        sync.Mutex
	current   string
	timelines map[string][]domain.Message
}

func NewViewStore() *ViewStore {
	return &ViewStore{timelines: make(map[string][]domain.Message)}
}

// Select switches the currently displayed conversation.
func (s *ViewStore) Select(sessionKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = sessionKey
}

// Current returns the selected key and its timeline.
func (s *ViewStore) Current() (string, []domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.timelines[s.current]
}

// Messages returns the timeline for one conversation.
func (s *ViewStore) Messages(sessionKey string) []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timelines[sessionKey]
}

// ApplyHistory merges a completed history fetch into the keyed entry.
// It merges rather than overwrites, so feed events that won the race are
// kept.
func (s *ViewStore) ApplyHistory(sessionKey string, history []domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timelines[sessionKey] = MergeHistory(s.timelines[sessionKey], history)
}

// ApplyChange folds one feed event into the owning conversation's entry.
func (s *ViewStore) ApplyChange(change feed.Change) {
	key := change.SessionKey()
	if key == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.timelines[key]
	switch change.Op {
	case feed.OpInsert:
		if change.New != nil {
			list = ApplyInsert(list, *change.New)
		}
	case feed.OpUpdate:
		if change.New != nil {
			list = ApplyUpdate(list, *change.New)
		}
	case feed.OpDelete:
		if change.Old != nil {
			list = ApplyDelete(list, change.Old.ID)
		}
	}
	s.timelines[key] = list
}
