package feed

import (
	"testing"
	"time"

	"github.com/loanleads/backoffice/domain"
)

func TestChannelNaming(t *testing.T) {
	if ChannelAll != "feed:messages" {
		t.Fatalf("unexpected global channel: %s", ChannelAll)
	}
	if got := ChannelFor("919876543210"); got != "feed:messages:919876543210" {
		t.Fatalf("unexpected conversation channel: %s", got)
	}
}

func TestDispatchRoutesByOp(t *testing.T) {
	var inserts, updates, deletes int
	handlers := Handlers{
		OnInsert: func(Change) { inserts++ },
		OnUpdate: func(Change) { updates++ },
		OnDelete: func(Change) { deletes++ },
	}

	handlers.dispatch(Change{Op: OpInsert})
	handlers.dispatch(Change{Op: OpInsert})
	handlers.dispatch(Change{Op: OpUpdate})
	handlers.dispatch(Change{Op: OpDelete})

	if inserts != 2 || updates != 1 || deletes != 1 {
		t.Fatalf("unexpected dispatch counts: %d/%d/%d", inserts, updates, deletes)
	}
}

func TestDispatchSkipsNilHandlers(t *testing.T) {
	var inserts int
	handlers := Handlers{OnInsert: func(Change) { inserts++ }}

	handlers.dispatch(Change{Op: OpUpdate})
	handlers.dispatch(Change{Op: OpDelete})
	handlers.dispatch(Change{Op: OpInsert})

	if inserts != 1 {
		t.Fatalf("unexpected insert count: %d", inserts)
	}
}

func TestChangeSessionKey(t *testing.T) {
	msg := &domain.Message{ID: 1, SessionKey: "919876543210"}

	if got := (Change{Op: OpInsert, New: msg}).SessionKey(); got != "919876543210" {
		t.Fatalf("unexpected session key from new row: %s", got)
	}
	if got := (Change{Op: OpDelete, Old: msg}).SessionKey(); got != "919876543210" {
		t.Fatalf("unexpected session key from old row: %s", got)
	}
	if got := (Change{Op: OpInsert}).SessionKey(); got != "" {
		t.Fatalf("expected empty session key, got %s", got)
	}
}

func TestReconnectPolicyDelays(t *testing.T) {
	if _, retry := ReconnectNone.nextDelay(time.Second, 0); retry {
		t.Fatal("ReconnectNone must never retry")
	}

	d, retry := ReconnectFixed.nextDelay(time.Second, 5)
	if !retry || d != time.Second {
		t.Fatalf("unexpected fixed delay: %v retry=%v", d, retry)
	}

	d0, _ := ReconnectBackoff.nextDelay(time.Second, 0)
	d1, _ := ReconnectBackoff.nextDelay(time.Second, 1)
	d2, _ := ReconnectBackoff.nextDelay(time.Second, 2)
	if d0 != time.Second || d1 != 2*time.Second || d2 != 4*time.Second {
		t.Fatalf("unexpected backoff progression: %v %v %v", d0, d1, d2)
	}

	capped, _ := ReconnectBackoff.nextDelay(time.Second, 30)
	if capped != maxBackoff {
		t.Fatalf("backoff not capped: %v", capped)
	}
}
