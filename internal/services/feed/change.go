package feed

import (
	"time"

	"github.com/loanleads/backoffice/domain"
)

// Op identifies a row-level change kind.
type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Change is the raw row-change payload delivered to subscribers. No
// transformation happens at this layer; handlers receive the rows as the
// backend emitted them.
type Change struct {
	Op  Op              `json:"op"`
	New *domain.Message `json:"new,omitempty"`
	Old *domain.Message `json:"old,omitempty"`
}

// SessionKey returns the conversation the change belongs to.
func (c Change) SessionKey() string {
	if c.New != nil {
		return c.New.SessionKey
	}
	if c.Old != nil {
		return c.Old.SessionKey
	}
	return ""
}

// Handlers holds the per-op callbacks of a subscription. Nil handlers
// are skipped.
type Handlers struct {
	OnInsert func(Change)
	OnUpdate func(Change)
	OnDelete func(Change)
}

func (h Handlers) dispatch(c Change) {
	switch c.Op {
	case OpInsert:
		if h.OnInsert != nil {
			h.OnInsert(c)
		}
	case OpUpdate:
		if h.OnUpdate != nil {
			h.OnUpdate(c)
		}
	case OpDelete:
		if h.OnDelete != nil {
			h.OnDelete(c)
		}
	}
}

// ReconnectPolicy controls what a subscription does when the underlying
// channel errors out. The baseline is ReconnectNone: log, mark the
// subscription failed, and stop; callers re-subscribe manually (for
// example on the next screen focus).
type ReconnectPolicy int

const (
	ReconnectNone ReconnectPolicy = iota
	ReconnectFixed
	ReconnectBackoff
)

const (
	defaultRetryInterval = 2 * time.Second
	maxBackoff           = time.Minute
)

// nextDelay returns the wait before the attempt-th reconnect (attempt
// starts at 0), or false when the policy does not allow reconnecting.
func (p ReconnectPolicy) nextDelay(interval time.Duration, attempt int) (time.Duration, bool) {
	if interval <= 0 {
		interval = defaultRetryInterval
	}
	switch p {
	case ReconnectFixed:
		return interval, true
	case ReconnectBackoff:
		d := interval << attempt
		if d > maxBackoff || d <= 0 {
			d = maxBackoff
		}
		return d, true
	default:
		return 0, false
	}
}

// ChannelAll is the pub/sub channel carrying every message-table change.
const ChannelAll = "feed:messages"

// ChannelFor returns the per-conversation pub/sub channel.
func ChannelFor(sessionKey string) string {
	return ChannelAll + ":" + sessionKey
}
