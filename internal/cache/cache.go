// Package cache holds the in-process view caches keyed by conversation
// session key. Entries are written only by fetch completion and read by
// the console endpoints; assignment mutations invalidate the affected
// keys so subsequent reads reflect the new owner.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/loanleads/backoffice/domain"
)

const conversationListKey = "conversations"

type ViewCache struct {
	leads         *gocache.Cache
	conversations *gocache.Cache
}

func New(ttl time.Duration) *ViewCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ViewCache{
		leads:         gocache.New(ttl, 2*ttl),
		conversations: gocache.New(ttl, 2*ttl),
	}
}

func (c *ViewCache) LeadInfo(sessionKey string) (*domain.Lead, bool) {
	if v, ok := c.leads.Get(sessionKey); ok {
		lead := v.(domain.Lead)
		return &lead, true
	}
	return nil, false
}

func (c *ViewCache) SetLeadInfo(sessionKey string, lead domain.Lead) {
	c.leads.SetDefault(sessionKey, lead)
}

func (c *ViewCache) ConversationList() ([]domain.Conversation, bool) {
	if v, ok := c.conversations.Get(conversationListKey); ok {
		return v.([]domain.Conversation), true
	}
	return nil, false
}

func (c *ViewCache) SetConversationList(list []domain.Conversation) {
	c.conversations.SetDefault(conversationListKey, list)
}

// InvalidateConversation drops the cached list and the lead info for one
// conversation, typically after an assignment mutation.
func (c *ViewCache) InvalidateConversation(sessionKey string) {
	c.conversations.Delete(conversationListKey)
	c.leads.Delete(sessionKey)
}
