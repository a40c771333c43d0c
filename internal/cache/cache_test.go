package cache

import (
	"testing"
	"time"

	"github.com/loanleads/backoffice/domain"
)

func TestLeadInfoRoundTrip(t *testing.T) {
	c := New(time.Minute)

	if _, ok := c.LeadInfo("919876543210"); ok {
		t.Fatal("unexpected hit on empty cache")
	}

	c.SetLeadInfo("919876543210", domain.Lead{ID: "lead-1", Name: "A Kumar"})
	lead, ok := c.LeadInfo("919876543210")
	if !ok || lead.ID != "lead-1" {
		t.Fatalf("unexpected cached lead: %+v ok=%v", lead, ok)
	}
}

func TestInvalidateConversationDropsDependentEntries(t *testing.T) {
	c := New(time.Minute)
	c.SetLeadInfo("919876543210", domain.Lead{ID: "lead-1"})
	c.SetLeadInfo("919812345678", domain.Lead{ID: "lead-2"})
	c.SetConversationList([]domain.Conversation{{SessionKey: "919876543210"}})

	c.InvalidateConversation("919876543210")

	if _, ok := c.ConversationList(); ok {
		t.Fatal("conversation list should be invalidated")
	}
	if _, ok := c.LeadInfo("919876543210"); ok {
		t.Fatal("lead info for assigned conversation should be invalidated")
	}
	if _, ok := c.LeadInfo("919812345678"); !ok {
		t.Fatal("unrelated lead info should survive")
	}
}
