package postgres

import (
	"os"
	"regexp"
	"testing"
)

// The conversation list treats "unassigned" as assigned_agent IS NULL.
// The schema must keep the column nullable: a NOT NULL DEFAULT ''
// column would make the unassigned view permanently empty, since Touch
// inserts never set the agent.
func TestUnassignedConversationSchemaContract(t *testing.T) {
	schema, err := os.ReadFile("../../assets/migrations/000001_init.up.sql")
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}

	column := regexp.MustCompile(`assigned_agent\s+TEXT([^,\n]*)`).FindSubmatch(schema)
	if column == nil {
		t.Fatalf("assigned_agent column not found in schema")
	}
	if regexp.MustCompile(`(?i)NOT\s+NULL`).Match(column[1]) {
		t.Fatalf("assigned_agent must be nullable for the unassigned filter, got %q", column[1])
	}
}
