package mysql

import (
	"strings"
	"testing"
)

func TestSanitizeTableName(t *testing.T) {
	valid := []string{"mutationq_entries", "app.mutationq_entries", "ENTRIES_1"}
	for _, name := range valid {
		if _, err := sanitizeTableName(name); err != nil {
			t.Fatalf("expected valid name %q: %v", name, err)
		}
	}

	invalid := []string{"", "entries;drop", "entries-1", "app..entries", "app.entries;"}
	for _, name := range invalid {
		if _, err := sanitizeTableName(name); err == nil {
			t.Fatalf("expected invalid name %q", name)
		}
	}
}

func TestLockNameScopedAndTrimmed(t *testing.T) {
	if got := lockName("entries", "mutationq:drain"); got != "mutationq:drain:entries" {
		t.Fatalf("unexpected lock name %q", got)
	}
	long := lockName(strings.Repeat("t", 80), "mutationq:drain")
	if len(long) != maxLockNameLen {
		t.Fatalf("expected lock name trimmed to %d, got %d", maxLockNameLen, len(long))
	}
}
