package mutationq

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDv7GeneratorProducesVersion7(t *testing.T) {
	gen := NewUUIDv7Generator()
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id, err := gen.New()
		if err != nil {
			t.Fatalf("new id: %v", err)
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			t.Fatalf("parse %q: %v", id, err)
		}
		if parsed.Version() != 7 {
			t.Fatalf("expected version 7, got %d", parsed.Version())
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = struct{}{}
	}
}
