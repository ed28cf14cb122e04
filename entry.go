package mutationq

import (
	"cmp"
	"time"
)

// Entry is a captured mutation waiting to be replayed.
type Entry struct {
	// ID is unique for the lifetime of the queue and doubles as the store key.
	ID string
	// Seq is a per-queue counter that breaks CreatedAt ties in enqueue order.
	Seq uint64
	// CreatedAt is stamped at enqueue time and is the primary ordering key.
	CreatedAt time.Time
	// Op is the mutation itself.
	Op Operation
}

// Kind returns the kind of the entry's operation.
func (e Entry) Kind() Kind {
	if e.Op == nil {
		return KindUnknown
	}

	return e.Op.Kind()
}

// compareEntries orders by CreatedAt, then Seq, then ID so the order is total.
func compareEntries(a, b Entry) int {
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Seq, b.Seq); c != 0 {
		return c
	}

	return cmp.Compare(a.ID, b.ID)
}
