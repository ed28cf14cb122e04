package mutationq

import "fmt"

// Kind names the operation carried by an entry.
type Kind uint8

const (
	// KindUnknown is the zero value and never valid on a stored entry.
	KindUnknown Kind = iota
	// KindInsert creates a row in a table.
	KindInsert
	// KindUpdate modifies rows matching criteria.
	KindUpdate
	// KindDelete removes rows matching criteria.
	KindDelete
	// KindRPC invokes a remote procedure.
	KindRPC
	// KindFunction invokes a named server-side function.
	KindFunction
	// KindUpload stores a binary blob at a destination path.
	KindUpload
)

var kindNames = [...]string{
	KindUnknown:  "unknown",
	KindInsert:   "insert",
	KindUpdate:   "update",
	KindDelete:   "delete",
	KindRPC:      "rpc",
	KindFunction: "function",
	KindUpload:   "upload",
}

// Kinds lists every valid kind in declaration order.
func Kinds() []Kind {
	return []Kind{KindInsert, KindUpdate, KindDelete, KindRPC, KindFunction, KindUpload}
}

// String returns the lower-case kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}

	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Valid reports whether k is one of the six operation kinds.
func (k Kind) Valid() bool {
	return k > KindUnknown && k <= KindUpload
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, k)
	}

	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed

	return nil
}

// ParseKind parses a kind name as produced by Kind.String.
func ParseKind(name string) (Kind, error) {
	for _, k := range Kinds() {
		if kindNames[k] == name {
			return k, nil
		}
	}

	return KindUnknown, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}
