package mutationq

import (
	"encoding/json"
	"fmt"
	"time"

	gojson "github.com/goccy/go-json"
)

// envelope is the persisted form of an Entry.
type envelope struct {
	ID        string          `json:"id"`
	Seq       uint64          `json:"seq"`
	CreatedAt time.Time       `json:"created_at"`
	Kind      string          `json:"kind"`
	Op        json.RawMessage `json:"op"`
}

// EncodeEntry serializes an entry into its stored record form.
func EncodeEntry(entry Entry) ([]byte, error) {
	op, err := normalizeOperation(entry.Op)
	if err != nil {
		return nil, err
	}
	body, err := gojson.Marshal(op)
	if err != nil {
		return nil, fmt.Errorf("mutationq: encode %s operation: %w", op.Kind(), err)
	}

	data, err := gojson.Marshal(envelope{
		ID:        entry.ID,
		Seq:       entry.Seq,
		CreatedAt: entry.CreatedAt,
		Kind:      op.Kind().String(),
		Op:        body,
	})
	if err != nil {
		return nil, fmt.Errorf("mutationq: encode entry %s: %w", entry.ID, err)
	}

	return data, nil
}

// DecodeEntry parses a stored record. Unknown kinds fail with ErrUnknownKind,
// anything else unreadable with ErrCorruptRecord.
func DecodeEntry(data []byte) (Entry, error) {
	var env envelope
	if err := gojson.Unmarshal(data, &env); err != nil {
		return Entry{}, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	if env.ID == "" {
		return Entry{}, fmt.Errorf("%w: missing id", ErrCorruptRecord)
	}

	kind, err := ParseKind(env.Kind)
	if err != nil {
		return Entry{}, fmt.Errorf("entry %s: %w", env.ID, err)
	}
	op, err := decodeOperation(kind, env.Op)
	if err != nil {
		return Entry{}, fmt.Errorf("entry %s: %w", env.ID, err)
	}

	return Entry{
		ID:        env.ID,
		Seq:       env.Seq,
		CreatedAt: env.CreatedAt,
		Op:        op,
	}, nil
}

func decodeOperation(kind Kind, body json.RawMessage) (Operation, error) {
	switch kind {
	case KindInsert:
		return decodeAs[Insert](body)
	case KindUpdate:
		return decodeAs[Update](body)
	case KindDelete:
		return decodeAs[Delete](body)
	case KindRPC:
		return decodeAs[RPC](body)
	case KindFunction:
		return decodeAs[FunctionCall](body)
	case KindUpload:
		return decodeAs[Upload](body)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
}

func decodeAs[T Operation](body json.RawMessage) (Operation, error) {
	var op T
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: missing operation body", ErrCorruptRecord)
	}
	if err := gojson.Unmarshal(body, &op); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}

	return op, nil
}
