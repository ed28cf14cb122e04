package mutationq

import (
	"encoding/json"
	"fmt"
)

// Operation is one pending mutation. The set of implementations is closed:
// Insert, Update, Delete, RPC, FunctionCall and Upload.
type Operation interface {
	// Kind reports which of the six operation kinds this is.
	Kind() Kind
	validate(validateJSON bool) error
}

// Insert creates a row in Table.
type Insert struct {
	Table   string          `json:"table"`
	Payload json.RawMessage `json:"payload"`
}

// Update writes Payload to the rows of Table selected by Match.
type Update struct {
	Table   string          `json:"table"`
	Match   json.RawMessage `json:"match"`
	Payload json.RawMessage `json:"payload"`
}

// Delete removes the rows of Table selected by Match.
type Delete struct {
	Table string          `json:"table"`
	Match json.RawMessage `json:"match"`
}

// RPC calls a remote procedure with an argument bag.
type RPC struct {
	Procedure string          `json:"procedure"`
	Args      json.RawMessage `json:"args,omitempty"`
}

// FunctionCall invokes a named server-side function with an arbitrary body.
// It is kept apart from RPC so processors can route it through a different backend path.
type FunctionCall struct {
	Function string          `json:"function"`
	Body     json.RawMessage `json:"body,omitempty"`
}

// UploadOptions are passed through to the remote storage call.
type UploadOptions struct {
	ContentType  string `json:"content_type,omitempty"`
	CacheControl string `json:"cache_control,omitempty"`
	Upsert       bool   `json:"upsert,omitempty"`
}

// Upload stores the blob referenced by BlobID at Path inside Bucket.
// The bytes themselves live in a BlobStore, never in the entry.
type Upload struct {
	Bucket  string        `json:"bucket"`
	Path    string        `json:"path"`
	BlobID  string        `json:"blob_id"`
	Options UploadOptions `json:"options"`
}

// Kind implements Operation.
func (Insert) Kind() Kind { return KindInsert }

// Kind implements Operation.
func (Update) Kind() Kind { return KindUpdate }

// Kind implements Operation.
func (Delete) Kind() Kind { return KindDelete }

// Kind implements Operation.
func (RPC) Kind() Kind { return KindRPC }

// Kind implements Operation.
func (FunctionCall) Kind() Kind { return KindFunction }

// Kind implements Operation.
func (Upload) Kind() Kind { return KindUpload }

func (op Insert) validate(validateJSON bool) error {
	if op.Table == "" {
		return ErrTableRequired
	}

	return requireJSON("payload", op.Payload, ErrPayloadRequired, validateJSON)
}

func (op Update) validate(validateJSON bool) error {
	if op.Table == "" {
		return ErrTableRequired
	}
	if err := requireJSON("match", op.Match, ErrMatchRequired, validateJSON); err != nil {
		return err
	}

	return requireJSON("payload", op.Payload, ErrPayloadRequired, validateJSON)
}

func (op Delete) validate(validateJSON bool) error {
	if op.Table == "" {
		return ErrTableRequired
	}

	return requireJSON("match", op.Match, ErrMatchRequired, validateJSON)
}

func (op RPC) validate(validateJSON bool) error {
	if op.Procedure == "" {
		return ErrProcedureRequired
	}

	return optionalJSON("args", op.Args, validateJSON)
}

func (op FunctionCall) validate(validateJSON bool) error {
	if op.Function == "" {
		return ErrFunctionRequired
	}

	return optionalJSON("body", op.Body, validateJSON)
}

func (op Upload) validate(bool) error {
	if op.Bucket == "" {
		return ErrBucketRequired
	}
	if op.Path == "" {
		return ErrPathRequired
	}
	if op.BlobID == "" {
		return ErrBlobIDRequired
	}

	return nil
}

// ValidateOperation checks the fields required by the operation's kind.
// With validateJSON set, every non-empty opaque field must also be valid JSON.
func ValidateOperation(op Operation, validateJSON bool) error {
	op, err := normalizeOperation(op)
	if err != nil {
		return err
	}

	return op.validate(validateJSON)
}

// normalizeOperation dereferences pointer operations so stored entries and
// processors only ever see value types.
func normalizeOperation(op Operation) (Operation, error) {
	switch v := op.(type) {
	case nil:
		return nil, ErrOperationRequired
	case Insert, Update, Delete, RPC, FunctionCall, Upload:
		return v, nil
	case *Insert:
		if v == nil {
			return nil, ErrOperationRequired
		}
		return *v, nil
	case *Update:
		if v == nil {
			return nil, ErrOperationRequired
		}
		return *v, nil
	case *Delete:
		if v == nil {
			return nil, ErrOperationRequired
		}
		return *v, nil
	case *RPC:
		if v == nil {
			return nil, ErrOperationRequired
		}
		return *v, nil
	case *FunctionCall:
		if v == nil {
			return nil, ErrOperationRequired
		}
		return *v, nil
	case *Upload:
		if v == nil {
			return nil, ErrOperationRequired
		}
		return *v, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownKind, op)
	}
}

func requireJSON(field string, raw json.RawMessage, missing error, validateJSON bool) error {
	if len(raw) == 0 {
		return missing
	}

	return optionalJSON(field, raw, validateJSON)
}

func optionalJSON(field string, raw json.RawMessage, validateJSON bool) error {
	if !validateJSON || len(raw) == 0 {
		return nil
	}
	if !json.Valid(raw) {
		return fmt.Errorf("%w: %s", ErrInvalidJSON, field)
	}

	return nil
}
