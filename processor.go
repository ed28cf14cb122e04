package mutationq

import (
	"context"
	"fmt"
)

// Processor replays one entry against the remote backend.
// A nil error means the entry reached the backend and may be removed.
type Processor interface {
	// Process replays a single entry.
	Process(ctx context.Context, entry Entry) error
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx context.Context, entry Entry) error

// Process implements Processor.
func (fn ProcessorFunc) Process(ctx context.Context, entry Entry) error {
	return fn(ctx, entry)
}

// BoolProcessor adapts a success/failure function to Processor.
// A false result is reported as ErrProcessorRejected.
type BoolProcessor func(ctx context.Context, entry Entry) bool

// Process implements Processor.
func (fn BoolProcessor) Process(ctx context.Context, entry Entry) error {
	if !fn(ctx, entry) {
		return ErrProcessorRejected
	}

	return nil
}

// Dispatcher routes each entry to the handler for its kind.
// A kind without a handler fails with ErrNoHandler, which halts a drain.
type Dispatcher struct {
	Insert       func(ctx context.Context, entry Entry, op Insert) error
	Update       func(ctx context.Context, entry Entry, op Update) error
	Delete       func(ctx context.Context, entry Entry, op Delete) error
	RPC          func(ctx context.Context, entry Entry, op RPC) error
	FunctionCall func(ctx context.Context, entry Entry, op FunctionCall) error
	Upload       func(ctx context.Context, entry Entry, op Upload) error
}

// Process implements Processor.
func (d Dispatcher) Process(ctx context.Context, entry Entry) error {
	switch op := entry.Op.(type) {
	case Insert:
		if d.Insert == nil {
			return noHandler(op)
		}
		return d.Insert(ctx, entry, op)
	case Update:
		if d.Update == nil {
			return noHandler(op)
		}
		return d.Update(ctx, entry, op)
	case Delete:
		if d.Delete == nil {
			return noHandler(op)
		}
		return d.Delete(ctx, entry, op)
	case RPC:
		if d.RPC == nil {
			return noHandler(op)
		}
		return d.RPC(ctx, entry, op)
	case FunctionCall:
		if d.FunctionCall == nil {
			return noHandler(op)
		}
		return d.FunctionCall(ctx, entry, op)
	case Upload:
		if d.Upload == nil {
			return noHandler(op)
		}
		return d.Upload(ctx, entry, op)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownKind, entry.Op)
	}
}

func noHandler(op Operation) error {
	return fmt.Errorf("%w: %s", ErrNoHandler, op.Kind())
}
