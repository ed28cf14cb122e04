package mutationq

import "errors"

var (
	// ErrStoreRequired is returned when a nil KV store is provided.
	ErrStoreRequired = errors.New("mutationq: store is required")
	// ErrProcessorRequired is returned when Drain is called with a nil processor.
	ErrProcessorRequired = errors.New("mutationq: processor is required")
	// ErrNotFound is returned when a key, entry or blob does not exist.
	ErrNotFound = errors.New("mutationq: not found")
	// ErrOperationRequired is returned when Enqueue is called with a nil operation.
	ErrOperationRequired = errors.New("mutationq: operation is required")
	// ErrTableRequired is returned when an insert, update or delete has no table.
	ErrTableRequired = errors.New("mutationq: table is required")
	// ErrMatchRequired is returned when an update or delete has no match criteria.
	ErrMatchRequired = errors.New("mutationq: match is required")
	// ErrPayloadRequired is returned when an insert or update has no payload.
	ErrPayloadRequired = errors.New("mutationq: payload is required")
	// ErrProcedureRequired is returned when an RPC has no procedure name.
	ErrProcedureRequired = errors.New("mutationq: procedure name is required")
	// ErrFunctionRequired is returned when a function call has no function name.
	ErrFunctionRequired = errors.New("mutationq: function name is required")
	// ErrBucketRequired is returned when an upload has no bucket.
	ErrBucketRequired = errors.New("mutationq: bucket is required")
	// ErrPathRequired is returned when an upload has no destination path.
	ErrPathRequired = errors.New("mutationq: destination path is required")
	// ErrBlobIDRequired is returned when an upload or blob record has no blob id.
	ErrBlobIDRequired = errors.New("mutationq: blob id is required")
	// ErrInvalidJSON is returned when an opaque JSON field is not valid JSON.
	ErrInvalidJSON = errors.New("mutationq: field must be valid JSON")
	// ErrUnknownKind is returned when a record carries an operation kind this version does not know.
	ErrUnknownKind = errors.New("mutationq: unknown operation kind")
	// ErrCorruptRecord is returned when a stored record cannot be decoded.
	ErrCorruptRecord = errors.New("mutationq: corrupt record")
	// ErrDuplicateID is returned when the id generator yields an id that is already pending.
	ErrDuplicateID = errors.New("mutationq: duplicate entry id")
	// ErrDrainInProgress is returned when another drain already holds the queue.
	ErrDrainInProgress = errors.New("mutationq: drain already in progress")
	// ErrProcessorPanic indicates the processor panicked while replaying an entry.
	ErrProcessorPanic = errors.New("mutationq: processor panic")
	// ErrProcessorRejected indicates a boolean processor reported false.
	ErrProcessorRejected = errors.New("mutationq: processor rejected entry")
	// ErrNoHandler indicates a Dispatcher has no handler for the entry's kind.
	ErrNoHandler = errors.New("mutationq: no handler for operation kind")
)
