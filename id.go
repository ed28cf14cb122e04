package mutationq

import (
	"fmt"

	"github.com/google/uuid"
)

// IDGenerator creates new entry identifiers.
type IDGenerator interface {
	// New returns a new identifier.
	New() (string, error)
}

// UUIDv7Generator produces time-ordered UUID v7 identifiers.
type UUIDv7Generator struct{}

// NewUUIDv7Generator creates a UUID v7 generator.
func NewUUIDv7Generator() UUIDv7Generator {
	return UUIDv7Generator{}
}

// New creates a new UUID v7 identifier in canonical text form.
func (UUIDv7Generator) New() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("mutationq: generate id failed: %w", err)
	}

	return id.String(), nil
}

// IDGeneratorFunc adapts a function to IDGenerator.
type IDGeneratorFunc func() (string, error)

// New implements IDGenerator.
func (fn IDGeneratorFunc) New() (string, error) {
	return fn()
}
