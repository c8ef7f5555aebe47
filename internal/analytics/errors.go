package analytics

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation indicates a malformed or out-of-range event field. The
	// record is left untouched when this is returned.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates a referenced entity does not exist. Referential
	// checks happen in the calling layer; this sentinel lets callers surface
	// them through the same taxonomy.
	ErrNotFound = errors.New("not found")

	// ErrStateInconsistency indicates a derived-state invariant was violated
	// (e.g. current streak exceeding longest). The triggering update must be
	// rejected rather than persisted.
	ErrStateInconsistency = errors.New("state inconsistency")
)

func validationErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
