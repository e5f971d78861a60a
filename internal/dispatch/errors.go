package dispatch

import (
	"errors"
	"fmt"
)

// ErrCodeNotFound is the code carried by NotFoundError.
const ErrCodeNotFound = "ITEM_NOT_FOUND"

// NotFoundError is returned by Dispatch for an unregistered id.
// It is the only error the dispatcher produces.
type NotFoundError struct {
	ID string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: item not found: %s", ErrCodeNotFound, e.ID)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
// Uses errors.As to handle wrapped errors.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
