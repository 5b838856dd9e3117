package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFileNotFound is returned when the input dataset does not exist.
	ErrFileNotFound = errors.New("dataset file not found")

	// ErrMissingVariable is matched by every *MissingVariableError.
	ErrMissingVariable = errors.New("missing variable")

	// ErrShapeMismatch is returned when coordinate and data arrays disagree.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrUnsupportedType is returned for variables that are not numeric arrays.
	ErrUnsupportedType = errors.New("unsupported variable type")

	// ErrTimeIndexOutOfRange is returned when the requested time slice does not exist.
	ErrTimeIndexOutOfRange = errors.New("time index out of range")
)

// MissingVariableError names a variable that is absent from a dataset.
type MissingVariableError struct {
	Name      string
	Available []string
}

func (e *MissingVariableError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("missing variable %q", e.Name)
	}
	return fmt.Sprintf("missing variable %q (available: %s)", e.Name, strings.Join(e.Available, ", "))
}

// Is reports ErrMissingVariable as a match so callers can use errors.Is.
func (e *MissingVariableError) Is(target error) bool {
	return target == ErrMissingVariable
}
