package engine

import (
	"errors"
	"fmt"
)

// BinaryNotFoundError means the bundled worker executable could not be located.
type BinaryNotFoundError struct {
	Name    string
	Checked []string
}

func (e *BinaryNotFoundError) Error() string {
	return fmt.Sprintf("engine binary %q not found (checked %v and PATH)", e.Name, e.Checked)
}

// SpawnError means the OS refused to create the worker process.
type SpawnError struct {
	Path string
	Err  error
}

func (e *SpawnError) Error() string { return fmt.Sprintf("spawn %s: %v", e.Path, e.Err) }

func (e *SpawnError) Unwrap() error { return e.Err }

// UnreachableError means the worker's health endpoint did not answer. This is
// expected while the worker is still loading its model.
type UnreachableError struct {
	URL string
	Err error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("engine not responding at %s: %v", e.URL, e.Err)
}

func (e *UnreachableError) Unwrap() error { return e.Err }

// IsBinaryNotFound reports whether err is (or wraps) a BinaryNotFoundError.
func IsBinaryNotFound(err error) bool {
	var e *BinaryNotFoundError
	return errors.As(err, &e)
}

// IsSpawn reports whether err is (or wraps) a SpawnError.
func IsSpawn(err error) bool {
	var e *SpawnError
	return errors.As(err, &e)
}

// IsUnreachable reports whether err is (or wraps) an UnreachableError.
func IsUnreachable(err error) bool {
	var e *UnreachableError
	return errors.As(err, &e)
}
