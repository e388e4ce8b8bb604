package object

import (
	"errors"
	"fmt"
)

var (
	// ErrNotInitialized is returned when the backing location has not been
	// prepared by init.
	ErrNotInitialized = errors.New("object store not initialized")
	ErrNotFound       = errors.New("object not found")
	ErrCorrupt        = errors.New("corrupt object")
	ErrTypeMismatch   = errors.New("object type mismatch")
	ErrStorageWrite   = errors.New("object storage write failed")
	// ErrInvalidName is returned for tree entry names that cannot be
	// encoded: empty, "." or "..", or containing '/', NUL or newline.
	ErrInvalidName = errors.New("invalid tree entry name")
)

// TypeMismatchError reports an object whose tag is not in the set the caller
// asked for.
type TypeMismatchError struct {
	Hash Hash
	Want []ObjectType
	Got  ObjectType
}

func (e *TypeMismatchError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("object %s: %s: want %s, got %s", e.Hash, ErrTypeMismatch, typeList(e.Want), e.Got)
}

func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}

// WriteError wraps a persistence failure for a single object.
type WriteError struct {
	Op  string
	Key Hash
	Err error
}

func (e *WriteError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("object write %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *WriteError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *WriteError) Is(target error) bool {
	return target == ErrStorageWrite
}
