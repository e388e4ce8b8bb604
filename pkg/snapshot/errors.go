package snapshot

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	ErrRestoreWrite        = errors.New("restore write failed")
	ErrUnsupportedFileType = errors.New("unsupported file type")
)

// RestoreError reports a filesystem failure while materializing a tree.
type RestoreError struct {
	Path string
	Err  error
}

func (e *RestoreError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("restore %s: %v", e.Path, e.Err)
}

func (e *RestoreError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *RestoreError) Is(target error) bool {
	return target == ErrRestoreWrite
}

// UnsupportedFileTypeError reports a directory entry that is neither a
// regular file nor a directory under the active symlink policy.
type UnsupportedFileTypeError struct {
	Path   string
	Mode   fs.FileMode
	Reason string
}

func (e *UnsupportedFileTypeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("snapshot %s: %s (mode %s)", e.Path, ErrUnsupportedFileType, e.Mode.Type())
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *UnsupportedFileTypeError) Is(target error) bool {
	return target == ErrUnsupportedFileType
}
