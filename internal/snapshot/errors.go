package snapshot

import (
	"errors"
	"fmt"
)

var (
	// ErrPath reports a root path that does not exist or is not a directory.
	ErrPath = errors.New("invalid snapshot root")
	// ErrRead reports a directory whose contents could not be enumerated.
	ErrRead = errors.New("directory read failed")
	// ErrWrite reports an output sink that could not be created or written.
	ErrWrite = errors.New("snapshot write failed")
)

// Error carries the failing path together with one of ErrPath, ErrRead or ErrWrite.
type Error struct {
	Kind error
	Path string
	Err  error
}

// NewError wraps cause with the given kind for path.
func NewError(kind error, failingPath string, cause error) *Error {
	return &Error{Kind: kind, Path: failingPath, Err: cause}
}

func (snapshotError *Error) Error() string {
	if snapshotError.Err == nil {
		return fmt.Sprintf("%v: %s", snapshotError.Kind, snapshotError.Path)
	}
	return fmt.Sprintf("%v: %s: %v", snapshotError.Kind, snapshotError.Path, snapshotError.Err)
}

// Is matches the error kind so callers can test errors.Is(err, ErrRead).
func (snapshotError *Error) Is(target error) bool {
	return target == snapshotError.Kind
}

func (snapshotError *Error) Unwrap() error {
	return snapshotError.Err
}
