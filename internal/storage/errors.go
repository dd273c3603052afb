package storage

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrPermission   = errors.New("permission denied")
	ErrNameConflict = errors.New("name already exists")
	ErrInvalidName  = errors.New("invalid name")
)

// Error describes a failed storage operation. Kind is one of the sentinel
// errors above, so callers can match with errors.Is.
type Error struct {
	Op   string
	Path string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil && !errors.Is(e.Err, e.Kind) {
		return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Kind)
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

// wrapFS maps filesystem errors onto storage kinds. Errors that do not map
// are returned wrapped with the operation but without a kind.
func wrapFS(op, path string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, fs.ErrNotExist):
		return &Error{Op: op, Path: path, Kind: ErrNotFound, Err: err}
	case errors.Is(err, fs.ErrPermission):
		return &Error{Op: op, Path: path, Kind: ErrPermission, Err: err}
	case errors.Is(err, fs.ErrExist):
		return &Error{Op: op, Path: path, Kind: ErrNameConflict, Err: err}
	}

	return fmt.Errorf("%s %s: %w", op, path, err)
}
