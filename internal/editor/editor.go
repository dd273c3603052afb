// Package editor hands a note to an external editor process and classifies
// how that process ended.
package editor

import (
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	ErrLaunchFailed = errors.New("editor failed to launch")
	ErrAbnormalExit = errors.New("editor exited abnormally")
)

// Shell exit codes for "not executable" and "command not found".
const (
	exitNotExecutable = 126
	exitNotFound      = 127
)

// Error reports a handoff that did not end cleanly. Code is the editor's exit
// code, or -1 when it never ran.
type Error struct {
	Path string
	Kind error
	Code int
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%v for %s: %v", e.Kind, e.Path, e.Err)
	case e.Code >= 0:
		return fmt.Sprintf("%v for %s (exit %d)", e.Kind, e.Path, e.Code)
	default:
		return fmt.Sprintf("%v for %s", e.Kind, e.Path)
	}
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Stdio carries the terminal streams the editor should inherit. Block makes
// Launch wait for the editor even when its template sets wait: false.
type Stdio struct {
	In    io.Reader
	Out   io.Writer
	Err   io.Writer
	Block bool
}

// DefaultStdio is the process's own terminal.
func DefaultStdio() Stdio {
	return Stdio{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// Launcher opens path in an editor and blocks until the editor exits. A
// non-nil error means the editor could not be started; otherwise exitCode is
// whatever the process returned.
type Launcher interface {
	Launch(path string, stdio Stdio) (exitCode int, err error)
}

// LauncherFunc adapts a function to Launcher.
type LauncherFunc func(path string, stdio Stdio) (int, error)

func (f LauncherFunc) Launch(path string, stdio Stdio) (int, error) {
	return f(path, stdio)
}

// Classify turns a launch result into nil, ErrLaunchFailed or
// ErrAbnormalExit.
func Classify(path string, code int, err error) error {
	switch {
	case err != nil:
		return &Error{Path: path, Kind: ErrLaunchFailed, Code: -1, Err: err}
	case code == exitNotExecutable || code == exitNotFound:
		return &Error{Path: path, Kind: ErrLaunchFailed, Code: code}
	case code != 0:
		return &Error{Path: path, Kind: ErrAbnormalExit, Code: code}
	}
	return nil
}

// Open runs the launcher against the process terminal. It is meant for
// callers that do not own a bubbletea program.
func Open(l Launcher, path string) error {
	code, err := l.Launch(path, DefaultStdio())
	return Classify(path, code, err)
}
