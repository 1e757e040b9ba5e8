package runner

import (
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
)

// ErrResource is wrapped by failures to create the output pipes
var ErrResource = errors.New("could not allocate output pipes")

type (
	// SpawnError means the child could not be started at all
	SpawnError struct {
		Argv []string
		Err  error
	}
	// WaitError means the child's exit status could not be obtained
	WaitError struct {
		Err error
	}
	// DrainError means copying the child's output failed. The child ran to
	// completion and Code holds its exit code.
	DrainError struct {
		Code int
		Err  error
	}
)

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start %v: %v", strings.Join(e.Argv, " "), e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// ExitCode follows the shell convention: 127 when the program does not
// exist, 126 when it cannot be executed.
func (e *SpawnError) ExitCode() int {
	switch {
	case errors.Is(e.Err, exec.ErrNotFound), errors.Is(e.Err, fs.ErrNotExist):
		return 127
	case errors.Is(e.Err, fs.ErrPermission):
		return 126
	default:
		return 1
	}
}

func (e *WaitError) Error() string { return fmt.Sprintf("failed to wait for child: %v", e.Err) }

func (e *WaitError) Unwrap() error { return e.Err }

// ExitCode is always 1, there is no child status to report
func (e *WaitError) ExitCode() int { return 1 }

func (e *DrainError) Error() string { return fmt.Sprintf("failed to copy child output: %v", e.Err) }

func (e *DrainError) Unwrap() error { return e.Err }

// ExitCode is the child's code unless that would signal success
func (e *DrainError) ExitCode() int {
	if e.Code != 0 {
		return e.Code
	}
	return 1
}
