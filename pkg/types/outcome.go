package types

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Errors describing why an external command invocation failed.
var (
	// ErrSpawnFailed indicates the child process could not be created or fed its input.
	ErrSpawnFailed = errors.New("command spawn failed")
	// ErrTimedOut indicates the child process exceeded its timeout and was killed.
	ErrTimedOut = errors.New("command timed out")
	// ErrNonZeroExit indicates the child process ran to completion but exited non-zero.
	ErrNonZeroExit = errors.New("command exited with non-zero status")
	// ErrDecodeFailed indicates the command output did not match the expected shape.
	ErrDecodeFailed = errors.New("command output could not be decoded")
)

// ExitStatus classifies how an invocation ended.
type ExitStatus int

const (
	// StatusSuccess means the command exited 0 and its output decoded.
	StatusSuccess ExitStatus = iota
	// StatusNonZeroExit means the command exited with a non-zero code.
	StatusNonZeroExit
	// StatusTimedOut means the command was killed after its timeout.
	StatusTimedOut
	// StatusSpawnFailed means the command never ran or could not receive its input.
	StatusSpawnFailed
	// StatusDecodeFailed means the command succeeded but its output was unusable.
	StatusDecodeFailed
)

// String returns the label used in logs and metrics.
func (s ExitStatus) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusNonZeroExit:
		return "non_zero_exit"
	case StatusTimedOut:
		return "timed_out"
	case StatusSpawnFailed:
		return "spawn_failed"
	case StatusDecodeFailed:
		return "decode_failed"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Sentinel returns the package error matching the status, nil for success.
func (s ExitStatus) Sentinel() error {
	switch s {
	case StatusNonZeroExit:
		return ErrNonZeroExit
	case StatusTimedOut:
		return ErrTimedOut
	case StatusSpawnFailed:
		return ErrSpawnFailed
	case StatusDecodeFailed:
		return ErrDecodeFailed
	case StatusSuccess:
		return nil
	default:
		return nil
	}
}

// Outcome is the result of a single command invocation.
//
// Stdout is only populated for StatusSuccess and StatusNonZeroExit; output of a
// killed command is discarded.
type Outcome struct {
	Status   ExitStatus    // How the invocation ended.
	ExitCode int           // Process exit code, -1 when unknown or signalled.
	Stdout   []byte        // Captured standard output.
	Stderr   []byte        // Captured standard error, diagnostics only.
	Duration time.Duration // Wall-clock time from spawn to return.
	Err      error         // Underlying cause for spawn failures.
}

// Succeeded reports whether the command exited 0.
func (o Outcome) Succeeded() bool {
	return o.Status == StatusSuccess
}

// InvocationError reports a failed invocation with enough context for diagnostics.
type InvocationError struct {
	Status   ExitStatus
	Command  string
	ExitCode int
	Stderr   string
	Err      error
}

// NewInvocationError builds an InvocationError from an outcome.
//
// Parameters:
//   - command: Command that was run.
//   - outcome: Outcome of the run.
//
// Returns:
//   - error: *InvocationError describing the failure, or nil for a successful outcome.
func NewInvocationError(command *Command, outcome Outcome) error {
	if outcome.Succeeded() {
		return nil
	}

	return &InvocationError{
		Status:   outcome.Status,
		Command:  command.Path(),
		ExitCode: outcome.ExitCode,
		Stderr:   strings.TrimSpace(string(outcome.Stderr)),
		Err:      outcome.Err,
	}
}

// Error implements the error interface.
func (e *InvocationError) Error() string {
	var builder strings.Builder

	sentinel := e.Status.Sentinel()
	if sentinel != nil && !errors.Is(e.Err, sentinel) {
		fmt.Fprintf(&builder, "%s: ", sentinel)
	}

	builder.WriteString(e.Command)

	if e.Status == StatusNonZeroExit {
		fmt.Fprintf(&builder, " (exit code %d)", e.ExitCode)
	}

	if e.Err != nil {
		fmt.Fprintf(&builder, ": %v", e.Err)
	}

	if e.Stderr != "" {
		fmt.Fprintf(&builder, ": %s", e.Stderr)
	}

	return builder.String()
}

// Unwrap exposes both the status sentinel and the underlying cause.
func (e *InvocationError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if sentinel := e.Status.Sentinel(); sentinel != nil {
		errs = append(errs, sentinel)
	}

	if e.Err != nil {
		errs = append(errs, e.Err)
	}

	return errs
}

// StatusOf extracts the exit status carried by err.
//
// Returns:
//   - ExitStatus: The status, StatusSuccess when err is nil.
//   - bool: False if err carries no invocation status.
func StatusOf(err error) (ExitStatus, bool) {
	if err == nil {
		return StatusSuccess, true
	}

	var invocationErr *InvocationError
	if errors.As(err, &invocationErr) {
		return invocationErr.Status, true
	}

	for _, status := range []ExitStatus{StatusSpawnFailed, StatusTimedOut, StatusNonZeroExit, StatusDecodeFailed} {
		if errors.Is(err, status.Sentinel()) {
			return status, true
		}
	}

	return StatusSuccess, false
}
