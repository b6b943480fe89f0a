package runner

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/commandhook/pkg/types"
)

// DefaultGracePeriod bounds how long Run waits for a killed command to be reaped.
const DefaultGracePeriod = 500 * time.Millisecond

// DefaultMaxOutputBytes caps how much of each output stream is kept in memory.
const DefaultMaxOutputBytes = 4 << 20

// Option configures a Runner.
type Option func(*Runner)

// WithGracePeriod sets the wait applied after killing a timed out command.
func WithGracePeriod(grace time.Duration) Option {
	return func(r *Runner) {
		if grace > 0 {
			r.gracePeriod = grace
		}
	}
}

// WithMaxOutputBytes sets the per-stream output cap. Extra output is drained and dropped.
func WithMaxOutputBytes(limit int) Option {
	return func(r *Runner) {
		if limit > 0 {
			r.maxOutputBytes = limit
		}
	}
}

// Runner spawns one process per call and never lets it outlive its timeout.
//
// A Runner holds no per-call state and is safe for concurrent use.
type Runner struct {
	gracePeriod    time.Duration
	maxOutputBytes int
}

// New creates a Runner.
func New(opts ...Option) *Runner {
	r := &Runner{
		gracePeriod:    DefaultGracePeriod,
		maxOutputBytes: DefaultMaxOutputBytes,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// GracePeriod returns the post-kill reap wait.
func (r *Runner) GracePeriod() time.Duration {
	return r.gracePeriod
}

// Run executes command with input on its stdin.
//
// The call returns within the command's timeout plus the grace period. A
// command still running at the deadline is killed together with its process
// group and reported as types.StatusTimedOut without output.
//
// Parameters:
//   - command: Command to execute.
//   - input: Payload written to stdin, which is closed afterwards.
//
// Returns:
//   - types.Outcome: Exit status, captured output and timing.
func (r *Runner) Run(command *types.Command, input []byte) types.Outcome {
	start := time.Now()
	clog := logrus.WithFields(logrus.Fields{
		"command": command.Path(),
		"timeout": command.Timeout(),
	})

	cmd := exec.Command(command.Path(), command.Args()...)
	cmd.WaitDelay = r.gracePeriod
	configureProcessGroup(cmd)

	stdout := newCappedBuffer(r.maxOutputBytes)
	stderr := newCappedBuffer(r.maxOutputBytes)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return spawnFailed(start, fmt.Errorf("%w: %w", errStdinPipeFailed, err))
	}

	if err := cmd.Start(); err != nil {
		clog.WithError(err).Debug("Failed to start command")

		return spawnFailed(start, fmt.Errorf("%w: %w", errStartFailed, err))
	}

	clog = clog.WithField("pid", cmd.Process.Pid)
	clog.Debug("Started command")

	timer := time.NewTimer(command.Timeout())
	defer timer.Stop()

	inputDone := make(chan error, 1)

	go func() {
		inputDone <- writeInput(stdin, input)
	}()

	exited := make(chan error, 1)

	go func() {
		exited <- cmd.Wait()
	}()

	select {
	case waitErr := <-exited:
		// Reap anything the command left behind in its process group.
		if err := killProcessGroup(cmd.Process); err != nil {
			clog.WithError(err).Debug("Failed to signal process group after exit")
		}

		outcome := withOutput(exitOutcome(cmd, waitErr, r.inputResult(inputDone)), stdout.Bytes(), stderr.Bytes())
		outcome.Duration = time.Since(start)

		if stdout.Truncated() || stderr.Truncated() {
			clog.WithField("limit", r.maxOutputBytes).Warn("Command output exceeded limit and was truncated")
		}

		clog.WithFields(logrus.Fields{
			"status":    outcome.Status,
			"exit_code": outcome.ExitCode,
			"duration":  outcome.Duration,
		}).Debug("Command exited")

		return outcome
	case <-timer.C:
		clog.Debug("Command timed out, killing process group")

		if err := killProcessGroup(cmd.Process); err != nil {
			clog.WithError(err).Warn("Failed to kill timed out command")
		}

		select {
		case <-exited:
		case <-time.After(r.gracePeriod):
			clog.Warn("Timed out command was not reaped within grace period")
		}

		return types.Outcome{
			Status:   types.StatusTimedOut,
			ExitCode: -1,
			Stdout:   nil,
			Stderr:   nil,
			Duration: time.Since(start),
			Err:      fmt.Errorf("%w after %s", errKilled, command.Timeout()),
		}
	}
}

// inputResult collects the stdin writer's result once the process has exited.
func (r *Runner) inputResult(inputDone <-chan error) error {
	select {
	case err := <-inputDone:
		return err
	case <-time.After(r.gracePeriod):
		return errInputStalled
	}
}

// exitOutcome classifies a completed process.
func exitOutcome(cmd *exec.Cmd, waitErr error, inputErr error) types.Outcome {
	exitCode := -1
	if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	}

	var exitErr *exec.ExitError

	switch {
	case errors.As(waitErr, &exitErr):
		return types.Outcome{Status: types.StatusNonZeroExit, ExitCode: exitCode, Err: inputErr}
	case waitErr != nil && !errors.Is(waitErr, exec.ErrWaitDelay):
		return types.Outcome{Status: types.StatusSpawnFailed, ExitCode: exitCode, Err: waitErr}
	case inputErr != nil:
		return types.Outcome{
			Status:   types.StatusSpawnFailed,
			ExitCode: exitCode,
			Err:      fmt.Errorf("%w: %w", errWriteInputFailed, inputErr),
		}
	default:
		return types.Outcome{Status: types.StatusSuccess, ExitCode: exitCode}
	}
}

// withOutput attaches captured output. Stdout is only kept for commands that
// ran to completion.
func withOutput(outcome types.Outcome, stdout, stderr []byte) types.Outcome {
	outcome.Stderr = stderr

	if outcome.Status == types.StatusSuccess || outcome.Status == types.StatusNonZeroExit {
		outcome.Stdout = stdout
	}

	return outcome
}

// writeInput writes the payload and closes stdin. A child that exits without
// reading its input is not an error.
func writeInput(stdin io.WriteCloser, input []byte) error {
	_, writeErr := stdin.Write(input)
	closeErr := stdin.Close()

	for _, err := range []error{writeErr, closeErr} {
		if err != nil && !errors.Is(err, syscall.EPIPE) && !errors.Is(err, os.ErrClosed) {
			return err
		}
	}

	return nil
}

// spawnFailed builds the outcome for a command that never ran.
func spawnFailed(start time.Time, err error) types.Outcome {
	return types.Outcome{
		Status:   types.StatusSpawnFailed,
		ExitCode: -1,
		Duration: time.Since(start),
		Err:      err,
	}
}
