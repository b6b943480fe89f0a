package types

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Errors for command descriptor construction.
var (
	// errEmptyCommandPath indicates a command was configured without an executable path.
	errEmptyCommandPath = errors.New("command path is empty")
	// errInvalidCommandTimeout indicates a command was configured with a zero or negative timeout.
	errInvalidCommandTimeout = errors.New("command timeout must be positive")
)

// Command describes an external program bound to a hook point.
//
// A Command is immutable once built. A hook point without a Command is
// represented by a nil *Command and stays disabled for the process lifetime.
type Command struct {
	path    string
	args    []string
	timeout time.Duration
}

// NewCommand builds a Command descriptor.
//
// Parameters:
//   - path: Executable to run.
//   - args: Fixed arguments passed on every invocation.
//   - timeout: Maximum wall-clock time the command may run.
//
// Returns:
//   - *Command: The descriptor.
//   - error: Non-nil if the path is empty or the timeout is not positive.
func NewCommand(path string, args []string, timeout time.Duration) (*Command, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errEmptyCommandPath
	}

	if timeout <= 0 {
		return nil, fmt.Errorf("%w: %s: %s", errInvalidCommandTimeout, path, timeout)
	}

	return &Command{
		path:    path,
		args:    slices.Clone(args),
		timeout: timeout,
	}, nil
}

// Path returns the executable path.
func (c *Command) Path() string { return c.path }

// Args returns a copy of the fixed arguments.
func (c *Command) Args() []string { return slices.Clone(c.args) }

// Timeout returns the maximum execution duration.
func (c *Command) Timeout() time.Duration { return c.timeout }

// String renders the command line for logging.
func (c *Command) String() string {
	if c == nil {
		return "<none>"
	}

	if len(c.args) == 0 {
		return c.path
	}

	return c.path + " " + strings.Join(c.args, " ")
}
