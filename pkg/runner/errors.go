package runner

import "errors"

// Errors for command execution in runner.go.
var (
	// errStdinPipeFailed indicates the stdin pipe for a command could not be created.
	errStdinPipeFailed = errors.New("failed to create stdin pipe")
	// errStartFailed indicates the command process could not be started.
	errStartFailed = errors.New("failed to start command")
	// errWriteInputFailed indicates the payload could not be written to the command's stdin.
	errWriteInputFailed = errors.New("failed to write command input")
	// errInputStalled indicates stdin was still being written after the command exited.
	errInputStalled = errors.New("command input write did not finish")
	// errKilled indicates the command was killed after exceeding its timeout.
	errKilled = errors.New("command killed")
)

// Errors for process group handling in process_*.go.
var (
	// errKillFailed indicates the command's process group could not be signalled.
	errKillFailed = errors.New("failed to kill command process group")
)
