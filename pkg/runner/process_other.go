//go:build !unix

package runner

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// configureProcessGroup is a no-op where process groups are unavailable.
func configureProcessGroup(_ *exec.Cmd) {}

// killProcessGroup kills the command process itself. Descendants are not
// tracked on this platform.
func killProcessGroup(process *os.Process) error {
	if process == nil {
		return nil
	}

	err := process.Kill()
	if err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("%w: %w", errKillFailed, err)
	}

	return nil
}
