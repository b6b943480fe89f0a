//go:build unix

package runner

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// configureProcessGroup starts the command as leader of a new process group so
// that its descendants can be killed with it.
func configureProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killProcessGroup sends SIGKILL to every process in the command's group.
// An already empty group is not an error.
func killProcessGroup(process *os.Process) error {
	if process == nil {
		return nil
	}

	// Negative PID targets the process group.
	err := syscall.Kill(-process.Pid, syscall.SIGKILL)
	if err != nil && !errors.Is(err, syscall.ESRCH) {
		return fmt.Errorf("%w: %w", errKillFailed, err)
	}

	return nil
}
