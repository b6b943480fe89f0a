// Package runner executes external commands under a hard deadline.
//
// Key components:
//   - Runner: Spawns a command in its own process group, feeds the payload on
//     stdin and collects stdout/stderr in memory.
//   - Options: WithGracePeriod and WithMaxOutputBytes tune a Runner.
//
// Usage example:
//
//	r := runner.New(runner.WithGracePeriod(time.Second))
//	outcome := r.Run(command, payload)
//	if !outcome.Succeeded() {
//	    logrus.WithField("status", outcome.Status).Debug("Command failed")
//	}
//
// A command that outlives its timeout is killed with SIGKILL together with
// every process in its group; Run returns at most one grace period later.
package runner
