// Package types defines core interfaces and structs for commandhook.
// It provides the command descriptor, invocation outcomes and the records exchanged with external commands.
//
// Key components:
//   - Command: Immutable path, arguments and timeout of an external command.
//   - Runner: Interface executing a command with a payload on stdin.
//   - Outcome, ExitStatus: Result of one invocation and how it ended.
//   - InvocationError: Error carrying the status, exit code and stderr of a failed invocation.
//   - Hook, Isolator: Lifecycle adapters implemented by the hook and isolator packages.
//   - Labels, Environment, LaunchInfo: Results decoded from command output.
//
// Usage example:
//
//	command, err := types.NewCommand("/opt/hooks/labels", nil, 30*time.Second)
//	if err != nil {
//	    logrus.WithError(err).Fatal("Invalid command")
//	}
//	outcome := runner.Run(command, payload)
//	if err := types.NewInvocationError(command, outcome); err != nil {
//	    logrus.WithError(err).Debug("Command failed")
//	}
package types
