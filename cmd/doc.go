// Package cmd contains the command-line interface (CLI) definitions and execution logic for commandhook.
// It provides the root command and one subcommand per lifecycle event, each running the event
// through the configured external command exactly as an agent would.
//
// Key components:
//   - NewRootCommand: Root command with configuration flags and the event subcommands.
//   - label, environment, remove-executor: Hook points.
//   - prepare, cleanup: Isolator phases.
//
// Usage examples:
//   - Run the CLI from main.go:
//     cmd.Execute()
//   - Decorate a task with labels:
//     commandhook --label-command /opt/hooks/labels label --task task.json
//   - Prepare a container, printing YAML:
//     commandhook --prepare-command /opt/hooks/prepare -o yaml prepare --container-id c1 --container-config -
//
// A failed invocation exits with status 1; a disabled hook point succeeds without running anything.
package cmd
