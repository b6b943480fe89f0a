package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/nicholas-fedor/commandhook/pkg/types"
)

// newLabelCommand creates the subcommand running the task label decoration.
func newLabelCommand(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "label",
		Short: "Compute labels for a task through the label command",
		Args:  cobra.NoArgs,
	}

	cmd.Flags().String("task", "", "Task info JSON file, - for stdin")
	cmd.Flags().String("executor", "", "Executor info JSON file, - for stdin")
	cmd.Flags().String("framework", "", "Framework info JSON file, - for stdin")
	cmd.Flags().String("slave", "", "Agent info JSON file, - for stdin")

	cmd.RunE = s.action(func(_ context.Context, cmd *cobra.Command) error {
		records, err := readRecords(cmd, "task", "executor", "framework", "slave")
		if err != nil {
			return err
		}

		labels, ok, err := s.newHook().RunTaskLabelDecorator(
			records["task"],
			records["executor"],
			records["framework"],
			records["slave"],
		)
		if err != nil {
			return invocationFailed(types.PointLabel, err)
		}

		return s.write(cmd.OutOrStdout(), result{Point: types.PointLabel, Applied: ok, Labels: labels})
	})

	return cmd
}

// newEnvironmentCommand creates the subcommand running the executor environment decoration.
func newEnvironmentCommand(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "environment",
		Short: "Compute environment variables for an executor through the environment command",
		Args:  cobra.NoArgs,
	}

	cmd.Flags().String("executor", "", "Executor info JSON file, - for stdin")

	cmd.RunE = s.action(func(_ context.Context, cmd *cobra.Command) error {
		records, err := readRecords(cmd, "executor")
		if err != nil {
			return err
		}

		environment, ok, err := s.newHook().ExecutorEnvironmentDecorator(records["executor"])
		if err != nil {
			return invocationFailed(types.PointEnvironment, err)
		}

		return s.write(cmd.OutOrStdout(), result{Point: types.PointEnvironment, Applied: ok, Environment: environment})
	})

	return cmd
}

// newRemoveExecutorCommand creates the subcommand notifying an executor removal.
func newRemoveExecutorCommand(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove-executor",
		Short: "Notify the removal command that an executor was removed",
		Args:  cobra.NoArgs,
	}

	cmd.Flags().String("framework", "", "Framework info JSON file, - for stdin")
	cmd.Flags().String("executor", "", "Executor info JSON file, - for stdin")

	cmd.RunE = s.action(func(_ context.Context, cmd *cobra.Command) error {
		records, err := readRecords(cmd, "framework", "executor")
		if err != nil {
			return err
		}

		if err := s.newHook().RemoveExecutorHook(records["framework"], records["executor"]); err != nil {
			return invocationFailed(types.PointRemoveExecutor, err)
		}

		return s.write(cmd.OutOrStdout(), result{
			Point:   types.PointRemoveExecutor,
			Applied: s.commands.RemoveExecutor != nil,
		})
	})

	return cmd
}

// readRecords loads the record named by each flag.
func readRecords(cmd *cobra.Command, names ...string) (map[string]types.Record, error) {
	reader := &recordReader{stdin: cmd.InOrStdin()}
	records := make(map[string]types.Record, len(names))

	for _, name := range names {
		path, err := cmd.Flags().GetString(name)
		if err != nil {
			return nil, err
		}

		record, err := reader.read(path)
		if err != nil {
			return nil, err
		}

		records[name] = record
	}

	return records, nil
}
