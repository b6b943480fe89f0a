package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/nicholas-fedor/commandhook/pkg/types"
)

// errMissingContainerID indicates --container-id was not given.
var errMissingContainerID = errors.New("--container-id is required")

// newPrepareCommand creates the subcommand running the container prepare phase.
func newPrepareCommand(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Prepare a container through the prepare command",
		Args:  cobra.NoArgs,
	}

	cmd.Flags().String("container-id", "", "Container being prepared")
	cmd.Flags().String("container-config", "", "Container config JSON file, - for stdin")

	cmd.RunE = s.action(func(ctx context.Context, cmd *cobra.Command) error {
		containerID, err := readContainerID(cmd)
		if err != nil {
			return err
		}

		records, err := readRecords(cmd, "container-config")
		if err != nil {
			return err
		}

		iso := s.newIsolator()
		defer iso.Wait()

		launchInfo, err := iso.Prepare(containerID, records["container-config"]).Get(ctx)
		if err != nil {
			return invocationFailed(types.PointPrepare, err)
		}

		return s.write(cmd.OutOrStdout(), result{
			Point:       types.PointPrepare,
			ContainerID: containerID,
			Applied:     !launchInfo.IsEmpty(),
			LaunchInfo:  launchInfo,
		})
	})

	return cmd
}

// newCleanupCommand creates the subcommand running the container cleanup phase.
func newCleanupCommand(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Clean up a container through the cleanup command",
		Args:  cobra.NoArgs,
	}

	cmd.Flags().String("container-id", "", "Container that exited")

	cmd.RunE = s.action(func(ctx context.Context, cmd *cobra.Command) error {
		containerID, err := readContainerID(cmd)
		if err != nil {
			return err
		}

		iso := s.newIsolator()
		defer iso.Wait()

		if _, err := iso.Cleanup(containerID).Get(ctx); err != nil {
			return invocationFailed(types.PointCleanup, err)
		}

		return s.write(cmd.OutOrStdout(), result{
			Point:       types.PointCleanup,
			ContainerID: containerID,
			Applied:     s.commands.Cleanup != nil,
		})
	})

	return cmd
}

// readContainerID returns the mandatory --container-id value.
func readContainerID(cmd *cobra.Command) (types.ContainerID, error) {
	containerID, err := cmd.Flags().GetString("container-id")
	if err != nil {
		return "", err
	}

	if containerID == "" {
		return "", errMissingContainerID
	}

	return types.ContainerID(containerID), nil
}
