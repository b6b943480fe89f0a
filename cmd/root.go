package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nicholas-fedor/commandhook/internal/flags"
	"github.com/nicholas-fedor/commandhook/internal/logging"
	"github.com/nicholas-fedor/commandhook/internal/meta"
	"github.com/nicholas-fedor/commandhook/pkg/bridge"
	"github.com/nicholas-fedor/commandhook/pkg/hook"
	"github.com/nicholas-fedor/commandhook/pkg/isolator"
	"github.com/nicholas-fedor/commandhook/pkg/metrics"
	"github.com/nicholas-fedor/commandhook/pkg/notifications"
	"github.com/nicholas-fedor/commandhook/pkg/runner"
	"github.com/nicholas-fedor/commandhook/pkg/types"
)

// errInvocationFailed marks a hook point whose command did not produce a usable result.
var errInvocationFailed = errors.New("invocation failed")

// rootCmd is the command run by Execute.
var rootCmd = NewRootCommand()

// session holds the configuration shared by the subcommands of one execution.
//
// It is populated in preRun from flags, environment variables and the config file.
type session struct {
	commands       flags.Commands
	runner         *runner.Runner
	debug          bool
	maxConcurrency int
	outputFormat   string

	registry        *prometheus.Registry
	metrics         *metrics.Metrics
	metricsTextfile string

	notifier *notifications.Notifier
}

// NewRootCommand creates the commandhook CLI with every flag and subcommand registered.
//
// Returns:
//   - *cobra.Command: A pointer to the fully configured root command, ready for execution.
func NewRootCommand() *cobra.Command {
	s := &session{}

	root := &cobra.Command{
		Use:   "commandhook",
		Short: "Runs agent lifecycle events through external commands",
		Long: "\ncommandhook forwards task decoration and container isolation events to external commands." +
			"\nThe event is written to the command's stdin as JSON and its stdout is read back as the result.",
		PersistentPreRunE: s.preRun,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	flags.SetDefaults()
	flags.RegisterCommandFlags(root)
	flags.RegisterSystemFlags(root)

	root.AddCommand(
		newLabelCommand(s),
		newEnvironmentCommand(s),
		newRemoveExecutorCommand(s),
		newPrepareCommand(s),
		newCleanupCommand(s),
	)

	return root
}

// Execute runs the root command and exits non-zero if it fails.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errInvocationFailed) {
			logrus.WithError(err).Error("Command invocation failed")
			os.Exit(1)
		}

		logrus.WithError(err).Fatal("Failed to execute root command")
	}
}

// preRun loads configuration and builds the runner shared by the subcommands.
//
// Parameters:
//   - cmd: The cobra.Command instance being executed, providing access to parsed flags.
//   - _: Positional arguments, unused.
//
// Returns:
//   - error: Non-nil if the configuration is invalid.
func (s *session) preRun(cmd *cobra.Command, _ []string) error {
	flagsSet := cmd.Root().PersistentFlags()

	if err := flags.LoadConfigFile(flagsSet); err != nil {
		return err
	}

	if err := flags.SetupLogging(flagsSet); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	if err := s.setupNotifications(flagsSet); err != nil {
		return err
	}

	commands, err := flags.ReadCommands(flagsSet)
	if err != nil {
		return err
	}

	runnerOpts, err := flags.ReadRunnerOptions(flagsSet)
	if err != nil {
		return err
	}

	outputFormat, err := flags.ReadOutputFormat(flagsSet)
	if err != nil {
		return err
	}

	s.commands = commands
	s.runner = runner.New(runnerOpts...)
	s.outputFormat = outputFormat
	s.debug, _ = flagsSet.GetBool("debug")
	s.maxConcurrency, _ = flagsSet.GetInt("max-concurrency")
	s.metricsTextfile, _ = flagsSet.GetString("metrics-textfile")

	s.registry = prometheus.NewRegistry()

	s.metrics, err = metrics.NewWithRegistry(s.registry)
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"debug":  s.debug,
		"output": s.outputFormat,
	}).Debug("Loaded configuration")

	logging.WriteStartupMessage(cmd.Root(), commands, meta.Version)

	return nil
}

// setupNotifications starts the notifier when notification URLs are configured.
func (s *session) setupNotifications(flagsSet *pflag.FlagSet) error {
	urls, opts, err := flags.ReadNotificationOptions(flagsSet)
	if err != nil {
		return err
	}

	if len(urls) == 0 {
		return nil
	}

	notifier, err := notifications.New(urls, opts...)
	if err != nil {
		return fmt.Errorf("failed to initialize notifications: %w", err)
	}

	notifier.AddLogHook()
	s.notifier = notifier

	logrus.WithField("services", notifier.GetNames()).Debug("Notifications enabled")

	return nil
}

// newHook builds the hook adapter from the loaded configuration.
func (s *session) newHook() *hook.CommandHook {
	return hook.New(hook.Config{
		Label:          s.commands.Label,
		Environment:    s.commands.Environment,
		RemoveExecutor: s.commands.RemoveExecutor,
		Debug:          s.debug,
	}, s.runner, bridge.WithMetrics(s.metrics))
}

// newIsolator builds the isolator adapter from the loaded configuration.
func (s *session) newIsolator() *isolator.CommandIsolator {
	return isolator.New(
		isolator.Config{
			Prepare: s.commands.Prepare,
			Cleanup: s.commands.Cleanup,
			Debug:   s.debug,
		},
		s.runner,
		isolator.WithMaxConcurrency(s.maxConcurrency),
		isolator.WithInvokerOptions(bridge.WithMetrics(s.metrics)),
	)
}

// action wraps a subcommand body so metrics and notifications are flushed whatever its outcome.
func (s *session) action(fn func(ctx context.Context, cmd *cobra.Command) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		err := fn(ctx, cmd)

		s.flushMetrics()

		if s.notifier != nil {
			s.notifier.Close()
		}

		return err
	}
}

// flushMetrics drains queued metrics and writes the textfile if one is configured.
func (s *session) flushMetrics() {
	if s.metrics == nil {
		return
	}

	s.metrics.Shutdown()

	if s.metricsTextfile == "" {
		return
	}

	if err := metrics.WriteTextfile(s.metricsTextfile, s.registry); err != nil {
		logrus.WithError(err).Warn("Failed to write metrics textfile")
	}
}

// write renders a result in the configured output format.
func (s *session) write(w io.Writer, value result) error {
	return writeResult(w, s.outputFormat, value)
}

// invocationFailed wraps an adapter error so Execute exits 1 without a fatal log.
func invocationFailed(point string, err error) error {
	if status, ok := types.StatusOf(err); ok {
		return fmt.Errorf("%w: %s: %s: %w", errInvocationFailed, point, status, err)
	}

	return fmt.Errorf("%w: %s: %w", errInvocationFailed, point, err)
}
