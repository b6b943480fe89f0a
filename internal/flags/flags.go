// Package flags manages command-line flags and environment variables for commandhook configuration.
package flags

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/nicholas-fedor/commandhook/internal/util"
	"github.com/nicholas-fedor/commandhook/pkg/notifications"
	"github.com/nicholas-fedor/commandhook/pkg/runner"
	"github.com/nicholas-fedor/commandhook/pkg/types"
)

// EnvPrefix is prepended to every environment variable read by commandhook.
const EnvPrefix = "COMMANDHOOK"

// defaultTimeout is the command timeout used when a hook point sets none.
const defaultTimeout = 30 * time.Second

// Points lists every hook point in the order they are reported.
var Points = []string{
	types.PointLabel,
	types.PointEnvironment,
	types.PointRemoveExecutor,
	types.PointPrepare,
	types.PointCleanup,
}

// errInvalidLogFormat indicates an invalid log format was specified.
// It is used in SetupLogging to report configuration errors.
var errInvalidLogFormat = errors.New("invalid log format specified")

// errInvalidLogLevel indicates an invalid log level was specified.
// It is used in SetupLogging to report configuration errors.
var errInvalidLogLevel = errors.New("invalid log level specified")

// errSetFlagFailed indicates a failure to read or set a flag’s value.
var errSetFlagFailed = errors.New("failed to set flag value")

// errReadConfigFailed indicates the configuration file could not be read.
var errReadConfigFailed = errors.New("failed to read config file")

// errInvalidCommand indicates a hook point was configured with an unusable command.
var errInvalidCommand = errors.New("invalid command configuration")

// errInvalidOutputFormat indicates an unsupported --output value.
var errInvalidOutputFormat = errors.New("invalid output format specified")

// errInvalidNotificationLevel indicates an unsupported --notification-level value.
var errInvalidNotificationLevel = errors.New("invalid notification level specified")

// Commands holds the command bound to each hook point; nil leaves the point disabled.
type Commands struct {
	Label          *types.Command
	Environment    *types.Command
	RemoveExecutor *types.Command
	Prepare        *types.Command
	Cleanup        *types.Command
}

// ByPoint returns the command bound to point, nil if disabled or unknown.
func (c Commands) ByPoint(point string) *types.Command {
	switch point {
	case types.PointLabel:
		return c.Label
	case types.PointEnvironment:
		return c.Environment
	case types.PointRemoveExecutor:
		return c.RemoveExecutor
	case types.PointPrepare:
		return c.Prepare
	case types.PointCleanup:
		return c.Cleanup
	default:
		return nil
	}
}

// RegisterCommandFlags adds the command, args and timeout flags of every hook point.
func RegisterCommandFlags(rootCmd *cobra.Command) {
	flags := rootCmd.PersistentFlags()

	for _, point := range Points {
		name := flagName(point)

		flags.String(
			name+"-command",
			envString(envKey(point, "COMMAND")),
			fmt.Sprintf("Path of the command run for the %s hook point; empty disables it", name))

		flags.StringSlice(
			name+"-args",
			envStringSlice(envKey(point, "ARGS")),
			fmt.Sprintf("Fixed arguments passed to the %s command", name))

		flags.Duration(
			name+"-timeout",
			envDuration(envKey(point, "TIMEOUT")),
			fmt.Sprintf("Timeout of the %s command, defaults to --timeout", name))
	}
}

// RegisterSystemFlags adds flags that control runner limits, logging and output.
func RegisterSystemFlags(rootCmd *cobra.Command) {
	flags := rootCmd.PersistentFlags()

	flags.StringP(
		"config",
		"c",
		envString(EnvPrefix+"_CONFIG"),
		"Configuration file (yaml, json or toml) keyed by flag name")

	flags.DurationP(
		"timeout",
		"t",
		envDuration(EnvPrefix+"_TIMEOUT"),
		"Default timeout before a command is forcefully killed")

	flags.Duration(
		"grace-period",
		envDuration(EnvPrefix+"_GRACE_PERIOD"),
		"How long to wait for a killed command to be reaped")

	flags.Int(
		"max-output-bytes",
		envInt(EnvPrefix+"_MAX_OUTPUT_BYTES"),
		"Maximum bytes kept from each output stream of a command")

	flags.Int(
		"max-concurrency",
		envInt(EnvPrefix+"_MAX_CONCURRENCY"),
		"Maximum number of isolator commands running at once, 0 for unlimited")

	flags.BoolP(
		"debug",
		"d",
		envBool(EnvPrefix+"_DEBUG"),
		"Log payloads, command output and exit status of every invocation")

	flags.BoolP(
		"no-startup-message",
		"",
		envBool(EnvPrefix+"_NO_STARTUP_MESSAGE"),
		"Do not log the configured hook points on startup")

	flags.StringP(
		"log-format",
		"l",
		envString(EnvPrefix+"_LOG_FORMAT"),
		"Sets what logging format to use for console output. Possible values: Auto, LogFmt, Pretty, JSON")

	// https://no-color.org/
	flags.BoolP(
		"no-color",
		"",
		viper.IsSet("NO_COLOR"),
		"Disable ANSI color escape codes in log output")

	flags.String(
		"log-level",
		envString(EnvPrefix+"_LOG_LEVEL"),
		"The maximum log level that will be written to STDERR. Possible values: panic, fatal, error, warn, info, debug or trace")

	flags.StringP(
		"output",
		"o",
		envString(EnvPrefix+"_OUTPUT"),
		"Result output format. Possible values: json, yaml")

	flags.String(
		"metrics-textfile",
		envString(EnvPrefix+"_METRICS_TEXTFILE"),
		"Write Prometheus metrics to this file after each run")

	flags.StringSlice(
		"notification-url",
		envStringSlice(EnvPrefix+"_NOTIFICATION_URL"),
		"Shoutrrr URL notified about failed command invocations. Can be repeated")

	flags.String(
		"notification-level",
		envString(EnvPrefix+"_NOTIFICATION_LEVEL"),
		"The least severe log level that is sent as a notification. Possible values: panic, fatal, error, warn, info")

	flags.String(
		"notification-title",
		envString(EnvPrefix+"_NOTIFICATION_TITLE"),
		"Title of notifications, for services that support one")
}

// envString retrieves a string value from an environment variable via Viper.
// It binds the key to the environment and returns its value.
func envString(key string) string {
	viper.MustBindEnv(key)

	return viper.GetString(key)
}

// envStringSlice retrieves a string slice from an environment variable via Viper.
// It binds the key to the environment and returns its values.
func envStringSlice(key string) []string {
	viper.MustBindEnv(key)

	return viper.GetStringSlice(key)
}

// envInt retrieves an integer value from an environment variable via Viper.
func envInt(key string) int {
	viper.MustBindEnv(key)

	return viper.GetInt(key)
}

// envBool retrieves a boolean value from an environment variable via Viper.
func envBool(key string) bool {
	viper.MustBindEnv(key)

	return viper.GetBool(key)
}

// envDuration retrieves a duration value from an environment variable via Viper.
func envDuration(key string) time.Duration {
	viper.MustBindEnv(key)

	return viper.GetDuration(key)
}

// SetDefaults configures default values for environment variables.
// It ensures consistent fallback behavior when flags or environment variables are unset.
func SetDefaults() {
	viper.AutomaticEnv()
	viper.SetDefault(EnvPrefix+"_TIMEOUT", defaultTimeout)
	viper.SetDefault(EnvPrefix+"_GRACE_PERIOD", runner.DefaultGracePeriod)
	viper.SetDefault(EnvPrefix+"_MAX_OUTPUT_BYTES", runner.DefaultMaxOutputBytes)
	viper.SetDefault(EnvPrefix+"_LOG_LEVEL", "info")
	viper.SetDefault(EnvPrefix+"_LOG_FORMAT", "auto")
	viper.SetDefault(EnvPrefix+"_OUTPUT", "json")
	viper.SetDefault(EnvPrefix+"_NOTIFICATION_LEVEL", "warn")
}

// LoadConfigFile applies the file named by --config to every flag that was not
// set on the command line. Keys are flag names.
//
// Parameters:
//   - flags: Parsed flag set.
//
// Returns:
//   - error: Non-nil if the file cannot be read or a value does not fit its flag.
func LoadConfigFile(flags *pflag.FlagSet) error {
	path, err := flags.GetString("config")
	if err != nil {
		return fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}

	if path == "" {
		return nil
	}

	config := viper.New()
	config.SetConfigFile(path)

	if err := config.ReadInConfig(); err != nil {
		return fmt.Errorf("%w: %w", errReadConfigFailed, err)
	}

	var setErr error

	flags.VisitAll(func(flag *pflag.Flag) {
		if setErr != nil || flag.Changed || !config.IsSet(flag.Name) {
			return
		}

		if sliceValue, ok := flag.Value.(pflag.SliceValue); ok {
			if err := sliceValue.Replace(config.GetStringSlice(flag.Name)); err != nil {
				setErr = fmt.Errorf("%w: %s: %w", errSetFlagFailed, flag.Name, err)
			}

			return
		}

		if err := flags.Set(flag.Name, config.GetString(flag.Name)); err != nil {
			setErr = fmt.Errorf("%w: %s: %w", errSetFlagFailed, flag.Name, err)
		}
	})

	if setErr != nil {
		return setErr
	}

	logrus.WithField("path", config.ConfigFileUsed()).Debug("Loaded config file")

	return nil
}

// ReadCommands builds the command of every hook point from the flags.
//
// Parameters:
//   - flags: Parsed flag set.
//
// Returns:
//   - Commands: Commands per point; a point without a command path is nil.
//   - error: Non-nil if a configured command is invalid.
func ReadCommands(flags *pflag.FlagSet) (Commands, error) {
	defaultTimeout, err := flags.GetDuration("timeout")
	if err != nil {
		return Commands{}, fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}

	commands := make(map[string]*types.Command, len(Points))

	for _, point := range Points {
		command, err := readCommand(flags, point, defaultTimeout)
		if err != nil {
			return Commands{}, err
		}

		commands[point] = command
	}

	return Commands{
		Label:          commands[types.PointLabel],
		Environment:    commands[types.PointEnvironment],
		RemoveExecutor: commands[types.PointRemoveExecutor],
		Prepare:        commands[types.PointPrepare],
		Cleanup:        commands[types.PointCleanup],
	}, nil
}

// readCommand builds the command of a single hook point.
func readCommand(flags *pflag.FlagSet, point string, defaultTimeout time.Duration) (*types.Command, error) {
	name := flagName(point)

	path, err := flags.GetString(name + "-command")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}

	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil //nolint:nilnil // a missing command disables the point
	}

	args, err := flags.GetStringSlice(name + "-args")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}

	timeout, err := flags.GetDuration(name + "-timeout")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}

	if timeout == 0 {
		timeout = defaultTimeout
	}

	command, err := types.NewCommand(path, args, timeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errInvalidCommand, name, err)
	}

	return command, nil
}

// ReadRunnerOptions converts the runner limit flags into runner options.
func ReadRunnerOptions(flags *pflag.FlagSet) ([]runner.Option, error) {
	grace, err := flags.GetDuration("grace-period")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}

	maxOutput, err := flags.GetInt("max-output-bytes")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}

	return []runner.Option{
		runner.WithGracePeriod(grace),
		runner.WithMaxOutputBytes(maxOutput),
	}, nil
}

// ReadOutputFormat returns the validated --output value.
func ReadOutputFormat(flags *pflag.FlagSet) (string, error) {
	format, err := flags.GetString("output")
	if err != nil {
		return "", fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}

	format = strings.ToLower(format)
	switch format {
	case "json", "yaml":
		return format, nil
	default:
		return "", fmt.Errorf("%w: %s", errInvalidOutputFormat, format)
	}
}

// ReadNotificationOptions returns the configured notification URLs and the
// notifier options built from the remaining notification flags.
//
// Returns:
//   - []string: Shoutrrr URLs, empty when notifications are disabled.
//   - []notifications.Option: Level and title options.
//   - error: Non-nil if a flag cannot be read or the level is invalid.
func ReadNotificationOptions(flags *pflag.FlagSet) ([]string, []notifications.Option, error) {
	urls, err := flags.GetStringSlice("notification-url")
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}

	rawLevel, err := flags.GetString("notification-level")
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}

	level, err := logrus.ParseLevel(rawLevel)
	if err != nil || level > logrus.InfoLevel {
		return nil, nil, fmt.Errorf("%w: %s", errInvalidNotificationLevel, rawLevel)
	}

	title, err := flags.GetString("notification-title")
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}

	return util.FilterEmpty(urls), []notifications.Option{
		notifications.WithLevel(level),
		notifications.WithTitle(title),
	}, nil
}

// SetupLogging configures the global logger based on log-related flags.
// It sets the log format and level, returning an error for invalid configurations.
func SetupLogging(flags *pflag.FlagSet) error {
	logFormat, err := flags.GetString("log-format")
	if err != nil {
		return fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}

	noColor, err := flags.GetBool("no-color")
	if err != nil {
		return fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}

	if err := configureLogFormat(logFormat, noColor); err != nil {
		return err
	}

	rawLogLevel, err := flags.GetString("log-level")
	if err != nil {
		return fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}

	logLevel, err := logrus.ParseLevel(rawLogLevel)
	if err != nil {
		return fmt.Errorf("%w: %w", errInvalidLogLevel, err)
	}

	logrus.SetLevel(logLevel)

	return nil
}

// configureLogFormat sets the logrus formatter based on the specified format and color preference.
// It returns an error if the format is invalid.
func configureLogFormat(logFormat string, noColor bool) error {
	switch strings.ToLower(logFormat) {
	case "auto":
		logrus.SetFormatter(&logrus.TextFormatter{
			DisableColors:             noColor,
			EnvironmentOverrideColors: true,
		})
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case "logfmt":
		logrus.SetFormatter(&logrus.TextFormatter{
			DisableColors: true,
			FullTimestamp: true,
		})
	case "pretty":
		logrus.SetFormatter(&logrus.TextFormatter{
			ForceColors:   !noColor,
			FullTimestamp: false,
		})
	default:
		return fmt.Errorf("%w: %s", errInvalidLogFormat, logFormat)
	}

	return nil
}

// flagName maps a hook point to its flag prefix (remove_executor -> remove-executor).
func flagName(point string) string {
	return strings.ReplaceAll(point, "_", "-")
}

// envKey builds the environment variable bound to a hook point setting.
func envKey(point, setting string) string {
	return EnvPrefix + "_" + strings.ToUpper(point) + "_" + setting
}
