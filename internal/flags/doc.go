// Package flags manages command-line flags and environment variables for commandhook configuration.
// It binds the command of every hook point, runner limits and logging settings via Cobra and Viper.
//
// Key components:
//   - RegisterCommandFlags: Adds --<point>-command, --<point>-args and --<point>-timeout.
//   - RegisterSystemFlags: Adds timeout, logging, output and metrics flags.
//   - LoadConfigFile: Fills unset flags from a config file.
//   - ReadCommands: Builds the command set once.
//   - SetupLogging: Configures logrus based on flags.
//
// Usage example:
//
//	cmd := &cobra.Command{}
//	flags.SetDefaults()
//	flags.RegisterCommandFlags(cmd)
//	flags.RegisterSystemFlags(cmd)
//	commands, err := flags.ReadCommands(cmd.PersistentFlags())
//	if err != nil {
//	    logrus.WithError(err).Fatal("Invalid configuration")
//	}
//
// Every flag can also be set through a COMMANDHOOK_ prefixed environment variable.
package flags
