// Package logging provides functions for logging startup information in commandhook.
// It reports the configured hook points and diagnostic settings.
package logging

import (
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nicholas-fedor/commandhook/internal/flags"
	"github.com/nicholas-fedor/commandhook/internal/util"
)

// WriteStartupMessage logs the version and the command bound to each hook point.
//
// Parameters:
//   - c: The cobra.Command instance, providing access to flags like --no-startup-message.
//   - commands: Commands per hook point.
//   - version: The version string to include in the message.
func WriteStartupMessage(c *cobra.Command, commands flags.Commands, version string) {
	noStartupMessage, _ := c.PersistentFlags().GetBool("no-startup-message")
	if noStartupMessage {
		return
	}

	startupLog := logrus.NewEntry(logrus.StandardLogger())
	startupLog.Info("commandhook ", version)

	LogCommandInfo(startupLog, commands)

	debug, _ := c.PersistentFlags().GetBool("debug")
	if debug {
		startupLog.Warn("Debug mode enabled: invocation payloads and command output are logged")
	}

}

// LogCommandInfo logs one line per hook point and a summary of disabled points.
//
// Parameters:
//   - log: The logrus.Entry used to write the information.
//   - commands: Commands per hook point.
func LogCommandInfo(log *logrus.Entry, commands flags.Commands) {
	var disabled []string

	for _, point := range flags.Points {
		command := commands.ByPoint(point)
		if command == nil {
			disabled = append(disabled, point)

			continue
		}

		log.WithFields(logrus.Fields{
			"point":   point,
			"command": command.String(),
		}).Info("Using command for " + point + ", killed after " + util.FormatDuration(command.Timeout()))
	}

	switch {
	case len(disabled) == len(flags.Points):
		log.Info("No hook points configured, every event passes through")
	case len(disabled) > 0:
		log.Info("Hook points passing through: " + strings.Join(disabled, ", "))
	}
}
