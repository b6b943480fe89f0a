package main

import (
	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/commandhook/cmd"
)

// init configures the initial logging level for commandhook.
//
// It sets logrus to InfoLevel by default, ensuring basic operational logs
// are visible unless overridden by --log-level in cmd.
func init() {
	logrus.SetLevel(logrus.InfoLevel)
}

// main serves as the entry point for the commandhook application.
func main() {
	cmd.Execute()
}
