// Package util provides formatting helpers for commandhook log output.
//
// Key components:
//   - FormatDuration: Renders timeouts as "1 minute, 30 seconds".
//
// Usage example:
//
//	logrus.Info("Commands are killed after " + util.FormatDuration(timeout))
package util
