// Package notifications forwards failed command invocations to chat, push and
// mail services through Shoutrrr.
//
// Key components:
//   - Notifier: A logrus hook turning invocation failure entries into messages.
//   - LocalLog: Entry whose output is never forwarded, for the notifier's own errors.
//
// Usage example:
//
//	notifier, err := notifications.New([]string{"slack://token@channel"})
//	if err != nil {
//	    logrus.Fatal(err)
//	}
//	notifier.AddLogHook()
//	defer notifier.Close()
package notifications
