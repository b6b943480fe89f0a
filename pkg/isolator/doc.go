// Package isolator forwards the container isolation lifecycle (prepare before
// launch, cleanup after exit) to external commands.
//
// Key components:
//   - CommandIsolator: Dispatches each phase to a worker goroutine and returns a future.
//   - Operation: A dispatched command that has not settled, as reported by Pending.
//
// Usage example:
//
//	iso := isolator.New(isolator.Config{Prepare: command}, runner.New())
//	launchInfo, err := iso.Prepare("c1", config).Get(ctx)
//	if err != nil {
//	    logrus.WithError(err).Warn("Prepare failed")
//	}
//
// A disabled phase resolves immediately without spawning anything.
package isolator
