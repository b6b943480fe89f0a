// Package bridge joins the payload codec and the subprocess runner into the
// request/response cycle shared by every hook point.
//
// Key components:
//   - Invoker: Encodes an invocation context, runs the command and maps the outcome to an error.
//   - Call, CallOptional: Decode a successful command's output into a typed result.
//
// Usage example:
//
//	invoker := bridge.New(runner.New(), bridge.WithDebug(true))
//	labels, err := bridge.Call[types.Labels](invoker, "label", command, input)
//	if err != nil {
//	    logrus.WithError(err).Debug("Label command failed")
//	}
//
// Each invocation is logged with a unique invocation id.
package bridge
