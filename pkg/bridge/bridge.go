package bridge

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/commandhook/pkg/codec"
	"github.com/nicholas-fedor/commandhook/pkg/metrics"
	"github.com/nicholas-fedor/commandhook/pkg/types"
)

// Option configures an Invoker.
type Option func(*Invoker)

// WithDebug enables the diagnostic log of payloads, output and exit status.
func WithDebug(debug bool) Option {
	return func(i *Invoker) {
		i.debug = debug
	}
}

// WithMetrics records every invocation in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(i *Invoker) {
		i.metrics = m
	}
}

// Invoker runs one encode, run, decode cycle per call.
type Invoker struct {
	runner  types.Runner
	metrics *metrics.Metrics
	debug   bool
}

// decoder consumes the output of a command that exited 0.
type decoder func(stdout []byte) error

// New creates an Invoker on top of runner.
//
// Parameters:
//   - runner: Runner executing the commands.
//   - opts: Optional settings.
//
// Returns:
//   - *Invoker: Ready to use invoker, safe for concurrent use.
func New(runner types.Runner, opts ...Option) *Invoker {
	invoker := &Invoker{runner: runner}

	for _, opt := range opts {
		opt(invoker)
	}

	return invoker
}

// Invoke runs command with input and ignores its output.
//
// Parameters:
//   - point: Hook point name used in logs and metrics.
//   - command: Command to run.
//   - input: Invocation context, encoded onto the command's stdin.
//
// Returns:
//   - error: *types.InvocationError when the command did not exit 0.
func (i *Invoker) Invoke(point string, command *types.Command, input any) error {
	return i.invoke(point, command, input, nil)
}

// Call runs command with input and decodes its output into T.
//
// Returns:
//   - T: Decoded result.
//   - error: *types.InvocationError on any failure, including undecodable output.
func Call[T any](i *Invoker, point string, command *types.Command, input any) (T, error) {
	var result T

	err := i.invoke(point, command, input, func(stdout []byte) error {
		decoded, err := codec.Decode[T](stdout)
		if err != nil {
			return err
		}

		result = decoded

		return nil
	})
	if err != nil {
		var zero T

		return zero, err
	}

	return result, nil
}

// CallOptional is Call for results the command may omit. Blank or null output
// yields a nil result.
func CallOptional[T any](i *Invoker, point string, command *types.Command, input any) (*T, error) {
	var result *T

	err := i.invoke(point, command, input, func(stdout []byte) error {
		if codec.IsBlank(stdout) {
			return nil
		}

		decoded, err := codec.Decode[T](stdout)
		if err != nil {
			return err
		}

		result = &decoded

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// invoke is the shared pipeline. The payload only ever reaches the command
// through stdin.
func (i *Invoker) invoke(point string, command *types.Command, input any, decode decoder) error {
	clog := logrus.WithFields(logrus.Fields{
		"point":      point,
		"command":    command.Path(),
		"invocation": uuid.NewString(),
	})

	var outcome types.Outcome

	payload, err := codec.Encode(input)
	if err != nil {
		outcome = types.Outcome{Status: types.StatusSpawnFailed, ExitCode: -1, Err: err}
	} else {
		outcome = i.run(point, command, payload)
	}

	if outcome.Succeeded() && decode != nil {
		if err := decode(outcome.Stdout); err != nil {
			outcome.Status = types.StatusDecodeFailed
			outcome.Err = err
		}
	}

	i.report(clog, payload, outcome)

	if i.metrics != nil {
		i.metrics.Register(&metrics.Metric{
			Point:    point,
			Status:   outcome.Status,
			Duration: outcome.Duration,
		})
	}

	return types.NewInvocationError(command, outcome)
}

// run executes the command, tracking it as in flight.
func (i *Invoker) run(point string, command *types.Command, payload []byte) types.Outcome {
	if i.metrics != nil {
		i.metrics.Started(point)
		defer i.metrics.Finished(point)
	}

	return i.runner.Run(command, payload)
}

// report logs the invocation. Failures are logged at warn level. Debug mode
// adds payload and output and logs successes at info level.
func (i *Invoker) report(clog *logrus.Entry, payload []byte, outcome types.Outcome) {
	clog = clog.WithFields(logrus.Fields{
		"status":    outcome.Status.String(),
		"exit_code": outcome.ExitCode,
		"duration":  outcome.Duration,
	})

	if outcome.Err != nil {
		clog = clog.WithError(outcome.Err)
	}

	if i.debug {
		clog = clog.WithFields(logrus.Fields{
			"payload": string(payload),
			"stdout":  string(outcome.Stdout),
			"stderr":  string(outcome.Stderr),
		})

		if outcome.Succeeded() {
			clog.Info("Command invocation succeeded")

			return
		}
	}

	if !outcome.Succeeded() {
		clog.Warn("Command invocation failed")

		return
	}

	clog.Debug("Command invocation succeeded")
}
