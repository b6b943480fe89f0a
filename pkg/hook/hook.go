package hook

import (
	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/commandhook/pkg/bridge"
	"github.com/nicholas-fedor/commandhook/pkg/types"
)

// Config selects the command bound to each hook point. A nil command leaves
// the point disabled for the lifetime of the CommandHook.
type Config struct {
	Label          *types.Command // Task label decoration.
	Environment    *types.Command // Executor environment decoration.
	RemoveExecutor *types.Command // Executor removal notification.
	Debug          bool           // Log payloads, output and exit status.
}

// CommandHook delegates agent hook points to external commands.
type CommandHook struct {
	config  Config
	invoker *bridge.Invoker
}

var _ types.Hook = (*CommandHook)(nil)

// labelInput is the payload of the label decoration command.
type labelInput struct {
	TaskInfo      types.Record `json:"task_info"`
	ExecutorInfo  types.Record `json:"executor_info"`
	FrameworkInfo types.Record `json:"framework_info"`
	SlaveInfo     types.Record `json:"slave_info"`
}

// environmentInput is the payload of the environment decoration command.
type environmentInput struct {
	ExecutorInfo types.Record `json:"executor_info"`
}

// removeExecutorInput is the payload of the executor removal command.
type removeExecutorInput struct {
	FrameworkInfo types.Record `json:"framework_info"`
	ExecutorInfo  types.Record `json:"executor_info"`
}

// New creates a CommandHook.
//
// Parameters:
//   - config: Commands per hook point and the debug flag.
//   - runner: Runner executing the commands.
//   - opts: Extra invoker options, such as bridge.WithMetrics.
//
// Returns:
//   - *CommandHook: Hook ready for concurrent use.
func New(config Config, runner types.Runner, opts ...bridge.Option) *CommandHook {
	opts = append([]bridge.Option{bridge.WithDebug(config.Debug)}, opts...)

	return &CommandHook{
		config:  config,
		invoker: bridge.New(runner, opts...),
	}
}

// RunTaskLabelDecorator runs the label command for a task being launched.
//
// Parameters:
//   - taskInfo: Task descriptor.
//   - executorInfo: Executor descriptor.
//   - frameworkInfo: Framework descriptor.
//   - slaveInfo: Agent descriptor.
//
// Returns:
//   - types.Labels: Labels to attach, nil unless ok.
//   - bool: False when the host should keep its default labels.
//   - error: Non-nil if the command failed; the host proceeds without decoration.
func (h *CommandHook) RunTaskLabelDecorator(
	taskInfo, executorInfo, frameworkInfo, slaveInfo types.Record,
) (types.Labels, bool, error) {
	if h.config.Label == nil {
		return nil, false, nil
	}

	labels, err := bridge.Call[types.Labels](h.invoker, types.PointLabel, h.config.Label, labelInput{
		TaskInfo:      taskInfo,
		ExecutorInfo:  executorInfo,
		FrameworkInfo: frameworkInfo,
		SlaveInfo:     slaveInfo,
	})
	if err != nil {
		return nil, false, err
	}

	return labels, true, nil
}

// ExecutorEnvironmentDecorator runs the environment command for an executor being launched.
//
// Returns:
//   - types.Environment: Variables to set, nil unless ok.
//   - bool: False when the host should keep the executor environment unchanged.
//   - error: Non-nil if the command failed.
func (h *CommandHook) ExecutorEnvironmentDecorator(executorInfo types.Record) (types.Environment, bool, error) {
	if h.config.Environment == nil {
		return nil, false, nil
	}

	environment, err := bridge.Call[types.Environment](
		h.invoker,
		types.PointEnvironment,
		h.config.Environment,
		environmentInput{ExecutorInfo: executorInfo},
	)
	if err != nil {
		return nil, false, err
	}

	return environment, true, nil
}

// RemoveExecutorHook notifies the removal command. Its output is ignored and a
// failure only affects diagnostics.
func (h *CommandHook) RemoveExecutorHook(frameworkInfo, executorInfo types.Record) error {
	if h.config.RemoveExecutor == nil {
		return nil
	}

	err := h.invoker.Invoke(types.PointRemoveExecutor, h.config.RemoveExecutor, removeExecutorInput{
		FrameworkInfo: frameworkInfo,
		ExecutorInfo:  executorInfo,
	})
	if err != nil {
		logrus.WithError(err).Debug("Executor removal command failed, removal proceeds")
	}

	return err
}
