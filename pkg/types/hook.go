package types

// Hook is the set of agent hook points that can be delegated to external commands.
//
// Every method may block the caller for up to the configured timeout plus the
// runner's grace period.
type Hook interface {
	// RunTaskLabelDecorator computes labels added to the executor of a task.
	//
	// Returns ok=false when no labels should be applied, either because the hook
	// point is disabled or because the command failed (err is then non-nil).
	RunTaskLabelDecorator(taskInfo, executorInfo, frameworkInfo, slaveInfo Record) (Labels, bool, error)

	// ExecutorEnvironmentDecorator computes environment variables added to an executor.
	ExecutorEnvironmentDecorator(executorInfo Record) (Environment, bool, error)

	// RemoveExecutorHook notifies the command that an executor was removed.
	//
	// The returned error is informational; the removal has already happened.
	RemoveExecutorHook(frameworkInfo, executorInfo Record) error
}

// Hook point names used in logs, metrics and configuration.
const (
	PointLabel          = "label"
	PointEnvironment    = "environment"
	PointRemoveExecutor = "remove_executor"
)
