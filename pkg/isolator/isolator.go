package isolator

import (
	"context"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/commandhook/pkg/bridge"
	"github.com/nicholas-fedor/commandhook/pkg/future"
	"github.com/nicholas-fedor/commandhook/pkg/types"
)

// Config selects the command bound to each isolator phase. A nil command
// turns the phase into a no-op.
type Config struct {
	Prepare *types.Command // Runs before a container is launched.
	Cleanup *types.Command // Runs after a container has exited.
	Debug   bool           // Log payloads, output and exit status.
}

// Option configures a CommandIsolator.
type Option func(*CommandIsolator)

// WithMaxConcurrency bounds the number of commands running at once. Queued
// operations start their timeout only once their command is spawned.
func WithMaxConcurrency(limit int) Option {
	return func(i *CommandIsolator) {
		if limit > 0 {
			i.sema = make(chan struct{}, limit)
		}
	}
}

// WithInvokerOptions passes options through to the underlying invoker.
func WithInvokerOptions(opts ...bridge.Option) Option {
	return func(i *CommandIsolator) {
		i.invokerOpts = append(i.invokerOpts, opts...)
	}
}

// Operation identifies a dispatched command that has not settled yet.
type Operation struct {
	ContainerID types.ContainerID
	Point       string
}

// CommandIsolator delegates container prepare and cleanup to external commands.
//
// Calls return immediately; each command runs on its own goroutine.
type CommandIsolator struct {
	config      Config
	invoker     *bridge.Invoker
	invokerOpts []bridge.Option
	sema        chan struct{}

	mu      sync.Mutex
	pending map[Operation]int
	wg      sync.WaitGroup
}

var _ types.Isolator = (*CommandIsolator)(nil)

// prepareInput is the payload of the prepare command.
type prepareInput struct {
	ContainerID     types.ContainerID `json:"container_id"`
	ContainerConfig types.Record      `json:"container_config"`
}

// cleanupInput is the payload of the cleanup command.
type cleanupInput struct {
	ContainerID types.ContainerID `json:"container_id"`
}

// New creates a CommandIsolator.
//
// Parameters:
//   - config: Commands per phase and the debug flag.
//   - runner: Runner executing the commands.
//   - opts: Optional settings.
//
// Returns:
//   - *CommandIsolator: Isolator ready for concurrent use.
func New(config Config, runner types.Runner, opts ...Option) *CommandIsolator {
	isolator := &CommandIsolator{
		config:  config,
		pending: make(map[Operation]int),
	}

	for _, opt := range opts {
		opt(isolator)
	}

	invokerOpts := append([]bridge.Option{bridge.WithDebug(config.Debug)}, isolator.invokerOpts...)
	isolator.invoker = bridge.New(runner, invokerOpts...)

	return isolator
}

// Prepare runs the prepare command for a container about to launch.
//
// Parameters:
//   - containerID: Container being prepared.
//   - containerConfig: Container descriptor forwarded to the command.
//
// Returns:
//   - future.Future[*types.LaunchInfo]: Resolves with the launch adjustment, nil
//     for none, or fails with the invocation error.
func (i *CommandIsolator) Prepare(
	containerID types.ContainerID,
	containerConfig types.Record,
) future.Future[*types.LaunchInfo] {
	if i.config.Prepare == nil {
		return future.Resolved[*types.LaunchInfo](nil)
	}

	input := prepareInput{ContainerID: containerID, ContainerConfig: containerConfig}

	return dispatch(i, Operation{ContainerID: containerID, Point: types.PointPrepare}, func() (*types.LaunchInfo, error) {
		return bridge.CallOptional[types.LaunchInfo](i.invoker, types.PointPrepare, i.config.Prepare, input)
	})
}

// Cleanup runs the cleanup command for a container that has exited.
//
// Returns:
//   - future.Future[struct{}]: Resolves once the command exits 0, fails otherwise.
func (i *CommandIsolator) Cleanup(containerID types.ContainerID) future.Future[struct{}] {
	if i.config.Cleanup == nil {
		return future.Resolved(struct{}{})
	}

	input := cleanupInput{ContainerID: containerID}

	return dispatch(i, Operation{ContainerID: containerID, Point: types.PointCleanup}, func() (struct{}, error) {
		return struct{}{}, i.invoker.Invoke(types.PointCleanup, i.config.Cleanup, input)
	})
}

// Pending lists dispatched operations that have not settled, ordered by
// container and point.
func (i *CommandIsolator) Pending() []Operation {
	i.mu.Lock()
	defer i.mu.Unlock()

	operations := make([]Operation, 0, len(i.pending))
	for operation := range i.pending {
		operations = append(operations, operation)
	}

	sort.Slice(operations, func(a, b int) bool {
		if operations[a].ContainerID != operations[b].ContainerID {
			return operations[a].ContainerID < operations[b].ContainerID
		}

		return operations[a].Point < operations[b].Point
	})

	return operations
}

// Wait blocks until every dispatched operation has settled.
func (i *CommandIsolator) Wait() {
	i.wg.Wait()
}

// dispatch runs fn on a worker goroutine and tracks it as pending until it settles.
func dispatch[T any](i *CommandIsolator, operation Operation, fn func() (T, error)) future.Future[T] {
	clog := logrus.WithFields(logrus.Fields{
		"container": string(operation.ContainerID),
		"point":     operation.Point,
	})

	i.track(operation)
	i.wg.Add(1)

	clog.Debug("Dispatched isolator command")

	promise := future.New[T]()

	go func() {
		defer i.wg.Done()

		value, err := run(i, fn)

		// Untrack first so Pending never lists a settled operation.
		i.untrack(operation)

		if err != nil {
			clog.WithError(err).Debug("Isolator command failed")
			promise.Reject(err)

			return
		}

		clog.Debug("Isolator command finished")
		promise.Resolve(value)
	}()

	return promise
}

// run calls fn within the concurrency bound. future.Go turns a panic in fn
// into an error.
func run[T any](i *CommandIsolator, fn func() (T, error)) (T, error) {
	if i.sema != nil {
		i.sema <- struct{}{}
		defer func() { <-i.sema }()
	}

	return future.Go(fn).Get(context.Background())
}

func (i *CommandIsolator) track(operation Operation) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.pending[operation]++
}

func (i *CommandIsolator) untrack(operation Operation) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.pending[operation] <= 1 {
		delete(i.pending, operation)

		return
	}

	i.pending[operation]--
}
