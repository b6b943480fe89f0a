package types

import "github.com/nicholas-fedor/commandhook/pkg/future"

// Isolator is the container isolation lifecycle delegated to external commands.
//
// Both methods return immediately; the command runs on a worker goroutine and
// its result is delivered through the returned future.
type Isolator interface {
	// Prepare runs before a container is launched and may return a launch adjustment.
	//
	// A nil *LaunchInfo means no adjustment is needed.
	Prepare(containerID ContainerID, containerConfig Record) future.Future[*LaunchInfo]

	// Cleanup runs after a container has exited.
	Cleanup(containerID ContainerID) future.Future[struct{}]
}

// Isolator point names used in logs, metrics and configuration.
const (
	PointPrepare = "prepare"
	PointCleanup = "cleanup"
)
