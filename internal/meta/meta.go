// Package meta holds build information injected with -ldflags.
package meta

// Version is the commandhook release, set at build time with
// -ldflags "-X github.com/nicholas-fedor/commandhook/internal/meta.Version=v1.2.3".
var Version = "v0.0.0-dev"
