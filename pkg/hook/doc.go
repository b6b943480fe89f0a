// Package hook forwards agent hook points (label decoration, environment
// decoration and executor removal) to external commands.
package hook
