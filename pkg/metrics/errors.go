package metrics

import "errors"

var (
	// errAlreadyRegistered indicates a collector with the same name exists in the registry.
	errAlreadyRegistered = errors.New("metric already registered")
	// errRegisterFailed indicates the registry rejected a collector.
	errRegisterFailed = errors.New("failed to register metric")
	// errWriteTextfileFailed indicates the textfile could not be written.
	errWriteTextfileFailed = errors.New("failed to write metrics textfile")
)
