package codec

import "errors"

var (
	// errEncodeFailed indicates an invocation context could not be serialized.
	errEncodeFailed = errors.New("failed to encode payload")
	// errEmptyOutput indicates the command wrote nothing to stdout.
	errEmptyOutput = errors.New("command output is empty")
	// errNullOutput indicates the command wrote a JSON null where a result is required.
	errNullOutput = errors.New("command output is null")
)
