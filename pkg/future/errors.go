package future

import "errors"

var (
	// errPanicked indicates the function backing a future panicked.
	errPanicked = errors.New("future function panicked")
	// errWaitAborted indicates Get returned before the future settled.
	errWaitAborted = errors.New("stopped waiting for future")
)
