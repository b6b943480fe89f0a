// Package codec converts invocation contexts to the JSON payload written to a
// command's stdin, and command output back into typed results.
package codec

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/nicholas-fedor/commandhook/pkg/types"
)

// nullOutput is a top-level JSON null.
var nullOutput = []byte("null")

// Validator is implemented by result shapes that have required fields.
type Validator interface {
	Validate() error
}

// Encode serializes an invocation context.
//
// Parameters:
//   - value: Context to encode; must be JSON representable.
//
// Returns:
//   - []byte: Encoded payload.
//   - error: Non-nil if the value cannot be represented.
func Encode(value any) ([]byte, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errEncodeFailed, err)
	}

	return payload, nil
}

// Decode parses command output into T.
//
// Unknown fields are ignored. Empty or null output, syntax errors, type
// mismatches and failed Validate checks all wrap types.ErrDecodeFailed.
//
// Parameters:
//   - data: Raw command output.
//
// Returns:
//   - T: Decoded value.
//   - error: Non-nil if the output does not match the expected shape.
func Decode[T any](data []byte) (T, error) {
	var value T

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return value, fmt.Errorf("%w: %w", types.ErrDecodeFailed, errEmptyOutput)
	}

	if bytes.Equal(trimmed, nullOutput) {
		return value, fmt.Errorf("%w: %w", types.ErrDecodeFailed, errNullOutput)
	}

	if err := json.Unmarshal(trimmed, &value); err != nil {
		var zero T

		return zero, fmt.Errorf("%w: %w", types.ErrDecodeFailed, err)
	}

	if err := validate(&value); err != nil {
		var zero T

		return zero, fmt.Errorf("%w: %w", types.ErrDecodeFailed, err)
	}

	return value, nil
}

// validate runs Validate on value whether T or *T implements it.
func validate[T any](value *T) error {
	if validator, ok := any(value).(Validator); ok {
		return validator.Validate()
	}

	if validator, ok := any(*value).(Validator); ok {
		return validator.Validate()
	}

	return nil
}

// IsBlank reports whether the command wrote nothing but whitespace or a JSON null.
func IsBlank(data []byte) bool {
	trimmed := bytes.TrimSpace(data)

	return len(trimmed) == 0 || bytes.Equal(trimmed, nullOutput)
}
