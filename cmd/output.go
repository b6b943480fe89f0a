package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/nicholas-fedor/commandhook/pkg/types"
)

// Errors for reading records and writing results.
var (
	// errReadRecordFailed indicates a record file could not be read.
	errReadRecordFailed = errors.New("failed to read record")
	// errParseRecordFailed indicates a record file is not a JSON object.
	errParseRecordFailed = errors.New("record is not a JSON object")
	// errStdinReused indicates more than one record was requested from stdin.
	errStdinReused = errors.New("only one record can be read from stdin")
	// errWriteResultFailed indicates the result could not be rendered.
	errWriteResultFailed = errors.New("failed to write result")
)

// result is what a subcommand prints for a completed lifecycle event.
type result struct {
	Point       string            `json:"point"                 yaml:"point"`
	ContainerID types.ContainerID `json:"container_id,omitempty" yaml:"container_id,omitempty"`
	Applied     bool              `json:"applied"               yaml:"applied"`
	Labels      types.Labels      `json:"labels,omitempty"      yaml:"labels,omitempty"`
	Environment types.Environment `json:"environment,omitempty" yaml:"environment,omitempty"`
	LaunchInfo  *types.LaunchInfo `json:"launch_info,omitempty" yaml:"launch_info,omitempty"`
}

// recordReader loads records named on the command line, allowing stdin once.
type recordReader struct {
	stdin     io.Reader
	stdinUsed bool
}

// read loads the record at path. An empty path yields a nil record and "-" reads stdin.
func (r *recordReader) read(path string) (types.Record, error) {
	if path == "" {
		return nil, nil
	}

	var (
		raw []byte
		err error
	)

	if path == "-" {
		if r.stdinUsed {
			return nil, errStdinReused
		}

		r.stdinUsed = true
		raw, err = io.ReadAll(r.stdin)
	} else {
		raw, err = os.ReadFile(path)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errReadRecordFailed, path, err)
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	var record types.Record
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errParseRecordFailed, path, err)
	}

	return record, nil
}

// writeResult renders value as indented JSON or YAML.
func writeResult(w io.Writer, format string, value result) error {
	switch format {
	case "yaml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)

		if err := encoder.Encode(value); err != nil {
			return fmt.Errorf("%w: %w", errWriteResultFailed, err)
		}

		if err := encoder.Close(); err != nil {
			return fmt.Errorf("%w: %w", errWriteResultFailed, err)
		}
	default:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")

		if err := encoder.Encode(value); err != nil {
			return fmt.Errorf("%w: %w", errWriteResultFailed, err)
		}
	}

	return nil
}
