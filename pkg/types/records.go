package types

import (
	"errors"
	"fmt"
)

// Errors for shape validation of command results.
var (
	// errMissingLabelKey indicates a label was returned without a key.
	errMissingLabelKey = errors.New("label is missing required field \"key\"")
	// errMissingVariableName indicates an environment variable was returned without a name.
	errMissingVariableName = errors.New("environment variable is missing required field \"name\"")
	// errMissingCommandValue indicates a pre-exec command was returned without a value.
	errMissingCommandValue = errors.New("command is missing required field \"value\"")
)

// Record is an opaque descriptor owned by the agent (task, executor, framework,
// slave or container info). It is forwarded to commands untouched.
type Record map[string]any

// ContainerID identifies a container managed by the agent.
type ContainerID string

// Label is a key/value pair attached to an executor.
type Label struct {
	Key   string `json:"key"             yaml:"key"`
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
}

// Labels is the output of the label decoration command.
type Labels []Label

// Validate checks every label carries a key.
func (l Labels) Validate() error {
	for i, label := range l {
		if label.Key == "" {
			return fmt.Errorf("%w (index %d)", errMissingLabelKey, i)
		}
	}

	return nil
}

// Map returns the labels keyed by name; later duplicates win.
func (l Labels) Map() map[string]string {
	out := make(map[string]string, len(l))
	for _, label := range l {
		out[label.Key] = label.Value
	}

	return out
}

// EnvironmentVariable is a single variable added to an executor or container.
type EnvironmentVariable struct {
	Name  string `json:"name"  yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Environment is the output of the environment decoration command.
type Environment []EnvironmentVariable

// Validate checks every variable carries a name.
func (e Environment) Validate() error {
	for i, variable := range e {
		if variable.Name == "" {
			return fmt.Errorf("%w (index %d)", errMissingVariableName, i)
		}
	}

	return nil
}

// Strings renders the environment as os.Environ style NAME=value entries.
func (e Environment) Strings() []string {
	out := make([]string, 0, len(e))
	for _, variable := range e {
		out = append(out, variable.Name+"="+variable.Value)
	}

	return out
}

// CommandInfo is a command executed inside the container before the task starts.
type CommandInfo struct {
	Value     string   `json:"value"               yaml:"value"`
	Shell     *bool    `json:"shell,omitempty"     yaml:"shell,omitempty"`
	Arguments []string `json:"arguments,omitempty" yaml:"arguments,omitempty"`
}

// IsShell reports whether the command runs through a shell; defaults to true.
func (c CommandInfo) IsShell() bool {
	return c.Shell == nil || *c.Shell
}

// LaunchInfo is the launch adjustment returned by the prepare command.
type LaunchInfo struct {
	Environment     Environment   `json:"environment,omitempty"       yaml:"environment,omitempty"`
	PreExecCommands []CommandInfo `json:"pre_exec_commands,omitempty" yaml:"pre_exec_commands,omitempty"`
}

// Validate checks nested variables and commands for required fields.
func (l *LaunchInfo) Validate() error {
	if l == nil {
		return nil
	}

	if err := l.Environment.Validate(); err != nil {
		return err
	}

	for i, command := range l.PreExecCommands {
		if command.Value == "" {
			return fmt.Errorf("%w (index %d)", errMissingCommandValue, i)
		}
	}

	return nil
}

// IsEmpty reports whether the launch info carries no adjustment.
func (l *LaunchInfo) IsEmpty() bool {
	return l == nil || (len(l.Environment) == 0 && len(l.PreExecCommands) == 0)
}
