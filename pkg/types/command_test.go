package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		path    string
		timeout time.Duration
		wantErr error
	}{
		{name: "valid", path: "/bin/true", timeout: time.Second},
		{name: "empty path", path: "  ", timeout: time.Second, wantErr: errEmptyCommandPath},
		{name: "zero timeout", path: "/bin/true", wantErr: errInvalidCommandTimeout},
		{name: "negative timeout", path: "/bin/true", timeout: -time.Second, wantErr: errInvalidCommandTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			command, err := NewCommand(tt.path, nil, tt.timeout)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, command)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.path, command.Path())
			assert.Equal(t, tt.timeout, command.Timeout())
		})
	}
}

func TestCommand_Immutable(t *testing.T) {
	t.Parallel()

	args := []string{"--mode", "labels"}

	command, err := NewCommand("/opt/hooks/labels", args, time.Second)
	require.NoError(t, err)

	args[0] = "--changed"
	assert.Equal(t, []string{"--mode", "labels"}, command.Args())

	got := command.Args()
	got[1] = "changed"
	assert.Equal(t, []string{"--mode", "labels"}, command.Args())
}

func TestCommand_String(t *testing.T) {
	t.Parallel()

	var disabled *Command
	assert.Equal(t, "<none>", disabled.String())

	bare, err := NewCommand("/opt/hooks/cleanup", nil, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "/opt/hooks/cleanup", bare.String())

	withArgs, err := NewCommand("/opt/hooks/labels", []string{"-v", "x"}, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "/opt/hooks/labels -v x", withArgs.String())
}
