package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicholas-fedor/commandhook/pkg/types"
)

func TestEncode(t *testing.T) {
	t.Parallel()

	payload, err := Encode(struct {
		TaskInfo types.Record `json:"task_info"`
	}{TaskInfo: types.Record{"name": "T1"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"task_info":{"name":"T1"}}`, string(payload))
}

//nolint:exhaustruct // Omit fields irrelevant to tests
func TestDecode_Labels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    types.Labels
		wantErr bool
	}{
		{
			name:  "single label",
			input: `[{"key":"env","value":"prod"}]`,
			want:  types.Labels{{Key: "env", Value: "prod"}},
		},
		{
			name:  "unknown fields are ignored",
			input: "  [{\"key\":\"env\",\"value\":\"prod\",\"origin\":\"cmdb\"}]\n",
			want:  types.Labels{{Key: "env", Value: "prod"}},
		},
		{
			name:  "value is optional",
			input: `[{"key":"flag"}]`,
			want:  types.Labels{{Key: "flag"}},
		},
		{name: "missing key", input: `[{"value":"prod"}]`, wantErr: true},
		{name: "wrong type", input: `[{"key":1,"value":"prod"}]`, wantErr: true},
		{name: "not an array", input: `{"key":"env"}`, wantErr: true},
		{name: "invalid syntax", input: `[{"key":`, wantErr: true},
		{name: "empty output", input: " \n", wantErr: true},
		{name: "null output", input: "null\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Decode[types.Labels]([]byte(tt.input))
			if tt.wantErr {
				require.ErrorIs(t, err, types.ErrDecodeFailed)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecode_Environment(t *testing.T) {
	t.Parallel()

	got, err := Decode[types.Environment]([]byte(`[{"name":"FOO","value":"bar"}]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"FOO=bar"}, got.Strings())

	_, err = Decode[types.Environment]([]byte(`[{"value":"bar"}]`))
	require.ErrorIs(t, err, types.ErrDecodeFailed)
}

func TestDecode_LaunchInfo(t *testing.T) {
	t.Parallel()

	got, err := Decode[*types.LaunchInfo]([]byte(`{
		"environment": [{"name": "MOUNT", "value": "/data"}],
		"pre_exec_commands": [{"value": "mount /data", "shell": false, "arguments": ["mount", "/data"]}]
	}`))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "MOUNT", got.Environment[0].Name)
	assert.False(t, got.PreExecCommands[0].IsShell())

	_, err = Decode[*types.LaunchInfo]([]byte(`{"pre_exec_commands": [{"shell": true}]}`))
	require.ErrorIs(t, err, types.ErrDecodeFailed)
}

func TestIsBlank(t *testing.T) {
	t.Parallel()

	assert.True(t, IsBlank(nil))
	assert.True(t, IsBlank([]byte("  \n")))
	assert.True(t, IsBlank([]byte("null\n")))
	assert.False(t, IsBlank([]byte("{}")))
}
