package runner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nicholas-fedor/commandhook/pkg/types"
)

func TestWithOutput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status     types.ExitStatus
		wantStdout bool
	}{
		{status: types.StatusSuccess, wantStdout: true},
		{status: types.StatusNonZeroExit, wantStdout: true},
		{status: types.StatusSpawnFailed},
		{status: types.StatusTimedOut},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			t.Parallel()

			outcome := withOutput(types.Outcome{Status: tt.status}, []byte("[]"), []byte("oops"))

			assert.Equal(t, []byte("oops"), outcome.Stderr)

			if tt.wantStdout {
				assert.Equal(t, []byte("[]"), outcome.Stdout)
			} else {
				assert.Nil(t, outcome.Stdout)
			}
		})
	}
}
