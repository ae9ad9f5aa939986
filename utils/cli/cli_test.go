package cli_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkcm/tenancy/utils/cli"
)

func TestRootCmdWithInfinitySleep(t *testing.T) {
	t.Run("Should block until context is cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		cmd := cli.NewRootCmdWithInfinitySleep(ctx, "test", "short description", "long description")

		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetErr(&out)
		cmd.SetArgs([]string{"--" + cli.SleepFlag})

		done := make(chan error, 1)
		go func() {
			done <- cmd.Execute()
		}()

		select {
		case <-done:
			t.Fatal("command returned before cancellation")
		case <-time.After(20 * time.Millisecond):
		}

		cancel()

		require.NoError(t, <-done)
		assert.Contains(t, out.String(), cli.RunningMessage)
		assert.Contains(t, out.String(), cli.ShutdownMessage)
	})

	t.Run("Should return immediately without sleep flag", func(t *testing.T) {
		cmd := cli.NewRootCmdWithInfinitySleep(t.Context(), "test", "short description", "long description")

		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetArgs([]string{})

		require.NoError(t, cmd.Execute())
		assert.NotContains(t, out.String(), cli.RunningMessage)
	})
}
