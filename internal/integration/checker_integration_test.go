package integration

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/service/checker"
	"github.com/oshokin/alarm-clock/internal/service/common"
)

// TestChecker_PollsAndReturnsOnCancel runs the checker against a tripped server in Debug mode and cancels it.
func TestChecker_PollsAndReturnsOnCancel(t *testing.T) {
	t.Parallel()

	// Setup test environment with a server whose switch trips quickly.
	addr := reservePort(t)
	statePath := filepath.Join(t.TempDir(), "state.json")

	stop := startGRPC(t, &config.Config{ServerAddress: addr, Countdown: 50 * time.Millisecond}, statePath)
	defer stop()

	ctx := context.Background()

	c, err := common.Dial(ctx, addr)
	require.NoError(t, err)

	defer func() {
		_ = c.Close()
	}()

	// Wait for the switch to trip so checker would attempt shutdown, but we'll set Debug=true.
	require.Eventually(t, func() bool {
		status, err := c.GetStatus(ctx)
		return err == nil && status.GetExpired()
	}, 3*time.Second, 20*time.Millisecond)

	// Setup cancellable context for checker.
	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	// Create temporary config file for checker.
	cfgPath := filepath.Join(t.TempDir(), "checker-settings.yaml")
	err = config.Save(cfgPath, &config.Config{
		ServerAddress:  addr,
		Timeout:        1 * time.Second,
		OfflineTimeout: time.Minute,
	})
	require.NoError(t, err)

	// Start checker in debug mode (won't shutdown).
	go func() {
		options := &checker.Options{
			ConfigPath:    cfgPath,
			ServerAddress: addr, // Override config address
			PollInterval:  50 * time.Millisecond,
			Debug:         true,
		}

		done <- checker.Run(runCtx, options)
	}()

	// Wait for checker to start polling, then cancel.
	time.Sleep(200 * time.Millisecond)
	cancel()

	// Verify checker exits cleanly on cancellation.
	require.NoError(t, <-done)
}

// containsLine reports whether text has a line equal to line.
func containsLine(text, line string) bool {
	for candidate := range strings.Lines(text) {
		if strings.TrimSpace(candidate) == line {
			return true
		}
	}

	return false
}
