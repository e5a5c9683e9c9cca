package integration

import (
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/alarm-clock/internal/config"
	pb "github.com/oshokin/alarm-clock/internal/pb/v1"
	"github.com/oshokin/alarm-clock/internal/service/common"
	"github.com/oshokin/alarm-clock/internal/service/server"
)

// reservePort returns a free loopback address.
func reservePort(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	_ = l.Close()

	return addr
}

// startGRPC starts a watchdog server with temporary config and persistent state file.
// Returns a stop function that waits for the server to exit.
func startGRPC(t *testing.T, settings *config.Config, statePath string) (stop func()) {
	t.Helper()

	// Create cancellable context for server lifecycle.
	ctx, cancel := context.WithCancel(context.Background())
	cfgPath := filepath.Join(t.TempDir(), "settings.yaml")

	require.NoError(t, config.Save(cfgPath, settings))

	done := make(chan error, 1)

	// Start server in background goroutine.
	go func() {
		done <- server.Run(ctx, &server.Options{
			ConfigPath: cfgPath,
			StateFile:  statePath,
		})
	}()

	// Wait until the server accepts connections.
	require.Eventually(t, func() bool {
		conn, err := net.DialTimeout("tcp", settings.ServerAddress, 50*time.Millisecond)
		if err != nil {
			return false
		}

		_ = conn.Close()

		return true
	}, 3*time.Second, 20*time.Millisecond)

	return func() {
		cancel()
		require.NoError(t, <-done)
	}
}

var testActor = &pb.SystemActor{
	Hostname: "test-hostname",
	Username: "test-user",
}

// TestGRPC_KickRoundtrip kicks a real server and checks the kick survives a restart.
func TestGRPC_KickRoundtrip(t *testing.T) {
	t.Parallel()

	addr := reservePort(t)
	statePath := filepath.Join(t.TempDir(), "state.json")
	settings := &config.Config{ServerAddress: addr, Countdown: time.Hour, Timeout: 3 * time.Second}

	stop := startGRPC(t, settings, statePath)
	ctx := context.Background()

	c, err := common.Dial(ctx, addr, common.WithCallTimeout(3*time.Second))
	require.NoError(t, err)

	// A fresh server has never been kicked.
	initial, err := c.GetStatus(ctx)
	require.NoError(t, err)
	require.False(t, initial.GetExpired())
	require.Nil(t, initial.GetLastKick())
	require.Equal(t, time.Hour, initial.Countdown)

	kicked, err := c.Kick(ctx, testActor)
	require.NoError(t, err)
	require.NotEmpty(t, kicked.GetLastKick().ID)
	require.Equal(t, testActor, kicked.GetLastKick().GetActor())

	// The kick was persisted to disk.
	_, err = os.Stat(statePath)
	require.NoError(t, err)

	_ = c.Close()

	stop()

	// A restarted server reports the persisted kick.
	stop = startGRPC(t, settings, statePath)
	defer stop()

	c, err = common.Dial(ctx, addr, common.WithCallTimeout(3*time.Second))
	require.NoError(t, err)

	defer func() {
		_ = c.Close()
	}()

	restarted, err := c.GetStatus(ctx)
	require.NoError(t, err)
	require.Equal(t, kicked.GetLastKick().ID, restarted.GetLastKick().ID)
}

// TestGRPC_ExpiresAndRecovers lets a short countdown expire and kicks it back.
func TestGRPC_ExpiresAndRecovers(t *testing.T) {
	t.Parallel()

	addr := reservePort(t)
	metricsAddr := reservePort(t)
	settings := &config.Config{
		ServerAddress:  addr,
		Countdown:      200 * time.Millisecond,
		Timeout:        3 * time.Second,
		MetricsAddress: metricsAddr,
	}

	stop := startGRPC(t, settings, filepath.Join(t.TempDir(), "state.json"))
	defer stop()

	ctx := context.Background()

	c, err := common.Dial(ctx, addr, common.WithCallTimeout(3*time.Second))
	require.NoError(t, err)

	defer func() {
		_ = c.Close()
	}()

	require.Eventually(t, func() bool {
		status, err := c.GetStatus(ctx)
		return err == nil && status.GetExpired()
	}, 3*time.Second, 20*time.Millisecond)

	kicked, err := c.Kick(ctx, testActor)
	require.NoError(t, err)
	require.False(t, kicked.GetExpired())

	// The metrics endpoint reports the kick.
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + metricsAddr + "/metrics") //nolint:noctx // Test helper.
		if err != nil {
			return false
		}

		defer func() {
			_ = resp.Body.Close()
		}()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return false
		}

		return containsLine(string(body), `alarmclock_kicks_total{outcome="accepted"} 1`)
	}, 3*time.Second, 50*time.Millisecond)
}
