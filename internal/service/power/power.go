package power

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
)

// windowsShutdownTimeout is the delay in seconds for Windows shutdown command.
const windowsShutdownTimeout = "0"

// ErrUnsupportedOS indicates the current OS is not supported for shutdown.
var ErrUnsupportedOS = errors.New("unsupported operating system")

// Shutdown powers the machine off when the switch trips:
// - Linux/macOS: `shutdown -h now`
// - Windows:     `shutdown.exe -s -f -t 0` (force, no delay)
// The command is started asynchronously; the OS takes over the rest.
func Shutdown(ctx context.Context) error {
	name, args, err := shutdownCommand(runtime.GOOS)
	if err != nil {
		return err
	}

	if err = exec.CommandContext(ctx, name, args...).Start(); err != nil {
		return fmt.Errorf("start %s: %w", name, err)
	}

	return nil
}

// shutdownCommand picks the power-off command for goos.
func shutdownCommand(goos string) (string, []string, error) {
	switch goos {
	case "linux", "darwin", "freebsd", "openbsd", "netbsd":
		return "shutdown", []string{"-h", "now"}, nil
	case "windows":
		return "shutdown.exe", []string{"-s", "-f", "-t", windowsShutdownTimeout}, nil
	default:
		return "", nil, fmt.Errorf("%s: %w", goos, ErrUnsupportedOS)
	}
}
