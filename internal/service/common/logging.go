//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"fmt"

	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/logger"
)

// SetupLogging configures the global logger from the settings file at configPath.
// Binaries call it once before running their service; the returned function
// flushes and closes the log outputs.
func SetupLogging(configPath string) (func(), error) {
	settings, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	closeLog, err := logger.Configure(settings.LoggerOptions())
	if err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}

	return closeLog, nil
}
