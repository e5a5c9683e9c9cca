package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/alarm-clock/internal/logger"
)

// Config holds the settings shared by the alarm clock binaries.
type Config struct {
	// ServerAddress is the gRPC address of the watchdog server.
	ServerAddress string `yaml:"server_addr"`
	// Countdown is how long the server waits for a kick before the switch trips.
	Countdown time.Duration `yaml:"countdown"`
	// Timeout is the duration for network operations and RPC calls.
	Timeout time.Duration `yaml:"timeout"`
	// PollInterval is how often the checker asks the server for its status.
	PollInterval time.Duration `yaml:"poll_interval"`
	// OfflineTimeout trips the checker when the server stays unreachable this long.
	// Zero disables the offline timer.
	OfflineTimeout time.Duration `yaml:"offline_timeout"`
	// StateFile is the path to the JSON file storing the last kick.
	StateFile string `yaml:"state_file"`
	// MetricsAddress enables the Prometheus endpoint of the server when set.
	MetricsAddress string `yaml:"metrics_addr,omitempty"`
	// KickSchedule is a cron spec for repeated kicks, a single kick when empty.
	KickSchedule string `yaml:"kick_schedule,omitempty"`
	// NotifyURLs are shoutrrr service URLs notified when the switch trips.
	NotifyURLs []string `yaml:"notify_urls,omitempty"`
	// LogLevel is the minimum log level.
	LogLevel string `yaml:"log_level,omitempty"`
	// LogFile enables a rotating log file when set.
	LogFile string `yaml:"log_file,omitempty"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "alarm-clock-settings.yaml"

	// DefaultStateFilename is the default filename for the persisted kick.
	DefaultStateFilename = "alarm-clock-state.json"

	// DefaultCountdown is the default dead man's switch countdown.
	DefaultCountdown = 5 * time.Minute

	// DefaultTimeout is the default duration for network operations.
	DefaultTimeout = 5 * time.Second

	// DefaultPollInterval is the default checker polling interval.
	DefaultPollInterval = 5 * time.Second

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errServerSocketRequired is returned when server address is missing.
	errServerSocketRequired = errors.New("server address must be provided")
	// errNegativeDuration is returned for negative durations.
	errNegativeDuration = errors.New("duration must not be negative")
	// ErrOfflineTimeoutTooShort is returned when the offline timeout cannot span a poll interval.
	ErrOfflineTimeoutTooShort = errors.New("offline timeout must be longer than the poll interval")
	// errNotifyURLScheme is returned for notification URLs without a service scheme.
	errNotifyURLScheme = errors.New("notification URL must have a service scheme")
)

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and formatting
// and fills in defaults for the optional ones.
//
//nolint:cyclop // One flat check per setting.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.ServerAddress == "" {
		return errServerSocketRequired
	}

	if _, err := net.ResolveTCPAddr("tcp", settings.ServerAddress); err != nil {
		return fmt.Errorf("invalid server socket: %w", err)
	}

	durations := map[string]time.Duration{
		"countdown":       settings.Countdown,
		"timeout":         settings.Timeout,
		"poll_interval":   settings.PollInterval,
		"offline_timeout": settings.OfflineTimeout,
	}
	for name, d := range durations {
		if d < 0 {
			return fmt.Errorf("%s %s: %w", name, d, errNegativeDuration)
		}
	}

	if settings.Countdown == 0 {
		settings.Countdown = DefaultCountdown
	}

	if settings.Timeout == 0 {
		settings.Timeout = DefaultTimeout
	}

	if settings.PollInterval == 0 {
		settings.PollInterval = DefaultPollInterval
	}

	if settings.StateFile == "" {
		settings.StateFile = DefaultStateFilename
	}

	if err := ValidateOfflineTimeout(settings.OfflineTimeout, settings.PollInterval); err != nil {
		return err
	}

	if settings.MetricsAddress != "" {
		if _, err := net.ResolveTCPAddr("tcp", settings.MetricsAddress); err != nil {
			return fmt.Errorf("invalid metrics socket: %w", err)
		}
	}

	if settings.KickSchedule != "" {
		if _, err := cron.ParseStandard(settings.KickSchedule); err != nil {
			return fmt.Errorf("invalid kick schedule: %w", err)
		}
	}

	for _, raw := range settings.NotifyURLs {
		parsed, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid notification URL: %w", err)
		}

		if parsed.Scheme == "" {
			return fmt.Errorf("%q: %w", raw, errNotifyURLScheme)
		}
	}

	if settings.LogLevel != "" {
		if _, ok := logger.ParseLogLevel(settings.LogLevel); !ok {
			return fmt.Errorf("%w: %q", logger.ErrUnknownLevel, settings.LogLevel)
		}
	}

	return nil
}

// LoggerOptions returns the logging settings in the form the logger package expects.
func (c *Config) LoggerOptions() logger.Options {
	return logger.Options{
		Level: c.LogLevel,
		File:  c.LogFile,
	}
}

// ValidateOfflineTimeout checks that an enabled offline timeout outlasts one poll interval,
// otherwise a single failed poll would already look like a long outage.
func ValidateOfflineTimeout(offlineTimeout, pollInterval time.Duration) error {
	if offlineTimeout > 0 && offlineTimeout <= pollInterval {
		return fmt.Errorf("offline_timeout %s, poll_interval %s: %w", offlineTimeout, pollInterval, ErrOfflineTimeoutTooShort)
	}

	return nil
}
