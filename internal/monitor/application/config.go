package application

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Status sources the poller can be pointed at.
const (
	SourceEquipments          = "equipments"
	SourceInterventions       = "interventions"
	SourceInterventionsSimple = "interventions-simple"
)

// Config carries the monitor tuning knobs.
type Config struct {
	PollInterval   time.Duration
	RequestTimeout time.Duration
	ExpiryBase     time.Duration
	ExpiryStep     time.Duration
	Source         string
}

type fileConfig struct {
	PollInterval   string `yaml:"poll_interval"`
	RequestTimeout string `yaml:"request_timeout"`
	ExpiryBase     string `yaml:"alert_expiry_base"`
	ExpiryStep     string `yaml:"alert_expiry_step"`
	Source         string `yaml:"source"`
}

// LoadConfig loads monitor config from yaml or env. Defaults match the
// UI clients' historical timing: 30s polls, 9s banner expiry with 1s
// stagger, 10s request timeout.
func LoadConfig() (Config, error) {
	cfg := Config{
		PollInterval:   getenvDuration("MONITOR_POLL_INTERVAL", 30*time.Second),
		RequestTimeout: getenvDuration("MONITOR_REQUEST_TIMEOUT", 10*time.Second),
		ExpiryBase:     getenvDuration("MONITOR_ALERT_EXPIRY_BASE", 9*time.Second),
		ExpiryStep:     getenvDuration("MONITOR_ALERT_EXPIRY_STEP", time.Second),
		Source:         getenvDefault("MONITOR_SOURCE", SourceEquipments),
	}

	if path := os.Getenv("MONITOR_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		var file fileConfig
		if err := yaml.Unmarshal(data, &file); err != nil {
			return cfg, err
		}
		if err := applyFileConfig(&cfg, file); err != nil {
			return cfg, err
		}
	}

	switch cfg.Source {
	case SourceEquipments, SourceInterventions, SourceInterventionsSimple:
	default:
		return cfg, fmt.Errorf("monitor: unknown status source %q", cfg.Source)
	}
	if cfg.PollInterval <= 0 {
		return cfg, fmt.Errorf("monitor: poll interval must be positive")
	}
	return cfg, nil
}

func applyFileConfig(cfg *Config, file fileConfig) error {
	assign := func(field *time.Duration, raw, name string) error {
		if raw == "" {
			return nil
		}
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("monitor: invalid %s: %w", name, err)
		}
		*field = parsed
		return nil
	}
	if err := assign(&cfg.PollInterval, file.PollInterval, "poll_interval"); err != nil {
		return err
	}
	if err := assign(&cfg.RequestTimeout, file.RequestTimeout, "request_timeout"); err != nil {
		return err
	}
	if err := assign(&cfg.ExpiryBase, file.ExpiryBase, "alert_expiry_base"); err != nil {
		return err
	}
	if err := assign(&cfg.ExpiryStep, file.ExpiryStep, "alert_expiry_step"); err != nil {
		return err
	}
	if file.Source != "" {
		cfg.Source = file.Source
	}
	return nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
