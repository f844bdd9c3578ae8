package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the JobScout service.
type Config struct {
	DBPath       string
	Schedule     ScheduleConfig
	Fetch        FetchConfig
	Notification NotificationConfig
	AI           AIConfig
	Scan         ScanConfig
}

// ScheduleConfig controls the periodic scan daemon.
type ScheduleConfig struct {
	// Spec is a cron expression in robfig/cron syntax, e.g. "@every 6h" or
	// "0 */4 * * *".
	Spec string
	// RunOnStart triggers an immediate scan pass when the daemon boots.
	RunOnStart bool
}

// FetchConfig controls the listing-site HTTP client.
type FetchConfig struct {
	MinDelay time.Duration // minimum gap between requests to the listing site
	Timeout  time.Duration // per-request timeout
}

// AIConfig controls the OpenAI evaluation layer.
type AIConfig struct {
	Enabled    bool
	BaseURL    string        // defaults to https://api.openai.com/v1
	Model      string        // OpenAI model identifier, e.g. "gpt-4o-mini"
	APIKey     string        // expanded from env var by Load
	Timeout    time.Duration // per-request timeout
	MaxRetries int           // completion retries on transient failures
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "log" or "slack"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
}

// ScanConfig holds pipeline tuning knobs.
type ScanConfig struct {
	// MaxDetailAttempts caps how many times a job missing detail is
	// reprocessed across scans. Zero means retry on every scan.
	MaxDetailAttempts int `yaml:"max_detail_attempts"`
}

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	DBPath       string             `yaml:"db_path"`
	Schedule     rawScheduleConfig  `yaml:"schedule"`
	Fetch        rawFetchConfig     `yaml:"fetch"`
	Notification NotificationConfig `yaml:"notification"`
	AI           rawAIConfig        `yaml:"ai"`
	Scan         ScanConfig         `yaml:"scan"`
}

type rawScheduleConfig struct {
	Spec       string `yaml:"spec"`
	RunOnStart *bool  `yaml:"run_on_start"`
}

type rawFetchConfig struct {
	MinDelay string `yaml:"min_delay"`
	Timeout  string `yaml:"timeout"`
}

type rawAIConfig struct {
	Enabled    bool   `yaml:"enabled"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	APIKey     string `yaml:"api_key"`
	Timeout    string `yaml:"timeout"`
	MaxRetries *int   `yaml:"max_retries"`
}

// Load reads and parses the YAML config file at path, validates it, and
// returns Config. Environment variables in the file body are expanded, so
// secrets can be referenced as ${OPENAI_API_KEY}.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	minDelay := 2 * time.Second
	if raw.Fetch.MinDelay != "" {
		minDelay, err = time.ParseDuration(raw.Fetch.MinDelay)
		if err != nil {
			return nil, fmt.Errorf("parse fetch.min_delay %q: %w", raw.Fetch.MinDelay, err)
		}
	}

	fetchTimeout := 30 * time.Second
	if raw.Fetch.Timeout != "" {
		fetchTimeout, err = time.ParseDuration(raw.Fetch.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse fetch.timeout %q: %w", raw.Fetch.Timeout, err)
		}
	}

	aiTimeout := 60 * time.Second
	if raw.AI.Timeout != "" {
		aiTimeout, err = time.ParseDuration(raw.AI.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse ai.timeout %q: %w", raw.AI.Timeout, err)
		}
	}

	aiRetries := 3
	if raw.AI.MaxRetries != nil {
		aiRetries = *raw.AI.MaxRetries
	}

	aiBaseURL := raw.AI.BaseURL
	if aiBaseURL == "" {
		aiBaseURL = defaultOpenAIBaseURL
	}

	dbPath := raw.DBPath
	if dbPath == "" {
		dbPath = "jobscout.db"
	}

	schedSpec := raw.Schedule.Spec
	if schedSpec == "" {
		schedSpec = "@every 6h"
	}
	runOnStart := true
	if raw.Schedule.RunOnStart != nil {
		runOnStart = *raw.Schedule.RunOnStart
	}

	cfg := &Config{
		DBPath: dbPath,
		Schedule: ScheduleConfig{
			Spec:       schedSpec,
			RunOnStart: runOnStart,
		},
		Fetch: FetchConfig{
			MinDelay: minDelay,
			Timeout:  fetchTimeout,
		},
		Notification: raw.Notification,
		AI: AIConfig{
			Enabled:    raw.AI.Enabled,
			BaseURL:    aiBaseURL,
			Model:      raw.AI.Model,
			APIKey:     raw.AI.APIKey,
			Timeout:    aiTimeout,
			MaxRetries: aiRetries,
		},
		Scan: raw.Scan,
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Fetch.MinDelay < 0 {
		return fmt.Errorf("fetch.min_delay must not be negative, got %v", cfg.Fetch.MinDelay)
	}
	if cfg.Fetch.Timeout <= 0 {
		return fmt.Errorf("fetch.timeout must be positive, got %v", cfg.Fetch.Timeout)
	}
	if cfg.Scan.MaxDetailAttempts < 0 {
		return fmt.Errorf("scan.max_detail_attempts must not be negative, got %d", cfg.Scan.MaxDetailAttempts)
	}

	switch cfg.Notification.Type {
	case "", "log":
	case "slack":
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		const prefix = "https://hooks.slack.com/"
		if len(cfg.Notification.WebhookURL) < len(prefix) ||
			cfg.Notification.WebhookURL[:len(prefix)] != prefix {
			return fmt.Errorf("notification.webhook_url must start with %s", prefix)
		}
	default:
		return fmt.Errorf("notification.type must be \"log\" or \"slack\", got %q", cfg.Notification.Type)
	}

	if cfg.AI.Enabled {
		if cfg.AI.APIKey == "" {
			return fmt.Errorf("ai.api_key is required when ai.enabled is true")
		}
		if cfg.AI.Model == "" {
			return fmt.Errorf("ai.model is required when ai.enabled is true")
		}
		if cfg.AI.MaxRetries < 0 {
			return fmt.Errorf("ai.max_retries must not be negative, got %d", cfg.AI.MaxRetries)
		}
	}

	return nil
}
