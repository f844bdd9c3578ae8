package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
db_path: /var/lib/jobscout/scout.db
schedule:
  spec: "@every 4h"
fetch:
  min_delay: 3s
  timeout: 20s
notification:
  type: log
ai:
  enabled: true
  model: gpt-4o-mini
  api_key: sk-test
  timeout: 45s
  max_retries: 5
scan:
  max_detail_attempts: 4
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "/var/lib/jobscout/scout.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.Schedule.Spec != "@every 4h" {
		t.Errorf("Schedule.Spec = %q", cfg.Schedule.Spec)
	}
	if cfg.Fetch.MinDelay != 3*time.Second || cfg.Fetch.Timeout != 20*time.Second {
		t.Errorf("Fetch = %+v", cfg.Fetch)
	}
	if cfg.AI.Model != "gpt-4o-mini" || cfg.AI.APIKey != "sk-test" {
		t.Errorf("AI = %+v", cfg.AI)
	}
	if cfg.AI.Timeout != 45*time.Second || cfg.AI.MaxRetries != 5 {
		t.Errorf("AI timing = %+v", cfg.AI)
	}
	if cfg.AI.BaseURL != defaultOpenAIBaseURL {
		t.Errorf("AI.BaseURL = %q, want default", cfg.AI.BaseURL)
	}
	if cfg.Scan.MaxDetailAttempts != 4 {
		t.Errorf("Scan.MaxDetailAttempts = %d", cfg.Scan.MaxDetailAttempts)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
notification:
  type: log
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "jobscout.db" {
		t.Errorf("DBPath = %q, want default", cfg.DBPath)
	}
	if cfg.Schedule.Spec != "@every 6h" {
		t.Errorf("Schedule.Spec = %q, want default", cfg.Schedule.Spec)
	}
	if !cfg.Schedule.RunOnStart {
		t.Error("RunOnStart should default to true")
	}
	if cfg.Fetch.MinDelay != 2*time.Second || cfg.Fetch.Timeout != 30*time.Second {
		t.Errorf("Fetch = %+v, want defaults", cfg.Fetch)
	}
	if cfg.AI.Enabled {
		t.Error("AI should default to disabled")
	}
	if cfg.Scan.MaxDetailAttempts != 0 {
		t.Errorf("MaxDetailAttempts = %d, want 0 (retry every scan)", cfg.Scan.MaxDetailAttempts)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("JOBSCOUT_TEST_KEY", "sk-from-env")
	cfg, err := Load(writeConfig(t, `
ai:
  enabled: true
  model: gpt-4o-mini
  api_key: ${JOBSCOUT_TEST_KEY}
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AI.APIKey != "sk-from-env" {
		t.Errorf("APIKey = %q, want expanded env value", cfg.AI.APIKey)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err == nil {
		t.Fatal("Load: expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "db_path: [broken"))
	if err == nil {
		t.Fatal("Load: expected error for invalid YAML")
	}
}

func TestLoad_AIEnabledRequiresKeyAndModel(t *testing.T) {
	_, err := Load(writeConfig(t, `
ai:
  enabled: true
  model: gpt-4o-mini
`))
	if err == nil {
		t.Error("expected error for missing api_key")
	}

	_, err = Load(writeConfig(t, `
ai:
  enabled: true
  api_key: sk-test
`))
	if err == nil {
		t.Error("expected error for missing model")
	}
}

func TestLoad_SlackRequiresWebhook(t *testing.T) {
	_, err := Load(writeConfig(t, `
notification:
  type: slack
`))
	if err == nil {
		t.Error("expected error for missing webhook_url")
	}

	_, err = Load(writeConfig(t, `
notification:
  type: slack
  webhook_url: https://evil.example.com/hook
`))
	if err == nil {
		t.Error("expected error for non-Slack webhook URL")
	}

	_, err = Load(writeConfig(t, `
notification:
  type: slack
  webhook_url: https://hooks.slack.com/services/T0/B0/xyz
`))
	if err != nil {
		t.Errorf("valid slack config rejected: %v", err)
	}
}

func TestLoad_UnknownNotifierType(t *testing.T) {
	_, err := Load(writeConfig(t, `
notification:
  type: carrier-pigeon
`))
	if err == nil {
		t.Error("expected error for unknown notifier type")
	}
}

func TestLoad_BadDuration(t *testing.T) {
	_, err := Load(writeConfig(t, `
fetch:
  min_delay: soonish
`))
	if err == nil {
		t.Error("expected error for unparseable duration")
	}
}

func TestLoad_NegativeDetailAttempts(t *testing.T) {
	_, err := Load(writeConfig(t, `
scan:
  max_detail_attempts: -1
`))
	if err == nil {
		t.Error("expected error for negative max_detail_attempts")
	}
}
