package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "channels.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadChannelsConfig(t *testing.T) {
	path := writeConfig(t, `
channels:
  slack:
    enabled: true
    timeout: 15s
  email:
    enabled: true
    from_email: team@example.com
    from_name: Example Kudos
    timeout: 30s
app:
  url: https://kudos.example.com
`)

	cfg, err := LoadChannelsConfig(path)
	if err != nil {
		t.Fatalf("LoadChannelsConfig: %v", err)
	}

	if !cfg.Channels.Slack.Enabled {
		t.Error("slack channel should be enabled")
	}
	if got := cfg.SlackTimeout(10 * time.Second); got != 15*time.Second {
		t.Errorf("SlackTimeout = %v, want 15s", got)
	}
	if cfg.Channels.Email.FromEmail != "team@example.com" {
		t.Errorf("FromEmail = %q, want %q", cfg.Channels.Email.FromEmail, "team@example.com")
	}
	if got := cfg.EmailTimeout(10 * time.Second); got != 30*time.Second {
		t.Errorf("EmailTimeout = %v, want 30s", got)
	}
	if cfg.App.URL != "https://kudos.example.com" {
		t.Errorf("App.URL = %q", cfg.App.URL)
	}
}

func TestLoadChannelsConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "email enabled without sender",
			content: `
channels:
  email:
    enabled: true
`,
		},
		{
			name: "bad timeout",
			content: `
channels:
  slack:
    enabled: true
    timeout: soon
`,
		},
		{
			name:    "not yaml",
			content: "{{{{",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			if _, err := LoadChannelsConfig(path); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoadChannelsConfig_MissingFile(t *testing.T) {
	if _, err := LoadChannelsConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDefaultChannelsConfig(t *testing.T) {
	cfg := DefaultChannelsConfig()

	if !cfg.Channels.Slack.Enabled || !cfg.Channels.Email.Enabled {
		t.Error("defaults should enable both channels")
	}
	if got := cfg.SlackTimeout(time.Second); got != 10*time.Second {
		t.Errorf("SlackTimeout = %v, want 10s", got)
	}
	if cfg.Channels.Email.FromEmail == "" {
		t.Error("default from_email is empty")
	}
}
