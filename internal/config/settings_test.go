package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := loadFromPath(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("loadFromPath error: %v", err)
	}
	if cfg.OrchestratorBaseURL() != "http://localhost:5000" {
		t.Fatalf("unexpected orchestrator url: %q", cfg.OrchestratorBaseURL())
	}
	if cfg.NotifyBaseURL() != "http://127.0.0.1:5001" {
		t.Fatalf("unexpected notify url: %q", cfg.NotifyBaseURL())
	}
	if cfg.SignatureTitleLine() != "CEO at SERICA" {
		t.Fatalf("unexpected signature line: %q", cfg.SignatureTitleLine())
	}
}

func TestLoadReadsFileValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[services]\norchestrator_url = \"http://10.0.0.2:5000/\"\nnotify_url = \"10.0.0.2:5001\"\n\n[logging]\nlevel = \"debug\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := loadFromPath(path)
	if err != nil {
		t.Fatalf("loadFromPath error: %v", err)
	}
	if cfg.OrchestratorBaseURL() != "http://10.0.0.2:5000" {
		t.Fatalf("expected trailing slash stripped, got %q", cfg.OrchestratorBaseURL())
	}
	if cfg.NotifyBaseURL() != "http://10.0.0.2:5001" {
		t.Fatalf("expected scheme added, got %q", cfg.NotifyBaseURL())
	}
	if cfg.LogLevel() != "debug" {
		t.Fatalf("unexpected log level: %q", cfg.LogLevel())
	}
}

func TestTunnelOverrideWinsOverAPIURL(t *testing.T) {
	t.Setenv(envOrchestratorURL, "http://local.example:5000")
	t.Setenv(envTunnelURL, "https://demo.ngrok.app")

	cfg, err := loadFromPath(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("loadFromPath error: %v", err)
	}
	if cfg.OrchestratorBaseURL() != "https://demo.ngrok.app" {
		t.Fatalf("expected tunnel override, got %q", cfg.OrchestratorBaseURL())
	}
}

func TestNotifyOverride(t *testing.T) {
	t.Setenv(envNotifyURL, "http://notify.example:5001")

	cfg, err := loadFromPath(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("loadFromPath error: %v", err)
	}
	if cfg.NotifyBaseURL() != "http://notify.example:5001" {
		t.Fatalf("expected notify override, got %q", cfg.NotifyBaseURL())
	}
}
