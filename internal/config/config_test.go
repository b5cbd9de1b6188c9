package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
app:
  environment: test
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Exchange.Name != "binance" {
		t.Errorf("expected default exchange name binance, got %q", cfg.Exchange.Name)
	}
	if cfg.Exchange.Symbol != "BTCUSDT" {
		t.Errorf("expected default symbol BTCUSDT, got %q", cfg.Exchange.Symbol)
	}
	if !cfg.Exchange.UseSandbox {
		t.Errorf("expected sandbox enabled by default")
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("expected default port 8000, got %d", cfg.Server.Port)
	}
	if cfg.Server.ShutdownTimeout != 5*time.Second {
		t.Errorf("expected default shutdown timeout 5s, got %s", cfg.Server.ShutdownTimeout)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level info, got %q", cfg.Logging.Level)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
app:
  environment: production
exchange:
  symbol: ETHUSDT
  use_sandbox: false
server:
  port: 9090
database:
  in_memory: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.App.Environment != "production" {
		t.Errorf("expected environment production, got %q", cfg.App.Environment)
	}
	if cfg.Exchange.Symbol != "ETHUSDT" {
		t.Errorf("expected symbol ETHUSDT, got %q", cfg.Exchange.Symbol)
	}
	if cfg.Exchange.UseSandbox {
		t.Errorf("expected sandbox disabled")
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if !cfg.Database.InMemory {
		t.Errorf("expected in-memory database")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestValidate_RejectsBadValues(t *testing.T) {
	path := writeConfig(t, `
server:
  port: -1
`)

	_, err := Load(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !strings.Contains(err.Error(), "server.port") {
		t.Errorf("expected port validation message, got %v", err)
	}
}
