package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func baseOptions(dir string) ConfigOptions {
	opts := DefaultConfigOptions()
	opts.BasePath = dir
	opts.EnvPrefix = ""
	return opts
}

func TestNewConfig_MissingDirFails(t *testing.T) {
	opts := baseOptions(filepath.Join(t.TempDir(), "nope"))
	if _, err := NewConfig(opts); err == nil {
		t.Fatal("expected error for missing config files")
	}
}

func TestConfig_PanelBindWithDefaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.yaml"), `
server:
  port: 9100
logging:
  level: warn
`)

	cfg, err := NewConfig(baseOptions(dir))
	if err != nil {
		t.Fatalf("NewConfig failed: %v", err)
	}

	pc, err := cfg.Panel()
	if err != nil {
		t.Fatalf("Panel failed: %v", err)
	}

	if pc.Server.Port != 9100 {
		t.Errorf("server.port = %d, want 9100", pc.Server.Port)
	}
	// Unset fields fall back to struct defaults.
	if pc.Server.Host != "0.0.0.0" {
		t.Errorf("server.host = %q, want default", pc.Server.Host)
	}
	if pc.Storage.Type != "local" {
		t.Errorf("storage.type = %q, want local default", pc.Storage.Type)
	}
	if pc.Logging.Level != "warn" {
		t.Errorf("logging.level = %q, want warn", pc.Logging.Level)
	}
}

func TestConfig_LocalOverlayWins(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.yaml"), "server:\n  port: 9100\n")
	writeFile(t, filepath.Join(dir, "config.local.yaml"), "server:\n  port: 9200\n")

	cfg, err := NewConfig(baseOptions(dir))
	if err != nil {
		t.Fatalf("NewConfig failed: %v", err)
	}

	pc, err := cfg.Panel()
	if err != nil {
		t.Fatalf("Panel failed: %v", err)
	}
	if pc.Server.Port != 9200 {
		t.Errorf("local overlay not applied: port = %d", pc.Server.Port)
	}
}

func TestConfig_PluginFragmentsMerged(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.yaml"), "server:\n  port: 9100\n")
	writeFile(t, filepath.Join(dir, "plugins.d", "invoices.yaml"), `
enabled: true
settings:
  currency: EUR
`)
	writeFile(t, filepath.Join(dir, "plugins.d", "crm.yaml"), "enabled: false\n")

	cfg, err := NewConfig(baseOptions(dir))
	if err != nil {
		t.Fatalf("NewConfig failed: %v", err)
	}

	pc, err := cfg.Panel()
	if err != nil {
		t.Fatalf("Panel failed: %v", err)
	}

	provider := pc.PluginProvider("invoices")
	if !provider.IsEnabled() {
		t.Error("invoices should be enabled")
	}
	if got := provider.GetString("currency", ""); got != "EUR" {
		t.Errorf("currency = %q, want EUR", got)
	}

	if pc.PluginEnabled("crm") {
		t.Error("crm fragment disables the plugin")
	}
	// Plugins with no entry at all run with defaults.
	if !pc.PluginEnabled("unconfigured") {
		t.Error("unconfigured plugins default to enabled")
	}
}

func TestConfig_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.yaml"), "logging:\n  level: info\n")

	t.Setenv("PANEL_LOGGING_LEVEL", "error")

	opts := baseOptions(dir)
	opts.EnvPrefix = "PANEL"
	cfg, err := NewConfig(opts)
	if err != nil {
		t.Fatalf("NewConfig failed: %v", err)
	}

	pc, err := cfg.Panel()
	if err != nil {
		t.Fatalf("Panel failed: %v", err)
	}
	if pc.Logging.Level != "error" {
		t.Errorf("env override not applied: level = %q", pc.Logging.Level)
	}
}

func TestConfig_ValidateRejectsBadPolicies(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.yaml"), `
rbac:
  policies:
    - ["admin", "/api/v1/registry/*"]
`)

	cfg, err := NewConfig(baseOptions(dir))
	if err != nil {
		t.Fatalf("NewConfig failed: %v", err)
	}

	if _, err := cfg.Panel(); err == nil {
		t.Fatal("two-field policy should fail validation")
	}
}

func TestConfig_SnapshotAndRestore(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.yaml"), "server:\n  port: 9100\n")

	cfg, err := NewConfig(baseOptions(dir))
	if err != nil {
		t.Fatalf("NewConfig failed: %v", err)
	}

	if _, err := cfg.Snapshot(); err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}

	cfg.Set("server.port", 1)
	if err := cfg.Restore(); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	pc, err := cfg.Panel()
	if err != nil {
		t.Fatalf("Panel failed: %v", err)
	}
	if pc.Server.Port != 9100 {
		t.Errorf("restore did not bring back port 9100, got %d", pc.Server.Port)
	}
}
