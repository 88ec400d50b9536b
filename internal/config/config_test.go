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
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `log:
  level: debug
`))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Log.GetLevel() != "debug" {
		t.Errorf("level = %q", cfg.Log.GetLevel())
	}
	if cfg.Database.Path != "./lightmgr.sqlite" {
		t.Errorf("database path = %q", cfg.Database.Path)
	}
	if cfg.Schedule.Path != "./light_schedule.json" {
		t.Errorf("schedule path = %q", cfg.Schedule.Path)
	}
	if cfg.Sensor.Address != 0x39 {
		t.Errorf("sensor addr = %#x, want 0x39", cfg.Sensor.Address)
	}
	if cfg.Jitter.OnMin != 60 || cfg.Jitter.OnMax != 180 {
		t.Errorf("on jitter = %+v", cfg.Jitter)
	}
	if cfg.Jitter.OffMin != 180 || cfg.Jitter.OffMax != 300 {
		t.Errorf("off jitter = %+v", cfg.Jitter)
	}
	if cfg.StatusLED != "GPIO5" {
		t.Errorf("status led = %q, want GPIO5", cfg.StatusLED)
	}
	if cfg.Reconciler.RateLimitRPS != 10.0 {
		t.Errorf("rate limit = %v", cfg.Reconciler.RateLimitRPS)
	}
	if cfg.Ledger.CleanupInterval.Duration() != 24*time.Hour || cfg.Ledger.RetentionDays != 30 {
		t.Errorf("ledger = %+v", cfg.Ledger)
	}
}

func TestLoad_DefaultFixtures(t *testing.T) {
	cfg, err := Load(writeConfig(t, `{}`))
	if err != nil {
		t.Fatal(err)
	}

	if len(cfg.Fixtures) != 3 {
		t.Fatalf("fixtures = %d, want 3", len(cfg.Fixtures))
	}
	if cfg.Fixtures[0].Name != "main" || cfg.Fixtures[0].Mode != "brightness" || cfg.Fixtures[0].Pin != "GPIO13" {
		t.Errorf("main = %+v", cfg.Fixtures[0])
	}
	if cfg.Fixtures[1].Name != "aux" || cfg.Fixtures[1].Mode != "schedule" {
		t.Errorf("aux = %+v", cfg.Fixtures[1])
	}
	if cfg.Fixtures[2].Name != "gallery" || cfg.Fixtures[2].Pin != "GPIO26" {
		t.Errorf("gallery = %+v", cfg.Fixtures[2])
	}
}

func TestLoad_ExplicitFixtures(t *testing.T) {
	cfg, err := Load(writeConfig(t, `fixtures:
  - name: porch
    pin: GPIO21
`))
	if err != nil {
		t.Fatal(err)
	}

	if len(cfg.Fixtures) != 1 {
		t.Fatalf("fixtures = %d, want 1", len(cfg.Fixtures))
	}
	if cfg.Fixtures[0].Mode != "schedule" {
		t.Errorf("mode should default to schedule, got %q", cfg.Fixtures[0].Mode)
	}
}

func TestLoad_StatusLEDNone(t *testing.T) {
	cfg, err := Load(writeConfig(t, `status_led: none
`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.StatusLED != "none" {
		t.Errorf("status led = %q, explicit none must not be defaulted away", cfg.StatusLED)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("LIGHTMGR_DB", "/var/lib/lightmgr/state.sqlite")

	cfg, err := Load(writeConfig(t, `database:
  path: ${LIGHTMGR_DB}
schedule:
  path: ${LIGHTMGR_SCHEDULE:/etc/lightmgr/schedule.json}
`))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Database.Path != "/var/lib/lightmgr/state.sqlite" {
		t.Errorf("database path = %q", cfg.Database.Path)
	}
	if cfg.Schedule.Path != "/etc/lightmgr/schedule.json" {
		t.Errorf("schedule path = %q, want the ${VAR:default} fallback", cfg.Schedule.Path)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing daemon config")
	}
}

func TestDuration_Unmarshal(t *testing.T) {
	cfg, err := Load(writeConfig(t, `ledger:
  cleanup_interval: 6h
  retention_days: 7
`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Ledger.CleanupInterval.Duration() != 6*time.Hour {
		t.Errorf("cleanup interval = %v", cfg.Ledger.CleanupInterval.Duration())
	}
	if cfg.Ledger.RetentionDays != 7 {
		t.Errorf("retention = %d", cfg.Ledger.RetentionDays)
	}
}
