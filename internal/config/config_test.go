package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFileMissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.General.DefaultDays != 30 || cfg.General.Currency != "₹" {
		t.Fatalf("defaults not applied: %+v", cfg.General)
	}
	if cfg.Server.PollIntervalSec != 15 {
		t.Fatalf("PollIntervalSec = %d, want 15", cfg.Server.PollIntervalSec)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "config.toml")
	budget := 25000.0

	cfg := DefaultConfig()
	cfg.General.DefaultUser = "asha@example.com"
	cfg.Budget.Monthly = &budget
	cfg.Appearance.Theme = "catppuccin-mocha"

	if err := SaveFile(path, cfg); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got.General.DefaultUser != "asha@example.com" {
		t.Fatalf("DefaultUser = %q", got.General.DefaultUser)
	}
	if got.Budget.Monthly == nil || *got.Budget.Monthly != budget {
		t.Fatalf("Budget.Monthly = %v, want %v", got.Budget.Monthly, budget)
	}
	if got.Appearance.Theme != "catppuccin-mocha" {
		t.Fatalf("Theme = %q", got.Appearance.Theme)
	}
}

func TestLoadFilePartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := "[server]\naddr = \"0.0.0.0:9000\"\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Server.Addr != "0.0.0.0:9000" {
		t.Fatalf("Addr = %q", cfg.Server.Addr)
	}
	if cfg.Server.EventsBuffer != 200 || cfg.General.DefaultDays != 30 {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestLoadFileRejectsBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[general\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvDB, "/tmp/override.db")
	t.Setenv(EnvUser, "ravi@example.com")
	t.Setenv(EnvAddr, ":1234")

	cfg := DefaultConfig()
	applyEnv(&cfg)

	if cfg.DBPath() != "/tmp/override.db" {
		t.Fatalf("DBPath = %q", cfg.DBPath())
	}
	if cfg.General.DefaultUser != "ravi@example.com" || cfg.Server.Addr != ":1234" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestDBPathDefaultsToDataDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	cfg := DefaultConfig()
	if got, want := cfg.DBPath(), filepath.Join("/data", "spendwise", "spendwise.db"); got != want {
		t.Fatalf("DBPath = %q, want %q", got, want)
	}
}
