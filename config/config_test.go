package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Source.IW.Interface != DefaultIWInterface {
		t.Errorf("IW.Interface = %q, want %q", cfg.Source.IW.Interface, DefaultIWInterface)
	}
	if cfg.Source.IW.Interval.Duration() != DefaultScanInterval {
		t.Errorf("IW.Interval = %v, want %v", cfg.Source.IW.Interval.Duration(), DefaultScanInterval)
	}
	if cfg.Output.SQLite.File != DefaultSQLiteFile {
		t.Errorf("SQLite.File = %q, want %q", cfg.Output.SQLite.File, DefaultSQLiteFile)
	}
	if cfg.Listen.Address != DefaultListen {
		t.Errorf("Listen.Address = %q, want %q", cfg.Listen.Address, DefaultListen)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}
	if cfg.Output.MySQL.DBName != DefaultMySQLDBName {
		t.Errorf("MySQL.DBName = %q, want default", cfg.Output.MySQL.DBName)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "netsurvey.yaml")

	content := `
identifier: van-1
source:
  type: iw
  iw:
    interface: wlp2s0
    interval: 30s
    latitude: 47.37
    longitude: 8.54
output:
  type: server
  server:
    url: https://survey.example.org
    batch_size: 50
filter:
  min_signal: -85
  ssid: "^corp-"
  technologies: [LTE, NR]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Identifier != "van-1" {
		t.Errorf("Identifier = %q, want van-1", cfg.Identifier)
	}
	if cfg.Source.Type != "iw" || cfg.Source.IW.Interface != "wlp2s0" {
		t.Errorf("Source = %+v", cfg.Source)
	}
	if cfg.Source.IW.Interval.Duration() != 30*time.Second {
		t.Errorf("IW.Interval = %v, want 30s", cfg.Source.IW.Interval.Duration())
	}
	if cfg.Source.IW.Latitude == nil || *cfg.Source.IW.Latitude != 47.37 {
		t.Errorf("IW.Latitude = %v, want 47.37", cfg.Source.IW.Latitude)
	}
	if cfg.Output.Server.URL != "https://survey.example.org" || cfg.Output.Server.BatchSize != 50 {
		t.Errorf("Output.Server = %+v", cfg.Output.Server)
	}
	if cfg.Filter.MinSignal == nil || *cfg.Filter.MinSignal != -85 {
		t.Errorf("Filter.MinSignal = %v, want -85", cfg.Filter.MinSignal)
	}
	if len(cfg.Filter.Technologies) != 2 || cfg.Filter.Technologies[1] != "NR" {
		t.Errorf("Filter.Technologies = %v", cfg.Filter.Technologies)
	}

	// Unset values still get defaults.
	if cfg.Output.SQLite.File != DefaultSQLiteFile {
		t.Errorf("SQLite.File = %q, want default", cfg.Output.SQLite.File)
	}
}

func TestLoadErrors(t *testing.T) {
	tmpDir := t.TempDir()

	if _, err := Load(filepath.Join(tmpDir, "missing.yaml")); err == nil {
		t.Error("Load() of a missing file succeeded")
	}

	bad := filepath.Join(tmpDir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("source:\n  iw:\n    interval: soon\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil {
		t.Error("Load() with an invalid duration succeeded")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")

	cfg := DefaultConfig()
	cfg.Identifier = "bike-7"
	cfg.Source.Replay = ReplayConfig{Path: "/data/drive.jsonl", Delay: Duration(250 * time.Millisecond)}
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if loaded.Identifier != "bike-7" || loaded.Source.Replay.Delay.Duration() != 250*time.Millisecond {
		t.Errorf("loaded = %+v", loaded)
	}
}
