package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tranzmatt/android-network-survey/config"
	"github.com/tranzmatt/android-network-survey/export"
	"github.com/tranzmatt/android-network-survey/filter"
	"github.com/tranzmatt/android-network-survey/iw"
	"github.com/tranzmatt/android-network-survey/replay"
	"github.com/tranzmatt/android-network-survey/survey"
)

func TestApplyFlags(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Source.Type = "replay"
	cfg.Output.Type = "csv"
	cfg.Output.SQLite.File = "/from/config"

	*output = "sqlite"
	*sqliteFile = "/from/flag"
	*replayDelay = 2 * time.Second
	*technologies = "lte, NR"
	applyFlags(cfg, map[string]bool{"output": true, "replayDelay": true, "technologies": true})

	if cfg.Source.Type != "replay" {
		t.Errorf("Source.Type = %q, want the config value", cfg.Source.Type)
	}
	if cfg.Output.Type != "sqlite" {
		t.Errorf("Output.Type = %q, want the flag value", cfg.Output.Type)
	}
	if cfg.Output.SQLite.File != "/from/config" {
		t.Errorf("SQLite.File = %q, unset flags must not override", cfg.Output.SQLite.File)
	}
	if cfg.Source.Replay.Delay.Duration() != 2*time.Second {
		t.Errorf("Replay.Delay = %v, want 2s", cfg.Source.Replay.Delay.Duration())
	}
	if len(cfg.Filter.Technologies) != 2 {
		t.Errorf("Technologies = %v", cfg.Filter.Technologies)
	}
	if _, err := uuid.Parse(cfg.Identifier); err != nil {
		t.Errorf("Identifier = %q, want a random UUID: %v", cfg.Identifier, err)
	}
}

func TestApplyFlagsPositionNeedsBoth(t *testing.T) {
	cfg := config.DefaultConfig()
	*latitude = 47.1
	applyFlags(cfg, map[string]bool{"lat": true})
	if cfg.Source.IW.Latitude != nil {
		t.Errorf("latitude applied without longitude")
	}
}

func TestNewSource(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Identifier = "dev-1"

	cfg.Source.Type = "IW"
	lat, lon := 47.0, 8.0
	cfg.Source.IW.Latitude, cfg.Source.IW.Longitude = &lat, &lon
	src, err := newSource(cfg)
	if err != nil {
		t.Fatalf("newSource(iw) failed: %v", err)
	}
	s, ok := src.(*iw.Scanner)
	if !ok {
		t.Fatalf("newSource(iw) = %T", src)
	}
	if s.Interface != config.DefaultIWInterface || s.Position == nil || s.Position.Lat != 47.0 {
		t.Errorf("scanner = %+v", s)
	}

	cfg.Source.Type = "replay"
	if _, err := newSource(cfg); err == nil {
		t.Errorf("newSource(replay) without a file succeeded")
	}
	cfg.Source.Replay.Path = "/tmp/drive.jsonl"
	src, err = newSource(cfg)
	if err != nil {
		t.Fatalf("newSource(replay) failed: %v", err)
	}
	if r := src.(*replay.Source); r.Path != "/tmp/drive.jsonl" || r.Identifier != "dev-1" {
		t.Errorf("replay source = %+v", r)
	}

	cfg.Source.Type = "hackrf"
	if _, err := newSource(cfg); err == nil {
		t.Errorf("newSource(hackrf) succeeded")
	}
}

func TestNewExporter(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.OutputConfig
		want    string
		wantErr bool
	}{
		{name: "csv", cfg: config.OutputConfig{Type: "csv"}, want: "*export.CSV"},
		{name: "sqlite", cfg: config.OutputConfig{Type: "sqlite", SQLite: config.SQLiteConfig{File: filepath.Join(t.TempDir(), "db")}}, want: "*export.SQL"},
		{name: "server", cfg: config.OutputConfig{Type: "server", Server: config.ServerConfig{URL: "http://localhost"}}, want: "*export.Server"},
		{name: "mysql without password", cfg: config.OutputConfig{Type: "mysql", MySQL: config.MySQLConfig{PasswordFile: filepath.Join(t.TempDir(), "nope")}}, wantErr: true},
		{name: "unknown", cfg: config.OutputConfig{Type: "elastic"}, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e, err := newExporter(tc.cfg)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("newExporter() succeeded")
				}
				return
			}
			if err != nil {
				t.Fatalf("newExporter() failed: %v", err)
			}
			var got string
			switch e.(type) {
			case *export.CSV:
				got = "*export.CSV"
			case *export.SQL:
				got = "*export.SQL"
			case *export.Server:
				got = "*export.Server"
			}
			if got != tc.want {
				t.Errorf("newExporter() = %T, want %s", e, tc.want)
			}
		})
	}
}

func TestNewFilters(t *testing.T) {
	min := float32(-80)
	filters, err := newFilters(config.FilterConfig{MinSignal: &min, SSID: "^corp", Technologies: []string{"lte"}})
	if err != nil {
		t.Fatalf("newFilters() failed: %v", err)
	}
	if len(filters) != 3 {
		t.Fatalf("got %d filters, want 3", len(filters))
	}
	tf, ok := filters[2].(*filter.FilterTechnology)
	if !ok || len(tf.Allowed) != 1 || tf.Allowed[0] != survey.TechnologyLTE {
		t.Errorf("technology filter = %+v", filters[2])
	}

	if _, err := newFilters(config.FilterConfig{SSID: "("}); err == nil {
		t.Errorf("newFilters() with a bad regexp succeeded")
	}
	if _, err := newFilters(config.FilterConfig{Technologies: []string{"WIMAX"}}); err == nil {
		t.Errorf("newFilters() with an unknown technology succeeded")
	}
}
