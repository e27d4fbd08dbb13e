package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromMissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	want := DefaultConfig()
	want.DatasetPath = "/data/silsila.json"
	want.HoverLinger = Duration(450 * time.Millisecond)
	want.ReleaseGrace = Duration(1 * time.Second)
	want.DragAlphaTarget = 0.5
	want.ShowLabels = false
	want.Sim.Repulsion = 30

	if err := SaveTo(want, path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if got != want {
		t.Errorf("round trip:\n got %+v\nwant %+v", got, want)
	}
}

func TestDurationYAMLStrings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "hover_linger: 250ms\nrelease_grace: 1.5s\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.HoverLinger.Std() != 250*time.Millisecond {
		t.Errorf("hover_linger = %v", cfg.HoverLinger.Std())
	}
	if cfg.ReleaseGrace.Std() != 1500*time.Millisecond {
		t.Errorf("release_grace = %v", cfg.ReleaseGrace.Std())
	}
}

func TestLoadFromRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("{{{not yaml"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestLoadFromClampsNonsense(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "hover_linger: 0s\ndrag_alpha_target: 7\nsettle_alpha: -1\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	d := DefaultConfig()
	if cfg.HoverLinger != d.HoverLinger {
		t.Errorf("hover_linger = %v, want default %v", cfg.HoverLinger, d.HoverLinger)
	}
	if cfg.DragAlphaTarget != d.DragAlphaTarget {
		t.Errorf("drag_alpha_target = %v, want default", cfg.DragAlphaTarget)
	}
	if cfg.SettleAlpha != d.SettleAlpha {
		t.Errorf("settle_alpha = %v, want default", cfg.SettleAlpha)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}
	if got := expandHome("~/data.json"); got != filepath.Join(home, "data.json") {
		t.Errorf("expandHome = %q", got)
	}
	if got := expandHome("/abs/data.json"); got != "/abs/data.json" {
		t.Errorf("absolute path changed: %q", got)
	}
}

func TestDirsHonorXDGOverrides(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")
	t.Setenv("XDG_STATE_HOME", "/tmp/xdg-state")

	if got := ConfigDir(); got != "/tmp/xdg-config/silsila" {
		t.Errorf("ConfigDir = %q", got)
	}
	if got := DataDir(); got != "/tmp/xdg-data/silsila" {
		t.Errorf("DataDir = %q", got)
	}
	if got := StateDir(); got != "/tmp/xdg-state/silsila" {
		t.Errorf("StateDir = %q", got)
	}
}
