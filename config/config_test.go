package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Flock.GridSide != 3 {
		t.Errorf("expected grid_side 3, got %d", cfg.Flock.GridSide)
	}
	if cfg.Flock.Bounds != 800 {
		t.Errorf("expected bounds 800, got %v", cfg.Flock.Bounds)
	}
	if cfg.Flock.SpeedLimit != 5 {
		t.Errorf("expected speed_limit 5, got %v", cfg.Flock.SpeedLimit)
	}
	if cfg.Flock.FreedomFactor != 0.1 {
		t.Errorf("expected freedom_factor 0.1, got %v", cfg.Flock.FreedomFactor)
	}
	if cfg.Derived.Count != 9 {
		t.Errorf("expected 9 agents, got %d", cfg.Derived.Count)
	}
	if cfg.Derived.ZoneRadius != 70 {
		t.Errorf("expected zone radius 70, got %v", cfg.Derived.ZoneRadius)
	}
	if cfg.Clock.MaxDelta != 1.0 {
		t.Errorf("expected max_delta 1.0, got %v", cfg.Clock.MaxDelta)
	}
}

func TestLoadMergesUserFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "override.yaml")
	data := []byte("flock:\n  grid_side: 8\n  cohesion_distance: 50\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Flock.GridSide != 8 {
		t.Errorf("expected grid_side 8, got %d", cfg.Flock.GridSide)
	}
	// Untouched fields keep their defaults
	if cfg.Flock.SeparationDistance != 20 {
		t.Errorf("expected separation default 20, got %v", cfg.Flock.SeparationDistance)
	}
	if cfg.Derived.ZoneRadius != 100 {
		t.Errorf("expected zone radius 100, got %v", cfg.Derived.ZoneRadius)
	}
	if cfg.Derived.Count != 64 {
		t.Errorf("expected 64 agents, got %d", cfg.Derived.Count)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{"zero grid", "flock:\n  grid_side: 0\n", ErrGridSide},
		{"negative bounds", "flock:\n  bounds: -1\n", ErrBounds},
		{"negative distance", "flock:\n  alignment_distance: -5\n", ErrDistance},
		{"zero speed limit", "flock:\n  speed_limit: 0\n", ErrSpeedLimit},
		{"zero max delta", "clock:\n  max_delta: 0\n", ErrMaxDelta},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteYAMLRoundtrip(t *testing.T) {
	cfg := Defaults()
	cfg.Flock.SeparationDistance = 12.5

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Flock.SeparationDistance != 12.5 {
		t.Errorf("expected separation 12.5, got %v", loaded.Flock.SeparationDistance)
	}
}

func TestCfgPanicsBeforeInit(t *testing.T) {
	saved := global
	global = nil
	defer func() {
		global = saved
		if recover() == nil {
			t.Error("expected panic from Cfg() before Init()")
		}
	}()
	Cfg()
}
