package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/akmonengine/bvh"
	"github.com/akmonengine/bvh/geom"
	"github.com/go-gl/mathgl/mgl64"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Tree.Margin != bvh.AABBExtension {
		t.Errorf("expected margin %v, got %v", bvh.AABBExtension, cfg.Tree.Margin)
	}
	if cfg.Tree.PredictionMultiplier != bvh.AABBMultiplier {
		t.Errorf("expected multiplier %v, got %v", bvh.AABBMultiplier, cfg.Tree.PredictionMultiplier)
	}
	if cfg.Tree.InitialCapacity != 16 {
		t.Errorf("expected capacity 16, got %d", cfg.Tree.InitialCapacity)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.Quiet || cfg.Logging.MaxSizeMB != 50 || !cfg.Logging.Compress {
		t.Errorf("unexpected logging defaults %+v", cfg.Logging)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
tree:
  margin: 0.25
  initial_capacity: 64

logging:
  level: debug
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Tree.Margin != 0.25 {
		t.Errorf("expected margin 0.25, got %v", cfg.Tree.Margin)
	}
	if cfg.Tree.InitialCapacity != 64 {
		t.Errorf("expected capacity 64, got %d", cfg.Tree.InitialCapacity)
	}
	// Missing key keeps its default
	if cfg.Tree.PredictionMultiplier != bvh.AABBMultiplier {
		t.Errorf("expected default multiplier, got %v", cfg.Tree.PredictionMultiplier)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"Malformed YAML", "tree: [margin"},
		{"Negative margin", "tree:\n  margin: -1\n"},
		{"Zero capacity", "tree:\n  initial_capacity: 0\n"},
		{"Unknown level", "logging:\n  level: verbose\n"},
		{"Negative rotation", "logging:\n  max_backups: -1\n"},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, "config"+string(rune('a'+i))+".yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected an error")
			}
		})
	}

	if _, err := Load(filepath.Join(tmpDir, "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Tree.Margin = 0.5
	cfg.Logging.LogFile = "/tmp/bvh.log"
	cfg.Logging.Quiet = true
	cfg.Logging.MaxBackups = 10

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("failed to reload: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("reloaded %+v, want %+v", loaded, cfg)
	}
}

func TestTreeOptions(t *testing.T) {
	cfg := Default()
	cfg.Tree.Margin = 0.5
	cfg.Tree.InitialCapacity = 4

	tree := bvh.NewTree[int](cfg.Tree.Options()...)
	if tree.Capacity() != 4 {
		t.Errorf("expected capacity 4, got %d", tree.Capacity())
	}

	id := tree.CreateProxy(geom.AABB{Min: mgl64.Vec3{0, 0, 0}, Max: mgl64.Vec3{1, 1, 1}}, 7)
	fat, err := tree.FatAABB(id)
	if err != nil {
		t.Fatal(err)
	}
	want := geom.AABB{Min: mgl64.Vec3{-0.5, -0.5, -0.5}, Max: mgl64.Vec3{1.5, 1.5, 1.5}}
	if fat != want {
		t.Errorf("fat box %v, want %v", fat, want)
	}
}
