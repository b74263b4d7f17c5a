package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Devtools.Addr != DefaultDevtoolsAddr {
		t.Errorf("Devtools.Addr = %q, want %q", cfg.Devtools.Addr, DefaultDevtoolsAddr)
	}
	if cfg.Devtools.WebSocketPath != DefaultWebSocketPath {
		t.Errorf("Devtools.WebSocketPath = %q, want %q", cfg.Devtools.WebSocketPath, DefaultWebSocketPath)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should default to true")
	}
	if cfg.Tracing.Enabled {
		t.Error("Tracing.Enabled should default to false")
	}
	if cfg.Archive.Kind != ArchiveDisk {
		t.Errorf("Archive.Kind = %q, want %q", cfg.Archive.Kind, ArchiveDisk)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := Load(tmpDir)
	if err == nil {
		t.Fatal("Expected error for missing config")
	}
	if !strings.Contains(err.Error(), "E123") {
		t.Errorf("Expected E123 error, got: %v", err)
	}

	configJSON := `{
  "name": "todo",
  "devtools": {
    "addr": "0.0.0.0:9090",
    "buffer": 16
  },
  "metrics": {
    "enabled": false
  },
  "log": {
    "level": "debug",
    "format": "json"
  }
}
`
	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Name != "todo" {
		t.Errorf("Name = %q, want %q", cfg.Name, "todo")
	}
	if cfg.Devtools.Addr != "0.0.0.0:9090" {
		t.Errorf("Devtools.Addr = %q, want %q", cfg.Devtools.Addr, "0.0.0.0:9090")
	}
	if cfg.Devtools.Buffer != 16 {
		t.Errorf("Devtools.Buffer = %d, want 16", cfg.Devtools.Buffer)
	}
	if cfg.Devtools.WebSocketPath != DefaultWebSocketPath {
		t.Errorf("Devtools.WebSocketPath = %q, want default", cfg.Devtools.WebSocketPath)
	}
	if cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should be false")
	}
	if cfg.Metrics.Namespace != DefaultNamespace {
		t.Errorf("Metrics.Namespace = %q, want default", cfg.Metrics.Namespace)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("SlogLevel = %v, want debug", cfg.SlogLevel())
	}
	if cfg.Path() != filepath.Join(tmpDir, ConfigFileName) {
		t.Errorf("Path = %q", cfg.Path())
	}
}

func TestLoad_TOML(t *testing.T) {
	tmpDir := t.TempDir()
	configTOML := `name = "rotation"

[devtools]
addr = "127.0.0.1:8181"

[archive]
kind = "s3"
bucket = "traces"
prefix = "ci/"
region = "eu-west-1"
`
	if err := os.WriteFile(filepath.Join(tmpDir, TOMLFileName), []byte(configTOML), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Name != "rotation" {
		t.Errorf("Name = %q, want rotation", cfg.Name)
	}
	if cfg.Devtools.Addr != "127.0.0.1:8181" {
		t.Errorf("Devtools.Addr = %q", cfg.Devtools.Addr)
	}
	if cfg.Archive.Kind != ArchiveS3 || cfg.Archive.Bucket != "traces" || cfg.Archive.Prefix != "ci/" {
		t.Errorf("Archive = %+v", cfg.Archive)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoad_JSONWinsOverTOML(t *testing.T) {
	tmpDir := t.TempDir()
	os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte(`{"name":"json"}`), 0644)
	os.WriteFile(filepath.Join(tmpDir, TOMLFileName), []byte(`name = "toml"`), 0644)

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Name != "json" {
		t.Errorf("Name = %q, want json", cfg.Name)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name     string
		file     string
		content  string
		wantCode string
	}{
		{"invalid json", ConfigFileName, "not valid json", "E120"},
		{"invalid toml", TOMLFileName, "name = = 1", "E120"},
		{"unknown extension", "sprout.ini", "name=x", "E122"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := LoadFile(path)
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), tt.wantCode) {
				t.Errorf("Expected %s error, got: %v", tt.wantCode, err)
			}
		})
	}
}

func TestSave(t *testing.T) {
	for _, name := range []string{ConfigFileName, TOMLFileName} {
		t.Run(name, func(t *testing.T) {
			tmpDir := t.TempDir()
			configPath := filepath.Join(tmpDir, name)

			cfg := New()
			cfg.Devtools.Buffer = 42
			cfg.Archive.Dir = "out"

			if err := cfg.Save(); err == nil {
				t.Error("Expected error when saving without path")
			}

			if err := cfg.SaveTo(configPath); err != nil {
				t.Fatalf("SaveTo error: %v", err)
			}

			loaded, err := LoadFile(configPath)
			if err != nil {
				t.Fatalf("Load error: %v", err)
			}
			if loaded.Devtools.Buffer != 42 {
				t.Errorf("Devtools.Buffer = %d, want 42", loaded.Devtools.Buffer)
			}
			if loaded.ArchivePath() != filepath.Join(tmpDir, "out") {
				t.Errorf("ArchivePath = %q", loaded.ArchivePath())
			}

			loaded.Devtools.Buffer = 7
			if err := loaded.Save(); err != nil {
				t.Fatalf("Save error: %v", err)
			}
			reloaded, err := LoadFile(configPath)
			if err != nil {
				t.Fatalf("Load error: %v", err)
			}
			if reloaded.Devtools.Buffer != 7 {
				t.Errorf("Devtools.Buffer = %d, want 7", reloaded.Devtools.Buffer)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Devtools.Addr = "" }},
		{"relative ws path", func(c *Config) { c.Devtools.WebSocketPath = "ws" }},
		{"negative buffer", func(c *Config) { c.Devtools.Buffer = -1 }},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }},
		{"s3 without bucket", func(c *Config) { c.Archive.Kind = ArchiveS3 }},
		{"unknown archive", func(c *Config) { c.Archive.Kind = "tape" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate should fail")
			}
			if !strings.Contains(err.Error(), "E121") {
				t.Errorf("Expected E121, got %v", err)
			}
		})
	}
}

func TestFindProjectRoot(t *testing.T) {
	tmpDir := t.TempDir()
	nested := filepath.Join(tmpDir, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, TOMLFileName), []byte(""), 0644); err != nil {
		t.Fatal(err)
	}

	root, err := FindProjectRoot(nested)
	if err != nil {
		t.Fatalf("FindProjectRoot error: %v", err)
	}
	want, _ := filepath.Abs(tmpDir)
	if root != want {
		t.Errorf("root = %q, want %q", root, want)
	}
	if !Exists(tmpDir) {
		t.Error("Exists should be true")
	}
	if Exists(nested) {
		t.Error("Exists should be false for nested dir")
	}
}

func TestArchivePath_Absolute(t *testing.T) {
	cfg := New()
	cfg.Archive.Dir = "/var/sprout"
	if got := cfg.ArchivePath(); got != "/var/sprout" {
		t.Errorf("ArchivePath = %q", got)
	}
}
