package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/vango-dev/sprout/internal/errors"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "sprout.json"

	// TOMLFileName is the name of the TOML configuration file.
	TOMLFileName = "sprout.toml"

	// DefaultDevtoolsAddr is the default devtools listen address.
	DefaultDevtoolsAddr = "127.0.0.1:7070"

	// DefaultWebSocketPath is the default path of the live op stream.
	DefaultWebSocketPath = "/ws"

	// DefaultBuffer is the default per-client op buffer.
	DefaultBuffer = 256

	// DefaultNamespace is the default metrics namespace and tracer name.
	DefaultNamespace = "sprout"

	// DefaultArchiveDir is the default directory of the disk trace archive.
	DefaultArchiveDir = ".sprout/traces"
)

// Archive kinds.
const (
	ArchiveDisk = "disk"
	ArchiveS3   = "s3"
)

// Config represents the complete sprout configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty" toml:"name,omitempty"`

	// Devtools contains the devtools server configuration.
	Devtools DevtoolsConfig `json:"devtools" toml:"devtools"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `json:"metrics" toml:"metrics"`

	// Tracing contains OpenTelemetry configuration.
	Tracing TracingConfig `json:"tracing" toml:"tracing"`

	// Log contains logger configuration.
	Log LogConfig `json:"log" toml:"log"`

	// Archive contains replay trace storage configuration.
	Archive ArchiveConfig `json:"archive" toml:"archive"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// DevtoolsConfig contains devtools server settings.
type DevtoolsConfig struct {
	// Addr is the host:port to listen on.
	Addr string `json:"addr,omitempty" toml:"addr,omitempty"`

	// WebSocketPath is the route of the live host-op stream.
	WebSocketPath string `json:"wsPath,omitempty" toml:"wsPath,omitempty"`

	// Buffer is how many ops are queued per websocket client before
	// the client is dropped.
	Buffer int `json:"buffer,omitempty" toml:"buffer,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled" toml:"enabled"`
	Namespace string `json:"namespace,omitempty" toml:"namespace,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	Enabled    bool   `json:"enabled" toml:"enabled"`
	TracerName string `json:"tracerName,omitempty" toml:"tracerName,omitempty"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty" toml:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty" toml:"format,omitempty"`
}

// ArchiveConfig contains trace archive settings.
type ArchiveConfig struct {
	// Kind is "disk" or "s3".
	Kind string `json:"kind,omitempty" toml:"kind,omitempty"`

	// Dir is the disk archive directory.
	Dir string `json:"dir,omitempty" toml:"dir,omitempty"`

	// Bucket, Prefix, Region and Endpoint configure the S3 archive.
	Bucket   string `json:"bucket,omitempty" toml:"bucket,omitempty"`
	Prefix   string `json:"prefix,omitempty" toml:"prefix,omitempty"`
	Region   string `json:"region,omitempty" toml:"region,omitempty"`
	Endpoint string `json:"endpoint,omitempty" toml:"endpoint,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Devtools: DevtoolsConfig{
			Addr:          DefaultDevtoolsAddr,
			WebSocketPath: DefaultWebSocketPath,
			Buffer:        DefaultBuffer,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: DefaultNamespace,
		},
		Tracing: TracingConfig{
			TracerName: DefaultNamespace,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Archive: ArchiveConfig{
			Kind: ArchiveDisk,
			Dir:  DefaultArchiveDir,
		},
	}
}

// Load reads configuration from the specified directory.
// sprout.json wins over sprout.toml when both exist.
func Load(dir string) (*Config, error) {
	for _, name := range []string{ConfigFileName, TOMLFileName} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("E123").
		WithDetail("No sprout.json or sprout.toml found in " + dir).
		WithSuggestion("Pass --config or create sprout.json in the working directory")
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E123").
				WithDetail("No configuration file at " + path)
		}
		return nil, errors.New("E120").Wrap(err)
	}

	cfg := New()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, errors.New("E120").
				WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
				WithSuggestion("Check that the file is valid JSON")
		}
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, errors.New("E120").
				WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
				WithSuggestion("Check that the file is valid TOML")
		}
	default:
		return nil, errors.New("E122").WithDetail("Unknown extension on " + path)
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path. The format
// follows the file extension.
func (c *Config) SaveTo(path string) error {
	var data []byte
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		out, err := json.MarshalIndent(c, "", "  ")
		if err != nil {
			return errors.New("E120").Wrap(err)
		}
		data = append(out, '\n')
	case ".toml":
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return errors.New("E120").Wrap(err)
		}
		data = buf.Bytes()
	default:
		return errors.New("E122").WithDetail("Unknown extension on " + path)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E120").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Devtools.Addr == "" {
		c.Devtools.Addr = DefaultDevtoolsAddr
	}
	if c.Devtools.WebSocketPath == "" {
		c.Devtools.WebSocketPath = DefaultWebSocketPath
	}
	if c.Devtools.Buffer == 0 {
		c.Devtools.Buffer = DefaultBuffer
	}

	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = DefaultNamespace
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	if c.Archive.Kind == "" {
		c.Archive.Kind = ArchiveDisk
	}
	if c.Archive.Kind == ArchiveDisk && c.Archive.Dir == "" {
		c.Archive.Dir = DefaultArchiveDir
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Devtools.Addr == "" {
		return errors.New("E121").
			WithDetail("devtools.addr is empty").
			WithSuggestion("Set devtools.addr to host:port, for example " + DefaultDevtoolsAddr)
	}
	if !strings.HasPrefix(c.Devtools.WebSocketPath, "/") {
		return errors.New("E121").
			WithDetail("devtools.wsPath must start with /")
	}
	if c.Devtools.Buffer < 0 {
		return errors.New("E121").
			WithDetail("devtools.buffer must not be negative")
	}

	if _, ok := levels[strings.ToLower(c.Log.Level)]; !ok {
		return errors.New("E121").
			WithDetail("log.level must be one of debug, info, warn, error")
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return errors.New("E121").
			WithDetail("log.format must be text or json")
	}

	switch c.Archive.Kind {
	case ArchiveDisk:
		if c.Archive.Dir == "" {
			return errors.New("E121").WithDetail("archive.dir is empty")
		}
	case ArchiveS3:
		if c.Archive.Bucket == "" {
			return errors.New("E121").
				WithDetail("archive.bucket is required for the s3 archive")
		}
	default:
		return errors.New("E121").
			WithDetail("archive.kind must be disk or s3, got " + c.Archive.Kind)
	}
	return nil
}

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// SlogLevel returns the configured log level. Unknown names map to info.
func (c *Config) SlogLevel() slog.Level {
	if lvl, ok := levels[strings.ToLower(c.Log.Level)]; ok {
		return lvl
	}
	return slog.LevelInfo
}

// ArchivePath returns the absolute path to the disk archive directory.
func (c *Config) ArchivePath() string {
	if filepath.IsAbs(c.Archive.Dir) {
		return c.Archive.Dir
	}
	return filepath.Join(c.Dir(), c.Archive.Dir)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range []string{ConfigFileName, TOMLFileName} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing a sprout config, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E123").
				WithDetail("No sprout config found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory,
// falling back to defaults when no file exists.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		if errors.Code(err) == "E123" {
			return New(), nil
		}
		return nil, err
	}

	return Load(root)
}
