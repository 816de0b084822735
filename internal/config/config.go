// Package config loads flowboard settings from YAML files and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/flowboard/flowboard/internal/ids"
	"github.com/flowboard/flowboard/internal/session"
	"github.com/flowboard/flowboard/internal/store"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// ProjectFileName is the per-workspace config file.
const ProjectFileName = ".flowboard.yaml"

// EnvPrefix prefixes environment overrides, e.g. FLOWBOARD_SYNC_QUIET_PERIOD.
const EnvPrefix = "FLOWBOARD"

// Config represents the full flowboard configuration
type Config struct {
	// Workspace root; empty means the current directory
	Workspace string `yaml:"workspace" mapstructure:"workspace"`

	// Backing file name relative to the workspace
	File string `yaml:"file" mapstructure:"file"`

	Sync   SyncConfig   `yaml:"sync" mapstructure:"sync"`
	IDs    IDsConfig    `yaml:"ids" mapstructure:"ids"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// SyncConfig configures the sync coordinator
type SyncConfig struct {
	QuietPeriod      time.Duration `yaml:"quiet_period" mapstructure:"quiet_period"`
	OnExternalChange string        `yaml:"on_external_change" mapstructure:"on_external_change"`
}

// IDsConfig configures identifier generation
type IDsConfig struct {
	Strategy string `yaml:"strategy" mapstructure:"strategy"`
}

// ServerConfig configures the UI bridge
type ServerConfig struct {
	Host string `yaml:"host" mapstructure:"host"`
	Port int    `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging
type LogConfig struct {
	Level      string `yaml:"level" mapstructure:"level"`
	File       string `yaml:"file" mapstructure:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days" mapstructure:"max_age_days"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		File: store.DefaultFileName,
		Sync: SyncConfig{
			QuietPeriod:      session.DefaultQuietPeriod,
			OnExternalChange: string(session.ReloadImmediately),
		},
		IDs: IDsConfig{
			Strategy: ids.StrategyRandom,
		},
		Server: ServerConfig{
			Host: "localhost",
			Port: 7420,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Options control where Load looks.
type Options struct {
	// GlobalPath overrides ~/.flowboard/config.yaml
	GlobalPath string
	// ProjectPath overrides <workspace>/.flowboard.yaml
	ProjectPath string
	// Workspace is used to locate the project file when ProjectPath is empty
	Workspace string
}

// Load merges defaults, the global file, the project file and FLOWBOARD_* variables,
// in that order. Missing files are skipped.
func Load(opts Options) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	globalPath := opts.GlobalPath
	if globalPath == "" {
		globalPath = GlobalConfigPath()
	}
	projectPath := opts.ProjectPath
	if projectPath == "" {
		projectPath = ProjectConfigPath(opts.Workspace)
	}

	for _, path := range []string{globalPath, projectPath} {
		if err := mergeFile(v, path); err != nil {
			return nil, err
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	if opts.Workspace != "" {
		cfg.Workspace = opts.Workspace
	}
	if cfg.Workspace == "" {
		if cwd, err := os.Getwd(); err == nil {
			cfg.Workspace = cwd
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func mergeFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.MergeInConfig(); err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return nil
}

// setDefaults registers every key so that AutomaticEnv and Unmarshal see it.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("workspace", d.Workspace)
	v.SetDefault("file", d.File)
	v.SetDefault("sync.quiet_period", d.Sync.QuietPeriod)
	v.SetDefault("sync.on_external_change", d.Sync.OnExternalChange)
	v.SetDefault("ids.strategy", d.IDs.Strategy)
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.max_age_days", d.Log.MaxAgeDays)
}

// Validate checks enumerations and ranges.
func (c *Config) Validate() error {
	if c.File == "" || filepath.Base(c.File) != c.File {
		return fmt.Errorf("%w: file must be a plain file name, got %q", ErrInvalid, c.File)
	}
	if c.Sync.QuietPeriod <= 0 {
		return fmt.Errorf("%w: sync.quiet_period must be positive, got %s", ErrInvalid, c.Sync.QuietPeriod)
	}
	if _, err := session.ParseReloadPolicy(c.Sync.OnExternalChange); err != nil {
		return fmt.Errorf("%w: sync.on_external_change: %v", ErrInvalid, err)
	}
	if _, err := ids.New(c.IDs.Strategy); err != nil {
		return fmt.Errorf("%w: ids.strategy: %v", ErrInvalid, err)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port out of range: %d", ErrInvalid, c.Server.Port)
	}
	return nil
}

// ReloadPolicy returns the validated reload policy.
func (c *Config) ReloadPolicy() session.ReloadPolicy {
	p, _ := session.ParseReloadPolicy(c.Sync.OnExternalChange)
	return p
}

// IDGenerator returns the configured identifier generator.
func (c *Config) IDGenerator() ids.Generator {
	gen, err := ids.New(c.IDs.Strategy)
	if err != nil {
		return ids.Random{}
	}
	return gen
}

// GlobalConfigPath returns the path to the global config file
func GlobalConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".flowboard", "config.yaml")
}

// ProjectConfigPath returns the project config path inside workspace (or the cwd)
func ProjectConfigPath(workspace string) string {
	if workspace == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return ""
		}
		workspace = cwd
	}
	return filepath.Join(workspace, ProjectFileName)
}

// WriteDefault writes a commented project configuration to path.
func WriteDefault(path string) error {
	content := `# Flowboard Project Configuration

# Board file, relative to the workspace root
file: FLOWBOARD.md

sync:
  # Update silence required before the board is written
  quiet_period: 300ms
  # What an external edit does while a UI change is waiting to be saved:
  #   reload - read the file and push it to the UI now (last writer wins)
  #   defer  - wait until the pending save lands, then reload
  on_external_change: reload

ids:
  # random (9 characters) or uuid
  strategy: random

server:
  host: localhost
  port: 7420

log:
  level: info
  # file: .flowboard/flowboard.log
  max_size_mb: 10
  max_backups: 3
  max_age_days: 28
`
	return os.WriteFile(path, []byte(content), 0644)
}
