// Package config loads orca settings from config.yaml, ORCA_ environment
// variables and command line flags through viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DirName is the per-project directory holding state, reports and logs.
const DirName = ".orca"

// FileName is the config file name searched for in each config path.
const FileName = "config.yaml"

// EnvPrefix prefixes environment overrides, e.g. ORCA_AGENT_TIMEOUT.
const EnvPrefix = "ORCA"

// Config represents the complete orca configuration
type Config struct {
	Storage   StorageConfig   `mapstructure:"storage" yaml:"storage"`
	Reports   ReportsConfig   `mapstructure:"reports" yaml:"reports"`
	Agent     AgentConfig     `mapstructure:"agent" yaml:"agent"`
	Execution ExecutionConfig `mapstructure:"execution" yaml:"execution"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
}

// StorageConfig controls where execution records are kept
type StorageConfig struct {
	// Dir holds one <taskId>.json record and progress log per task
	Dir string `mapstructure:"dir" yaml:"dir" validate:"required"`
}

// ReportsConfig controls where markdown reports are written
type ReportsConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir" validate:"required"`
}

// AgentConfig controls the agent CLI used for prompt subtasks
type AgentConfig struct {
	// Command is the agent binary, invoked as `<command> --print <prompt>`
	Command string `mapstructure:"command" yaml:"command" validate:"required"`
	// Timeout bounds a single invocation
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"gt=0"`
}

// ExecutionConfig controls the executor
type ExecutionConfig struct {
	// DefaultMode applies to tasks that do not set one
	DefaultMode string `mapstructure:"default_mode" yaml:"default_mode" validate:"oneof=sequential parallel"`
	// MaxParallel bounds concurrent subtasks within a stage (0 = unbounded)
	MaxParallel int `mapstructure:"max_parallel" yaml:"max_parallel" validate:"gte=0"`
}

// LoggingConfig controls the debug log
type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level" validate:"loglevel"`
	// Dir holds orca.log; empty logs to stderr
	Dir        string `mapstructure:"dir" yaml:"dir"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb" validate:"gt=0,lte=1000"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups" validate:"gte=0"`
}

// Default returns a Config with sensible defaults
func Default() *Config {
	return &Config{
		Storage: StorageConfig{Dir: filepath.Join(DirName, "tasks")},
		Reports: ReportsConfig{Dir: filepath.Join(DirName, "reports")},
		Agent: AgentConfig{
			Command: "claude",
			Timeout: 5 * time.Minute,
		},
		Execution: ExecutionConfig{
			DefaultMode: "sequential",
			MaxParallel: 0,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Dir:        filepath.Join(DirName, "logs"),
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// SetDefaults registers every default with v so keys resolve without a file.
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("storage.dir", defaults.Storage.Dir)
	v.SetDefault("reports.dir", defaults.Reports.Dir)

	v.SetDefault("agent.command", defaults.Agent.Command)
	v.SetDefault("agent.timeout", defaults.Agent.Timeout)

	v.SetDefault("execution.default_mode", defaults.Execution.DefaultMode)
	v.SetDefault("execution.max_parallel", defaults.Execution.MaxParallel)

	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.dir", defaults.Logging.Dir)
	v.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
}

// Init prepares v: defaults, config file search paths and environment
// overrides. An explicit cfgFile must exist; a missing searched file is fine.
func Init(v *viper.Viper, cfgFile string) error {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
		v.SetConfigType("yaml")
		v.AddConfigPath(DirName)
		v.AddConfigPath(UserDir())
	}

	v.SetEnvPrefix(EnvPrefix)
	// ORCA_EXECUTION_MAX_PARALLEL for execution.max_parallel
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// Load reads the configuration from v into a Config and validates it
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, errs
	}
	return &cfg, nil
}

// UserDir returns the per-user config directory
func UserDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "orca")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return DirName
	}
	return filepath.Join(home, ".config", "orca")
}

// Write saves cfg as YAML to path, creating parent directories.
func Write(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
