// Package config loads the supervisor configuration: defaults, then the TOML
// file, then SOLOPROC_* environment variables. CLI flags are applied last by
// the command layer.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/loykin/soloproc/internal/logger"
	"github.com/loykin/soloproc/internal/supervisor"
)

// TargetConfig describes the single supervised process.
type TargetConfig struct {
	Name          string        `toml:"name" mapstructure:"name"`
	Command       string        `toml:"command" mapstructure:"command"`
	WorkDir       string        `toml:"workdir" mapstructure:"workdir"`
	Env           []string      `toml:"env" mapstructure:"env"`
	PIDFile       string        `toml:"pidfile" mapstructure:"pidfile"`
	LockFile      string        `toml:"lockfile" mapstructure:"lockfile"`
	StopWait      time.Duration `toml:"stop_wait" mapstructure:"stop_wait"`
	StartDuration time.Duration `toml:"start_duration" mapstructure:"start_duration"`
}

// HistoryConfig enables the audit trail of supervisor actions.
type HistoryConfig struct {
	Enabled bool   `toml:"enabled" mapstructure:"enabled"`
	DSN     string `toml:"dsn" mapstructure:"dsn"`
}

// MetricsConfig configures the optional metrics listener (watch mode only).
type MetricsConfig struct {
	Listen string `toml:"listen" mapstructure:"listen"`
}

// Config is the top-level TOML structure.
type Config struct {
	Target  TargetConfig  `toml:"target" mapstructure:"target"`
	Log     logger.Config `toml:"log" mapstructure:"log"`
	History HistoryConfig `toml:"history" mapstructure:"history"`
	Metrics MetricsConfig `toml:"metrics" mapstructure:"metrics"`
}

// Default returns the built-in configuration: the original deployment's
// Flask app launched from the working directory, PID record and log beside
// it.
func Default() *Config {
	return &Config{
		Target: TargetConfig{
			Name:     "app",
			Command:  "python3 app.py",
			PIDFile:  "app.pid",
			StopWait: 3 * time.Second,
		},
		Log: logger.Config{
			// Both streams into one file, like `>> app.log 2>&1`.
			StdoutPath: "app.log",
			StderrPath: "app.log",
		},
		History: HistoryConfig{
			DSN: "sqlite://soloproc_history.db",
		},
	}
}

// Load reads the TOML file at path (optional; empty path means defaults and
// environment only) and overlays SOLOPROC_* environment variables, e.g.
// SOLOPROC_TARGET_COMMAND or SOLOPROC_TARGET_PIDFILE.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix("SOLOPROC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers every key with viper so environment overrides apply
// even for keys absent from the config file.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("target.name", d.Target.Name)
	v.SetDefault("target.command", d.Target.Command)
	v.SetDefault("target.workdir", d.Target.WorkDir)
	v.SetDefault("target.env", d.Target.Env)
	v.SetDefault("target.pidfile", d.Target.PIDFile)
	v.SetDefault("target.lockfile", d.Target.LockFile)
	v.SetDefault("target.stop_wait", d.Target.StopWait)
	v.SetDefault("target.start_duration", d.Target.StartDuration)
	v.SetDefault("log.dir", d.Log.Dir)
	v.SetDefault("log.stdout", d.Log.StdoutPath)
	v.SetDefault("log.stderr", d.Log.StderrPath)
	v.SetDefault("log.supervisor", d.Log.SupervisorPath)
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.max_age_days", d.Log.MaxAgeDays)
	v.SetDefault("log.compress", d.Log.Compress)
	v.SetDefault("history.enabled", d.History.Enabled)
	v.SetDefault("history.dsn", d.History.DSN)
	v.SetDefault("metrics.listen", d.Metrics.Listen)
}

// Validate rejects configurations the supervisor cannot act on.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Target.Command) == "" {
		return fmt.Errorf("target.command must not be empty")
	}
	if strings.TrimSpace(c.Target.PIDFile) == "" {
		return fmt.Errorf("target.pidfile must not be empty")
	}
	if c.Target.Name == "" {
		c.Target.Name = "app"
	}
	if c.Target.StopWait < 0 || c.Target.StartDuration < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	return nil
}

// Spec converts the configuration into the supervisor's target spec.
func (c *Config) Spec() supervisor.Spec {
	return supervisor.Spec{
		Name:          c.Target.Name,
		Command:       c.Target.Command,
		WorkDir:       c.Target.WorkDir,
		Env:           c.Target.Env,
		PIDFile:       c.Target.PIDFile,
		LockFile:      c.Target.LockFile,
		StopWait:      c.Target.StopWait,
		StartDuration: c.Target.StartDuration,
		Log:           c.Log,
	}
}
