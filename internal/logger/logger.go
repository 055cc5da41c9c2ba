// Package logger provides the log destinations of the supervisor and its
// target. The target gets plain append-mode files: a detached child must own
// a real file descriptor, since an in-process writer would die with the
// supervisor and break the child's pipe. The supervisor's own diagnostics go
// through a rotating writer.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Default rotation parameters for the supervisor log.
const (
	DefaultMaxSizeMB  = 10 // MB
	DefaultMaxBackups = 3  // number of backup files
	DefaultMaxAgeDays = 7  // days
)

// Config describes log destinations. If StdoutPath/StderrPath are empty and
// Dir is set, the target writes to Dir/<name>.stdout.log and
// Dir/<name>.stderr.log. Rotation parameters apply to the supervisor log and
// follow lumberjack semantics.
type Config struct {
	Dir            string `toml:"dir" mapstructure:"dir"`
	StdoutPath     string `toml:"stdout" mapstructure:"stdout"`
	StderrPath     string `toml:"stderr" mapstructure:"stderr"`
	SupervisorPath string `toml:"supervisor" mapstructure:"supervisor"`
	MaxSizeMB      int    `toml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups     int    `toml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays     int    `toml:"max_age_days" mapstructure:"max_age_days"`
	Compress       bool   `toml:"compress" mapstructure:"compress"`
}

// TargetFiles opens append-mode files for the target's stdout and stderr.
// Either file may be nil when no destination is configured; the caller lets
// os/exec fall back to the null device. When both streams resolve to the
// same path a single file is shared, interleaving like `>> log 2>&1`.
func (c Config) TargetFiles(name string) (stdout, stderr *os.File, err error) {
	outPath := c.StdoutPath
	errPath := c.StderrPath
	if outPath == "" && c.Dir != "" {
		outPath = filepath.Join(c.Dir, fmt.Sprintf("%s.stdout.log", name))
	}
	if errPath == "" && c.Dir != "" {
		errPath = filepath.Join(c.Dir, fmt.Sprintf("%s.stderr.log", name))
	}
	if outPath != "" {
		if stdout, err = openAppend(outPath); err != nil {
			return nil, nil, err
		}
	}
	if errPath != "" {
		if errPath == outPath {
			stderr = stdout
		} else if stderr, err = openAppend(errPath); err != nil {
			if stdout != nil {
				_ = stdout.Close()
			}
			return nil, nil, err
		}
	}
	return stdout, stderr, nil
}

func openAppend(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, err
		}
	}
	// #nosec G304
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

// SupervisorWriter returns a rotating writer for the supervisor's own
// structured log, or nil when none is configured.
func (c Config) SupervisorWriter() io.WriteCloser {
	if c.SupervisorPath == "" {
		return nil
	}
	return &lj.Logger{
		Filename:   c.SupervisorPath,
		MaxSize:    valOr(c.MaxSizeMB, DefaultMaxSizeMB),
		MaxBackups: valOr(c.MaxBackups, DefaultMaxBackups),
		MaxAge:     valOr(c.MaxAgeDays, DefaultMaxAgeDays),
		Compress:   c.Compress,
	}
}

func valOr(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
