package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/loykin/soloproc"
	"github.com/loykin/soloproc/internal/config"
)

// command carries the resolved configuration into the subcommand logic,
// keeping the logic callable from tests without cobra.
type command struct {
	flags *GlobalFlags
}

// loadConfig resolves defaults, config file, SOLOPROC_* environment and
// finally CLI flag overrides, in that order.
func (c command) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.flags.ConfigPath)
	if err != nil {
		return nil, err
	}
	if c.flags.Target != "" {
		cfg.Target.Command = c.flags.Target
	}
	if c.flags.PIDFile != "" {
		cfg.Target.PIDFile = c.flags.PIDFile
	}
	if c.flags.LogFile != "" {
		cfg.Log.StdoutPath = c.flags.LogFile
		cfg.Log.StderrPath = c.flags.LogFile
		cfg.Log.Dir = ""
	}
	return cfg, cfg.Validate()
}

// applyStopWait lets an explicit --wait override the configured stop window.
// The flag defaults to zero, which means "use the config value"; anything the
// config file or environment set is preserved.
func applyStopWait(cfg *config.Config, flags StopFlags) {
	if flags.Wait > 0 {
		cfg.Target.StopWait = flags.Wait
	}
}

// newSupervisor builds the supervisor for the resolved config, attaching the
// audit sink when enabled. The returned closer flushes the sink.
func (c command) newSupervisor(cfg *config.Config) (*soloproc.Supervisor, func()) {
	setupLogging(cfg)
	sup := soloproc.New(cfg.Spec())
	closer := func() {}
	if cfg.History.Enabled {
		sink, err := soloproc.NewSQLiteHistorySink(cfg.History.DSN)
		if err != nil {
			// The audit trail is best effort; a broken sink must not block
			// supervision.
			slog.Warn("history sink unavailable", "dsn", cfg.History.DSN, "error", err)
		} else {
			sup.SetHistorySink(sink)
			closer = func() { _ = sink.Close() }
		}
	}
	return sup, closer
}

func (c command) Start() error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	sup, closeSink := c.newSupervisor(cfg)
	defer closeSink()

	pid, err := sup.Start()
	if err != nil {
		return err
	}
	fmt.Printf("started %s (pid %d)\n", cfg.Target.Name, pid)
	return nil
}

func (c command) Stop(flags StopFlags) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	applyStopWait(cfg, flags)
	sup, closeSink := c.newSupervisor(cfg)
	defer closeSink()

	switch err := sup.Stop(); {
	case err == nil:
		fmt.Printf("stopped %s\n", cfg.Target.Name)
		return nil
	case errors.Is(err, soloproc.ErrAlreadyStopped):
		// Desired end state already holds; exit 0.
		fmt.Printf("%s was already stopped, removed stale record\n", cfg.Target.Name)
		return nil
	default:
		return err
	}
}

func (c command) Status(flags StatusFlags) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	sup, closeSink := c.newSupervisor(cfg)
	defer closeSink()

	if !flags.Watch {
		return printStatus(sup)
	}

	if cfg.Metrics.Listen != "" {
		if err := soloproc.RegisterMetricsDefault(); err != nil {
			return err
		}
		go func() {
			if err := soloproc.ServeMetrics(cfg.Metrics.Listen); err != nil {
				slog.Error("metrics server error", "error", err)
			}
		}()
	}
	interval := flags.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	for {
		if err := printStatus(sup); err != nil {
			return err
		}
		time.Sleep(interval)
	}
}

func (c command) Restart(flags StopFlags) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	applyStopWait(cfg, flags)
	sup, closeSink := c.newSupervisor(cfg)
	defer closeSink()

	switch err := sup.Stop(); {
	case err == nil, errors.Is(err, soloproc.ErrAlreadyStopped), errors.Is(err, soloproc.ErrNotRunning):
		// Restart tolerates a target that was not running.
	default:
		return err
	}
	pid, err := sup.Start()
	if err != nil {
		return err
	}
	fmt.Printf("restarted %s (pid %d)\n", cfg.Target.Name, pid)
	return nil
}

func printStatus(sup *soloproc.Supervisor) error {
	st, err := sup.Status()
	if err != nil {
		return err
	}
	fmt.Println(st.String())
	if len(st.OutOfBand) > 0 {
		fmt.Printf("warning: matching processes outside supervision: %v\n", st.OutOfBand)
	}
	return nil
}

// setupLogging points the supervisor's own diagnostics at the configured
// rotating file, or at stderr with colors when none is configured.
func setupLogging(cfg *config.Config) {
	if w := cfg.Log.SupervisorWriter(); w != nil {
		slog.SetDefault(slog.New(slog.NewTextHandler(w, nil)))
		return
	}
	slog.SetDefault(slog.New(newStderrHandler()))
}

func newStderrHandler() slog.Handler {
	return newColorHandler(os.Stderr)
}
