package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/loykin/soloproc/internal/logger"
)

func main() {
	root := buildRoot()
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildRoot creates the root command with the start/stop/status/restart
// subcommands.
func buildRoot() *cobra.Command {
	globalFlags := &GlobalFlags{}
	stopFlags := &StopFlags{}
	restartFlags := &StopFlags{}
	statusFlags := &StatusFlags{}

	cmd := command{flags: globalFlags}

	root := createRootCommand(globalFlags)
	root.AddCommand(
		createStartCommand(cmd),
		createStopCommand(cmd, stopFlags),
		createStatusCommand(cmd, statusFlags),
		createRestartCommand(cmd, restartFlags),
	)
	return root
}

func createRootCommand(flags *GlobalFlags) *cobra.Command {
	root := &cobra.Command{
		Use:   "soloproc",
		Short: "Single-instance process supervisor",
		Long: `Soloproc starts, stops and reports one configured background process,
tracking it through a PID record file. It guarantees at most one supervised
instance: a second start fails while the first is alive, and stale records
left by a crashed target are detected and repaired.

Examples:
  soloproc start
  soloproc start --target="python3 app.py" --pidfile=app.pid --logfile=app.log
  soloproc status
  soloproc stop --wait=5s`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flags.ConfigPath, "config", "", "path to TOML config file (optional)")
	root.PersistentFlags().StringVar(&flags.Target, "target", "", "override the target command")
	root.PersistentFlags().StringVar(&flags.PIDFile, "pidfile", "", "override the PID record path")
	root.PersistentFlags().StringVar(&flags.LogFile, "logfile", "", "override the target log destination (stdout and stderr)")
	return root
}

func createStartCommand(c command) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the target process",
		Long: `Start the configured target, detached from this terminal, with its
output appended to the log destination. Fails when a live instance exists.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Start()
		},
	}
}

func createStopCommand(c command, flags *StopFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the target process",
		Long: `Send a graceful termination signal to the recorded process, wait for it
to exit, and escalate to a forceful kill when it does not. Finding the
process already gone counts as success.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Stop(*flags)
		},
	}
	cmd.Flags().DurationVar(&flags.Wait, "wait", 0, "time to wait for graceful shutdown (default: stop_wait from config)")
	return cmd
}

func createStatusCommand(c command, flags *StatusFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the target's running state",
		Long: `Print Running(pid) or NotRunning. The only mutation is the cleanup of a
stale PID record. Watch mode repeats the check and, when configured, serves
Prometheus metrics while watching.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Status(*flags)
		},
	}
	cmd.Flags().BoolVar(&flags.Watch, "watch", false, "keep reporting status")
	cmd.Flags().DurationVar(&flags.Interval, "interval", 2*time.Second, "watch interval")
	return cmd
}

func createRestartCommand(c command, flags *StopFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restart",
		Short: "Restart the target process",
		Long:  `Stop the target if it runs, then start it again.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Restart(*flags)
		},
	}
	cmd.Flags().DurationVar(&flags.Wait, "wait", 0, "time to wait for graceful shutdown (default: stop_wait from config)")
	return cmd
}

func newColorHandler(w io.Writer) slog.Handler {
	return logger.NewColorTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
}
