package supervisor

import (
	"os/exec"
	"strings"
	"time"

	"github.com/loykin/soloproc/internal/logger"
)

// Spec describes the single target the supervisor manages.
type Spec struct {
	Name          string        `json:"name"`
	Command       string        `json:"command"`        // command to start the target
	WorkDir       string        `json:"work_dir"`       // optional working dir
	Env           []string      `json:"env"`            // optional extra env (KEY=VALUE)
	PIDFile       string        `json:"pid_file"`       // PID record path
	LockFile      string        `json:"lock_file"`      // advisory lock path; defaults to PIDFile + ".lock"
	StopWait      time.Duration `json:"stop_wait"`      // graceful termination window before SIGKILL
	StartDuration time.Duration `json:"start_duration"` // minimum uptime for a start to count as successful
	Log           logger.Config `json:"log"`
}

// LockPath returns the advisory lock file guarding check-then-launch.
// The lock file is deliberately distinct from the PID record: the record is
// data, not a lock.
func (s *Spec) LockPath() string {
	if s.LockFile != "" {
		return s.LockFile
	}
	return s.PIDFile + ".lock"
}

// BuildCommand constructs an *exec.Cmd for the spec's command string.
// It avoids invoking a shell when not necessary, so the captured PID is the
// workload itself rather than an intermediate shell. It also respects an
// explicit shell invocation already present in the command string (e.g.
// "sh -c 'echo hi'"), avoiding double-wrapping with another shell.
func (s *Spec) BuildCommand() *exec.Cmd {
	cmdStr := strings.TrimSpace(s.Command)
	if cmdStr == "" {
		// #nosec G204
		return exec.Command("/bin/true")
	}
	// If the command already explicitly uses a shell, honor it without
	// adding another layer.
	if script, ok := parseExplicitShell(cmdStr); ok {
		// Absolute shell path to avoid PATH dependency when Env is overridden.
		// #nosec G204
		return exec.Command("/bin/sh", "-c", script)
	}
	// When metacharacters are present a shell is unavoidable. The child is
	// started as a session leader, so group signals still cover the real
	// workload behind the shell.
	if strings.ContainsAny(cmdStr, "|&;<>*?`$\"'(){}[]~") {
		// #nosec G204
		return exec.Command("/bin/sh", "-c", cmdStr)
	}
	parts := strings.Fields(cmdStr)
	name := parts[0]
	var args []string
	if len(parts) > 1 {
		args = parts[1:]
	}
	// #nosec G204
	return exec.Command(name, args...)
}

// parseExplicitShell detects patterns like "sh -c <ARG>" or "/bin/sh -c <ARG>"
// at the beginning of cmdStr and returns the script after "-c". It strips one
// pair of surrounding quotes so the actual script reaches the shell.
func parseExplicitShell(cmdStr string) (string, bool) {
	trim := strings.TrimLeft(cmdStr, " \t")
	for _, p := range []string{"sh -c ", "/bin/sh -c ", "/usr/bin/sh -c "} {
		if !strings.HasPrefix(trim, p) {
			continue
		}
		after := trim[len(p):]
		if n := len(after); n >= 2 {
			if (after[0] == '\'' && after[n-1] == '\'') || (after[0] == '"' && after[n-1] == '"') {
				after = after[1 : n-1]
			}
		}
		return after, true
	}
	return "", false
}
