//go:build !windows

package supervisor

import (
	"os/exec"
	"syscall"
)

// configureSysProcAttr detaches the child from the invoking session.
// Setsid makes it a session and process-group leader, so it survives the
// supervisor's exit and group signals (kill -pid) reach its whole tree.
func configureSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
