//go:build windows

package supervisor

import (
	"os/exec"
	"syscall"
)

// configureSysProcAttr detaches the child from the invoking console so it
// survives the supervisor's exit.
func configureSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP | 0x00000008, // DETACHED_PROCESS
	}
}
