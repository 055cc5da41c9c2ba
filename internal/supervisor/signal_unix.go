//go:build !windows

package supervisor

import (
	"errors"
	"syscall"
)

// terminate requests a graceful exit. The signal goes to the process group
// first: the child is a session leader, so -pid covers any shell wrapper and
// its descendants. Falls back to the single process when no group exists.
func terminate(pid int) error {
	return signalGroup(pid, syscall.SIGTERM)
}

// kill forcefully ends the process group.
func kill(pid int) error {
	return signalGroup(pid, syscall.SIGKILL)
}

func signalGroup(pid int, sig syscall.Signal) error {
	err := syscall.Kill(-pid, sig)
	if errors.Is(err, syscall.ESRCH) {
		err = syscall.Kill(pid, sig)
	}
	return err
}

// isNoSuchProcess distinguishes "already gone" from real delivery failures.
func isNoSuchProcess(err error) bool {
	return errors.Is(err, syscall.ESRCH)
}
