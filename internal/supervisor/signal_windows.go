//go:build windows

package supervisor

import (
	"errors"
	"os"
)

// terminate ends the process. Windows has no SIGTERM equivalent for a
// detached process, so graceful and forceful termination are the same call.
func terminate(pid int) error {
	p, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return p.Kill()
}

func kill(pid int) error {
	return terminate(pid)
}

func isNoSuchProcess(err error) bool {
	return errors.Is(err, os.ErrProcessDone)
}
