//go:build !windows

package detector

import (
	"bytes"
	"errors"
	"os"
	"strconv"
	"syscall"
)

// PIDAlive returns true if a process with the given pid exists. EPERM counts
// as alive: the process is there, we just may not own it. A zombie does not
// count; it has exited and only awaits reaping.
func PIDAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	if isZombie(pid) {
		return false
	}
	err := syscall.Kill(pid, 0)
	return err == nil || errors.Is(err, syscall.EPERM)
}

// isZombie reports whether /proc/<pid>/status shows state Z. Only meaningful
// on Linux; elsewhere the file does not exist and the answer is false.
func isZombie(pid int) bool {
	b, err := os.ReadFile("/proc/" + strconv.Itoa(pid) + "/status")
	if err != nil {
		return false
	}
	return bytes.Contains(b, []byte("State:\tZ"))
}
