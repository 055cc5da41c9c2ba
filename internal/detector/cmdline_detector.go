package detector

import (
	"os"
	"strings"

	gopsproc "github.com/shirou/gopsutil/v4/process"
)

// CmdlineDetector scans the live process table for command lines containing
// Pattern. It excludes the scanning process itself and any PIDs listed in
// Exclude, so the supervisor never matches its own invocation.
//
// This strategy is diagnostic only. Instances it finds were started outside
// the supervisor and are reported, not owned: the supervisor cannot stop or
// adopt them through the PID record.
type CmdlineDetector struct {
	Pattern string
	Exclude []int
}

// Matches returns the PIDs of all matching processes.
func (d CmdlineDetector) Matches() ([]int, error) {
	if strings.TrimSpace(d.Pattern) == "" {
		return nil, nil
	}
	procs, err := gopsproc.Processes()
	if err != nil {
		return nil, err
	}
	self := os.Getpid()
	var pids []int
	for _, p := range procs {
		pid := int(p.Pid)
		if pid == self || d.excluded(pid) {
			continue
		}
		// Cmdline errors (process exited mid-scan, permission) just skip
		// the entry; the scan is best effort.
		cl, err := p.Cmdline()
		if err != nil || cl == "" {
			continue
		}
		if strings.Contains(cl, d.Pattern) {
			pids = append(pids, pid)
		}
	}
	return pids, nil
}

func (d CmdlineDetector) Alive() (bool, error) {
	pids, err := d.Matches()
	if err != nil {
		return false, err
	}
	return len(pids) > 0, nil
}

func (d CmdlineDetector) Describe() string { return "cmdline:" + d.Pattern }

func (d CmdlineDetector) excluded(pid int) bool {
	for _, x := range d.Exclude {
		if x == pid {
			return true
		}
	}
	return false
}
