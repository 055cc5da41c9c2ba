package detector

import (
	"os"

	"github.com/loykin/soloproc/internal/pidfile"
)

// PIDRecordDetector detects the target through its persisted PID record.
// This is the authoritative strategy: a record that names a live process
// whose start time matches is the target; anything else is not running.
type PIDRecordDetector struct {
	Path string
}

func (d PIDRecordDetector) Alive() (bool, error) {
	rec, err := pidfile.Read(d.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		// Unreadable or corrupt record: cannot confirm, surface it rather
		// than claim NotRunning over a possibly live instance.
		return false, err
	}
	return RecordAlive(rec), nil
}

func (d PIDRecordDetector) Describe() string { return "pidfile:" + d.Path }

// RecordAlive reports whether rec still names its original live process.
// A live PID whose start time disagrees with the recorded one is a recycled
// PID, not the target.
func RecordAlive(rec pidfile.Record) bool {
	if !PIDAlive(rec.PID) {
		return false
	}
	if rec.StartUnix > 0 {
		if cur := ProcStartUnix(rec.PID); cur > 0 && cur != rec.StartUnix {
			return false
		}
	}
	return true
}
