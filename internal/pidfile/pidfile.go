// Package pidfile persists the identity of the last process the supervisor
// launched. The on-disk format is the PID in decimal on the first line,
// optionally followed by a JSON metadata line carrying the process start
// time. The start time lets readers reject a recycled PID that belongs to an
// unrelated process. Legacy files containing only the PID remain readable.
package pidfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Record is the persisted identity of a launched process.
type Record struct {
	PID       int
	StartUnix int64 // process start time in Unix seconds; 0 when unknown
}

type meta struct {
	StartUnix int64 `json:"start_unix"`
}

// Write persists rec at path, creating parent directories as needed.
// Any prior record is overwritten.
func Write(path string, rec Record) error {
	if rec.PID <= 0 {
		return fmt.Errorf("refusing to write invalid pid %d", rec.PID)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return err
		}
	}
	var b strings.Builder
	b.WriteString(strconv.Itoa(rec.PID))
	b.WriteByte('\n')
	if rec.StartUnix > 0 {
		mb, err := json.Marshal(meta{StartUnix: rec.StartUnix})
		if err != nil {
			return err
		}
		b.Write(mb)
		b.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(b.String()), 0o600)
}

// Read parses the record at path. A missing file returns os.ErrNotExist
// unwrapped so callers can distinguish "never started" from a corrupt or
// unreadable record, which is reported as an error rather than silently
// treated as not running.
func Read(path string) (Record, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Record{}, err
	}
	pidLine, rest, _ := strings.Cut(strings.ReplaceAll(string(b), "\r\n", "\n"), "\n")
	pidStr := strings.TrimSpace(pidLine)
	pid, err := strconv.Atoi(pidStr)
	if err != nil || pid <= 0 {
		return Record{}, fmt.Errorf("invalid pid in %s: %q", path, pidStr)
	}
	rec := Record{PID: pid}
	for _, line := range strings.Split(rest, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var m meta
		if err := json.Unmarshal([]byte(line), &m); err == nil && m.StartUnix > 0 {
			rec.StartUnix = m.StartUnix
			break
		}
	}
	return rec, nil
}

// Remove deletes the record. Removing an already-absent record is not an
// error; the desired end state holds either way.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
