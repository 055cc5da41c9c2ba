package soloproc

import (
	"errors"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func testSpec(t *testing.T, command string) Spec {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires Unix-like environment")
	}
	dir := t.TempDir()
	return Spec{
		Name:     "app",
		Command:  command,
		PIDFile:  filepath.Join(dir, "app.pid"),
		StopWait: time.Second,
	}
}

func TestFacadeLifecycle(t *testing.T) {
	sup := New(testSpec(t, "sleep 5"))

	pid, err := sup.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if pid <= 0 {
		t.Fatalf("bad pid %d", pid)
	}

	gotPID, running, err := sup.IsRunning()
	if err != nil || !running || gotPID != pid {
		t.Fatalf("IsRunning: pid=%d running=%v err=%v", gotPID, running, err)
	}

	st, err := sup.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !st.Running || st.PID != pid {
		t.Fatalf("status: %+v", st)
	}

	var already *AlreadyRunningError
	if _, err := sup.Start(); !errors.As(err, &already) {
		t.Fatalf("second Start: want AlreadyRunningError, got %v", err)
	}

	if err := sup.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := sup.Stop(); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("Stop after stop: want ErrNotRunning, got %v", err)
	}
}

func TestFacadeHistorySink(t *testing.T) {
	sup := New(testSpec(t, "sleep 5"))
	sink, err := NewSQLiteHistorySink(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteHistorySink: %v", err)
	}
	defer func() { _ = sink.Close() }()
	sup.SetHistorySink(sink)

	if _, err := sup.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := sup.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Target.Command == "" || cfg.Target.PIDFile == "" {
		t.Fatalf("incomplete defaults: %+v", cfg.Target)
	}
}
