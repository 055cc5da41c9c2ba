// Package supervisor implements single-instance supervision of one
// configured target process: start it exactly once, stop it idempotently,
// and report its running state, across crash and restart scenarios.
//
// The PID record is the single source of truth for "is it running". A
// command-line scan of the process table exists only as a diagnostic for
// instances started out of band; such instances are reported, never owned.
package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gofrs/flock"

	"github.com/loykin/soloproc/internal/detector"
	"github.com/loykin/soloproc/internal/history"
	"github.com/loykin/soloproc/internal/metrics"
	"github.com/loykin/soloproc/internal/pidfile"
)

const (
	// lockWait bounds how long an invocation waits for a concurrent one to
	// finish its check-and-launch sequence.
	lockWait      = 5 * time.Second
	lockRetry     = 25 * time.Millisecond
	pollInterval  = 50 * time.Millisecond
	killGraceWait = 200 * time.Millisecond
)

// Supervisor manages the lifecycle of the single configured target.
type Supervisor struct {
	spec Spec
	hist history.Sink // optional audit sink
}

func New(spec Spec) *Supervisor { return &Supervisor{spec: spec} }

// SetHistorySink attaches an audit sink. Sink failures are logged and never
// fail the operation that produced the event.
func (s *Supervisor) SetHistorySink(h history.Sink) { s.hist = h }

// Spec returns a copy of the supervised target's spec.
func (s *Supervisor) Spec() Spec { return s.spec }

// acquireLock takes the advisory lock guarding the check-then-act sequences
// of Start and Stop. The PID record itself is data, never the lock.
func (s *Supervisor) acquireLock() (*flock.Flock, error) {
	ctx, cancel := context.WithTimeout(context.Background(), lockWait)
	defer cancel()

	fl := flock.New(s.spec.LockPath())
	locked, err := fl.TryLockContext(ctx, lockRetry)
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", s.spec.LockPath(), err)
	}
	if !locked {
		return nil, fmt.Errorf("lock %s held elsewhere", s.spec.LockPath())
	}
	return fl, nil
}

// IsRunning reports the live PID of the target, if any. A stale record (dead
// process, or a live PID whose start time no longer matches) is removed as a
// side effect. An unreadable or corrupt record is surfaced as an error
// rather than silently reported as not running.
func (s *Supervisor) IsRunning() (int, bool, error) {
	fl, err := s.acquireLock()
	if err != nil {
		return 0, false, err
	}
	defer func() { _ = fl.Unlock() }()
	return s.isRunningLocked()
}

func (s *Supervisor) isRunningLocked() (int, bool, error) {
	rec, err := pidfile.Read(s.spec.PIDFile)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("cannot confirm running state: %w", err)
	}
	if detector.RecordAlive(rec) {
		return rec.PID, true, nil
	}
	// Stale: the record outlived its process (or the PID was recycled).
	slog.Warn("removing stale pid record", "name", s.spec.Name, "pid", rec.PID, "path", s.spec.PIDFile)
	if err := pidfile.Remove(s.spec.PIDFile); err != nil {
		return 0, false, err
	}
	metrics.IncStaleRecord(s.spec.Name)
	s.audit(history.EventStaleCleanup, rec.PID, "record outlived process")
	return 0, false, nil
}

// Start launches the target detached from the invoking session, with stdin
// disconnected and stdout/stderr appended to the configured destinations.
// It fails with *AlreadyRunningError when a live instance exists and with
// *LaunchError when process creation fails; in the latter case no PID record
// is written. The whole check-and-launch sequence holds the advisory lock,
// closing the window in which two concurrent starts both observe "not
// running".
func (s *Supervisor) Start() (int, error) {
	fl, err := s.acquireLock()
	if err != nil {
		metrics.IncError(s.spec.Name, "start")
		return 0, err
	}
	defer func() { _ = fl.Unlock() }()

	pid, running, err := s.isRunningLocked()
	if err != nil {
		metrics.IncError(s.spec.Name, "start")
		return 0, err
	}
	if running {
		metrics.IncError(s.spec.Name, "start")
		return pid, &AlreadyRunningError{PID: pid}
	}

	cmd := s.spec.BuildCommand()
	if s.spec.WorkDir != "" {
		cmd.Dir = s.spec.WorkDir
	}
	if len(s.spec.Env) > 0 {
		cmd.Env = append(os.Environ(), s.spec.Env...)
	}
	configureSysProcAttr(cmd)

	// Stdin stays nil so the child reads from the null device and never
	// blocks on terminal input. The log destinations must be real file
	// descriptors: an in-process writer would die with the supervisor.
	outF, errF, err := s.spec.Log.TargetFiles(s.spec.Name)
	if err != nil {
		metrics.IncError(s.spec.Name, "start")
		return 0, &LaunchError{Err: err}
	}
	cmd.Stdout = outF
	cmd.Stderr = errF
	closeFiles := func() {
		if outF != nil {
			_ = outF.Close()
		}
		if errF != nil && errF != outF {
			_ = errF.Close()
		}
	}

	if err := cmd.Start(); err != nil {
		closeFiles()
		metrics.IncError(s.spec.Name, "start")
		return 0, &LaunchError{Err: err}
	}
	// The supervisor's copies of the log descriptors are no longer needed;
	// the child holds its own.
	closeFiles()

	pid = cmd.Process.Pid
	rec := pidfile.Record{PID: pid, StartUnix: detector.ProcStartUnix(pid)}
	if err := pidfile.Write(s.spec.PIDFile, rec); err != nil {
		// An untracked instance is worse than no instance: take it back
		// down rather than leak a process no record points at.
		_ = kill(pid)
		metrics.IncError(s.spec.Name, "start")
		return 0, fmt.Errorf("write pid record: %w", err)
	}

	if err := s.enforceStartDuration(rec); err != nil {
		_ = pidfile.Remove(s.spec.PIDFile)
		metrics.IncError(s.spec.Name, "start")
		return 0, err
	}

	_ = cmd.Process.Release()
	slog.Info("target started", "name", s.spec.Name, "pid", pid, "command", s.spec.Command)
	metrics.IncStart(s.spec.Name)
	s.audit(history.EventStart, pid, s.spec.Command)
	return pid, nil
}

// enforceStartDuration requires the target to stay up for the configured
// window; an early exit turns the start into a failure.
func (s *Supervisor) enforceStartDuration(rec pidfile.Record) error {
	d := s.spec.StartDuration
	if d <= 0 {
		return nil
	}
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if !detector.RecordAlive(rec) {
			return &LaunchError{Err: fmt.Errorf("target exited within start window %s", d)}
		}
		time.Sleep(pollInterval / 5)
	}
	return nil
}

// Stop sends a graceful termination signal to the recorded process group,
// waits up to the configured stop window for it to exit, and escalates to a
// forceful kill when it does not. The PID record is removed whenever the end
// state "not running" holds: after a delivered signal and after discovering
// the process was already gone (ErrAlreadyStopped). Only a missing record
// (ErrNotRunning) and a failed delivery (SignalError) leave state untouched.
func (s *Supervisor) Stop() error {
	fl, err := s.acquireLock()
	if err != nil {
		metrics.IncError(s.spec.Name, "stop")
		return err
	}
	defer func() { _ = fl.Unlock() }()

	rec, err := pidfile.Read(s.spec.PIDFile)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotRunning
		}
		metrics.IncError(s.spec.Name, "stop")
		return fmt.Errorf("cannot confirm running state: %w", err)
	}

	if !detector.RecordAlive(rec) {
		if err := pidfile.Remove(s.spec.PIDFile); err != nil {
			metrics.IncError(s.spec.Name, "stop")
			return err
		}
		s.audit(history.EventStop, rec.PID, "already stopped")
		return ErrAlreadyStopped
	}

	if err := terminate(rec.PID); err != nil {
		if isNoSuchProcess(err) {
			if rmErr := pidfile.Remove(s.spec.PIDFile); rmErr != nil {
				metrics.IncError(s.spec.Name, "stop")
				return rmErr
			}
			s.audit(history.EventStop, rec.PID, "already stopped")
			return ErrAlreadyStopped
		}
		metrics.IncError(s.spec.Name, "stop")
		return &SignalError{Err: err}
	}

	detail := "terminated"
	if !s.waitGone(rec, s.stopWait()) {
		slog.Warn("target ignored termination, killing", "name", s.spec.Name, "pid", rec.PID)
		_ = kill(rec.PID)
		s.waitGone(rec, killGraceWait)
		detail = "killed after grace period"
	}

	if err := pidfile.Remove(s.spec.PIDFile); err != nil {
		metrics.IncError(s.spec.Name, "stop")
		return err
	}
	slog.Info("target stopped", "name", s.spec.Name, "pid", rec.PID)
	metrics.IncStop(s.spec.Name)
	s.audit(history.EventStop, rec.PID, detail)
	return nil
}

func (s *Supervisor) stopWait() time.Duration {
	if s.spec.StopWait > 0 {
		return s.spec.StopWait
	}
	return 3 * time.Second
}

// waitGone polls until the recorded process is gone or the window elapses.
func (s *Supervisor) waitGone(rec pidfile.Record, window time.Duration) bool {
	deadline := time.Now().Add(window)
	for time.Now().Before(deadline) {
		if !detector.RecordAlive(rec) {
			return true
		}
		time.Sleep(pollInterval)
	}
	return !detector.RecordAlive(rec)
}

// Status is a read-only wrapper around IsRunning, with no side effects other
// than stale-record cleanup. It additionally runs the diagnostic
// command-line scan and reports matching out-of-band processes; those are a
// known gap of PID-record supervision, surfaced rather than papered over.
func (s *Supervisor) Status() (Status, error) {
	pid, running, err := s.IsRunning()
	if err != nil {
		metrics.IncError(s.spec.Name, "status")
		return Status{}, err
	}
	st := Status{
		Name:       s.spec.Name,
		Running:    running,
		PID:        pid,
		DetectedBy: detector.PIDRecordDetector{Path: s.spec.PIDFile}.Describe(),
	}
	scan := detector.CmdlineDetector{Pattern: s.spec.Command, Exclude: []int{pid}}
	if matches, err := scan.Matches(); err == nil && len(matches) > 0 {
		st.OutOfBand = matches
		slog.Warn("processes matching the target command are running outside supervision",
			"name", s.spec.Name, "pids", matches)
	}
	return st, nil
}

func (s *Supervisor) audit(t history.EventType, pid int, detail string) {
	if s.hist == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	e := history.Event{Type: t, OccurredAt: time.Now(), Name: s.spec.Name, PID: pid, Detail: detail}
	if err := s.hist.Send(ctx, e); err != nil {
		slog.Warn("history sink write failed", "event", string(t), "error", err)
	}
}
