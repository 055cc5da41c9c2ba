// Package detector answers "is the target process currently running".
// The PID-record strategy is the authoritative one; the command-line scan
// exists only as a diagnostic for instances started out of band. Mixing the
// two as equal sources of truth selects different answers depending on
// timing, so the supervisor never does that.
package detector

// Detector is a strategy that determines if a process is running.
// It must be safe for concurrent use.
type Detector interface {
	// Alive returns true if the process is detected as running.
	Alive() (bool, error)
	// Describe returns a human-readable description of the detection method.
	Describe() string
}
