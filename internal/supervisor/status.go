package supervisor

import "fmt"

// Status is the answer to a status query.
type Status struct {
	Name       string `json:"name"`
	Running    bool   `json:"running"`
	PID        int    `json:"pid,omitempty"`
	DetectedBy string `json:"detected_by,omitempty"`
	// OutOfBand lists PIDs of processes whose command line matches the
	// target but which are not owned by the PID record. Diagnostic only;
	// the supervisor does not manage them.
	OutOfBand []int `json:"out_of_band,omitempty"`
}

func (s Status) String() string {
	if s.Running {
		return fmt.Sprintf("Running(%d)", s.PID)
	}
	return "NotRunning"
}
