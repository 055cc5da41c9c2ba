package main

import "time"

// Flag structs to decouple cobra from logic for testing.

// GlobalFlags holds persistent flags shared by all commands. Each override
// wins over the config file and environment (spec precedence: flags last).
type GlobalFlags struct {
	ConfigPath string
	PIDFile    string // override target.pidfile
	LogFile    string // override target stdout+stderr destination
	Target     string // override target.command
}

// StopFlags holds flags for the stop command.
type StopFlags struct {
	Wait time.Duration
}

// StatusFlags holds flags for the status command.
type StatusFlags struct {
	Watch    bool
	Interval time.Duration
}
