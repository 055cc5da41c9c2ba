package main

import (
	"testing"
	"time"
)

func TestBuildRootWiresSubcommands(t *testing.T) {
	root := buildRoot()
	if root.Use != "soloproc" {
		t.Fatalf("root use: %q", root.Use)
	}

	want := map[string]bool{"start": false, "stop": false, "status": false, "restart": false}
	for _, sub := range root.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Fatalf("subcommand %q not registered", name)
		}
	}

	for _, name := range []string{"config", "target", "pidfile", "logfile"} {
		if root.PersistentFlags().Lookup(name) == nil {
			t.Fatalf("persistent flag %q not registered", name)
		}
	}
}

func TestStopCommandWaitDefault(t *testing.T) {
	root := buildRoot()
	for _, name := range []string{"stop", "restart"} {
		sub, _, err := root.Find([]string{name})
		if err != nil {
			t.Fatalf("find %s: %v", name, err)
		}
		f := sub.Flags().Lookup("wait")
		if f == nil {
			t.Fatalf("%s has no --wait flag", name)
		}
		// Zero means "use the configured stop_wait"; a non-zero flag default
		// would silently override the config file.
		if f.DefValue != time.Duration(0).String() {
			t.Fatalf("%s --wait default: %q", name, f.DefValue)
		}
	}
}

func TestStatusCommandWatchFlags(t *testing.T) {
	root := buildRoot()
	status, _, err := root.Find([]string{"status"})
	if err != nil {
		t.Fatalf("find status: %v", err)
	}
	if status.Flags().Lookup("watch") == nil {
		t.Fatal("status has no --watch flag")
	}
	if status.Flags().Lookup("interval") == nil {
		t.Fatal("status has no --interval flag")
	}
}
