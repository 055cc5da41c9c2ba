//go:build !windows

package supervisor

import (
	"testing"
)

func TestConfigureSysProcAttrDetaches(t *testing.T) {
	s := Spec{Command: "sleep 1"}
	cmd := s.BuildCommand()
	configureSysProcAttr(cmd)
	if cmd.SysProcAttr == nil || !cmd.SysProcAttr.Setsid {
		t.Fatal("child must start in a new session to survive supervisor exit")
	}
}
