//go:build windows

package infra

import (
	"os/exec"
	"strings"
	"syscall"
)

// buildCommand passes args through verbatim so the target sees the same
// command line the user typed.
func buildCommand(path, args string) *exec.Cmd {
	cmd := exec.Command(path)
	cmdLine := quoteArg(path)
	if args != "" {
		cmdLine += " " + args
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{CmdLine: cmdLine}
	return cmd
}

func quoteArg(s string) string {
	if strings.HasPrefix(s, `"`) {
		return s
	}
	return `"` + s + `"`
}
