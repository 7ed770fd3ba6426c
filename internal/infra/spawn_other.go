//go:build !windows

package infra

import (
	"os/exec"
	"strings"
)

func buildCommand(path, args string) *exec.Cmd {
	return exec.Command(path, strings.Fields(args)...)
}
