//go:build unix

package proc

import (
	"os/exec"
	"syscall"
)

// isolateProcessGroup places the child in its own process group so a
// timeout kill reaches helper processes spawned by CLI wrappers.
func isolateProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killProcessTree sends SIGKILL to the child's process group. With Setpgid
// set, the group ID equals the child's PID. Falls back to killing the single
// process when the group signal fails.
func killProcessTree(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL); err == nil {
		return nil
	}
	return cmd.Process.Kill()
}
