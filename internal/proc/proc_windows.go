//go:build windows

package proc

import (
	"os/exec"
	"strconv"
	"syscall"
)

// isolateProcessGroup creates the child in a new process group so its
// descendants can be terminated together.
func isolateProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP}
}

// killProcessTree terminates the child and its descendants. Windows has no
// group kill signal, so taskkill /T walks the process tree.
func killProcessTree(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	kill := exec.Command("taskkill", "/T", "/F", "/PID", strconv.Itoa(cmd.Process.Pid))
	if err := kill.Run(); err == nil {
		return nil
	}
	return cmd.Process.Kill()
}
