//go:build !windows

package process

import (
	"os/exec"
	"syscall"
)

func shellCommand(command string) (string, []string) {
	return "sh", []string{"-c", command}
}

func configureProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killProcess kills the shell and everything it started.
func killProcess(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	_ = cmd.Process.Kill()
}
