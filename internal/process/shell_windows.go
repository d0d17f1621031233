//go:build windows

package process

import "os/exec"

func shellCommand(command string) (string, []string) {
	return "cmd", []string{"/C", command}
}

func configureProcess(cmd *exec.Cmd) {}

func killProcess(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	_ = cmd.Process.Kill()
}
