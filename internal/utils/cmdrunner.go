package utils

import (
	"os"
	"os/exec"
)

// RealCmdRunner executes commands using the operating system, wiring the
// child process to the caller's stdio.
type RealCmdRunner struct{}

// Run executes name with args inside dir, with env appended to the
// inherited environment.
func (r *RealCmdRunner) Run(dir string, env []string, name string, args ...string) error {
	command := exec.Command(name, args...)
	command.Dir = dir
	command.Env = append(os.Environ(), env...)
	command.Stdin = os.Stdin
	command.Stdout = os.Stdout
	command.Stderr = os.Stderr

	return command.Run()
}
