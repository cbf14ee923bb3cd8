//go:build !windows

package internal

import (
	"os"
	"os/exec"
	"syscall"
)

// forkProcess builds a command that runs commandString through the host
// shell in its own process group, so the whole process tree can be
// signalled at once.
func forkProcess(commandString string) *exec.Cmd {
	cmd := exec.Command("/bin/sh", "-c", commandString)
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
	return cmd
}

// interruptProcess sends SIGINT to the process group of proc.
// We cannot simply signal proc itself because that would not reach the
// children of the shell which, in the case of something like a web
// server, would mean that we can't re-bind to the given port.
func interruptProcess(proc *os.Process) error {
	pgid, err := syscall.Getpgid(proc.Pid)
	if err != nil {
		return err
	}
	return syscall.Kill(-pgid, syscall.SIGINT)
}

// killProcess force-kills the process group of proc.
func killProcess(proc *os.Process) error {
	pgid, err := syscall.Getpgid(proc.Pid)
	if err != nil {
		return err
	}
	return syscall.Kill(-pgid, syscall.SIGKILL)
}
