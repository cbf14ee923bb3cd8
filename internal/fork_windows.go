package internal

import (
	"os"
	"os/exec"
	"strconv"
	"syscall"
)

func forkProcess(commandString string) *exec.Cmd {
	cmd := exec.Command("cmd", "/C", commandString)
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
	return cmd
}

func interruptProcess(proc *os.Process) error {
	return proc.Signal(os.Interrupt)
}

func killProcess(proc *os.Process) error {
	kill := exec.Command("taskkill", "/T", "/F", "/PID", strconv.Itoa(proc.Pid))
	return kill.Run()
}
