package internal

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
)

// ErrBusy is returned by Start while a previous run is still in flight.
var ErrBusy = errors.New("a command is already running")

// spawnFailureCode is the synthetic exit status reported when the shell
// itself could not be spawned, matching the shell's own command-not-found
// convention.
const spawnFailureCode = 127

const defaultGrace = 5 * time.Second

// Runner executes rendered command strings through the host shell, one at
// a time. Completion is observed asynchronously on Done; the caller must
// drain one Result per Start.
//
// Start, Interrupt and Shutdown must all be called from the same
// goroutine (the controller loop). Busy is safe to read from anywhere.
type Runner struct {
	logger *log.Logger
	stdout io.Writer
	stderr io.Writer

	// Grace bounds how long Shutdown waits after SIGINT before the
	// process group is force-killed.
	Grace time.Duration

	busy atomic.Bool
	cmd  *exec.Cmd
	done chan Result
}

func NewRunner(logger *log.Logger) *Runner {
	return &Runner{
		logger: logger,
		// Attach to current process so we can get color output:
		stdout: os.Stdout,
		stderr: os.Stderr,
		Grace:  defaultGrace,
		done:   make(chan Result, 1),
	}
}

// Done delivers exactly one Result per Start call.
func (r *Runner) Done() <-chan Result {
	return r.done
}

// Busy reports whether a run is in flight: true between Start and the
// delivery of its Result.
func (r *Runner) Busy() bool {
	return r.busy.Load()
}

// Start spawns commandString through the host shell. A spawn failure is
// not an error here: it is reported through Done with a synthetic exit
// status so the watch session carries on. The only error is ErrBusy when
// the previous run has not completed.
func (r *Runner) Start(commandString string) error {
	if !r.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}

	cmd := forkProcess(commandString)
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr

	if err := cmd.Start(); err != nil {
		r.cmd = nil
		go r.finish(Result{ExitCode: spawnFailureCode, Err: err})
		return nil
	}
	r.cmd = cmd

	go func() {
		err := cmd.Wait()
		r.finish(waitResult(cmd, err))
	}()
	return nil
}

// Interrupt asks the in-flight process group to stop. The run still
// completes through Done. No-op when nothing is running.
func (r *Runner) Interrupt() {
	if r.cmd == nil || !r.Busy() {
		return
	}
	if err := interruptProcess(r.cmd.Process); err != nil {
		r.logger.Error("Could not interrupt command", "err", err)
	}
}

// Shutdown ends the session's process, if any: the group gets SIGINT and
// the grace period to exit, then it is force-killed. Shutdown consumes
// the final Result itself since the controller loop has already stopped.
func (r *Runner) Shutdown() {
	if r.cmd == nil || !r.Busy() {
		return
	}
	r.Interrupt()

	select {
	case <-r.done:
	case <-time.After(r.Grace):
		r.logger.Warn("Command did not exit within grace period, killing", "grace", r.Grace)
		if err := killProcess(r.cmd.Process); err != nil {
			r.logger.Error("Could not kill command", "err", err)
		}
		<-r.done
	}
}

// finish flips the busy flag before delivering so that the controller,
// which only acts after receiving the Result, always observes Busy as
// false on the completion path.
func (r *Runner) finish(res Result) {
	r.busy.Store(false)
	r.done <- res
}

func waitResult(cmd *exec.Cmd, err error) Result {
	res := Result{ExitCode: cmd.ProcessState.ExitCode()}
	if status, ok := cmd.ProcessState.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		res.Signal = status.Signal()
	}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			res.Err = err
		}
	}
	return res
}
