package internal_test

import (
	"io"
	"runtime"
	"syscall"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jholloway/watchdo/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRunner(t *testing.T) *internal.Runner {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("runner tests exercise /bin/sh semantics")
	}
	return internal.NewRunner(log.New(io.Discard))
}

func waitDone(t *testing.T, r *internal.Runner) internal.Result {
	t.Helper()
	select {
	case res := <-r.Done():
		return res
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for command completion")
		return internal.Result{}
	}
}

func TestRunnerReportsExitCode(t *testing.T) {
	r := newRunner(t)

	require.NoError(t, r.Start("exit 3"))
	res := waitDone(t, r)

	assert.Equal(t, 3, res.ExitCode)
	assert.Nil(t, res.Signal)
	assert.NoError(t, res.Err)
	assert.False(t, r.Busy())
}

func TestRunnerShellSyntax(t *testing.T) {
	r := newRunner(t)

	// The configured command may contain shell syntax like pipes.
	require.NoError(t, r.Start("echo hello | grep -q hello"))
	res := waitDone(t, r)
	assert.Equal(t, 0, res.ExitCode)
}

func TestRunnerRejectsConcurrentStart(t *testing.T) {
	r := newRunner(t)

	require.NoError(t, r.Start("sleep 0.3"))
	assert.True(t, r.Busy())
	assert.ErrorIs(t, r.Start("echo nope"), internal.ErrBusy)

	waitDone(t, r)
	assert.False(t, r.Busy())
}

func TestRunnerMissingCommandIsCompletionNotCrash(t *testing.T) {
	r := newRunner(t)

	require.NoError(t, r.Start("definitely-not-a-real-command-watchdo"))
	res := waitDone(t, r)
	assert.NotEqual(t, 0, res.ExitCode)
	assert.False(t, r.Busy(), "the session keeps going after a failed run")
}

func TestRunnerShutdownKillsStubbornProcess(t *testing.T) {
	r := newRunner(t)
	r.Grace = 200 * time.Millisecond

	// The shell ignores SIGINT and respawns its child, so only the
	// force kill at the end of the grace period ends it.
	require.NoError(t, r.Start("trap '' INT; while :; do sleep 1; done"))
	time.Sleep(100 * time.Millisecond)

	start := time.Now()
	r.Shutdown()

	assert.False(t, r.Busy())
	assert.Less(t, time.Since(start), 5*time.Second, "force kill must not wait for the command")
}

func TestRunnerShutdownWaitsForQuickExit(t *testing.T) {
	r := newRunner(t)
	r.Grace = 5 * time.Second

	require.NoError(t, r.Start("sleep 30"))
	time.Sleep(100 * time.Millisecond)

	// SIGINT lands on the process group, so sleep exits well inside the
	// grace period.
	start := time.Now()
	r.Shutdown()
	assert.Less(t, time.Since(start), 3*time.Second)
	assert.False(t, r.Busy())
}

func TestRunnerSignalReported(t *testing.T) {
	r := newRunner(t)

	require.NoError(t, r.Start("sleep 30"))
	time.Sleep(100 * time.Millisecond)
	r.Interrupt()

	res := waitDone(t, r)
	assert.Equal(t, syscall.SIGINT, res.Signal)
}
