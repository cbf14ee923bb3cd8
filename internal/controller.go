package internal

import (
	"context"
	"errors"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/charmbracelet/log"
)

// EventSource is the stream of raw change notifications the controller
// consumes. *Watcher is the production implementation.
type EventSource interface {
	Events() <-chan RawEvent
	Errors() <-chan error
}

// CommandRunner is the process-spawning collaborator. *Runner is the
// production implementation.
type CommandRunner interface {
	Start(commandString string) error
	Busy() bool
	Done() <-chan Result
	Interrupt()
	Shutdown()
}

// Controller wires the event source, the coalescer and the runner into
// one watch session. Raw events, timer expiries and process completions
// are three independent asynchronous inputs serialized onto the single
// goroutine running Run, so the coalescer's window and the queued-event
// slot are only ever touched from that loop.
type Controller struct {
	config    Config
	logger    *log.Logger
	source    EventSource
	runner    CommandRunner
	coalescer *Coalescer
	skipper   Skipper

	// queued holds the newest fire that arrived while a run was in
	// flight; it dispatches when the run completes. Last-write-wins:
	// superseded events are never replayed.
	queued *RawEvent
}

func NewController(config Config, source EventSource, runner CommandRunner, clk clock.Clock, logger *log.Logger) *Controller {
	debounce := time.Duration(config.Debounce) * time.Millisecond
	throttle := time.Duration(config.Throttle) * time.Millisecond
	return &Controller{
		config:    config,
		logger:    logger,
		source:    source,
		runner:    runner,
		coalescer: NewCoalescer(debounce, throttle, clk, logger),
		skipper:   NewSkipper(config.WorkDir, config.Exclude),
	}
}

// Run drives the watch session until ctx is cancelled, which is the clean
// way to stop: pending timers are cancelled and the runner shuts down
// under its grace policy. The watched command's exit status never ends
// the session and is never propagated as an error.
func (c *Controller) Run(ctx context.Context) error {
	c.verbose("Command to run:", "cmd", c.config.Command)
	c.verbose("Watched patterns:", "patterns", c.config.Patterns)

	if c.config.Initial {
		c.verbose("Starting initial run...")
		c.dispatch(RawEvent{})
	}

	for {
		select {
		case ev, ok := <-c.source.Events():
			if !ok {
				return errors.New("watch source closed unexpectedly")
			}
			c.verbose("Detected change", "event", ev.Kind, "path", ev.Path)
			if c.skipper.ShouldExclude(ev.Path) {
				c.verbose("File in exclude path, skipping", "path", ev.Path)
				continue
			}
			if fire, ok := c.coalescer.Observe(ev); ok {
				c.dispatch(fire)
			}

		case <-c.coalescer.C():
			if fire, ok := c.coalescer.Expire(); ok {
				c.dispatch(fire)
			}

		case err := <-c.source.Errors():
			if err != nil {
				c.logger.Error("Watch error", "err", err)
			}

		case res := <-c.runner.Done():
			c.completed(res)

		case <-ctx.Done():
			c.verbose("Stopping watch session...")
			c.coalescer.Stop()
			c.runner.Shutdown()
			return nil
		}
	}
}

// dispatch runs the command for a fire decision, or queues the event when
// a run is already in flight. In --kill mode the in-flight run is
// interrupted first, but the queued event still waits for its completion,
// so two processes never overlap.
func (c *Controller) dispatch(ev RawEvent) {
	if c.runner.Busy() {
		if c.config.Kill {
			c.verbose("Interrupting running command")
			c.runner.Interrupt()
		}
		c.queued = &ev
		return
	}

	commandString := RenderCommand(c.config.Command, ev)
	c.verbose("Running command", "cmd", commandString)
	if err := c.runner.Start(commandString); err != nil {
		c.logger.Error("Could not start command", "err", err)
	}
}

func (c *Controller) completed(res Result) {
	switch {
	case res.Err != nil:
		c.logger.Error("Command could not run", "err", res.Err)
	case res.Signal != nil:
		c.logger.Error("Command terminated by signal", "signal", res.Signal)
	case res.ExitCode != 0:
		c.logger.Error("Command exited with non-zero status", "code", res.ExitCode)
	default:
		c.verbose("Command finished", "code", res.ExitCode)
	}

	if c.queued != nil {
		ev := *c.queued
		c.queued = nil
		c.dispatch(ev)
	}
}

// verbose logs a message if verbose mode is enabled.
func (c *Controller) verbose(msg string, args ...interface{}) {
	if c.config.Verbose {
		c.logger.Info(msg, args...)
	}
}
