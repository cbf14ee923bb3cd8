package internal

import (
	"os"
	"time"
)

// EventKind classifies a filesystem change. The names match what the
// {event} placeholder substitutes into the command template.
type EventKind int

const (
	KindInvalid EventKind = iota
	KindAdd
	KindChange
	KindUnlink
	KindAddDir
	KindUnlinkDir
)

func (k EventKind) String() string {
	switch k {
	case KindAdd:
		return "add"
	case KindChange:
		return "change"
	case KindUnlink:
		return "unlink"
	case KindAddDir:
		return "addDir"
	case KindUnlinkDir:
		return "unlinkDir"
	default:
		return "invalid"
	}
}

// Valid reports whether k is one of the recognized event kinds.
func (k EventKind) Valid() bool {
	return k > KindInvalid && k <= KindUnlinkDir
}

// RawEvent is a single change notification as produced by the watch
// source, before any coalescing.
type RawEvent struct {
	Kind EventKind
	Path string
	Time time.Time
}

// Result describes how a command run ended. Exactly one completion is
// delivered per run, whether the process exited normally, was terminated
// by a signal, or never spawned (Err set, synthetic exit code).
type Result struct {
	ExitCode int
	Signal   os.Signal
	Err      error
}

// Config holds the settings for one watch session. Debounce and Throttle
// are in milliseconds.
type Config struct {
	WorkDir  string
	Patterns []string
	Command  string
	Debounce int
	Throttle int
	Exclude  []string
	Initial  bool
	Kill     bool
	Verbose  bool
}
