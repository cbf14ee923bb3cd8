package internal_test

import (
	"testing"

	"github.com/jholloway/watchdo/internal"
	"github.com/stretchr/testify/assert"
)

func TestRenderCommand(t *testing.T) {
	tests := []struct {
		name     string
		template string
		event    internal.RawEvent
		expected string
	}{
		{
			name:     "path and event",
			template: "echo {event}:{path}",
			event:    internal.RawEvent{Kind: internal.KindChange, Path: "dir/a.js"},
			expected: "echo change:dir/a.js",
		},
		{
			name:     "all occurrences replaced",
			template: "cp {path} {path}.bak && echo {event} {event}",
			event:    internal.RawEvent{Kind: internal.KindAdd, Path: "a.txt"},
			expected: "cp a.txt a.txt.bak && echo add add",
		},
		{
			name:     "no placeholders",
			template: "make build",
			event:    internal.RawEvent{Kind: internal.KindUnlink, Path: "a.txt"},
			expected: "make build",
		},
		{
			name:     "unrecognized tokens pass through",
			template: "echo {foo} {path}",
			event:    internal.RawEvent{Kind: internal.KindChange, Path: "a.txt"},
			expected: "echo {foo} a.txt",
		},
		{
			name:     "directory kinds",
			template: "echo {event}",
			event:    internal.RawEvent{Kind: internal.KindAddDir, Path: "src"},
			expected: "echo addDir",
		},
		{
			name:     "no representative event leaves template unchanged",
			template: "echo {event}:{path}",
			event:    internal.RawEvent{},
			expected: "echo {event}:{path}",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, internal.RenderCommand(test.template, test.event))
		})
	}
}
