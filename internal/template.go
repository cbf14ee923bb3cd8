package internal

import "strings"

// RenderCommand substitutes the {path} and {event} placeholders in the
// command template with the representative event's path and kind name.
// Every occurrence is replaced; any other {...} token passes through
// unchanged. Without a representative event (the initial run) the
// template is returned as-is.
func RenderCommand(template string, ev RawEvent) string {
	if !ev.Kind.Valid() {
		return template
	}
	rendered := strings.ReplaceAll(template, "{path}", ev.Path)
	return strings.ReplaceAll(rendered, "{event}", ev.Kind.String())
}
