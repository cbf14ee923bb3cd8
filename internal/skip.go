package internal

import (
	"fmt"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// Skipper decides which event paths should not trigger a command run.
type Skipper interface {
	ShouldExclude(path string) bool
}

type skipper struct {
	workDir string
	exclude []string
}

func NewSkipper(workDir string, exclude []string) Skipper {
	return skipper{workDir: workDir, exclude: exclude}
}

// ShouldExclude returns true if the given path should be excluded from
// triggering a command run based on the `-e, --exclude` flag.
func (s skipper) ShouldExclude(path string) bool {
	// skip common things like .git and node_modules dirs
	// todo: make this configurable
	ignores := []string{".git", "node_modules"}
	for _, ignore := range ignores {
		if matches, _ := doublestar.PathMatch(fmt.Sprintf("**/%s/**", ignore), path); matches {
			return true
		}
		// The directory itself, not just its contents.
		if matches, _ := doublestar.PathMatch(fmt.Sprintf("**/%s", ignore), path); matches {
			return true
		}
	}

	// check if the path matches any of the exclude patterns
	for _, pattern := range s.exclude {
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(s.workDir, pattern)
		}
		if matches, _ := doublestar.PathMatch(pattern, path); matches {
			return true
		}
	}

	return false
}
