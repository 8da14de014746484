package policy

import (
	"fmt"
	"path"

	"github.com/bmatcuk/doublestar/v4"
)

// ExcludeFunc reports whether a slash-separated path, relative to a guest tree
// root, must be skipped during bulk registration.
type ExcludeFunc func(relPath string) bool

// ExcludeNone never excludes anything.
func ExcludeNone(string) bool { return false }

// NewGlobExclude compiles doublestar patterns into an ExcludeFunc.
// A path is excluded if any pattern matches it. Invalid patterns are an error
// rather than silently never matching.
func NewGlobExclude(patterns ...string) (ExcludeFunc, error) {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid exclude pattern %q", p)
		}
	}
	if len(patterns) == 0 {
		return ExcludeNone, nil
	}

	compiled := make([]string, len(patterns))
	copy(compiled, patterns)

	return func(relPath string) bool {
		relPath = path.Clean(relPath)
		for _, p := range compiled {
			if matched, _ := doublestar.Match(p, relPath); matched {
				return true
			}
		}
		return false
	}, nil
}
