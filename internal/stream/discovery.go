package stream

import (
	"fmt"

	"github.com/gobwas/glob"
)

// compiledPattern keeps the pattern string next to its compiled glob for
// error reporting.
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// fileFilter applies include and exclude glob patterns to repository-relative,
// forward-slash paths.
type fileFilter struct {
	includes []compiledPattern
	excludes []compiledPattern
}

func newFileFilter(include, exclude []string) (*fileFilter, error) {
	f := &fileFilter{}

	for _, pattern := range include {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid include pattern %q: %w", pattern, err)
		}
		f.includes = append(f.includes, compiledPattern{pattern: pattern, glob: g})
	}

	for _, pattern := range exclude {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		f.excludes = append(f.excludes, compiledPattern{pattern: pattern, glob: g})
	}

	return f, nil
}

// Accept reports whether a file passes the filters: it must match no exclude
// pattern, and when include patterns were given, at least one of them.
func (f *fileFilter) Accept(relPath string) bool {
	if matchesAny(relPath, f.excludes) {
		return false
	}
	if len(f.includes) == 0 {
		return true
	}
	return matchesAny(relPath, f.includes)
}

// SkipDir reports whether a whole directory can be pruned from the walk. A
// directory is prunable when it, or everything under it, matches an exclude
// pattern (e.g. "vendor/**" prunes "vendor").
func (f *fileFilter) SkipDir(relPath string) bool {
	if matchesAny(relPath, f.excludes) {
		return true
	}
	return matchesAny(relPath+"/**", f.excludes)
}

func matchesAny(relPath string, patterns []compiledPattern) bool {
	for _, p := range patterns {
		if p.glob.Match(relPath) {
			return true
		}
	}
	return false
}
