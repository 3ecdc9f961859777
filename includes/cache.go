// Package includes implements the hierarchical #include timestamp closure
// (C5): for a source file, the maximum modification time across itself and
// every transitively-included, non-relaxed file, memoized by resolved
// absolute path and tolerant of include cycles.
package includes

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/evangelionxyz/ShaderMake/builderrors"
)

var includePattern = regexp.MustCompile(`^\s*#include\s+["<]([^>"]+)[>"].*`)

// Cache computes and memoizes hierarchical modification times. It is
// populated single-threaded during planning and is read-only afterward, so
// it carries no internal locking.
type Cache struct {
	includeDirs []string
	relaxed     map[string]bool
	times       map[string]time.Time
}

// New builds a Cache that resolves includes against includeDirs (tried in
// order, after the including file's own directory) and treats any include
// whose base filename is in relaxed as never affecting the result.
func New(includeDirs []string, relaxed map[string]bool) *Cache {
	return &Cache{
		includeDirs: includeDirs,
		relaxed:     relaxed,
		times:       map[string]time.Time{},
	}
}

// HierarchicalMTime returns max(mtime(path), hierarchical mtimes of every
// non-relaxed file path transitively #includes). The paths currently being
// visited are tracked to tolerate cycles: a file that re-enters itself
// returns the accumulated maximum seen so far rather than recursing
// forever.
func (c *Cache) HierarchicalMTime(path string) (time.Time, error) {
	return c.visit(path, nil)
}

func (c *Cache) visit(path string, callStack []string) (time.Time, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return time.Time{}, builderrors.Wrap(builderrors.Dependency, path, 0, err, "resolving path")
	}
	if t, ok := c.times[abs]; ok {
		return t, nil
	}
	for _, onStack := range callStack {
		if onStack == abs {
			// Cycle: return the running value seen so far (zero if this is
			// the first visit), self-references cannot raise the maximum
			// beyond what's already recorded.
			return c.times[abs], nil
		}
	}

	info, err := os.Stat(abs)
	if err != nil {
		return time.Time{}, builderrors.Wrap(builderrors.Dependency, path, 0, err,
			"reading "+joinStack(callStack, path))
	}
	best := info.ModTime()
	c.times[abs] = best
	callStack = append(callStack, abs)

	f, err := os.Open(abs)
	if err != nil {
		return time.Time{}, builderrors.Wrap(builderrors.Dependency, path, 0, err, "opening")
	}
	defer f.Close()

	dir := filepath.Dir(abs)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		m := includePattern.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		name := m[1]
		if c.relaxed[filepath.Base(name)] {
			continue
		}
		resolved, err := c.resolve(dir, name)
		if err != nil {
			return time.Time{}, builderrors.Wrap(builderrors.Dependency, name, 0, err,
				"missing include via "+joinStack(callStack, path))
		}
		t, err := c.visit(resolved, callStack)
		if err != nil {
			return time.Time{}, err
		}
		if t.After(best) {
			best = t
			c.times[abs] = best
		}
	}
	if err := scanner.Err(); err != nil {
		return time.Time{}, builderrors.Wrap(builderrors.Dependency, path, 0, err, "scanning")
	}
	return best, nil
}

// resolve finds an include by trying parentDir/name then each configured
// include directory, in order.
func (c *Cache) resolve(parentDir, name string) (string, error) {
	candidate := filepath.Join(parentDir, name)
	if _, err := os.Stat(candidate); err == nil {
		return candidate, nil
	}
	for _, dir := range c.includeDirs {
		candidate = filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", os.ErrNotExist
}

func joinStack(stack []string, leaf string) string {
	s := leaf
	for i := len(stack) - 1; i >= 0; i-- {
		s += " <- " + stack[i]
	}
	return s
}
