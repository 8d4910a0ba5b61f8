// Package filterlist loads the gateway's two startup filter sets: a
// hardware-ID allowlist and a port-path denylist (spec § 4.2). Both
// are plain newline-delimited text files, read once at startup and
// immutable thereafter.
package filterlist

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrMissingFile is wrapped into the error returned when a filter file
// does not exist; other open failures wrap the underlying OS error. The
// allowlist treats a missing file as fatal; the denylist demotes it to
// an empty set plus an info log (spec § 4.2, § 7).
var ErrMissingFile = errors.New("filterlist: file not found")

// Set is an immutable membership set built once by Load. The zero
// value is an empty set, so a caller that skips loading a denylist can
// use Set{} directly.
type Set struct {
	entries map[string]struct{}
}

// Contains reports whether entry is a member of the set. An empty set
// (zero value or the result of loading an empty/missing file) matches
// nothing.
func (s Set) Contains(entry string) bool {
	_, ok := s.entries[entry]
	return ok
}

// Empty reports whether the set has no members, distinguishing the
// spec's "do not enforce"/"deny none" semantics for an empty allowlist
// or denylist from a set that rejects everything.
func (s Set) Empty() bool {
	return len(s.entries) == 0
}

// Len returns the number of entries in the set.
func (s Set) Len() int {
	return len(s.entries)
}

// Load reads path as UTF-8 text, one entry per line, and returns the
// set of non-empty trimmed lines. Blank lines are ignored.
func Load(path string) (Set, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Set{}, fmt.Errorf("open %s: %w", path, ErrMissingFile)
		}
		return Set{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	entries := make(map[string]struct{})
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		trimmed := strings.TrimSpace(scanner.Text())
		if trimmed == "" {
			continue
		}
		entries[trimmed] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return Set{}, fmt.Errorf("read %s: %w", path, err)
	}

	return Set{entries: entries}, nil
}
