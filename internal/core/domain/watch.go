package domain

import (
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// ReloadKind tells connected browsers how to apply a change.
type ReloadKind string

const (
	// ReloadFull reloads the whole page.
	ReloadFull ReloadKind = "full"
	// ReloadCSS swaps stylesheets without a page reload.
	ReloadCSS ReloadKind = "css"
)

// WatchRule binds file patterns to the pipeline that rebuilds them.
// Every successful run is followed by a reload notification.
type WatchRule struct {
	Name string
	// Patterns are doublestar globs relative to the project root. A leading "!" excludes.
	Patterns []string
	Pipeline string
	Reload   ReloadKind
}

// Validate checks that the rule has at least one include and only well-formed globs.
func (r WatchRule) Validate() error {
	includes := 0
	for _, p := range r.Patterns {
		if !strings.HasPrefix(p, "!") {
			includes++
		}
		if !doublestar.ValidatePattern(strings.TrimPrefix(p, "!")) {
			return Annotate(ErrInvalidGlob, "rule", r.Name, "pattern", p)
		}
	}
	if r.Name == "" || r.Pipeline == "" || includes == 0 {
		return Annotate(ErrInvalidWatchRule, "rule", r.Name)
	}
	return nil
}

// Matches reports whether the slash-separated path rel matches the rule.
// Excludes win over includes.
func (r WatchRule) Matches(rel string) bool {
	matched := false
	for _, p := range r.Patterns {
		if neg, ok := strings.CutPrefix(p, "!"); ok {
			if doublestar.MatchUnvalidated(neg, rel) {
				return false
			}
			continue
		}
		if !matched && doublestar.MatchUnvalidated(p, rel) {
			matched = true
		}
	}
	return matched
}

// ReloadEvent is sent to the dev server after a watch rule re-ran successfully.
type ReloadEvent struct {
	Rule  string
	Kind  ReloadKind
	Paths []string
	At    time.Time
}
