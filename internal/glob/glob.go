// Package glob matches physical cache keys against shell-style patterns.
//
// Syntax (gobwas/glob, with '.' as the segment separator):
//
//	*       any run of characters except '.'
//	**      any run of characters, '.' included
//	?       one character except '.'
//	[abc]   one character from the class; [!abc] negates, [a-z] ranges
//	{a,b}   either alternative
//	\x      literal x
//
// Matching is case-sensitive and anchored to the whole key.
package glob

import (
	"fmt"

	gg "github.com/gobwas/glob"
)

// Separator bounds single-star matches.
const Separator = '.'

// Matcher reports whether a key matches any of its patterns.
type Matcher struct {
	globs []gg.Glob
}

func Compile(patterns ...string) (*Matcher, error) {
	m := &Matcher{globs: make([]gg.Glob, 0, len(patterns))}
	for _, p := range patterns {
		g, err := gg.Compile(p, Separator)
		if err != nil {
			return nil, fmt.Errorf("glob: compile %q: %w", p, err)
		}
		m.globs = append(m.globs, g)
	}
	return m, nil
}

func (m *Matcher) Match(key string) bool {
	for _, g := range m.globs {
		if g.Match(key) {
			return true
		}
	}
	return false
}

// QuoteMeta escapes every metacharacter in s.
func QuoteMeta(s string) string { return gg.QuoteMeta(s) }
