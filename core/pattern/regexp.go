// Package pattern compiles the regular expressions wiki authors write into
// includex filter= and except= arguments, and models a filter as either a
// whole-row test or a test against one table column.
//
// Author-written patterns use lookahead and lookbehind, which the standard
// library's RE2 engine rejects, so they are compiled with regexp2.
package pattern

import (
	"time"

	"github.com/dlclark/regexp2"
)

// MatchTimeout bounds a single match attempt against one line.
const MatchTimeout = 2 * time.Second

// Regexp is a compiled author-written pattern.
type Regexp struct {
	re  *regexp2.Regexp
	src string
}

// Compile compiles src. The returned error is the engine's parse error.
func Compile(src string) (*Regexp, error) {
	re, err := regexp2.Compile(src, regexp2.None)
	if err != nil {
		return nil, err
	}
	re.MatchTimeout = MatchTimeout
	return &Regexp{re: re, src: src}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(src string) *Regexp {
	re, err := Compile(src)
	if err != nil {
		panic("pattern: Compile(" + src + "): " + err.Error())
	}
	return re
}

// String returns the source text.
func (r *Regexp) String() string {
	return r.src
}

// MatchString reports whether s contains a match. A match attempt that
// exceeds MatchTimeout counts as no match.
func (r *Regexp) MatchString(s string) bool {
	ok, err := r.re.MatchString(s)
	return err == nil && ok
}

// FindString returns the leftmost match in s.
func (r *Regexp) FindString(s string) (string, bool) {
	m, err := r.re.FindStringMatch(s)
	if err != nil || m == nil {
		return "", false
	}
	return m.String(), true
}

// FindStringSubmatch returns the leftmost match and its numbered groups, or
// nil if there is none.
func (r *Regexp) FindStringSubmatch(s string) []string {
	m, err := r.re.FindStringMatch(s)
	if err != nil || m == nil {
		return nil
	}
	gs := m.Groups()
	out := make([]string, len(gs))
	for i := range gs {
		out[i] = gs[i].String()
	}
	return out
}

// FindAllString returns every successive non-overlapping match in s.
func (r *Regexp) FindAllString(s string) []string {
	var out []string
	m, err := r.re.FindStringMatch(s)
	for err == nil && m != nil {
		out = append(out, m.String())
		m, err = r.re.FindNextMatch(m)
	}
	return out
}

// ReplaceAllString replaces every match with repl, which may reference
// groups as $1 or ${name}. On timeout s is returned unchanged.
func (r *Regexp) ReplaceAllString(s, repl string) string {
	out, err := r.re.Replace(s, repl, -1, -1)
	if err != nil {
		return s
	}
	return out
}

// ReplaceAllFunc replaces every match with the result of fn, which receives
// the full match followed by each numbered group.
func (r *Regexp) ReplaceAllFunc(s string, fn func(groups []string) string) string {
	out, err := r.re.ReplaceFunc(s, func(m regexp2.Match) string {
		gs := m.Groups()
		groups := make([]string, len(gs))
		for i := range gs {
			groups[i] = gs[i].String()
		}
		return fn(groups)
	}, -1, -1)
	if err != nil {
		return s
	}
	return out
}
