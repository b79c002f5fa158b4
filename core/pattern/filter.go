package pattern

import (
	"strconv"
	"strings"

	"github.com/FocuswithJustin/WikiruKit/core/table"
)

// Kind selects what a Filter is tested against.
type Kind int

const (
	// WholeRow filters test the entire table line.
	WholeRow Kind = iota
	// Column filters test a single column of the split line.
	Column
	// AnyOf filters hold several column filters, tried in order.
	AnyOf
)

func (k Kind) String() string {
	switch k {
	case WholeRow:
		return "whole-row"
	case Column:
		return "column"
	case AnyOf:
		return "any-of"
	}
	return "unknown"
}

// Filter is the structured form of an includex filter= argument with the
// system-row scaffolding removed.
type Filter struct {
	Kind   Kind
	Column int       // split index tested when Kind is Column
	Pure   *Regexp   // nil when the filter selects nothing
	Alts   []*Filter // set when Kind is AnyOf
	Source string    // the argument as written, after quantifier normalization
}

// NewWholeRow returns a filter that tests the entire line with re.
func NewWholeRow(re *Regexp) *Filter {
	return &Filter{Kind: WholeRow, Pure: re}
}

// NewColumn returns a filter that tests column col of the line with re.
func NewColumn(col int, re *Regexp) *Filter {
	return &Filter{Kind: Column, Column: col, Pure: re}
}

// Match tests line. The returned text is what the comment extractor reads:
// the match inside the tested column, or for whole-row filters the match in
// the first column that matches on its own (falling back to the match in the
// whole line when no single column does).
//
// A column filter whose index lies past the end of the row does not match.
func (f *Filter) Match(line string) (string, bool) {
	switch f.Kind {
	case Column:
		if f.Pure == nil {
			return "", false
		}
		col, ok := table.Column(line, f.Column)
		if !ok {
			return "", false
		}
		return f.Pure.FindString(col)
	case AnyOf:
		for _, alt := range f.Alts {
			if m, ok := alt.Match(line); ok {
				return m, true
			}
		}
		return "", false
	default:
		if f.Pure == nil {
			return "", false
		}
		whole, ok := f.Pure.FindString(line)
		if !ok {
			return "", false
		}
		for _, col := range table.Columns(line) {
			if m, ok := f.Pure.FindString(col); ok {
				return m, true
			}
		}
		return whole, true
	}
}

// systemAlternatives are the alternation branches generated includex filters
// carry so the wiki keeps the table's sort, header, footer, format and
// closing rows. They select no data.
var systemAlternatives = map[string]bool{
	`^#sort`: true,
	`\|h$`:   true,
	`\|f$`:   true,
	`\|c$`:   true,
	`^}}`:    true,
}

const (
	columnAnchor  = `^(?:[^|]*\|){`
	cellPrefix    = `[^|]*`
	cellLookahead = `[^|]*(?=\|)`
	bareLookahead = `(?=\|)`
)

// ParseFilter builds a Filter from a filter= argument. The argument is split
// into its top-level alternatives, system-row alternatives are dropped, and
// the rest is classified: a single column-anchored alternative becomes a
// Column filter, several become AnyOf, and anything else is tested against the
// whole row. Sources that cannot be split structurally go through Decompose.
func ParseFilter(src string) (*Filter, error) {
	alts, ok := SplitAlternatives(src)
	if !ok {
		f, err := Decompose(src)
		if err != nil {
			return nil, err
		}
		f.Source = src
		return f, nil
	}

	var data []string
	for _, alt := range alts {
		if !systemAlternatives[alt] {
			data = append(data, alt)
		}
	}
	if len(data) == 0 {
		return &Filter{Kind: WholeRow, Source: src}, nil
	}

	var cols []*Filter
	for _, alt := range data {
		col, body, ok := splitColumnAnchor(alt)
		if !ok {
			cols = nil
			break
		}
		re, err := Compile(body)
		if err != nil {
			return nil, err
		}
		cols = append(cols, NewColumn(col, re))
	}
	switch {
	case len(cols) == 1:
		cols[0].Source = src
		return cols[0], nil
	case len(cols) > 1:
		return &Filter{Kind: AnyOf, Alts: cols, Source: src}, nil
	}

	re, err := Compile(strings.Join(data, "|"))
	if err != nil {
		return nil, err
	}
	f := NewWholeRow(re)
	f.Source = src
	return f, nil
}

// splitColumnAnchor recognizes ^(?:[^|]*\|){N}[^|]*BODY[^|]*(?=\|) and
// returns N and a pattern matched against the single cell. N must be
// positive.
func splitColumnAnchor(alt string) (int, string, bool) {
	rest, ok := strings.CutPrefix(alt, columnAnchor)
	if !ok {
		return 0, "", false
	}
	digits := leadingDigits(rest)
	if digits == "" || !strings.HasPrefix(rest[len(digits):], "}") {
		return 0, "", false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n <= 0 {
		return 0, "", false
	}
	body := rest[len(digits)+1:]
	body, padded := strings.CutPrefix(body, cellPrefix)
	closed := false
	switch {
	case strings.HasSuffix(body, cellLookahead):
		body = strings.TrimSuffix(body, cellLookahead)
	case strings.HasSuffix(body, bareLookahead):
		body = strings.TrimSuffix(body, bareLookahead)
		closed = true
	}
	if _, ok := SplitAlternatives(body); !ok {
		return 0, "", false
	}
	// Without the padding the body is pinned to the cell start; a bare
	// lookahead pins it to the cell end.
	if !padded || closed {
		body = "(?:" + body + ")"
		if !padded {
			body = "^" + body
		}
		if closed {
			body += "$"
		}
	}
	return n, body, true
}

func leadingDigits(s string) string {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i]
}

// SplitAlternatives splits src at '|' characters that are outside groups,
// character classes and escapes. It returns false when brackets or
// parentheses are unbalanced.
func SplitAlternatives(src string) ([]string, bool) {
	var (
		alts  []string
		depth int
		class bool
		start int
	)
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case c == '\\':
			i++
		case class:
			if c == ']' {
				class = false
			}
		case c == '[':
			class = true
			// a ']' directly after '[' or '[^' is a literal member
			if i+1 < len(src) && src[i+1] == '^' {
				i++
			}
			if i+1 < len(src) && src[i+1] == ']' {
				i++
			}
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth < 0 {
				return nil, false
			}
		case c == '|' && depth == 0:
			alts = append(alts, src[start:i])
			start = i + 1
		}
	}
	if depth != 0 || class {
		return nil, false
	}
	return append(alts, src[start:]), true
}
