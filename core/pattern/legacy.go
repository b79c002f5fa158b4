package pattern

import (
	"strconv"
	"strings"
)

// The functions in this file read a column index and a pure pattern back out
// of a filter's source text. They only understand sources laid out the way
// ComposeFilter and ComposeColumnFilter write them, and degrade to a
// whole-row test for anything else. ParseFilter uses them as a fallback for
// filters it cannot split into alternatives.

const (
	systemRowPrefix = `^#sort|\|h$|\|f$|\|c$|`
	systemRowSuffix = `|^}}`
)

// StripSystemRows removes the leading system-row alternation and the trailing
// closing-brace alternative from a filter source.
func StripSystemRows(src string) string {
	src = strings.Replace(src, systemRowPrefix, "", 1)
	return strings.Replace(src, systemRowSuffix, "", 1)
}

// ExtractColumnIndex returns N from a ^(?:[^|]*\|){N} anchor in src. It
// returns false when there is no anchor or N is not positive.
func ExtractColumnIndex(src string) (int, bool) {
	i := strings.Index(src, columnAnchor)
	if i < 0 {
		return 0, false
	}
	digits := leadingDigits(src[i+len(columnAnchor):])
	n, err := strconv.Atoi(digits)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// ExtractPurePattern strips the column anchor, its count, the cell padding
// and the trailing lookahead from src. What remains is tested against a
// single column.
func ExtractPurePattern(src string) string {
	s := strings.Replace(src, columnAnchor, "", 1)
	digits := leadingDigits(s)
	s = s[len(digits):]
	s = strings.Replace(s, "}"+cellPrefix, "", 1)
	if digits != "" {
		s = strings.TrimPrefix(s, "}")
	}
	return strings.Replace(s, cellLookahead, "", 1)
}

// Decompose converts a filter source into a Filter by string surgery. A
// source with a column anchor becomes a Column filter over its pure pattern;
// any other source, or one whose pure pattern does not compile, is tested
// against the whole row unchanged.
func Decompose(src string) (*Filter, error) {
	s := StripSystemRows(src)
	if col, ok := ExtractColumnIndex(s); ok {
		if re, err := Compile(ExtractPurePattern(s)); err == nil {
			return NewColumn(col, re), nil
		}
	}
	re, err := Compile(s)
	if err != nil {
		return nil, err
	}
	return NewWholeRow(re), nil
}
