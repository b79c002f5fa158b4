// Package table provides line-level primitives over pipe-delimited wiki
// tables: splitting, skip-aware line lookup and markup-noise stripping.
package table

import (
	"regexp"
	"strings"
)

// Delimiter separates columns in a table row.
const Delimiter = "|"

var (
	spanRight  = regexp.MustCompile(`(\|>)+`)
	spanDown   = regexp.MustCompile(`(\|~)+`)
	emptyCell  = regexp.MustCompile(`(\|\|)+`)
	colorTag   = regexp.MustCompile(`&color\([^)]*\)\{([^}]*)\};`)
	systemRows = regexp.MustCompile(`^#sort|\|h$|\|f$|\|c$|^}}`)
)

// SplitLines splits text into lines on "\n". Carriage returns are kept so that
// joining the result with "\n" reproduces the input exactly.
func SplitLines(text string) []string {
	return strings.Split(text, "\n")
}

// JoinLines is the inverse of SplitLines.
func JoinLines(lines []string) string {
	return strings.Join(lines, "\n")
}

// Columns splits a row on the delimiter. Column 0 is the (usually empty) text
// before the leading delimiter.
func Columns(line string) []string {
	return strings.Split(line, Delimiter)
}

// Column returns column i of line, or false if the row is too short.
func Column(line string, i int) (string, bool) {
	cols := Columns(line)
	if i < 0 || i >= len(cols) {
		return "", false
	}
	return cols[i], true
}

// IsValidLine reports whether a line carries content: it is not blank and,
// once leading whitespace is trimmed, does not start with "//".
func IsValidLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed != "" && !strings.HasPrefix(trimmed, "//")
}

// NthValidLine returns the offset-th valid line strictly after index from
// (offset is 1-based). It returns false when fewer valid lines remain.
func NthValidLine(lines []string, from, offset int) (string, bool) {
	if offset < 1 {
		return "", false
	}
	count := 0
	for i := from + 1; i < len(lines); i++ {
		if i < 0 || !IsValidLine(lines[i]) {
			continue
		}
		count++
		if count == offset {
			return lines[i], true
		}
	}
	return "", false
}

// StripTableNoise collapses each run of "|>" spanning markers, each run of
// "|~" header markers and each run of doubled delimiters into one delimiter.
func StripTableNoise(line string) string {
	line = spanRight.ReplaceAllString(line, Delimiter)
	line = spanDown.ReplaceAllString(line, Delimiter)
	return emptyCell.ReplaceAllString(line, Delimiter)
}

// StripColorTags replaces every &color(ARGS){BODY}; wrapper with BODY.
func StripColorTags(text string) string {
	return colorTag.ReplaceAllString(text, "$1")
}

// IsSystemRow reports whether a row is table scaffolding (a sort directive,
// a header/footer/format row, or the closing braces) rather than data.
func IsSystemRow(line string) bool {
	return systemRows.MatchString(line)
}

// AppendTextToColumn appends word to column col of every row in text that has
// at least one column after col.
func AppendTextToColumn(text string, col int, word string) string {
	lines := SplitLines(text)
	for i, line := range lines {
		parts := Columns(line)
		if col >= 0 && len(parts) > col+1 {
			parts[col] += word
		}
		lines[i] = strings.Join(parts, Delimiter)
	}
	return JoinLines(lines)
}

// AppendTextToTable appends word to column appendCol of every row whose
// column searchCol contains any of words.
func AppendTextToTable(text string, searchCol int, words []string, appendCol int, word string) string {
	lines := SplitLines(text)
	for i, line := range lines {
		parts := Columns(line)
		if appendCol < 0 || len(parts) <= appendCol+1 {
			continue
		}
		if searchCol < 0 || searchCol >= len(parts) {
			continue
		}
		for _, w := range words {
			if w != "" && strings.Contains(parts[searchCol], w) {
				parts[appendCol] += word
				break
			}
		}
		lines[i] = strings.Join(parts, Delimiter)
	}
	return JoinLines(lines)
}
