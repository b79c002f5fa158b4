package pattern

import (
	"fmt"
	"strings"
)

// NormalizeWideQuantifiers rewrites ".{3}" and "]{3}" to "{1}". The wiki
// counts one Japanese character as three, so authors write {3} for what is a
// single character to a rune-based engine.
func NormalizeWideQuantifiers(src string) string {
	src = strings.ReplaceAll(src, ".{3}", ".{1}")
	return strings.ReplaceAll(src, "]{3}", "]{1}")
}

// ComposeFilter wraps body in the system-row alternation the wiki needs to
// keep a table's sort, header, footer, format and closing rows.
func ComposeFilter(body string) string {
	return systemRowPrefix + body + systemRowSuffix
}

// ColumnPattern returns an alternative matching text anywhere inside split
// column n.
func ColumnPattern(n int, text string) string {
	return fmt.Sprintf(`%s%d}%s%s%s`, columnAnchor, n, cellPrefix, text, cellLookahead)
}

// ComposeColumnFilter is ComposeFilter(ColumnPattern(n, text)).
func ComposeColumnFilter(n int, text string) string {
	return ComposeFilter(ColumnPattern(n, text))
}
