// Package wikitext holds the editing helpers used around the flex rebuild:
// block removal, a manual contents list, heading rewrites, includex
// generators and attack-power annotation of skill tables.
package wikitext

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/FocuswithJustin/WikiruKit/core/table"
)

var (
	regionBlock = regexp.MustCompile(`(?s)#region.*?#endregion`)
	flexBlock   = regexp.MustCompile(`(?s)#flex\(flex-start\)\{\{.*?\}\}`)
	heading     = regexp.MustCompile(`^(\*{1,3})(.*)\[#(\w+)\]`)
)

// RemoveRegionBlocks deletes every #region ... #endregion span.
func RemoveRegionBlocks(src string) string {
	return regionBlock.ReplaceAllString(src, "")
}

// RemoveFlexBlocks deletes every #flex(flex-start){{ ... }} span.
func RemoveFlexBlocks(src string) string {
	return flexBlock.ReplaceAllString(src, "")
}

// ContentsLinks builds a manual contents list for page from headings that
// carry an anchor id, e.g. "**火属性 [#fire]" becomes "--[[火属性>page#fire]]".
// Headings deeper than depth (1-3) are left out.
func ContentsLinks(article, page string, depth int) string {
	var out []string
	for _, line := range table.SplitLines(article) {
		m := heading.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		level := len(m[1])
		if depth >= 1 && depth < 3 && level > depth {
			continue
		}
		text := strings.TrimSpace(m[2])
		out = append(out, fmt.Sprintf("%s[[%s>%s#%s]]", strings.Repeat("-", level), text, page, m[3]))
	}
	return strings.Join(out, "\n")
}
