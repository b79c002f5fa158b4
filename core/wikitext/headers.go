package wikitext

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/FocuswithJustin/WikiruKit/core/pattern"
	"github.com/FocuswithJustin/WikiruKit/core/table"
)

// Table pages the includex generators point at.
const (
	SSRPage = "テーブル/スキル・アビリティ/SSR"
	SRPage  = "テーブル/スキル・アビリティ/SR"
)

// skillColumns are the per-column headings of the skill table, starting at
// split column 6. SR units have no awakening/trust column.
var skillColumns = []string{"スキル", "アビ1", "アビ2", "サポアビ", "覚醒/トラストアビ"}

const firstSkillColumn = 6

// columnKeywords mark headings generated per skill column.
var columnKeywords = []string{"(スキル)", "(アビ1)", "(アビ2)", "(サポアビ)", "(覚醒アビ)", "(覚醒/トラストアビ)"}

var (
	headingText     = regexp.MustCompile(`^(\*+)([^\[]+)`)
	headingAnchored = regexp.MustCompile(`^(\*+)([^\[]+)\s*\[#([a-zA-Z0-9]+)\]`)
)

// ConvertToShadowHeaders turns per-column headings such as "**回復(アビ1)"
// into #shadowheader lines so they stay out of the contents list. The first
// column's heading is kept as a visible summary heading for the group.
func ConvertToShadowHeaders(article string) string {
	var out []string
	for _, line := range table.SplitLines(article) {
		keyword := ""
		for _, kw := range columnKeywords {
			if strings.Contains(line, kw) {
				keyword = kw
				break
			}
		}
		m := headingText.FindStringSubmatch(line)
		if keyword == "" || m == nil {
			out = append(out, line)
			continue
		}
		stars, text := m[1], strings.TrimSpace(m[2])
		shadow := fmt.Sprintf("#shadowheader(%d,%s)", len(stars), text)
		if keyword != columnKeywords[0] {
			out = append(out, shadow)
			continue
		}
		summary := stars + strings.Replace(text, keyword, "", 1) + "(スキル・アビリティ各列)"
		out = append(out, summary, headingAnchored.ReplaceAllLiteralString(line, shadow))
	}
	return strings.Join(out, "\n")
}

// IncludexOptions shapes the blocks CreateIncludex writes.
type IncludexOptions struct {
	Heading string
	Depth   int  // heading level, 1-3
	Shadow  bool // write #shadowheader instead of a * heading
	WithSR  bool // add an SR region after the SSR one
}

// CreateIncludex writes one heading, SSR region and optional SR region per
// non-blank filter line.
func CreateIncludex(filters string, opts IncludexOptions) string {
	var head string
	if opts.Shadow {
		head = fmt.Sprintf("#shadowheader(%d,%s)", opts.Depth, opts.Heading)
	} else {
		head = strings.Repeat("*", opts.Depth) + opts.Heading
	}

	var blocks []string
	for _, f := range strings.Split(strings.ReplaceAll(filters, "\r\n", "\n"), "\n") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		b := head + "\n" + regionInclude("SSR", SSRPage, pattern.ComposeFilter(f))
		if opts.WithSR {
			b += "\n\n" + regionInclude("SR", SRPage, pattern.ComposeFilter(f))
		}
		blocks = append(blocks, b)
	}
	return strings.Join(blocks, "\n\n")
}

// CreateColumnIncludex writes a summary heading followed by one shadow
// heading and region per skill column, each filtering that column for text.
func CreateColumnIncludex(text, heading string, depth int, withSR bool) string {
	var b strings.Builder
	b.WriteString(strings.Repeat("*", depth) + heading + "(スキル・アビリティ列)")
	for i, label := range skillColumns {
		filter := pattern.ComposeColumnFilter(firstSkillColumn+i, text)
		fmt.Fprintf(&b, "\n#shadowheader(2,%s(%s))\n", heading, label)
		b.WriteString(regionInclude("SSR", SSRPage, filter) + "\n")
		if withSR && i < len(skillColumns)-1 {
			b.WriteString("\n" + regionInclude("SR", SRPage, filter) + "\n")
		}
	}
	return b.String()
}

func regionInclude(name, page, filter string) string {
	return fmt.Sprintf("#region(%s,close)\n#includex(%s,filter=%s,titlestr=off)\n#endregion", name, page, filter)
}
