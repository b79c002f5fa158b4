package flex

import (
	"strings"

	"github.com/FocuswithJustin/WikiruKit/core/variant"
)

const (
	flexOpen  = "#flex(flex-start){{"
	flexRow   = "#-"
	flexClose = "}}"
	etcCell   = "etc"
)

// RenderBlock draws a target as a flex block: one "#-" row per unit holding
// the rendered unit and, when includeComments is set, its comment if any,
// then an "etc" row if the cap was hit.
func RenderBlock(t *InsertTarget, v variant.Variant, includeComments bool) string {
	var b strings.Builder
	b.WriteString(flexOpen)
	b.WriteByte('\n')
	for i, unit := range t.Units {
		b.WriteString(flexRow + "\n|")
		b.WriteString(v.RenderUnit(unit))
		b.WriteString("|\n")
		if includeComments && i < len(t.Comments) && t.Comments[i] != "" {
			b.WriteString("|" + t.Comments[i] + "|\n")
		}
	}
	if t.LimitExceeded {
		b.WriteString(flexRow + "\n|" + etcCell + "|\n")
	}
	b.WriteString(flexClose)
	return b.String()
}
