package wikitext

import (
	"math"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/WikiruKit/core/pattern"
	"github.com/FocuswithJustin/WikiruKit/core/table"
)

const (
	attackColumn      = 7
	firstEffectColumn = 5
)

// Skill power written "威力:120%" or "威力120%", but not a skill's own
// "スキル威力", and not already annotated.
var (
	powerWithColon = pattern.MustCompile(`(?<!スキル)威力:([0-9]+)%(?!\()`)
	powerBare      = pattern.MustCompile(`(?<!スキル)威力([0-9]+)%`)
)

// AnnotateAttackPower appends the resulting damage to every skill power
// percentage in a unit table, using the unit's ATK from column 7:
// "威力:150%" on a 1000 ATK row becomes "威力:150%(1500)". Rows without a
// numeric ATK are left as they are.
func AnnotateAttackPower(text string) string {
	lines := table.SplitLines(text)
	for i, line := range lines {
		cells := table.Columns(line)
		if len(cells) <= attackColumn {
			continue
		}
		atk, ok := leadingFloat(cells[attackColumn])
		if !ok {
			continue
		}
		annotate := func(g []string) string {
			p, _ := strconv.ParseFloat(g[1], 64)
			v := math.Round(atk*p/100*100) / 100
			return "威力:" + g[1] + "%(" + strconv.FormatFloat(math.Round(v), 'f', -1, 64) + ")"
		}
		for c := firstEffectColumn; c < len(cells); c++ {
			cells[c] = powerWithColon.ReplaceAllFunc(cells[c], annotate)
			cells[c] = powerBare.ReplaceAllFunc(cells[c], annotate)
		}
		lines[i] = strings.Join(cells, table.Delimiter)
	}
	return table.JoinLines(lines)
}

// leadingFloat parses the numeric prefix of s, ignoring leading spaces.
func leadingFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || s[end] == '.' || (end == 0 && (s[end] == '-' || s[end] == '+'))) {
		end++
	}
	for end > 0 {
		if v, err := strconv.ParseFloat(s[:end], 64); err == nil {
			return v, true
		}
		end--
	}
	return 0, false
}
