package flex

import (
	"strings"

	"github.com/FocuswithJustin/WikiruKit/core/table"
	"github.com/FocuswithJustin/WikiruKit/core/variant"
)

// SelectRows scans the table for rows accepted by pair. System rows are never
// selected, and except wins over filter. A pair without a filter selects
// nothing and returns nil.
//
// The cap is checked before each row against the number already accepted, so
// up to maxOutput+1 rows are taken before LimitExceeded is set. Existing
// pages were generated with that behaviour.
func SelectRows(lines []string, pair PatternPair, maxOutput int, v variant.Variant) *InsertTarget {
	if pair.Filter == nil {
		return nil
	}
	t := &InsertTarget{Line: pair.Line}
	for _, line := range lines {
		if t.Len() > maxOutput {
			t.LimitExceeded = true
			break
		}
		line = strings.TrimSuffix(line, "\r")
		if table.IsSystemRow(line) {
			continue
		}
		if pair.Except != nil && pair.Except.MatchString(line) {
			continue
		}
		matched, ok := pair.Filter.Match(line)
		if !ok {
			continue
		}
		unit, ok := v.UnitName(table.Columns(line))
		if !ok {
			continue
		}
		t.Add(unit, ExtractComment(matched))
	}
	return t
}

// CollectTargets runs SelectRows for every pair, in pair order. Pairs without
// a filter are omitted.
func CollectTargets(lines []string, pairs []PatternPair, maxOutput int, v variant.Variant) []*InsertTarget {
	var targets []*InsertTarget
	for _, pair := range pairs {
		if t := SelectRows(lines, pair, maxOutput, v); t != nil {
			targets = append(targets, t)
		}
	}
	return targets
}
