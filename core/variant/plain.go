package variant

import "strings"

// Plain renders units as bare text. The unit column may carry a STYLE:
// prefix, which is replaced by the style written in the style column.
type Plain struct {
	UnitColumn  int
	StyleColumn int
}

// NewPlain returns the plain-link variant with its usual column layout.
func NewPlain() *Plain {
	return &Plain{UnitColumn: 1, StyleColumn: 3}
}

func (p *Plain) Name() string { return "plain" }

func (p *Plain) UnitName(columns []string) (string, bool) {
	if p.UnitColumn >= len(columns) {
		return "", false
	}
	unit := columns[p.UnitColumn]
	if parts := strings.Split(unit, ":"); len(parts) > 1 && parts[1] != "" {
		unit = parts[1]
	}
	if p.StyleColumn >= len(columns) {
		return unit, true
	}
	style, _, _ := strings.Cut(columns[p.StyleColumn], ":")
	return style + ":" + unit, true
}

func (p *Plain) RenderUnit(id string) string { return id }
