package variant

import (
	"fmt"
	"strings"
)

// Icon renders units as linked 80x80 icons on their element's background.
type Icon struct {
	UnitColumn int
	Palette    *Palette
	Size       string
}

// NewIcon returns the icon variant drawing colors from palette.
func NewIcon(palette *Palette) *Icon {
	return &Icon{UnitColumn: 2, Palette: palette, Size: "80x80"}
}

func (v *Icon) Name() string { return "icon" }

func (v *Icon) UnitName(columns []string) (string, bool) {
	if v.UnitColumn >= len(columns) {
		return "", false
	}
	return columns[v.UnitColumn], true
}

// RenderUnit strips the page-link brackets from id and draws
// BGCOLOR(#hex):[[&ref(img/NAME_icon.png,SIZE);>NAME]].
func (v *Icon) RenderUnit(id string) string {
	name := strings.NewReplacer("[", "", "]", "").Replace(strings.TrimSpace(id))
	cell := fmt.Sprintf("[[&ref(img/%s_icon.png,%s);>%s]]", name, v.Size, name)
	if color, ok := v.Palette.Color(name); ok {
		return "BGCOLOR(#" + color + "):" + cell
	}
	return cell
}
