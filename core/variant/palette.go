package variant

import (
	_ "embed"
	"os"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/FocuswithJustin/WikiruKit/core/errors"
)

//go:embed colors.yaml
var defaultColors []byte

var unitNamePattern = regexp.MustCompile(`(.*?)［(.*?)］`)

// Palette maps unit names to icon background colors.
type Palette struct {
	byCharacter map[string]string
	byUnit      map[string]map[string]string
}

type paletteFile struct {
	Elements []struct {
		Name       string   `yaml:"name"`
		Color      string   `yaml:"color"`
		Characters []string `yaml:"characters"`
	} `yaml:"elements"`
	Units map[string]map[string]string `yaml:"units"`
}

// ParsePalette reads a palette from YAML.
func ParsePalette(data []byte) (*Palette, error) {
	var f paletteFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &errors.ParseError{Format: "palette", Message: err.Error(), Err: err}
	}
	p := &Palette{
		byCharacter: make(map[string]string),
		byUnit:      f.Units,
	}
	for _, el := range f.Elements {
		if el.Color == "" {
			return nil, errors.NewParse("palette", "", "element "+el.Name+" has no color")
		}
		for _, c := range el.Characters {
			p.byCharacter[c] = strings.TrimPrefix(el.Color, "#")
		}
	}
	return p, nil
}

// LoadPalette reads a palette file.
func LoadPalette(path string) (*Palette, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIO("read", path, err)
	}
	p, err := ParsePalette(data)
	if err != nil {
		return nil, errors.Wrapf(err, "palette %s", path)
	}
	return p, nil
}

var (
	defaultPalette     *Palette
	defaultPaletteOnce sync.Once
)

// DefaultPalette returns the built-in palette.
func DefaultPalette() *Palette {
	defaultPaletteOnce.Do(func() {
		p, err := ParsePalette(defaultColors)
		if err != nil {
			panic("variant: embedded colors.yaml: " + err.Error())
		}
		defaultPalette = p
	})
	return defaultPalette
}

// Color returns the hex color (without '#') for a unit written as
// 名前［ユニット名］. Cells that already carry a BGCOLOR get none.
func (p *Palette) Color(unit string) (string, bool) {
	if p == nil || strings.HasPrefix(unit, "|BGCOLOR") {
		return "", false
	}
	m := unitNamePattern.FindStringSubmatch(unit)
	if m == nil {
		return "", false
	}
	character, name := m[1], m[2]
	if units, ok := p.byUnit[character]; ok {
		c, ok := units[name]
		return c, ok
	}
	c, ok := p.byCharacter[character]
	return c, ok
}
