package extract

import (
	"embed"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/FocuswithJustin/WikiruKit/core/errors"
	"github.com/FocuswithJustin/WikiruKit/core/pattern"
)

//go:embed profiles/*.yaml
var builtinFS embed.FS

// Profile describes how one wiki's character articles map onto a table row.
type Profile struct {
	Name     string            `yaml:"name"`
	Defaults map[string]string `yaml:"defaults"`
	Rules    []Rule            `yaml:"rules"`
	Derived  []Derived         `yaml:"derived"`
	Columns  []Column          `yaml:"columns"`
	Cleanup  []Replacement     `yaml:"cleanup"`
}

// Rule fires on every article line containing Match. It reads the
// Offset-th valid line below it and assigns Fields from that line.
type Rule struct {
	Match  string  `yaml:"match"`
	Offset int     `yaml:"offset"`
	Fields []Field `yaml:"fields"`
}

// Field extracts one value from a rule's target line.
type Field struct {
	Name string `yaml:"name"`
	// Column is the pipe-split index to read. Nil reads the whole line with
	// every delimiter removed.
	Column  *int          `yaml:"column"`
	Pattern string        `yaml:"pattern"`
	Strip   []string      `yaml:"strip"`
	Replace []Replacement `yaml:"replace"`
	Prefix  string        `yaml:"prefix"`
	// Append joins the value onto an earlier one with this separator instead
	// of overwriting it.
	Append string `yaml:"append"`
	Number bool   `yaml:"number"`
	Narrow bool   `yaml:"narrow"`

	pattern *pattern.Regexp
	strip   []*pattern.Regexp
}

// Replacement is a literal substitution.
type Replacement struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Derived computes a field from another field's content.
type Derived struct {
	Name     string `yaml:"name"`
	From     string `yaml:"from"`
	Contains string `yaml:"contains"`
	Then     string `yaml:"then"`
	Else     string `yaml:"else"`
}

// Condition gates a column on a field containing a substring.
type Condition struct {
	Field    string `yaml:"field"`
	Contains string `yaml:"contains"`
}

// Column is one output cell. In YAML it is either a bare template string or
// a mapping with template and when.
type Column struct {
	Template string     `yaml:"template"`
	When     *Condition `yaml:"when"`
}

// UnmarshalYAML accepts the scalar shorthand.
func (c *Column) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		c.Template = node.Value
		c.When = nil
		return nil
	}
	type plain Column
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*c = Column(p)
	return nil
}

// ParseProfile decodes and compiles a YAML profile.
func ParseProfile(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, errors.NewParse("profile", "", err.Error())
	}
	if err := p.compile(); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadProfile reads a profile from disk.
func LoadProfile(filename string) (*Profile, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.NewIO("read", filename, err)
	}
	p, err := ParseProfile(data)
	if err != nil {
		var pe *errors.ParseError
		if errors.As(err, &pe) {
			pe.Path = filename
		}
		return nil, err
	}
	return p, nil
}

// Builtin returns one of the embedded profiles by name.
func Builtin(name string) (*Profile, error) {
	data, err := builtinFS.ReadFile("profiles/" + name + ".yaml")
	if err != nil {
		return nil, errors.NewNotFound("profile", name)
	}
	return ParseProfile(data)
}

// BuiltinNames lists the embedded profiles in sorted order.
func BuiltinNames() []string {
	entries, err := builtinFS.ReadDir("profiles")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if path.Ext(e.Name()) == ".yaml" {
			names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
		}
	}
	sort.Strings(names)
	return names
}

// Resolve returns the built-in profile called name, or loads name as a file
// when no built-in matches.
func Resolve(name string) (*Profile, error) {
	p, err := Builtin(name)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, errors.ErrNotFound) {
		return nil, err
	}
	if _, statErr := os.Stat(name); statErr != nil {
		return nil, err
	}
	return LoadProfile(name)
}

func (p *Profile) compile() error {
	if p.Name == "" {
		return errors.NewValidation("name", "profile has no name")
	}
	if len(p.Columns) == 0 {
		return errors.NewValidation("columns", "profile "+p.Name+" defines no columns")
	}
	for ri := range p.Rules {
		r := &p.Rules[ri]
		if r.Match == "" {
			return errors.NewValidation("match", "rule has an empty match")
		}
		if r.Offset < 1 {
			r.Offset = 1
		}
		for fi := range r.Fields {
			f := &r.Fields[fi]
			if f.Name == "" {
				return errors.NewValidation("fields", "field under "+r.Match+" has no name")
			}
			if f.Pattern != "" {
				re, err := pattern.Compile(f.Pattern)
				if err != nil {
					return errors.NewPattern(ri, f.Name, f.Pattern, err)
				}
				f.pattern = re
			}
			f.strip = f.strip[:0]
			for _, s := range f.Strip {
				re, err := pattern.Compile(s)
				if err != nil {
					return errors.NewPattern(ri, f.Name, s, err)
				}
				f.strip = append(f.strip, re)
			}
		}
	}
	return nil
}
