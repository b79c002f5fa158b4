// Package directive parses block directives of the form
// #name(page,key=value,...) as they appear on wiki article lines.
package directive

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/FocuswithJustin/WikiruKit/core/errors"
)

// Includex is the table-inclusion directive whose filter= and except=
// arguments select rows from another page.
const Includex = "includex"

// Directive is one parsed directive invocation.
type Directive struct {
	Name   string
	Page   string // first positional argument
	Args   []Arg
	Offset int // byte offset of '#' in the source line
}

// Arg is a single argument. Positional arguments have an empty Key.
type Arg struct {
	Key   string
	Value string
}

// Arg returns the value of the first argument named key.
func (d *Directive) Arg(key string) (string, bool) {
	for _, a := range d.Args {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

//nolint:govet // participle grammar tags are not standard struct tags
type directiveGrammar struct {
	Name string     `@Directive`
	Page string     `@(Text | Key)*`
	Args []*argPart `( "," @@ )*`
}

//nolint:govet // participle grammar tags are not standard struct tags
type argPart struct {
	Key   string `@Key?`
	Value string `@(Text | Key)*`
}

// Balanced groups up to two levels deep, so commas inside (?:a,b) do not
// split an argument.
const (
	group0 = `\((?:\\.|\[(?:\\.|[^\]])*\]|[^()\\\[])*\)`
	group1 = `\((?:\\.|\[(?:\\.|[^\]])*\]|` + group0 + `|[^()\\\[])*\)`
)

// directiveLexer splits on top-level commas only. Commas inside {m,n}
// quantifiers, character classes, escapes and parenthesized groups stay in
// the Text token.
var directiveLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Directive", Pattern: `#[A-Za-z_]+\(`},
	{Name: "Key", Pattern: `[A-Za-z_]+=`},
	{Name: "Comma", Pattern: `,`},
	{Name: "Text", Pattern: `(?:\\.|\{\d*,\d*\}|\[(?:\\.|[^\]])*\]|` + group1 + `|[^,])+`},
})

var directiveParser = participle.MustBuild[directiveGrammar](
	participle.Lexer(directiveLexer),
)

// Parse parses s, which must start with a directive. Anything after the
// directive's closing parenthesis is ignored.
func Parse(s string) (*Directive, error) {
	s = strings.TrimRight(s, "\r\n")
	parsed, err := directiveParser.ParseString("", s)
	if err != nil {
		return nil, &errors.ParseError{Format: "directive", Message: err.Error(), Err: err}
	}

	d := &Directive{
		Name: strings.TrimSuffix(strings.TrimPrefix(parsed.Name, "#"), "("),
		Page: parsed.Page,
	}
	for _, a := range parsed.Args {
		d.Args = append(d.Args, Arg{Key: strings.TrimSuffix(a.Key, "="), Value: a.Value})
	}

	// The closing parenthesis was lexed into some token, usually the last.
	// Whatever follows it, commas included, is not an argument.
	if page, closed := closeAt(d.Page); closed {
		d.Page = page
		d.Args = nil
		return d, nil
	}
	for i := range d.Args {
		if v, closed := closeAt(d.Args[i].Value); closed {
			d.Args[i].Value = v
			d.Args = d.Args[:i+1]
			break
		}
	}
	return d, nil
}

// Find locates #name( in line and parses the directive that starts there.
func Find(line, name string) (*Directive, error) {
	i := strings.Index(line, "#"+name+"(")
	if i < 0 {
		return nil, errors.NewNotFound("directive", name)
	}
	d, err := Parse(line[i:])
	if err != nil {
		return nil, err
	}
	d.Offset = i
	return d, nil
}

// closeAt cuts s at the first ')' that has no matching '(' and reports
// whether it found one.
func closeAt(s string) (string, bool) {
	depth := 0
	class := false
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\\':
			i++
		case class:
			if c == ']' {
				class = false
			}
		case c == '[':
			class = true
		case c == '(':
			depth++
		case c == ')':
			if depth == 0 {
				return s[:i], true
			}
			depth--
		}
	}
	return s, false
}
