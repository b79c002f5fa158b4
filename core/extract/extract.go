// Package extract turns a character article into one row of a summary table,
// driven by a declarative Profile.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/width"

	"github.com/FocuswithJustin/WikiruKit/core/errors"
	"github.com/FocuswithJustin/WikiruKit/core/table"
)

var placeholder = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// Record holds the values extracted from one article.
type Record struct {
	profile *Profile
	values  map[string]string
	// assigned marks fields written by a rule, as opposed to defaults.
	assigned map[string]bool
}

// Extract applies profile to article. Lines whose trimmed text starts with
// "//" never trigger a rule.
func Extract(article string, profile *Profile) (*Record, error) {
	if profile == nil {
		return nil, errors.NewValidation("profile", "no profile given")
	}
	rec := &Record{
		profile:  profile,
		values:   make(map[string]string, len(profile.Defaults)),
		assigned: make(map[string]bool),
	}
	for k, v := range profile.Defaults {
		rec.values[k] = v
	}

	lines := table.SplitLines(article)
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "//") {
			continue
		}
		for _, r := range profile.Rules {
			if !strings.Contains(line, r.Match) {
				continue
			}
			target, ok := table.NthValidLine(lines, i, r.Offset)
			if !ok || target == "" {
				continue
			}
			target = table.StripTableNoise(strings.TrimRight(target, "\r"))
			for fi := range r.Fields {
				rec.assign(&r.Fields[fi], target)
			}
		}
	}

	for _, d := range profile.Derived {
		if strings.Contains(rec.values[d.From], d.Contains) {
			rec.values[d.Name] = d.Then
		} else {
			rec.values[d.Name] = d.Else
		}
	}
	return rec, nil
}

func (r *Record) assign(f *Field, line string) {
	var v string
	if f.Column == nil {
		v = strings.ReplaceAll(line, table.Delimiter, "")
	} else if c, ok := table.Column(line, *f.Column); ok {
		v = strings.TrimSpace(c)
	}

	if f.pattern != nil {
		groups := f.pattern.FindStringSubmatch(v)
		switch {
		case groups == nil:
			v = ""
		case len(groups) > 1:
			v = groups[1]
		default:
			v = groups[0]
		}
	}
	for _, re := range f.strip {
		v = re.ReplaceAllString(v, "")
	}
	for _, rep := range f.Replace {
		v = strings.ReplaceAll(v, rep.From, rep.To)
	}
	if f.Narrow {
		v = width.Narrow.String(v)
	}
	if f.Number {
		v = leadingInt(v)
	}
	v = f.Prefix + v

	if f.Append != "" && r.assigned[f.Name] && r.values[f.Name] != "" {
		v = r.values[f.Name] + f.Append + v
	}
	r.values[f.Name] = v
	r.assigned[f.Name] = true
}

// leadingInt parses an optionally signed leading decimal integer, giving "0"
// when there is none.
func leadingInt(s string) string {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return "0"
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return "0"
	}
	return strconv.Itoa(n)
}

// Get returns the value of a field, or "" if it was never set.
func (r *Record) Get(name string) string {
	return r.values[name]
}

// Fields returns a copy of every field value.
func (r *Record) Fields() map[string]string {
	out := make(map[string]string, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// Row renders the record as a pipe-delimited table row and applies the
// profile's cleanup.
func (r *Record) Row() string {
	var b strings.Builder
	b.WriteString(table.Delimiter)
	for _, c := range r.profile.Columns {
		if c.When != nil && !strings.Contains(r.values[c.When.Field], c.When.Contains) {
			continue
		}
		b.WriteString(r.expand(c.Template))
		b.WriteString(table.Delimiter)
	}
	row := table.StripColorTags(b.String())
	for _, rep := range r.profile.Cleanup {
		row = strings.ReplaceAll(row, rep.From, rep.To)
	}
	return row
}

func (r *Record) expand(tmpl string) string {
	declared := r.profile.fieldNames()
	return placeholder.ReplaceAllStringFunc(tmpl, func(m string) string {
		name := m[1 : len(m)-1]
		if v, ok := r.values[name]; ok {
			return v
		}
		if _, ok := declared[name]; ok {
			return ""
		}
		return m
	})
}

func (p *Profile) fieldNames() map[string]struct{} {
	names := make(map[string]struct{})
	for k := range p.Defaults {
		names[k] = struct{}{}
	}
	for _, r := range p.Rules {
		for _, f := range r.Fields {
			names[f.Name] = struct{}{}
		}
	}
	for _, d := range p.Derived {
		names[d.Name] = struct{}{}
	}
	return names
}

// AppendRow appends row and a newline to current unless current already
// contains row. It reports whether anything was added.
func AppendRow(current, row string) (string, bool) {
	if strings.Contains(current, row) {
		return current, false
	}
	return current + row + "\n", true
}
