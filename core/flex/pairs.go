// Package flex regenerates the icon grids that sit above includex regions in
// a wiki article. Each includex directive that targets a table page carries a
// filter= (and optionally except=) pattern; the rows of that table matching
// the pattern are rendered into a #flex(flex-start){{ }} block and spliced in
// just before the directive's #region line.
package flex

import (
	"regexp"
	"strings"

	"github.com/FocuswithJustin/WikiruKit/core/directive"
	"github.com/FocuswithJustin/WikiruKit/core/errors"
	"github.com/FocuswithJustin/WikiruKit/core/pattern"
)

// PatternPair is the filter and except pattern declared by one directive line.
type PatternPair struct {
	Line         int // 0-based article line of the directive
	Filter       *pattern.Filter
	Except       *pattern.Regexp
	FilterSource string
	ExceptSource string
}

// Fallback for lines the directive grammar rejects.
var (
	filterArg = regexp.MustCompile(`filter=([^,]+)`)
	exceptArg = regexp.MustCompile(`except=([^,]+)`)
)

// ExtractPatternPairs returns one pair per article line that contains an
// includex of page and declares a filter or except argument, in line order.
// Lines whose patterns do not compile yield a *errors.PatternError instead.
func ExtractPatternPairs(lines []string, page string) ([]PatternPair, []error) {
	marker := "#" + directive.Includex + "(" + page
	var (
		pairs []PatternPair
		errs  []error
	)
	for i, line := range lines {
		if !strings.Contains(line, marker) {
			continue
		}
		filterSrc, exceptSrc := directiveArgs(line)
		if filterSrc == "" && exceptSrc == "" {
			continue
		}

		pair := PatternPair{
			Line:         i,
			FilterSource: pattern.NormalizeWideQuantifiers(filterSrc),
			ExceptSource: pattern.NormalizeWideQuantifiers(exceptSrc),
		}
		if pair.FilterSource != "" {
			f, err := pattern.ParseFilter(pair.FilterSource)
			if err != nil {
				errs = append(errs, errors.NewPattern(i, "filter", pair.FilterSource, err))
				continue
			}
			pair.Filter = f
		}
		if pair.ExceptSource != "" {
			re, err := pattern.Compile(pair.ExceptSource)
			if err != nil {
				errs = append(errs, errors.NewPattern(i, "except", pair.ExceptSource, err))
				continue
			}
			pair.Except = re
		}
		pairs = append(pairs, pair)
	}
	return pairs, errs
}

// directiveArgs returns the raw filter= and except= arguments of the includex
// on line.
func directiveArgs(line string) (filter, except string) {
	if d, err := directive.Find(line, directive.Includex); err == nil {
		filter, _ = d.Arg("filter")
		except, _ = d.Arg("except")
		return filter, except
	}
	if m := filterArg.FindStringSubmatch(line); m != nil {
		filter = m[1]
	}
	if m := exceptArg.FindStringSubmatch(line); m != nil {
		except = m[1]
	}
	return filter, except
}
