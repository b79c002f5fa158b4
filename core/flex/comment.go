package flex

import (
	"regexp"
	"strings"
)

var (
	percentToken = regexp.MustCompile(`([0-9]+[～~])?[0-9]+%`)
	digitRun     = regexp.MustCompile(`[0-9]+`)
)

// ExtractComment pulls the effect amount out of matched text: every
// percentage (optionally a 10～15% range), or failing that every digit run,
// joined with commas. Text with no digits yields "".
func ExtractComment(matched string) string {
	tokens := percentToken.FindAllString(matched, -1)
	if len(tokens) == 0 {
		tokens = digitRun.FindAllString(matched, -1)
	}
	return strings.Join(tokens, ",")
}
