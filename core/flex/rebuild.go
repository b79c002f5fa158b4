package flex

import (
	"context"

	"github.com/FocuswithJustin/WikiruKit/core/errors"
	"github.com/FocuswithJustin/WikiruKit/core/table"
	"github.com/FocuswithJustin/WikiruKit/core/variant"
	"github.com/FocuswithJustin/WikiruKit/internal/logging"
)

// DefaultPage is the table page most effect-list articles include from.
const DefaultPage = "テーブル/スキル・アビリティ/SSR"

// DefaultMaxOutput is the usual icon cap per block.
const DefaultMaxOutput = 30

// Options configures a rebuild.
type Options struct {
	Page            string          // includex target whose directives are rebuilt
	MaxOutput       int             // row cap per directive
	IncludeComments bool            // add an effect-amount row under each icon
	Variant         variant.Variant // nil means the icon variant
}

// Result is the rebuilt article plus what went into it.
type Result struct {
	Text        string
	Pairs       []PatternPair
	Targets     []*InsertTarget
	Diagnostics []error
}

// Rebuild regenerates the flex blocks in article from the rows of tableText.
// Per-directive problems are returned in Result.Diagnostics; the error is
// reserved for unusable options.
func Rebuild(ctx context.Context, article, tableText string, opts Options) (*Result, error) {
	if opts.Page == "" {
		return nil, errors.NewValidation("page", "must not be empty")
	}
	if opts.MaxOutput < 0 {
		return nil, errors.NewValidation("max-output", "must not be negative")
	}
	v := opts.Variant
	if v == nil {
		var err error
		if v, err = variant.Get("icon"); err != nil {
			return nil, err
		}
	}

	lines := table.SplitLines(article)
	pairs, diags := ExtractPatternPairs(lines, opts.Page)
	logging.PatternPairs(ctx, opts.Page, len(lines), len(pairs))

	targets := CollectTargets(table.SplitLines(tableText), pairs, opts.MaxOutput, v)
	var insertions []Insertion
	for _, t := range targets {
		logging.TargetCollected(ctx, t.Line, t.Len(), t.LimitExceeded)
		if t.Len() == 0 {
			insertions = append(insertions, Insertion{Line: t.Line})
			continue
		}
		insertions = append(insertions, Insertion{Line: t.Line, Block: RenderBlock(t, v, opts.IncludeComments)})
	}

	out, spliceErrs := InsertBlocks(lines, insertions)
	diags = append(diags, spliceErrs...)
	for _, d := range diags {
		logging.Diagnostic(ctx, diagnosticKind(d), d)
	}

	return &Result{
		Text:        table.JoinLines(out),
		Pairs:       pairs,
		Targets:     targets,
		Diagnostics: diags,
	}, nil
}

// BuildInsertionBlocks is Rebuild with the icon variant, discarding
// diagnostics.
func BuildInsertionBlocks(article, tableText, page string, maxOutput int, includeComments bool) string {
	res, err := Rebuild(context.Background(), article, tableText, Options{
		Page:            page,
		MaxOutput:       maxOutput,
		IncludeComments: includeComments,
	})
	if err != nil {
		return article
	}
	return res.Text
}

func diagnosticKind(err error) string {
	switch {
	case errors.Is(err, errors.ErrPrecondition):
		return "precondition"
	case errors.Is(err, errors.ErrInvalidInput):
		return "pattern"
	}
	return "other"
}
