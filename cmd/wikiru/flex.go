package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/FocuswithJustin/WikiruKit/core/cas"
	"github.com/FocuswithJustin/WikiruKit/core/errors"
	"github.com/FocuswithJustin/WikiruKit/core/flex"
	"github.com/FocuswithJustin/WikiruKit/core/pattern"
	"github.com/FocuswithJustin/WikiruKit/core/table"
	"github.com/FocuswithJustin/WikiruKit/core/variant"
	"github.com/FocuswithJustin/WikiruKit/internal/batch"
	"github.com/FocuswithJustin/WikiruKit/internal/logging"
	"github.com/FocuswithJustin/WikiruKit/internal/watch"
)

// FlexGroup contains the flex block commands.
type FlexGroup struct {
	Rebuild   FlexRebuildCmd   `cmd:"" help:"Rebuild flex blocks in one or more articles"`
	Pairs     FlexPairsCmd     `cmd:"" help:"List the filter/except pairs of an article"`
	Decompose FlexDecomposeCmd `cmd:"" help:"Show how a filter argument is interpreted"`
	Watch     FlexWatchCmd     `cmd:"" help:"Rebuild whenever the article or table changes"`
}

// RebuildFlags are shared by rebuild and watch.
type RebuildFlags struct {
	Table     string `required:"" short:"t" help:"Unit table file" type:"existingfile"`
	Page      string `default:"テーブル/スキル・アビリティ/SSR" env:"WIKIRU_PAGE" help:"includex page whose directives are rebuilt"`
	MaxOutput int    `default:"30" env:"WIKIRU_MAX_OUTPUT" help:"Icon cap per block"`
	Comments  bool   `help:"Add an effect-amount row under each icon"`
	Variant   string `default:"icon" enum:"icon,plain,tonofura,taimanin" env:"WIKIRU_VARIANT" help:"Wiki variant (${enum})"`
	Palette   string `help:"YAML color palette for the icon variant" type:"existingfile"`
}

func (f *RebuildFlags) options() (flex.Options, error) {
	v, err := variant.Get(f.Variant)
	if err != nil {
		return flex.Options{}, err
	}
	if f.Palette != "" {
		if _, ok := v.(*variant.Icon); !ok {
			return flex.Options{}, errors.NewValidation("palette", "only the icon variant uses a palette")
		}
		p, err := variant.LoadPalette(f.Palette)
		if err != nil {
			return flex.Options{}, err
		}
		v = variant.NewIcon(p)
	}
	return flex.Options{
		Page:            f.Page,
		MaxOutput:       f.MaxOutput,
		IncludeComments: f.Comments,
		Variant:         v,
	}, nil
}

// FlexRebuildCmd rebuilds every article against one table.
type FlexRebuildCmd struct {
	RebuildFlags `embed:""`
	Articles  []string `arg:"" help:"Article files ('-' for stdin)"`
	InPlace   bool     `short:"i" help:"Rewrite the articles instead of printing"`
	BackupDir string   `default:"~/.local/share/wikiru/backups" env:"WIKIRU_BACKUP_DIR" help:"Where --in-place keeps the previous versions" type:"path"`
	Jobs      int      `default:"4" help:"Articles rebuilt in parallel"`
}

func (c *FlexRebuildCmd) Run(ctx context.Context) error {
	if !c.InPlace && len(c.Articles) > 1 {
		return errors.NewValidation("articles", "more than one article needs --in-place")
	}
	if c.InPlace {
		for _, a := range c.Articles {
			if a == "-" {
				return errors.NewValidation("articles", "stdin cannot be rewritten in place")
			}
		}
	}
	opts, err := c.options()
	if err != nil {
		return err
	}
	tableText, err := readInput(c.Table)
	if err != nil {
		return err
	}

	var store *cas.Store
	if c.InPlace {
		if store, err = cas.NewStore(c.BackupDir); err != nil {
			return err
		}
	}

	results, err := batch.Run(ctx, c.Articles, c.Jobs, func(ctx context.Context, path string) (*flex.Result, error) {
		article, err := readInput(path)
		if err != nil {
			return nil, err
		}
		res, err := flex.Rebuild(ctx, article, tableText, opts)
		if err != nil {
			return nil, err
		}
		logging.InfoContext(ctx, "article rebuilt",
			"article", path,
			"directives", len(res.Pairs),
			"diagnostics", len(res.Diagnostics),
			"changed", res.Text != article)
		if !c.InPlace {
			return res, nil
		}
		if res.Text == article {
			return res, nil
		}
		b, err := store.SaveBackup(path, []byte(article))
		if err != nil {
			return nil, err
		}
		logging.InfoContext(ctx, "backup saved", "article", path, "hash", b.Hash)
		return res, writeOutput(path, res.Text)
	})
	if !c.InPlace && len(results) == 1 && results[0].Err == nil {
		if werr := writeOutput("", results[0].Value.Text); werr != nil {
			return werr
		}
	}
	return err
}

// FlexPairsCmd lists the pattern pairs an article declares.
type FlexPairsCmd struct {
	Article string `arg:"" help:"Article file ('-' for stdin)"`
	Page    string `default:"テーブル/スキル・アビリティ/SSR" env:"WIKIRU_PAGE" help:"includex page to look for"`
}

func (c *FlexPairsCmd) Run() error {
	article, err := readInput(c.Article)
	if err != nil {
		return err
	}
	pairs, diags := flex.ExtractPatternPairs(table.SplitLines(article), c.Page)
	for _, p := range pairs {
		kind, col := "-", "-"
		if p.Filter != nil {
			kind = p.Filter.Kind.String()
			if p.Filter.Kind == pattern.Column {
				col = fmt.Sprint(p.Filter.Column)
			}
		}
		fmt.Fprintf(stdout, "%d\t%s\t%s\tfilter=%s\texcept=%s\n", p.Line+1, kind, col, p.FilterSource, p.ExceptSource)
	}
	for _, d := range diags {
		logging.Warn("invalid directive", "error", d)
	}
	return nil
}

// FlexDecomposeCmd shows the structured form of a filter argument.
type FlexDecomposeCmd struct {
	Filter string `arg:"" help:"filter= argument as written in the article"`
	Legacy bool   `help:"Use the single column/pattern decomposition"`
}

func (c *FlexDecomposeCmd) Run() error {
	parse := pattern.ParseFilter
	if c.Legacy {
		parse = pattern.Decompose
	}
	f, err := parse(c.Filter)
	if err != nil {
		return err
	}
	printFilter(f, "")
	return nil
}

func printFilter(f *pattern.Filter, indent string) {
	switch f.Kind {
	case pattern.AnyOf:
		fmt.Fprintf(stdout, "%skind: %s\n", indent, f.Kind)
		for _, alt := range f.Alts {
			printFilter(alt, indent+"  ")
		}
		return
	case pattern.Column:
		fmt.Fprintf(stdout, "%skind: %s\n%scolumn: %d\n", indent, f.Kind, indent, f.Column)
	default:
		fmt.Fprintf(stdout, "%skind: %s\n", indent, f.Kind)
	}
	pure := "(none)"
	if f.Pure != nil {
		pure = f.Pure.String()
	}
	fmt.Fprintf(stdout, "%spattern: %s\n", indent, pure)
}

// FlexWatchCmd keeps an output article rebuilt while its inputs are edited.
type FlexWatchCmd struct {
	RebuildFlags `embed:""`
	Article  string        `arg:"" help:"Article file" type:"existingfile"`
	Out      string        `required:"" short:"o" help:"Rebuilt article destination" type:"path"`
	Debounce time.Duration `default:"200ms" help:"Quiet period before a rebuild"`
}

func (c *FlexWatchCmd) Run(ctx context.Context) error {
	opts, err := c.options()
	if err != nil {
		return err
	}
	if sameFile(c.Article, c.Out) {
		return errors.NewValidation("out", "must differ from the watched article")
	}
	rebuild := func(ctx context.Context) {
		if err := c.rebuildOnce(ctx, opts); err != nil {
			logging.ErrorContext(ctx, "rebuild failed", "error", err)
		}
	}
	w, err := watch.New([]string{c.Article, c.Table}, c.Debounce, rebuild)
	if err != nil {
		return err
	}
	rebuild(ctx)
	return w.Run(ctx)
}

func (c *FlexWatchCmd) rebuildOnce(ctx context.Context, opts flex.Options) error {
	article, err := readInput(c.Article)
	if err != nil {
		return err
	}
	tableText, err := readInput(c.Table)
	if err != nil {
		return err
	}
	res, err := flex.Rebuild(ctx, article, tableText, opts)
	if err != nil {
		return err
	}
	logging.InfoContext(ctx, "article rebuilt", "out", c.Out, "directives", len(res.Pairs), "diagnostics", len(res.Diagnostics))
	return writeOutput(c.Out, res.Text)
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}
