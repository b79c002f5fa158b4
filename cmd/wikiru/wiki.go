package main

import (
	"github.com/FocuswithJustin/WikiruKit/core/wikitext"
)

// WikiGroup contains the wikitext helpers.
type WikiGroup struct {
	Contents     WikiContentsCmd     `cmd:"" help:"Build a manual contents list from anchored headings"`
	Shadowheader WikiShadowheaderCmd `cmd:"" help:"Turn per-column headings into #shadowheader lines"`
	Strip        WikiStripCmd        `cmd:"" help:"Remove #region or flex blocks"`
	Includex     WikiIncludexCmd     `cmd:"" help:"Generate heading, region and includex blocks from filters"`
	Columns      WikiColumnsCmd      `cmd:"" help:"Generate includex blocks filtering one column per line"`
	Atk          WikiAtkCmd          `cmd:"" help:"Annotate skill power percentages with damage values"`
}

// TextArgs is the input/output pair most wiki commands take.
type TextArgs struct {
	File string `arg:"" help:"Input file ('-' for stdin)"`
	Out  string `short:"o" help:"Output file (default stdout)" type:"path"`
}

func (c TextArgs) apply(fn func(string) string) error {
	text, err := readInput(c.File)
	if err != nil {
		return err
	}
	return writeOutput(c.Out, fn(text))
}

// WikiContentsCmd wraps ContentsLinks.
type WikiContentsCmd struct {
	TextArgs `embed:""`
	Page  string `required:"" help:"Page name used in the links"`
	Depth int    `default:"0" help:"Deepest heading level listed, 1-3 (0 lists all)"`
}

func (c *WikiContentsCmd) Run() error {
	return c.apply(func(s string) string {
		out := wikitext.ContentsLinks(s, c.Page, c.Depth)
		if out != "" {
			out += "\n"
		}
		return out
	})
}

// WikiShadowheaderCmd wraps ConvertToShadowHeaders.
type WikiShadowheaderCmd struct {
	TextArgs `embed:""`
}

func (c *WikiShadowheaderCmd) Run() error {
	return c.apply(wikitext.ConvertToShadowHeaders)
}

// WikiStripCmd removes region and flex blocks. With neither flag both go.
type WikiStripCmd struct {
	TextArgs `embed:""`
	Regions bool `help:"Remove #region ... #endregion blocks"`
	Flex    bool `help:"Remove #flex(flex-start){{ ... }} blocks"`
}

func (c *WikiStripCmd) Run() error {
	regions, flexBlocks := c.Regions, c.Flex
	if !regions && !flexBlocks {
		regions, flexBlocks = true, true
	}
	return c.apply(func(s string) string {
		if flexBlocks {
			s = wikitext.RemoveFlexBlocks(s)
		}
		if regions {
			s = wikitext.RemoveRegionBlocks(s)
		}
		return s
	})
}

// WikiIncludexCmd wraps CreateIncludex.
type WikiIncludexCmd struct {
	TextArgs `embed:""`
	Heading string `help:"Heading written above the generated blocks"`
	Depth   int    `default:"1" help:"Heading level of each block, 1-3"`
	Shadow  bool   `help:"Emit #shadowheader instead of headings"`
	SR      bool   `name:"sr" help:"Also include the SR table"`
}

func (c *WikiIncludexCmd) Run() error {
	opts := wikitext.IncludexOptions{Heading: c.Heading, Depth: c.Depth, Shadow: c.Shadow, WithSR: c.SR}
	return c.apply(func(s string) string {
		return wikitext.CreateIncludex(s, opts)
	})
}

// WikiColumnsCmd wraps CreateColumnIncludex.
type WikiColumnsCmd struct {
	Text    string `arg:"" help:"Text each column is filtered for"`
	Out     string `short:"o" help:"Output file (default stdout)" type:"path"`
	Heading string `required:"" help:"Heading written above the generated blocks"`
	Depth   int    `default:"1" help:"Heading level of each block, 1-3"`
	SR      bool   `name:"sr" help:"Also include the SR table"`
}

func (c *WikiColumnsCmd) Run() error {
	return writeOutput(c.Out, wikitext.CreateColumnIncludex(c.Text, c.Heading, c.Depth, c.SR))
}

// WikiAtkCmd wraps AnnotateAttackPower.
type WikiAtkCmd struct {
	TextArgs `embed:""`
}

func (c *WikiAtkCmd) Run() error {
	return c.apply(wikitext.AnnotateAttackPower)
}
