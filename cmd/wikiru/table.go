package main

import (
	"strings"

	"github.com/FocuswithJustin/WikiruKit/core/errors"
	"github.com/FocuswithJustin/WikiruKit/core/table"
)

// TableGroup contains the table line commands.
type TableGroup struct {
	Line   TableLineCmd   `cmd:"" help:"Print the n-th valid line after a line index"`
	Strip  TableStripCmd  `cmd:"" help:"Collapse spanning, header and doubled delimiters"`
	Append TableAppendCmd `cmd:"" help:"Append text to a column of matching rows"`
}

// TableLineCmd prints table.NthValidLine.
type TableLineCmd struct {
	File   string `arg:"" help:"Text file ('-' for stdin)"`
	From   int    `default:"-1" help:"0-based line index to count from (-1 counts from the top)"`
	Offset int    `default:"1" help:"Which valid line after --from, 1-based"`
}

func (c *TableLineCmd) Run() error {
	text, err := readInput(c.File)
	if err != nil {
		return err
	}
	line, ok := table.NthValidLine(table.SplitLines(text), c.From, c.Offset)
	if !ok {
		return errors.NewNotFound("line", "no valid line at that offset")
	}
	return writeOutput("", line+"\n")
}

// TableStripCmd applies StripTableNoise to every line.
type TableStripCmd struct {
	File   string `arg:"" help:"Table file ('-' for stdin)"`
	Colors bool   `help:"Also remove COLOR(...) and BGCOLOR(...) tags"`
	Out    string `short:"o" help:"Output file (default stdout)" type:"path"`
}

func (c *TableStripCmd) Run() error {
	text, err := readInput(c.File)
	if err != nil {
		return err
	}
	lines := table.SplitLines(text)
	for i, l := range lines {
		lines[i] = table.StripTableNoise(l)
	}
	text = table.JoinLines(lines)
	if c.Colors {
		text = table.StripColorTags(text)
	}
	return writeOutput(c.Out, text)
}

// TableAppendCmd wraps AppendTextToColumn and AppendTextToTable.
type TableAppendCmd struct {
	File         string   `arg:"" help:"Table file ('-' for stdin)"`
	Column       int      `required:"" help:"Split index of the column to append to"`
	Text         string   `required:"" help:"Text to append"`
	SearchColumn int      `default:"-1" help:"Only rows whose column at this index contains one of --words"`
	Words        []string `sep:"," help:"Words searched for in --search-column"`
	Out          string   `short:"o" help:"Output file (default stdout)" type:"path"`
}

func (c *TableAppendCmd) Run() error {
	text, err := readInput(c.File)
	if err != nil {
		return err
	}
	if c.SearchColumn >= 0 {
		words := make([]string, 0, len(c.Words))
		for _, w := range c.Words {
			if w = strings.TrimSpace(w); w != "" {
				words = append(words, w)
			}
		}
		if len(words) == 0 {
			return errors.NewValidation("words", "--search-column needs at least one word")
		}
		text = table.AppendTextToTable(text, c.SearchColumn, words, c.Column, c.Text)
	} else {
		text = table.AppendTextToColumn(text, c.Column, c.Text)
	}
	return writeOutput(c.Out, text)
}
