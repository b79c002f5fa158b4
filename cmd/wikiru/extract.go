package main

import (
	"context"
	"fmt"
	"os"

	"github.com/FocuswithJustin/WikiruKit/core/errors"
	"github.com/FocuswithJustin/WikiruKit/core/extract"
	"github.com/FocuswithJustin/WikiruKit/core/unitstore"
	"github.com/FocuswithJustin/WikiruKit/internal/batch"
	"github.com/FocuswithJustin/WikiruKit/internal/logging"
)

// ExtractGroup contains the unit extraction commands.
type ExtractGroup struct {
	Unit     ExtractUnitCmd     `cmd:"" help:"Extract one table row per character article"`
	Export   ExtractExportCmd   `cmd:"" help:"Print the rows stored for a profile"`
	Profiles ExtractProfilesCmd `cmd:"" help:"List the built-in profiles"`
}

// ExtractUnitCmd turns articles into rows and stores or prints them.
type ExtractUnitCmd struct {
	Articles []string `arg:"" help:"Character article files ('-' for stdin)"`
	Profile  string   `required:"" short:"p" env:"WIKIRU_PROFILE" help:"Built-in profile name or YAML profile file"`
	DB       string   `name:"db" env:"WIKIRU_DB" help:"SQLite unit database to add rows to" type:"path"`
	Out      string   `short:"o" help:"Table file rows are appended to" type:"path"`
	Jobs     int      `default:"4" help:"Articles parsed in parallel"`
}

func (c *ExtractUnitCmd) Run(ctx context.Context) error {
	if c.DB != "" && c.Out != "" {
		return errors.NewValidation("db", "--db and --out are exclusive")
	}
	profile, err := extract.Resolve(c.Profile)
	if err != nil {
		return err
	}

	results, runErr := batch.Run(ctx, c.Articles, c.Jobs, func(ctx context.Context, path string) (string, error) {
		article, err := readInput(path)
		if err != nil {
			return "", err
		}
		rec, err := extract.Extract(article, profile)
		if err != nil {
			return "", err
		}
		return rec.Row(), nil
	})

	switch {
	case c.DB != "":
		store, err := unitstore.Open(ctx, c.DB)
		if err != nil {
			return err
		}
		defer store.Close()
		for i, r := range results {
			if r.Err != nil {
				continue
			}
			added, err := store.Add(ctx, profile.Name, r.Value, c.Articles[i])
			if err != nil {
				return err
			}
			logging.InfoContext(ctx, "row stored", "article", c.Articles[i], "added", added)
		}
	case c.Out != "":
		current, err := readExisting(c.Out)
		if err != nil {
			return err
		}
		for i, r := range results {
			if r.Err != nil {
				continue
			}
			var added bool
			current, added = extract.AppendRow(current, r.Value)
			logging.InfoContext(ctx, "row appended", "article", c.Articles[i], "added", added)
		}
		if err := writeOutput(c.Out, current); err != nil {
			return err
		}
	default:
		for _, r := range results {
			if r.Err == nil {
				fmt.Fprintln(stdout, r.Value)
			}
		}
	}
	return runErr
}

// readExisting returns the content of path, or "" when it does not exist.
func readExisting(path string) (string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", nil
	}
	return readInput(path)
}

// ExtractExportCmd prints every stored row of a profile as table text.
type ExtractExportCmd struct {
	Profile string `required:"" short:"p" env:"WIKIRU_PROFILE" help:"Profile name the rows were stored under"`
	DB      string `name:"db" required:"" env:"WIKIRU_DB" help:"SQLite unit database" type:"existingfile"`
	Out     string `short:"o" help:"Output file (default stdout)" type:"path"`
}

func (c *ExtractExportCmd) Run(ctx context.Context) error {
	store, err := unitstore.Open(ctx, c.DB)
	if err != nil {
		return err
	}
	defer store.Close()
	text, err := store.Export(ctx, c.Profile)
	if err != nil {
		return err
	}
	return writeOutput(c.Out, text)
}

// ExtractProfilesCmd lists the built-in profiles.
type ExtractProfilesCmd struct{}

func (c *ExtractProfilesCmd) Run() error {
	for _, name := range extract.BuiltinNames() {
		fmt.Fprintln(stdout, name)
	}
	return nil
}
