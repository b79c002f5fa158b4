// Command wikiru rebuilds the icon blocks of wiki effect-list articles and
// bundles the table, wikitext and unit-extraction helpers used around it.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/WikiruKit/core/errors"
	"github.com/FocuswithJustin/WikiruKit/core/sqlite"
	"github.com/FocuswithJustin/WikiruKit/internal/logging"
	"github.com/FocuswithJustin/WikiruKit/internal/validation"
)

const version = "0.4.0"

// Replaced in tests.
var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
)

// CLI defines the command-line interface for wikiru.
type CLI struct {
	LogLevel  string `name:"log-level" default:"info" enum:"debug,info,warn,error" env:"WIKIRU_LOG_LEVEL" help:"Log level (${enum})"`
	LogFormat string `name:"log-format" default:"text" enum:"text,json" env:"WIKIRU_LOG_FORMAT" help:"Log format (${enum})"`

	Flex    FlexGroup    `cmd:"" help:"Rebuild flex icon blocks from a unit table"`
	Table   TableGroup   `cmd:"" help:"Table line utilities"`
	Wiki    WikiGroup    `cmd:"" help:"Wikitext editing helpers"`
	Extract ExtractGroup `cmd:"" help:"Extract unit table rows from character articles"`
	Backup  BackupGroup  `cmd:"" help:"Backups of articles rewritten in place"`
	Serve   ServeCmd     `cmd:"" help:"Start the HTTP and WebSocket API server"`
	Version VersionCmd   `cmd:"" help:"Print version information"`
}

// configPaths are read in order; flags and env vars override them.
var configPaths = []string{"~/.config/wikiru/config.json", ".wikiru.json"}

func newParser(cli *CLI, options ...kong.Option) (*kong.Kong, error) {
	opts := []kong.Option{
		kong.Name("wikiru"),
		kong.Description("Wiki effect-list maintenance tools"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Configuration(kong.JSON, configPaths...),
	}
	return kong.New(cli, append(opts, options...)...)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cli CLI
	parser, err := newParser(&cli)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	level, _ := logging.ParseLevel(cli.LogLevel)
	format, _ := logging.ParseFormat(cli.LogFormat)
	logging.InitLogger(level, format)

	runID := logging.NewRunID()
	ctx = logging.WithRequestID(ctx, runID)
	logging.DebugContext(ctx, "starting", "command", kctx.Command(), "version", version)

	kctx.BindTo(ctx, (*context.Context)(nil))
	kctx.FatalIfErrorf(kctx.Run())
}

// readInput reads a text file, or stdin for "-".
func readInput(path string) (string, error) {
	if path == "-" {
		return validation.ReadText(stdin)
	}
	if err := validation.ValidatePath(path); err != nil {
		return "", errors.NewValidation("path", err.Error())
	}
	f, err := os.Open(path)
	if err != nil {
		return "", errors.NewIO("open", path, err)
	}
	defer f.Close()
	text, err := validation.ReadText(f)
	if err != nil {
		return "", errors.Wrap(err, path)
	}
	return text, nil
}

// writeOutput writes text to path, or to stdout when path is empty or "-".
// Files are replaced by rename so a failed write leaves the old content.
func writeOutput(path, text string) error {
	if path == "" || path == "-" {
		_, err := io.WriteString(stdout, text)
		return err
	}
	if err := validation.ValidatePath(path); err != nil {
		return errors.NewValidation("out", err.Error())
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".wikiru-*")
	if err != nil {
		return errors.NewIO("create", path, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		return errors.NewIO("write", path, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.NewIO("write", path, err)
	}
	mode := os.FileMode(0644)
	if fi, err := os.Stat(path); err == nil {
		mode = fi.Mode().Perm()
	}
	if err := os.Chmod(tmp.Name(), mode); err != nil {
		return errors.NewIO("chmod", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.NewIO("rename", path, err)
	}
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Fprintf(stdout, "wikiru version %s\n", version)
	info := sqlite.GetInfo()
	fmt.Fprintf(stdout, "  sqlite driver: %s (%s, %s)\n", info.DriverName, info.DriverType, info.Package)
	return nil
}
