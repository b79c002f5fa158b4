package main

import (
	"fmt"
	"time"

	"github.com/FocuswithJustin/WikiruKit/core/cas"
)

// BackupGroup contains the backup commands.
type BackupGroup struct {
	List    BackupListCmd    `cmd:"" help:"List saved backups, oldest first"`
	Restore BackupRestoreCmd `cmd:"" help:"Write a saved backup to a file"`
}

// BackupFlags locate the backup store.
type BackupFlags struct {
	Dir string `default:"~/.local/share/wikiru/backups" env:"WIKIRU_BACKUP_DIR" help:"Backup store" type:"path"`
}

// BackupListCmd prints the backup log.
type BackupListCmd struct {
	BackupFlags `embed:""`
}

func (c *BackupListCmd) Run() error {
	store, err := cas.NewStore(c.Dir)
	if err != nil {
		return err
	}
	backups, err := store.Backups()
	if err != nil {
		return err
	}
	for _, b := range backups {
		fmt.Fprintf(stdout, "%s  %s  %8d  %s\n", b.Hash[:16], b.Time.Local().Format(time.DateTime), b.Size, b.Path)
	}
	return nil
}

// BackupRestoreCmd writes a blob back out. Hash may be abbreviated.
type BackupRestoreCmd struct {
	BackupFlags `embed:""`
	Hash string `arg:"" help:"Backup hash or unique prefix"`
	Out  string `required:"" short:"o" help:"Destination file" type:"path"`
}

func (c *BackupRestoreCmd) Run() error {
	store, err := cas.NewStore(c.Dir)
	if err != nil {
		return err
	}
	hash, err := store.Resolve(c.Hash)
	if err != nil {
		return err
	}
	data, err := store.Get(hash)
	if err != nil {
		return err
	}
	return writeOutput(c.Out, string(data))
}
