package cas

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const backupLog = "backups.jsonl"

// Backup records one saved copy of a file.
type Backup struct {
	Hash string    `json:"hash"`
	Path string    `json:"path"`
	Size int       `json:"size"`
	Time time.Time `json:"time"`
}

// now is replaced in tests.
var now = time.Now

// SaveBackup stores data and appends an entry naming its source path to the
// backup log.
func (s *Store) SaveBackup(path string, data []byte) (Backup, error) {
	hash, err := s.Put(data)
	if err != nil {
		return Backup{}, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	b := Backup{Hash: hash, Path: abs, Size: len(data), Time: now().UTC()}

	line, err := json.Marshal(b)
	if err != nil {
		return Backup{}, fmt.Errorf("failed to marshal backup entry: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(s.root, backupLog), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return Backup{}, fmt.Errorf("failed to open backup log: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(append(line, '\n')); err != nil {
		return Backup{}, fmt.Errorf("failed to write backup log: %w", err)
	}
	return b, nil
}

// Backups returns the backup log oldest first. A store with no backups
// returns an empty slice.
func (s *Store) Backups() ([]Backup, error) {
	f, err := os.Open(filepath.Join(s.root, backupLog))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open backup log: %w", err)
	}
	defer f.Close()

	var out []Backup
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for n := 1; sc.Scan(); n++ {
		if len(sc.Bytes()) == 0 {
			continue
		}
		var b Backup
		if err := json.Unmarshal(sc.Bytes(), &b); err != nil {
			return nil, fmt.Errorf("backup log line %d: %w", n, err)
		}
		out = append(out, b)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read backup log: %w", err)
	}
	return out, nil
}
