// Package cas provides content-addressed storage for article backups.
// Blobs are keyed by their BLAKE3 hash and kept xz-compressed on disk, so
// saving the same article twice costs nothing.
package cas

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"
)

// blobExt is appended to every blob file name.
const blobExt = ".xz"

// osRename is a variable to allow testing of rename errors.
var osRename = os.Rename

// tempFileWrite is a function variable for writing to temp files (for testing).
var tempFileWrite = func(f *os.File, data []byte) (int, error) {
	return f.Write(data)
}

// tempFileClose is a function variable for closing temp files (for testing).
var tempFileClose = func(f io.Closer) error {
	return f.Close()
}

// ErrBlobNotFound is returned when a blob with the given hash does not exist.
var ErrBlobNotFound = errors.New("blob not found")

// ErrInvalidHash is returned when a hash string is not 64 lowercase hex digits.
var ErrInvalidHash = errors.New("invalid hash format")

var (
	hashPattern = regexp.MustCompile(`^[a-f0-9]{64}$`)
	hexPrefix   = regexp.MustCompile(`^[a-f0-9]+$`)
)

// Store is a directory of compressed blobs.
type Store struct {
	root string
}

// NewStore creates a store rooted at root, creating directories as needed.
func NewStore(root string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(root, "blobs", "blake3"), 0755); err != nil {
		return nil, fmt.Errorf("failed to create blob directory: %w", err)
	}
	return &Store{root: root}, nil
}

// Root returns the store directory.
func (s *Store) Root() string { return s.root }

// Put stores data and returns its hash. Storing existing content is a no-op.
func (s *Store) Put(data []byte) (string, error) {
	hash := Hash(data)
	blobPath := s.pathForHash(hash)
	if _, err := os.Stat(blobPath); err == nil {
		return hash, nil
	}

	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		return "", fmt.Errorf("failed to create xz writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return "", fmt.Errorf("failed to compress blob: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to compress blob: %w", err)
	}

	if err := writeAtomic(filepath.Dir(blobPath), blobPath, buf.Bytes()); err != nil {
		return "", err
	}
	return hash, nil
}

// Get returns the decompressed blob for hash.
func (s *Store) Get(hash string) ([]byte, error) {
	if !isValidHash(hash) {
		return nil, ErrInvalidHash
	}
	f, err := os.Open(s.pathForHash(hash))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}
	defer f.Close()

	r, err := xz.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to create xz reader: %w", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress blob: %w", err)
	}
	if Hash(data) != hash {
		return nil, fmt.Errorf("blob %s: content does not match its hash", hash)
	}
	return data, nil
}

// Exists reports whether a blob with the given hash is stored.
func (s *Store) Exists(hash string) bool {
	if !isValidHash(hash) {
		return false
	}
	_, err := os.Stat(s.pathForHash(hash))
	return err == nil
}

// List returns every stored hash in sorted order.
func (s *Store) List() ([]string, error) {
	var hashes []string
	base := filepath.Join(s.root, "blobs", "blake3")
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := strings.TrimSuffix(d.Name(), blobExt)
		if name != d.Name() && isValidHash(name) {
			hashes = append(hashes, name)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list blobs: %w", err)
	}
	sort.Strings(hashes)
	return hashes, nil
}

// ErrAmbiguousHash is returned when a hash prefix matches more than one blob.
var ErrAmbiguousHash = errors.New("ambiguous hash prefix")

// Resolve expands a hash prefix of at least four hex digits to the one
// stored hash it matches.
func (s *Store) Resolve(prefix string) (string, error) {
	prefix = strings.ToLower(prefix)
	if isValidHash(prefix) {
		if !s.Exists(prefix) {
			return "", fmt.Errorf("%w: %s", ErrBlobNotFound, prefix)
		}
		return prefix, nil
	}
	if len(prefix) < 4 || !hexPrefix.MatchString(prefix) {
		return "", fmt.Errorf("%w: %q", ErrInvalidHash, prefix)
	}
	hashes, err := s.List()
	if err != nil {
		return "", err
	}
	var found string
	for _, h := range hashes {
		if !strings.HasPrefix(h, prefix) {
			continue
		}
		if found != "" {
			return "", fmt.Errorf("%w: %s", ErrAmbiguousHash, prefix)
		}
		found = h
	}
	if found == "" {
		return "", fmt.Errorf("%w: %s", ErrBlobNotFound, prefix)
	}
	return found, nil
}

// pathForHash returns <root>/blobs/blake3/<first2>/<hash>.xz.
func (s *Store) pathForHash(hash string) string {
	return filepath.Join(s.root, "blobs", "blake3", hash[:2], hash+blobExt)
}

func writeAtomic(dir, target string, data []byte) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create prefix directory: %w", err)
	}
	tempFile, err := os.CreateTemp(dir, ".blob-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	if _, err := tempFileWrite(tempFile, data); err != nil {
		tempFileClose(tempFile)
		os.Remove(tempPath)
		return fmt.Errorf("failed to write blob: %w", err)
	}
	if err := tempFileClose(tempFile); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := osRename(tempPath, target); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename blob: %w", err)
	}
	return nil
}

func isValidHash(hash string) bool {
	return hashPattern.MatchString(hash)
}

// Hash computes the BLAKE3 hash of data as lowercase hex.
func Hash(data []byte) string {
	h := blake3.Sum256(data)
	return hex.EncodeToString(h[:])
}

// HashString is Hash for strings.
func HashString(s string) string {
	return Hash([]byte(s))
}
