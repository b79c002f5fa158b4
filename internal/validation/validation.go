// Package validation checks the article and table text accepted from files,
// stdin and HTTP bodies before it reaches the rebuild pipeline.
package validation

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Limits on accepted input.
const (
	// MaxTextSize is the largest article or table accepted (32 MB).
	MaxTextSize = 32 << 20
	// MaxPathLength is the maximum allowed path length.
	MaxPathLength = 4096
)

// Common validation errors.
var (
	ErrPathTraversal    = errors.New("path traversal detected")
	ErrPathTooLong      = errors.New("path too long")
	ErrInvalidCharacter = errors.New("invalid character in path")
	ErrEmptyPath        = errors.New("path cannot be empty")
	ErrTooLarge         = errors.New("input too large")
	ErrBinary           = errors.New("input is not text")
	ErrInvalidUTF8      = errors.New("input is not valid UTF-8")
)

// ValidatePath checks a user-supplied path for length and control characters.
// "-" (stdin) is accepted.
func ValidatePath(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	if len(path) > MaxPathLength {
		return ErrPathTooLong
	}
	if strings.Contains(path, "\x00") {
		return fmt.Errorf("%w: null byte not allowed", ErrInvalidCharacter)
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: control character not allowed", ErrInvalidCharacter)
		}
	}
	return nil
}

// SanitizePath resolves userPath inside baseDir and rejects anything that
// would escape it. It returns the cleaned relative path.
func SanitizePath(baseDir, userPath string) (string, error) {
	if err := ValidatePath(userPath); err != nil {
		return "", err
	}
	cleanPath := filepath.Clean(userPath)
	if filepath.IsAbs(cleanPath) {
		return "", fmt.Errorf("%w: absolute path not allowed", ErrPathTraversal)
	}

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base directory: %w", err)
	}
	absPath, err := filepath.Abs(filepath.Join(baseDir, cleanPath))
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	rel, err := filepath.Rel(absBase, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrPathTraversal
	}
	return cleanPath, nil
}

// binaryMagic lists signatures of files commonly passed by mistake.
var binaryMagic = []struct {
	name  string
	magic []byte
}{
	{"gzip", []byte{0x1f, 0x8b}},
	{"xz", []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}},
	{"zip", []byte{0x50, 0x4b, 0x03, 0x04}},
	{"sqlite", []byte("SQLite format 3")},
}

// ValidateText checks that data is UTF-8 text within MaxTextSize.
func ValidateText(data []byte) error {
	if len(data) > MaxTextSize {
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrTooLarge, len(data), MaxTextSize)
	}
	for _, sig := range binaryMagic {
		if bytes.HasPrefix(data, sig.magic) {
			return fmt.Errorf("%w: looks like %s data", ErrBinary, sig.name)
		}
	}
	if bytes.IndexByte(data, 0) != -1 {
		return fmt.Errorf("%w: contains null bytes", ErrBinary)
	}
	if !utf8.Valid(data) {
		return ErrInvalidUTF8
	}
	return nil
}

// ReadText reads at most MaxTextSize bytes from r and validates them. A
// leading UTF-8 byte order mark is dropped.
func ReadText(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxTextSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	if err := ValidateText(data); err != nil {
		return "", err
	}
	return string(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))), nil
}
