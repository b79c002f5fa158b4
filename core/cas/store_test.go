package cas

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

// TestPutAndGet stores an article and reads back the exact bytes.
func TestPutAndGet(t *testing.T) {
	store := newTestStore(t)
	article := []byte("*火属性\n#region(火)\n#includex(テーブル/スキル・アビリティ/SSR,filter=火)\n#endregion\n")

	hash, err := store.Put(article)
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if hash != Hash(article) {
		t.Errorf("Put() hash = %s, want %s", hash, Hash(article))
	}

	got, err := store.Get(hash)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !bytes.Equal(got, article) {
		t.Errorf("Get() = %q, want %q", got, article)
	}

	onDisk, err := os.ReadFile(store.pathForHash(hash))
	if err != nil {
		t.Fatalf("read blob: %v", err)
	}
	if bytes.Equal(onDisk, article) {
		t.Error("blob should be stored compressed")
	}
}

func TestPutDuplicate(t *testing.T) {
	store := newTestStore(t)
	data := []byte("same content")

	h1, err := store.Put(data)
	if err != nil {
		t.Fatalf("first Put() error = %v", err)
	}
	h2, err := store.Put(data)
	if err != nil {
		t.Fatalf("second Put() error = %v", err)
	}
	if h1 != h2 {
		t.Errorf("hashes differ: %s vs %s", h1, h2)
	}

	hashes, err := store.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if diff := cmp.Diff([]string{h1}, hashes); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
}

func TestPutEmpty(t *testing.T) {
	store := newTestStore(t)
	hash, err := store.Put(nil)
	if err != nil {
		t.Fatalf("Put(nil) error = %v", err)
	}
	got, err := store.Get(hash)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Get() = %q, want empty", got)
	}
}

func TestGetErrors(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Get("not-a-hash"); !errors.Is(err, ErrInvalidHash) {
		t.Errorf("Get(invalid) error = %v, want ErrInvalidHash", err)
	}
	missing := strings.Repeat("a", 64)
	if _, err := store.Get(missing); !errors.Is(err, ErrBlobNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrBlobNotFound", err)
	}
}

func TestGetCorruptBlob(t *testing.T) {
	store := newTestStore(t)
	hash, err := store.Put([]byte("original"))
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := os.WriteFile(store.pathForHash(hash), []byte("not xz"), 0644); err != nil {
		t.Fatalf("overwrite blob: %v", err)
	}
	if _, err := store.Get(hash); err == nil {
		t.Error("Get() should fail on a corrupt blob")
	}
}

func TestExists(t *testing.T) {
	store := newTestStore(t)
	hash, err := store.Put([]byte("x"))
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	tests := []struct {
		hash string
		want bool
	}{
		{hash, true},
		{strings.Repeat("b", 64), false},
		{"short", false},
		{strings.ToUpper(hash), false},
	}
	for _, tt := range tests {
		if got := store.Exists(tt.hash); got != tt.want {
			t.Errorf("Exists(%q) = %v, want %v", tt.hash, got, tt.want)
		}
	}
}

func TestHash(t *testing.T) {
	if got := Hash([]byte("abc")); len(got) != 64 {
		t.Errorf("Hash() length = %d, want 64", len(got))
	}
	if Hash([]byte("abc")) != HashString("abc") {
		t.Error("HashString should match Hash")
	}
	if Hash([]byte("abc")) == Hash([]byte("abd")) {
		t.Error("different inputs should hash differently")
	}
}

func TestNewStoreMkdirError(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewStore(filepath.Join(file, "store")); err == nil {
		t.Error("NewStore() under a regular file should fail")
	}
}

func TestPutWriteErrors(t *testing.T) {
	tests := []struct {
		name    string
		install func() func()
		wantMsg string
	}{
		{
			name: "write",
			install: func() func() {
				orig := tempFileWrite
				tempFileWrite = func(*os.File, []byte) (int, error) { return 0, errors.New("disk full") }
				return func() { tempFileWrite = orig }
			},
			wantMsg: "failed to write blob",
		},
		{
			name: "close",
			install: func() func() {
				orig := tempFileClose
				tempFileClose = func(c io.Closer) error {
					c.Close()
					return errors.New("close failed")
				}
				return func() { tempFileClose = orig }
			},
			wantMsg: "failed to close temp file",
		},
		{
			name: "rename",
			install: func() func() {
				orig := osRename
				osRename = func(string, string) error { return errors.New("rename failed") }
				return func() { osRename = orig }
			},
			wantMsg: "failed to rename blob",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t)
			restore := tt.install()
			defer restore()

			_, err := store.Put([]byte("payload " + tt.name))
			if err == nil || !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Put() error = %v, want %q", err, tt.wantMsg)
			}
			if hashes, _ := store.List(); len(hashes) != 0 {
				t.Errorf("List() = %v, want no blobs after a failed write", hashes)
			}
		})
	}
}

func TestBackups(t *testing.T) {
	store := newTestStore(t)

	fixed := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	origNow := now
	now = func() time.Time { return fixed }
	defer func() { now = origNow }()

	list, err := store.Backups()
	if err != nil || len(list) != 0 {
		t.Fatalf("Backups() on empty store = %v, %v", list, err)
	}

	path := filepath.Join(store.Root(), "article.txt")
	b1, err := store.SaveBackup(path, []byte("v1"))
	if err != nil {
		t.Fatalf("SaveBackup() error = %v", err)
	}
	b2, err := store.SaveBackup(path, []byte("v2"))
	if err != nil {
		t.Fatalf("SaveBackup() error = %v", err)
	}

	list, err = store.Backups()
	if err != nil {
		t.Fatalf("Backups() error = %v", err)
	}
	want := []Backup{
		{Hash: Hash([]byte("v1")), Path: path, Size: 2, Time: fixed},
		{Hash: Hash([]byte("v2")), Path: path, Size: 2, Time: fixed},
	}
	if diff := cmp.Diff(want, list); diff != "" {
		t.Errorf("Backups() mismatch (-want +got):\n%s", diff)
	}
	if b1.Hash == b2.Hash {
		t.Error("distinct contents should produce distinct backups")
	}

	data, err := store.Get(b1.Hash)
	if err != nil || string(data) != "v1" {
		t.Errorf("Get(first backup) = %q, %v", data, err)
	}
}

func TestResolve(t *testing.T) {
	store := newTestStore(t)
	hash, err := store.Put([]byte("article"))
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	other := "0"
	if hash[0] == '0' {
		other = "1"
	}

	tests := []struct {
		name    string
		prefix  string
		want    string
		wantErr error
	}{
		{"full hash", hash, hash, nil},
		{"prefix", hash[:8], hash, nil},
		{"upper case", strings.ToUpper(hash[:8]), hash, nil},
		{"too short", hash[:3], "", ErrInvalidHash},
		{"not hex", "zzzzzz", "", ErrInvalidHash},
		{"no match", other + hash[1:8], "", ErrBlobNotFound},
		{"unknown full hash", other + hash[1:], "", ErrBlobNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Resolve(tt.prefix)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Resolve(%q) error = %v, want %v", tt.prefix, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.prefix, got, tt.want)
			}
		})
	}
}
