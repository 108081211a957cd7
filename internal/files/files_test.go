// ABOUTME: Tests for the local song browser
// ABOUTME: Uses in-memory and temporary filesystems
package files

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func TestList(t *testing.T) {
	fsys := fstest.MapFS{
		"b.mp3":        {Data: []byte("b")},
		"a.flac":       {Data: []byte("a")},
		"sub/c.mp3":    {Data: []byte("c")},
		"notes/readme": {Data: []byte("r")},
	}
	b := NewBrowserFS(fsys)

	names, err := b.List("")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := []string{"a.flac", "b.mp3"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], names[i])
		}
	}

	sub, err := b.List("sub")
	if err != nil || len(sub) != 1 || sub[0] != "c.mp3" {
		t.Errorf("List(sub) = %v, %v", sub, err)
	}
}

func TestListMissingDirectory(t *testing.T) {
	b := NewBrowser(filepath.Join(t.TempDir(), "nope"))
	names, err := b.List("")
	if err != nil {
		t.Fatalf("expected empty listing, got error %v", err)
	}
	if len(names) != 0 {
		t.Errorf("expected no names, got %v", names)
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "song.mp3"), []byte{1, 2, 3}, 0644); err != nil {
		t.Fatal(err)
	}
	b := NewBrowser(dir)

	data, err := b.ReadFile("song.mp3")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if len(data) != 3 {
		t.Errorf("expected 3 bytes, got %d", len(data))
	}

	_, err = b.ReadFile("gone.mp3")
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("expected ErrFileNotFound, got %v", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected error to wrap fs.ErrNotExist, got %v", err)
	}
}
