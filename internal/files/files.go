// ABOUTME: Local song library access
// ABOUTME: Lists the songs directory and reads selected files for upload
package files

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// ErrFileNotFound is returned when a listed or requested file is missing.
// It wraps fs.ErrNotExist.
var ErrFileNotFound = fmt.Errorf("file not found: %w", fs.ErrNotExist)

// Browser lists and reads files under a songs directory
type Browser struct {
	fsys fs.FS
	root string
}

// NewBrowser browses the directory at root on the local filesystem
func NewBrowser(root string) *Browser {
	return &Browser{fsys: os.DirFS(root), root: root}
}

// NewBrowserFS browses an arbitrary filesystem, rooted at "."
func NewBrowserFS(fsys fs.FS) *Browser {
	return &Browser{fsys: fsys, root: "."}
}

// Root returns the directory being browsed
func (b *Browser) Root() string {
	return b.root
}

// List returns the regular files in dir, sorted by name. dir is relative
// to the browser root; "" and "." mean the root itself. A missing
// directory yields an empty listing.
func (b *Browser) List(dir string) ([]string, error) {
	if dir == "" {
		dir = "."
	}

	entries, err := fs.ReadDir(b.fsys, filepath.ToSlash(dir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// ReadFile returns the full contents of name, relative to the root
func (b *Browser) ReadFile(name string) ([]byte, error) {
	data, err := fs.ReadFile(b.fsys, filepath.ToSlash(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", name, ErrFileNotFound)
		}
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}
