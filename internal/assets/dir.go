// Package assets gives read-only access to the files served by gamehost.
// Nothing here writes to disk and nothing is cached between calls.
package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/moby/sys/symlink"
)

// Dir is a directory whose regular files may be served.
type Dir struct {
	root string
}

// NewDir resolves root against the working directory. The directory does not
// have to exist yet.
func NewDir(root string) (Dir, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return Dir{}, fmt.Errorf("resolve asset root %q: %w", root, err)
	}
	return Dir{root: abs}, nil
}

// Root returns the absolute directory path.
func (d Dir) Root() string {
	return d.root
}

// Exists reports whether the root is an existing directory.
func (d Dir) Exists() bool {
	st, err := os.Stat(d.root)
	return err == nil && st.IsDir()
}

// Resolve maps a URL-style relative path to an absolute path beneath the root.
// rel may still be percent-encoded.
func (d Dir) Resolve(rel string) (string, error) {
	decoded, err := url.PathUnescape(rel)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrNotFound, rel)
	}
	if strings.ContainsAny(decoded, "\x00\\") {
		return "", fmt.Errorf("%w: %q", ErrOutsideRoot, rel)
	}
	for _, seg := range strings.Split(decoded, "/") {
		if seg == ".." {
			return "", fmt.Errorf("%w: %q", ErrOutsideRoot, rel)
		}
	}

	clean := strings.TrimPrefix(path.Clean("/"+decoded), "/")
	if clean == "" {
		return "", fmt.Errorf("%w: %q is a directory", ErrNotFound, rel)
	}
	full := filepath.Join(d.root, filepath.FromSlash(clean))
	if !within(d.root, full) {
		return "", fmt.Errorf("%w: %q", ErrOutsideRoot, rel)
	}

	// Symlinks are evaluated as if the root were "/", so they cannot lead out of it.
	scoped, err := symlink.FollowSymlinkInScope(full, d.root)
	if err != nil {
		return "", classify(err, rel)
	}
	return scoped, nil
}

// Open resolves rel and opens it for reading.
func (d Dir) Open(rel string) (*File, error) {
	full, err := d.Resolve(rel)
	if err != nil {
		return nil, err
	}
	return OpenFile(full)
}

// File is an open regular file. The caller closes it.
type File struct {
	*os.File
	Size    int64
	ModTime time.Time
}

// OpenFile opens a regular file by path.
func OpenFile(name string) (*File, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, classify(err, name)
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, classify(err, name)
	}
	if !st.Mode().IsRegular() {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %q is not a regular file", ErrNotFound, name)
	}
	return &File{File: f, Size: st.Size(), ModTime: st.ModTime()}, nil
}

// IsRegularFile reports whether name can be opened as a regular file.
func IsRegularFile(name string) bool {
	f, err := OpenFile(name)
	if err != nil {
		return false
	}
	_ = f.Close()
	return true
}

func classify(err error, name string) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %q: %v", ErrUnreadable, name, err)
	}
	// A file used as a directory segment.
	if errors.Is(err, syscall.ENOTDIR) {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return fmt.Errorf("%w: %q: %v", ErrUnreadable, name, err)
}

func within(base, target string) bool {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}
