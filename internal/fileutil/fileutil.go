// Package fileutil provides common file operations.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrSymlinkNotSupported indicates the destination is a symlink.
var ErrSymlinkNotSupported = errors.New("symlinks are not supported")

// ErrOutsideRoot indicates a relative path escapes the sink root.
var ErrOutsideRoot = errors.New("path escapes output root")

// WriteFileAtomic writes data to path through a temp file in the same
// directory and a rename, so readers never see a partial file.
// Parent directories are created as needed.
// Returns ErrSymlinkNotSupported if path is an existing symlink.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("%s: %w", path, ErrSymlinkNotSupported)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create parent directories: %w", err)
	}

	// Create temp file in the same directory for atomic rename
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	// Ensure cleanup on any failure
	success := false
	defer func() {
		if !success {
			tmpFile.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	// Sync to ensure data is written to disk
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}

	// Close temp file before rename
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("set permissions: %w", err)
	}

	// Atomic rename to destination
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename to destination: %w", err)
	}

	success = true
	return nil
}

// DirSink writes generated files below a root directory.
type DirSink struct {
	// Root is the directory relative paths are resolved against.
	Root string

	// Written records every path written, in order.
	Written []string
}

// NewDirSink returns a DirSink rooted at root.
func NewDirSink(root string) *DirSink {
	return &DirSink{Root: root}
}

// Write atomically writes data to the slash-separated path rel under Root.
func (s *DirSink) Write(rel string, data []byte) error {
	path, err := s.Resolve(rel)
	if err != nil {
		return err
	}

	if err := WriteFileAtomic(path, data, 0644); err != nil {
		return err
	}

	s.Written = append(s.Written, path)
	return nil
}

// Resolve returns the filesystem path of rel under Root.
// Returns ErrOutsideRoot if rel is absolute or climbs out of Root.
func (s *DirSink) Resolve(rel string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s: %w", rel, ErrOutsideRoot)
	}
	return filepath.Join(s.Root, clean), nil
}
