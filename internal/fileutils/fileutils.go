// Package fileutils provides the file operations shared by every stage:
// deterministic discovery of input files, whole-file reads and atomic
// whole-file writes.
package fileutils

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fjacquet/tering/internal/parsererror"

	"github.com/natefinch/atomic"
)

// FileExists checks if a file exists and is not a directory
func FileExists(filePath string) bool {
	info, err := os.Stat(filePath)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirectoryExists checks if a directory exists
func DirectoryExists(dirPath string) bool {
	info, err := os.Stat(dirPath)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// EnsureDirectoryExists creates a directory (and parents) if it doesn't exist
func EnsureDirectoryExists(dirPath string) error {
	if err := os.MkdirAll(dirPath, 0750); err != nil {
		return &parsererror.FileError{Op: "create directory", Path: dirPath, Err: err}
	}
	return nil
}

// ReadText reads a whole UTF-8 text file.
func ReadText(filePath string) (string, error) {
	data, err := os.ReadFile(filePath) // #nosec G304 -- CLI tool reads user-provided paths
	if err != nil {
		return "", &parsererror.FileError{Op: "read", Path: filePath, Err: err}
	}
	return string(data), nil
}

// WriteFileAtomic replaces filePath with data in one step, creating parent
// directories as needed.
func WriteFileAtomic(filePath string, data []byte) error {
	if err := EnsureDirectoryExists(filepath.Dir(filePath)); err != nil {
		return err
	}
	if err := atomic.WriteFile(filePath, strings.NewReader(string(data))); err != nil {
		return &parsererror.FileError{Op: "write", Path: filePath, Err: err}
	}
	return nil
}

// WriteTextAtomic is WriteFileAtomic for strings.
func WriteTextAtomic(filePath, text string) error {
	return WriteFileAtomic(filePath, []byte(text))
}

// ListFiles returns the regular files below root whose extension (compared
// case-insensitively) is one of exts, sorted by path. With recursive false
// only root itself is listed.
func ListFiles(root string, recursive bool, exts ...string) ([]string, error) {
	if !DirectoryExists(root) {
		return nil, &parsererror.FileError{Op: "list", Path: root, Err: fs.ErrNotExist}
	}

	want := make(map[string]bool, len(exts))
	for _, ext := range exts {
		want[strings.ToLower(ext)] = true
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if want[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, &parsererror.FileError{Op: "list", Path: root, Err: err}
	}

	sort.Strings(files)
	return files, nil
}

// ListTextFiles lists the .txt files below root.
func ListTextFiles(root string, recursive bool) ([]string, error) {
	return ListFiles(root, recursive, ".txt")
}

// Stem returns the base name of path without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
