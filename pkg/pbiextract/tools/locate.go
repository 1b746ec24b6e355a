// Package tools drives the external pbi-tools executables that convert a
// report container into JSON artifacts.
package tools

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Default executable names.
const (
	DefaultExtractTool = "pbi-tools.exe"
	DefaultCompileTool = "pbi-tools.core.exe"
)

// ErrToolNotFound indicates an executable is absent from every search directory.
var ErrToolNotFound = errors.New("conversion tool not found")

// DefaultSearchDirs returns the user's Downloads and Desktop folders
// followed by extra.
func DefaultSearchDirs(extra ...string) []string {
	var dirs []string
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, "Downloads"), filepath.Join(home, "Desktop"))
	}
	return append(dirs, extra...)
}

// Locate walks each directory in order and returns the first regular file
// named exactly name. Unreadable subtrees are skipped.
func Locate(name string, dirs []string) (string, error) {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		found, err := locateIn(name, dir)
		if err != nil {
			return "", err
		}
		if found != "" {
			return found, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrToolNotFound, name)
}

func locateIn(name, root string) (string, error) {
	var found string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && p != root {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() && d.Name() == name {
			found = p
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("search %s: %w", root, err)
	}
	return found, nil
}
