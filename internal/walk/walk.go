// Package walk enumerates the regular files of a source tree.
//
// Files are visited in lexical order, so two walks over an unchanged tree
// produce the same sequence of callbacks.
package walk

import (
	"io/fs"
	"os"
	"path/filepath"
)

// Files calls fn for every regular file under root, descending into
// subdirectories. A root that is not a directory is passed to fn as is.
// The first error returned by fn stops the walk and is returned.
func Files(root string, fn func(path string) error) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fn(root)
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() {
			// Symlinks are followed once; anything else is skipped.
			info, err := os.Stat(path)
			if err != nil || !info.Mode().IsRegular() {
				return nil
			}
		}
		return fn(path)
	})
}

// Rel is filepath.Rel with slash separators, for keys and log fields.
func Rel(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
