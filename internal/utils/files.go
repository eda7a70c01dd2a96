package utils

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// DocumentExt is the extension of extension model documents.
const DocumentExt = ".json"

// FindDocuments recursively finds all .json files in dir, sorted by path.
// Hidden directories are skipped.
func FindDocuments(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && len(d.Name()) > 1 && d.Name()[0] == '.' {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == DocumentExt {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// ExpandPaths replaces every directory in paths by the documents it
// contains. Other entries, including "-", are kept as they are.
func ExpandPaths(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			out = append(out, p)
			continue
		}
		docs, err := FindDocuments(p)
		if err != nil {
			return nil, err
		}
		out = append(out, docs...)
	}
	return out, nil
}
