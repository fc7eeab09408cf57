package utils

import (
	"path/filepath"

	"github.com/spf13/afero"
)

// Scan lists every file below root as a "/"-separated path relative to root,
// descending into sub-directories.
func Scan(fs afero.Fs, root string) ([]string, error) {
	entries, err := afero.ReadDir(fs, root)
	if err != nil {
		return nil, err
	}

	var result []string
	for _, entry := range entries {
		name := entry.Name()
		if name == "." || name == ".." {
			continue
		}
		if entry.IsDir() {
			children, err := Scan(fs, filepath.Join(root, name))
			if err != nil {
				return nil, err
			}
			for _, child := range children {
				result = append(result, name+"/"+child)
			}
			continue
		}
		result = append(result, name)
	}
	return result, nil
}
