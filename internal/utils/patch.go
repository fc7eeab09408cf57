package utils

import (
	"fmt"

	"github.com/spf13/afero"
)

// Patch computes the new content of a file from its current content.
type Patch func(content []byte) ([]byte, error)

// ApplyPatch reads file, applies patch and writes the result back with the
// file's original mode. Nothing is written when patch fails or leaves the
// content unchanged.
func ApplyPatch(fs afero.Fs, file string, patch Patch) error {
	info, err := fs.Stat(file)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", file, err)
	}
	content, err := afero.ReadFile(fs, file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", file, err)
	}

	patched, err := patch(content)
	if err != nil {
		return err
	}
	if string(patched) == string(content) {
		return nil
	}

	if err := afero.WriteFile(fs, file, patched, info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write %s: %w", file, err)
	}
	return nil
}
