package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// OutputPath returns the sibling output file for input: the source
// extension, if any, replaced by ext.
func OutputPath(input, ext string) string {
	if ext == "" {
		ext = ".dis"
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	if base+ext == input {
		return input + ext
	}
	return base + ext
}

// WriteOutput writes the lowered listing to path, adding a final newline.
func WriteOutput(path string, res *Result) error {
	if res == nil || res.Lowered == nil {
		return fmt.Errorf("nothing to write for %s", path)
	}
	text := res.Lowered.Text
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	if err := os.WriteFile(path, []byte(text), 0o600); err != nil {
		return fmt.Errorf("failed to write %q: %w", path, err)
	}
	return nil
}
