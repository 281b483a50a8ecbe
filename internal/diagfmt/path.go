package diagfmt

import (
	"path/filepath"

	"dlc/internal/source"
)

func displayPath(f *source.File, mode PathMode) string {
	switch mode {
	case PathModeAbsolute:
		return f.Path
	case PathModeBasename:
		return filepath.Base(f.Path)
	default:
		return f.DisplayPath()
	}
}
