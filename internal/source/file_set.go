package source

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"

	"fortio.org/safecast"
)

// FileSet owns the source files of one compilation.
type FileSet struct {
	files []File
	index map[string]FileID // path -> последняя версия
}

func NewFileSet() *FileSet {
	return &FileSet{index: make(map[string]FileID)}
}

// Add stores normalized content and returns a fresh FileID, even when the
// path is already known.
func (fs *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	n, err := safecast.Conv[uint32](len(fs.files))
	if err != nil {
		panic(fmt.Errorf("len files overflow: %w", err))
	}
	id := FileID(n)
	norm := normalizePath(path)
	fs.files = append(fs.files, File{
		ID:      id,
		Path:    norm,
		Content: content,
		LineIdx: buildLineIndex(content),
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	})
	fs.index[norm] = id
	return id
}

// Load reads a file from disk, strips a BOM and normalizes CRLF.
func (fs *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return fs.AddNormalized(path, content, 0), nil
}

// AddNormalized strips a BOM, normalizes CRLF, and adds the result.
func (fs *FileSet) AddNormalized(path string, content []byte, flags FileFlags) FileID {
	content, hadBOM := removeBOM(content)
	content, hadCRLF := normalizeCRLF(content)
	if hadBOM {
		flags |= FileHadBOM
	}
	if hadCRLF {
		flags |= FileNormalizedCRLF
	}
	return fs.Add(path, content, flags)
}

// AddVirtual adds in-memory content such as stdin.
func (fs *FileSet) AddVirtual(name string, content []byte) FileID {
	return fs.AddNormalized(name, content, FileVirtual)
}

func (fs *FileSet) Get(id FileID) *File { return &fs.files[id] }

// GetLatest returns the newest FileID loaded for path.
func (fs *FileSet) GetLatest(path string) (FileID, bool) {
	id, ok := fs.index[normalizePath(path)]
	return id, ok
}

// Resolve converts a span into line/column positions.
func (fs *FileSet) Resolve(span Span) (start, end LineCol) {
	f := &fs.files[span.File]
	return toLineCol(f.LineIdx, span.Start), toLineCol(f.LineIdx, span.End)
}

// GetLine returns line lineNum (1-based) without its newline, or "".
func (f *File) GetLine(lineNum uint32) string {
	if lineNum == 0 {
		return ""
	}
	n, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("content length overflow: %w", err))
	}
	idx := int(lineNum) - 1
	var start uint32
	if idx > 0 {
		if idx-1 >= len(f.LineIdx) {
			return ""
		}
		start = f.LineIdx[idx-1] + 1
	}
	end := n
	if idx < len(f.LineIdx) {
		end = f.LineIdx[idx]
	}
	if start > n || start > end {
		return ""
	}
	return string(f.Content[start:end])
}

// DisplayPath returns the path relative to the working directory when that
// is shorter.
func (f *File) DisplayPath() string {
	if f.Flags&FileVirtual != 0 || !filepath.IsAbs(f.Path) {
		return f.Path
	}
	wd, err := os.Getwd()
	if err != nil {
		return f.Path
	}
	rel, err := filepath.Rel(wd, f.Path)
	if err != nil || len(rel) >= len(f.Path) {
		return f.Path
	}
	return filepath.ToSlash(rel)
}
