package source

type (
	// FileID identifies a file within a FileSet.
	FileID uint32
	// FileFlags encodes how a file was obtained.
	FileFlags uint8
)

const (
	// FileVirtual marks content added from memory (stdin, tests).
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
)

// File is one loaded source file.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32 // offsets of '\n'
	Hash    [32]byte
	Flags   FileFlags
}

// LineCol is a 1-based position.
type LineCol struct {
	Line uint32
	Col  uint32
}
