package lexer

import (
	"fmt"

	"fortio.org/safecast"

	"dlc/internal/source"
)

// Cursor — байтовая позиция внутри одного файла.
type Cursor struct {
	File *source.File
	Off  uint32
	end  uint32
}

// NewCursor panics when the file does not fit into uint32 offsets.
func NewCursor(f *source.File) Cursor {
	end, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("file %s too large: %w", f.Path, err))
	}
	return Cursor{File: f, end: end}
}

func (c *Cursor) EOF() bool { return c.Off >= c.end }

// Peek возвращает текущий байт или 0 на EOF.
func (c *Cursor) Peek() byte {
	if c.EOF() {
		return 0
	}
	return c.File.Content[c.Off]
}

// Peek2 returns the current and the next byte; ok is false when fewer
// than two bytes remain.
func (c *Cursor) Peek2() (b0, b1 byte, ok bool) {
	if c.Off+1 >= c.end {
		return 0, 0, false
	}
	return c.File.Content[c.Off], c.File.Content[c.Off+1], true
}

// Bump advances by one byte and returns it.
func (c *Cursor) Bump() byte {
	if c.EOF() {
		return 0
	}
	b := c.File.Content[c.Off]
	c.Off++
	return b
}

// Mark запоминает начало фрагмента для SpanFrom.
type Mark uint32

func (c *Cursor) Mark() Mark { return Mark(c.Off) }

func (c *Cursor) SpanFrom(m Mark) source.Span {
	return source.Span{File: c.File.ID, Start: uint32(m), End: c.Off}
}
