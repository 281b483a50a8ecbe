// Package dis models a program for the dataflow execution engine.
//
// Instructions live in numbered chunks and are addressed by a key inside
// their chunk. Chunk 0 holds context instructions (sinks, calls, switches),
// chunk 1 holds operations. Keys 0 and 1 of chunk 0 are the program start
// and stop instructions, which the engine provides itself.
package dis

import (
	"fmt"
	"strings"
)

const (
	ChunkContext = 0
	ChunkOps     = 1
)

// Start and Stop are the engine-provided entry and exit instructions.
var (
	Start = Addr{Chunk: ChunkContext, Key: 0}
	Stop  = Addr{Chunk: ChunkContext, Key: 1}
)

// Addr is the (chunk, key) address of an instruction.
type Addr struct {
	Chunk int
	Key   int
}

func (a Addr) String() string { return fmt.Sprintf("%d %d", a.Chunk, a.Key) }

type LineKind uint8

const (
	LineInst LineKind = iota
	LineLink
	LineLiteral
	LineComment
	LineBlank
)

// Inst is one instruction: an opcode with textual operands.
type Inst struct {
	Addr Addr
	Op   string
	Args []string
}

// Link forwards output port SrcPort of Src into input port DstPort of Dst.
type Link struct {
	Src     Addr
	SrcPort int
	Dst     Addr
	DstPort int
}

// Literal feeds a constant into input port Port of Dst.
type Literal struct {
	Value string
	Dst   Addr
	Port  int
}

// Line is one entry of the listing.
type Line struct {
	Kind    LineKind
	Indent  int
	Inst    Inst
	Link    Link
	Literal Literal
	Comment string
}

// Program accumulates a listing. The zero value is not usable; see NewProgram.
type Program struct {
	// Inputs is the number of values the start instruction emits.
	Inputs int

	keys   []int
	lines  []Line
	insts  map[Addr]int // address -> index in lines
	indent int
}

// NewProgram returns an empty program taking the given number of inputs.
func NewProgram(inputs int) *Program {
	return &Program{
		Inputs: inputs,
		keys:   []int{2, 0},
		insts:  make(map[Addr]int),
	}
}

// CurrentKey returns the key the next instruction in chunk will get.
func (p *Program) CurrentKey(chunk int) int {
	p.grow(chunk)
	return p.keys[chunk]
}

func (p *Program) grow(chunk int) {
	if chunk < 0 {
		panic(fmt.Sprintf("dis: negative chunk %d", chunk))
	}
	for len(p.keys) <= chunk {
		p.keys = append(p.keys, 0)
	}
}

// AddInstruction appends an instruction to chunk and returns its address.
// Operands are formatted with %v.
func (p *Program) AddInstruction(chunk int, op string, args ...any) Addr {
	p.grow(chunk)
	addr := Addr{Chunk: chunk, Key: p.keys[chunk]}
	p.keys[chunk]++
	strs := make([]string, len(args))
	for i, a := range args {
		strs[i] = fmt.Sprint(a)
	}
	p.insts[addr] = len(p.lines)
	p.lines = append(p.lines, Line{Kind: LineInst, Indent: p.indent, Inst: Inst{Addr: addr, Op: op, Args: strs}})
	return addr
}

// SetArg replaces operand i of the instruction at addr. It is used to patch
// call targets that were not known when the call was emitted.
func (p *Program) SetArg(addr Addr, i int, v any) {
	idx, ok := p.insts[addr]
	if !ok {
		panic(fmt.Sprintf("dis: no instruction at %s", addr))
	}
	args := p.lines[idx].Inst.Args
	if i < 0 || i >= len(args) {
		panic(fmt.Sprintf("dis: operand %d out of range at %s", i, addr))
	}
	args[i] = fmt.Sprint(v)
}

// Instruction returns the instruction at addr.
func (p *Program) Instruction(addr Addr) (Inst, bool) {
	idx, ok := p.insts[addr]
	if !ok {
		return Inst{}, false
	}
	return p.lines[idx].Inst, true
}

// AddLink appends a link line.
func (p *Program) AddLink(src Addr, srcPort int, dst Addr, dstPort int) {
	p.lines = append(p.lines, Line{Kind: LineLink, Indent: p.indent, Link: Link{Src: src, SrcPort: srcPort, Dst: dst, DstPort: dstPort}})
}

// AddLiteral appends a literal attachment line.
func (p *Program) AddLiteral(value string, dst Addr, port int) {
	p.lines = append(p.lines, Line{Kind: LineLiteral, Indent: p.indent, Literal: Literal{Value: value, Dst: dst, Port: port}})
}

// Comment appends a comment line.
func (p *Program) Comment(format string, args ...any) {
	p.lines = append(p.lines, Line{Kind: LineComment, Indent: p.indent, Comment: fmt.Sprintf(format, args...)})
}

// Blank appends an empty line.
func (p *Program) Blank() {
	p.lines = append(p.lines, Line{Kind: LineBlank})
}

// Indent and Dedent change the indentation of following lines.
func (p *Program) Indent() { p.indent++ }
func (p *Program) Dedent() {
	if p.indent > 0 {
		p.indent--
	}
}

// LinkStart feeds every program input into the same port of dst.
func (p *Program) LinkStart(dst Addr) {
	for i := range p.Inputs {
		p.AddLink(Start, i, dst, i)
	}
}

// LinkStop sends the output of src to the stop instruction.
func (p *Program) LinkStop(src Addr) {
	p.AddLink(src, 0, Stop, 0)
}

// Instructions returns every instruction in emission order.
func (p *Program) Instructions() []Inst {
	var out []Inst
	for _, l := range p.lines {
		if l.Kind == LineInst {
			out = append(out, l.Inst)
		}
	}
	return out
}

// Generate renders the listing.
func (p *Program) Generate() string {
	var sb strings.Builder
	for _, l := range p.lines {
		if l.Kind != LineBlank {
			sb.WriteString(strings.Repeat("\t", l.Indent))
		}
		switch l.Kind {
		case LineInst:
			fmt.Fprintf(&sb, "INST %s %s", l.Inst.Addr, l.Inst.Op)
			for _, a := range l.Inst.Args {
				sb.WriteByte(' ')
				sb.WriteString(a)
			}
		case LineLink:
			fmt.Fprintf(&sb, "LINK %s %d -> %s %d", l.Link.Src, l.Link.SrcPort, l.Link.Dst, l.Link.DstPort)
		case LineLiteral:
			fmt.Fprintf(&sb, "LITR %s -> %s %d", l.Literal.Value, l.Literal.Dst, l.Literal.Port)
		case LineComment:
			sb.WriteString("$ ")
			sb.WriteString(l.Comment)
		case LineBlank:
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Trivial renders the single-line program of a parameterless entry
// function that reduces to a constant.
func Trivial(value string) string {
	return "TRIV <= " + value
}
