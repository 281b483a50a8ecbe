package dis

import (
	"strings"
	"testing"
)

func TestKeysStartAfterReservedSlots(t *testing.T) {
	p := NewProgram(1)
	if got := p.CurrentKey(ChunkContext); got != 2 {
		t.Fatalf("chunk 0 starts at %d, want 2", got)
	}
	a := p.AddInstruction(ChunkContext, "SNK")
	b := p.AddInstruction(ChunkOps, "OPR", "add", 2)
	c := p.AddInstruction(ChunkContext, "RST")
	if a != (Addr{0, 2}) || b != (Addr{1, 0}) || c != (Addr{0, 3}) {
		t.Fatalf("addresses %v %v %v", a, b, c)
	}
	if got := p.CurrentKey(3); got != 0 {
		t.Fatalf("fresh chunk starts at %d", got)
	}
}

func TestGenerate(t *testing.T) {
	p := NewProgram(2)
	p.Comment("function %s", "f")
	snk := p.AddInstruction(ChunkContext, "SNK")
	p.Indent()
	op := p.AddInstruction(ChunkOps, "OPR", "add", 2)
	p.Dedent()
	p.AddLink(snk, 0, op, 0)
	p.AddLiteral("3", op, 1)
	p.Blank()
	p.LinkStart(snk)
	p.LinkStop(op)

	want := strings.Join([]string{
		"$ function f",
		"INST 0 2 SNK",
		"\tINST 1 0 OPR add 2",
		"LINK 0 2 0 -> 1 0 0",
		"LITR 3 -> 1 0 1",
		"",
		"LINK 0 0 0 -> 0 2 0",
		"LINK 0 0 1 -> 0 2 1",
		"LINK 1 0 0 -> 0 1 0",
		"",
	}, "\n")
	if got := p.Generate(); got != want {
		t.Fatalf("Generate:\n%s\nwant:\n%s", got, want)
	}
}

func TestSetArgPatchesOperand(t *testing.T) {
	p := NewProgram(0)
	call := p.AddInstruction(ChunkContext, "CHN", 1, 1, "?", "?", 0, 3)
	p.SetArg(call, 2, 0)
	p.SetArg(call, 3, 7)
	inst, ok := p.Instruction(call)
	if !ok || strings.Join(inst.Args, " ") != "1 1 0 7 0 3" {
		t.Fatalf("patched args = %v", inst.Args)
	}
	defer func() {
		if recover() == nil {
			t.Fatalf("SetArg on a missing address did not panic")
		}
	}()
	p.SetArg(Addr{5, 5}, 0, 1)
}
