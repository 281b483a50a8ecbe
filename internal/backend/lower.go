// Package backend lowers an optimized IGR program into a dis.Program.
package backend

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strconv"

	"dlc/internal/dis"
	"dlc/internal/igr"
)

// ErrEntryNotConstant is returned when a parameterless entry function does
// not reduce to a constant.
var ErrEntryNotConstant = errors.New("parameterless entry function is not constant")

// Options controls Lower.
type Options struct {
	// Entry is the entry function; "main" when empty.
	Entry string
	// LinkTo, when set, wires the program inputs straight into this node
	// and its output to the program result instead of calling Entry.
	LinkTo *igr.Node
	// Functions restricts lowering to the named functions. Nil lowers all.
	Functions []string
}

// Result is a lowered program.
type Result struct {
	// Text is the listing, or the single TRIV line.
	Text string
	// Trivial is set when the entry reduced to Value.
	Trivial bool
	Value   igr.Value
	// Program is nil for trivial results.
	Program *dis.Program
}

// Lower converts g into an instruction listing. Structural problems in the
// graph panic with igr.InvariantError.
func Lower(g *igr.Graph, opts Options) (*Result, error) {
	entryName := opts.Entry
	if entryName == "" {
		entryName = "main"
	}

	var inputs int
	if opts.LinkTo != nil {
		inputs = opts.LinkTo.Arity()
	} else {
		entry, err := g.Function(entryName)
		if err != nil {
			return nil, fmt.Errorf("lower: entry: %w", err)
		}
		inputs = entry.Arity()
		if inputs == 0 {
			v, ok := g.ConstantResult(entry)
			if !ok {
				return nil, fmt.Errorf("lower: %s: %w", entryName, ErrEntryNotConstant)
			}
			return &Result{Text: dis.Trivial(v.String()), Trivial: true, Value: v}, nil
		}
	}

	l := &lowerer{
		g:    g,
		p:    dis.NewProgram(inputs),
		syms: newSymbols(),
		link: opts.LinkTo,
	}
	l.subGraphs(opts.Functions)

	if len(l.syms.pending) != 0 {
		missing := make([]string, 0, len(l.syms.pending))
		for name := range l.syms.pending {
			missing = append(missing, name)
		}
		sort.Strings(missing)
		panic(igr.InvariantError{Msg: fmt.Sprintf("lowering: calls to functions never emitted: %v", missing)})
	}

	if l.link != nil {
		l.p.LinkStart(l.syms.getDst(l.link.ID))
		l.p.LinkStop(l.syms.getSrc(l.link.ID))
	} else {
		entry, ok := l.syms.names[entryName]
		if !ok {
			return nil, fmt.Errorf("lower: entry %s was not lowered: %w", entryName, igr.ErrUnknownFunction)
		}
		l.p.Comment("Implicit call to %s", entryName)
		call := l.p.AddInstruction(dis.ChunkContext, "CHN", inputs, 1, entry.Chunk, entry.Key, dis.Stop.Chunk, dis.Stop.Key)
		l.p.LinkStart(call)
	}
	return &Result{Text: l.p.Generate(), Program: l.p}, nil
}

type lowerer struct {
	g    *igr.Graph
	p    *dis.Program
	syms *symbols
	link *igr.Node
}

func (l *lowerer) subGraphs(only []string) {
	v := igr.Visitor{
		Node:          l.node,
		EnterSubGraph: l.enterSubGraph,
		LeaveSubGraph: l.leaveSubGraph,
		EnterCompound: func(*igr.Node) { l.p.Indent() },
		LeaveCompound: func(*igr.Node) { l.p.Dedent() },
	}
	for _, fn := range l.g.Functions() {
		if only != nil && !slices.Contains(only, fn.Name) {
			continue
		}
		l.g.WalkSubGraph(fn.ID, v)
	}
}

func (l *lowerer) enterSubGraph(sg *igr.SubGraph) {
	l.p.Comment("Starting subgraph %s", sg.Name)
	if !sg.IsFunction() {
		return
	}
	in := l.p.AddInstruction(dis.ChunkContext, "SNK")
	out := l.p.AddInstruction(dis.ChunkContext, "RST")
	l.syms.addName(l.p, sg.Name, in)
	l.syms.add(sg.ID, in, out)
}

func (l *lowerer) node(n *igr.Node) {
	switch n.Kind {
	case igr.NodeOp:
		l.operation(n)
	case igr.NodeCall:
		l.call(n)
	case igr.NodeIf:
		l.ifNode(n)
	case igr.NodeFor:
		l.forNode(n)
	default:
		panic(igr.InvariantError{Msg: "lowering: unexpected node " + n.String()})
	}
}

func (l *lowerer) operation(n *igr.Node) {
	var addr dis.Addr
	if n.Op.Code == igr.OpConst {
		addr = l.p.AddInstruction(dis.ChunkContext, "CNS", "<=", n.Op.Const)
	} else {
		addr = l.p.AddInstruction(dis.ChunkOps, "OPR", n.Op.Code, n.Arity())
	}
	l.syms.add(n.ID, addr, addr)
}

// call emits the call and the sink receiving its return value. The callee
// address is patched in once the callee is emitted.
func (l *lowerer) call(n *igr.Node) {
	retKey := l.p.CurrentKey(dis.ChunkContext) + 1
	call := l.p.AddInstruction(dis.ChunkContext, "CHN", n.Arity(), 1, "?", "?", dis.ChunkContext, retKey)
	ret := l.p.AddInstruction(dis.ChunkContext, "SNK")
	l.syms.callTarget(l.p, n.Call.Callee, call)
	l.syms.add(n.ID, ret, call)
}

// ifNode emits a switch choosing between the else (false) and then (true)
// sinks; both branches return into a shared sink.
func (l *lowerer) ifNode(n *igr.Node) {
	key := l.p.CurrentKey(dis.ChunkContext)
	swi := l.p.AddInstruction(dis.ChunkContext, "SWI", dis.ChunkContext, key+2, dis.ChunkContext, key+3)
	ret := l.p.AddInstruction(dis.ChunkContext, "SNK")
	els := l.p.AddInstruction(dis.ChunkContext, "SNK")
	thn := l.p.AddInstruction(dis.ChunkContext, "SNK")

	l.syms.add(n.If.Then, thn, ret)
	l.syms.add(n.If.Else, els, ret)
	l.syms.add(n.ID, ret, swi)
}

// forNode emits a split sending each element to a fresh body context, the
// body sink and reset, and the array merge collecting the results.
func (l *lowerer) forNode(n *igr.Node) {
	key0 := l.p.CurrentKey(dis.ChunkContext)
	key1 := l.p.CurrentKey(dis.ChunkOps)
	spl := l.p.AddInstruction(dis.ChunkOps, "SPL", n.Arity(), dis.ChunkContext, key0, dis.ChunkOps, key1+1)
	snk := l.p.AddInstruction(dis.ChunkContext, "SNK")
	rst := l.p.AddInstruction(dis.ChunkContext, "RST")
	mrg := l.p.AddInstruction(dis.ChunkOps, "OPR", "array", 0)

	l.syms.add(n.For.Body, snk, rst)
	l.syms.add(n.ID, mrg, spl)
}

// leaveSubGraph emits every link and literal of sg. They are deferred to
// here since a source may be emitted after its consumer.
func (l *lowerer) leaveSubGraph(sg *igr.SubGraph) {
	l.p.Blank()
	for i := range sg.Entry {
		l.links(sg.EntryRef(i), &sg.Entry[i])
	}
	for _, id := range sg.Nodes {
		n := l.g.Node(id)
		if n == l.link {
			continue
		}
		l.links(n.OutRef(), &n.Out)
	}
	for _, id := range sg.Nodes {
		l.literals(l.g.Node(id))
	}
	l.exit(sg)
	l.p.Comment("Leaving subgraph %s", sg.Name)
	l.p.Blank()
}

func (l *lowerer) links(from igr.OutRef, out *igr.OutPort) {
	src := l.syms.getSrc(from.Owner)
	for _, t := range out.Targets() {
		if l.link != nil && t.Owner == l.link.ID {
			continue
		}
		l.p.AddLink(src, from.Index, l.syms.getDst(t.Owner), t.Index)
	}
}

func (l *lowerer) literals(n *igr.Node) {
	if n == l.link {
		return
	}
	dst := l.syms.getDst(n.ID)
	for i := range n.In {
		p := &n.In[i]
		switch {
		case p.HasLiteral():
			l.p.AddLiteral(p.Literal().Value.String(), dst, i)
		case !p.Bound():
			panic(igr.InvariantError{Msg: fmt.Sprintf("lowering: %s input %d is unbound", n, i)})
		}
	}
}

// exit handles a literal exit. With an entry port available the value is
// produced by a constant triggered from entry 0, so it only fires when the
// subgraph is entered.
func (l *lowerer) exit(sg *igr.SubGraph) {
	switch {
	case !sg.Exit.Bound():
		panic(igr.InvariantError{Msg: "lowering: exit of " + sg.Name + " is unbound"})
	case !sg.Exit.HasLiteral():
		return
	}
	v := sg.Exit.Literal().Value
	if sg.Arity() == 0 {
		l.p.AddLiteral(v.String(), l.syms.getDst(sg.ID), 0)
		return
	}
	cns := l.p.AddInstruction(dis.ChunkContext, "CNS", "<=", v)
	l.p.AddLink(l.syms.getSrc(sg.ID), 0, cns, 0)
	l.p.AddLink(cns, 0, l.syms.getDst(sg.ID), 0)
}

func idString(id igr.ID) string { return strconv.FormatUint(uint64(id), 10) }
