package igr

// Bindable is a source that can feed an input port: an OutRef or a *Literal.
type Bindable interface {
	bindTo(g *Graph, dst InRef)
}

func (r OutRef) bindTo(g *Graph, dst InRef)   { g.Bind(r, dst) }
func (l *Literal) bindTo(g *Graph, dst InRef) { g.BindLiteral(l, dst) }

// In resolves an input port reference.
func (g *Graph) In(r InRef) *InPort {
	if p := g.in(r); p != nil {
		return p
	}
	invariant("input port %d:%d does not exist", r.Owner, r.Index)
	return nil
}

func (g *Graph) in(r InRef) *InPort {
	if n := g.Node(r.Owner); n != nil {
		if r.Index < 0 || r.Index >= len(n.In) {
			return nil
		}
		return &n.In[r.Index]
	}
	if sg := g.SubGraph(r.Owner); sg != nil && r.Index == 0 {
		return &sg.Exit
	}
	return nil
}

// Out resolves an output port reference.
func (g *Graph) Out(r OutRef) *OutPort {
	if p := g.out(r); p != nil {
		return p
	}
	invariant("output port %d:%d does not exist", r.Owner, r.Index)
	return nil
}

func (g *Graph) out(r OutRef) *OutPort {
	if n := g.Node(r.Owner); n != nil {
		if r.Index != 0 {
			return nil
		}
		return &n.Out
	}
	if sg := g.SubGraph(r.Owner); sg != nil {
		if r.Index < 0 || r.Index >= len(sg.Entry) {
			return nil
		}
		return &sg.Entry[r.Index]
	}
	return nil
}

// Connect binds src, an OutRef or a *Literal, to dst.
func (g *Graph) Connect(src Bindable, dst InRef) {
	if src == nil {
		invariant("connect nil source to %d:%d", dst.Owner, dst.Index)
	}
	src.bindTo(g, dst)
}

// Bind makes src the only source of dst, releasing any previous one. The
// destination takes the source's type tag.
func (g *Graph) Bind(src OutRef, dst InRef) {
	out := g.Out(src)
	g.Unbind(dst)
	in := g.In(dst)
	out.add(dst)
	in.src = src
	in.Type = out.Type
}

// BindLiteral makes l the only source of dst. A literal that already feeds
// another port is cloned first; the literal actually bound is returned.
func (g *Graph) BindLiteral(l *Literal, dst InRef) *Literal {
	if l.Bound() {
		l = l.Clone()
	}
	g.Unbind(dst)
	in := g.In(dst)
	l.dst = dst
	in.lit = l
	in.Type = l.Type
	return l
}

// Unbind clears the source of dst on both sides. Sources that were
// already freed are tolerated.
func (g *Graph) Unbind(dst InRef) {
	in := g.In(dst)
	if in.lit != nil {
		in.lit.dst = InRef{}
		in.lit = nil
	}
	if in.src.IsValid() {
		if out := g.out(in.src); out != nil {
			out.remove(dst)
		}
		in.src = OutRef{}
	}
}

// Source returns whatever feeds dst: an OutRef, a *Literal, or nil.
func (g *Graph) Source(dst InRef) Bindable {
	in := g.In(dst)
	switch {
	case in.lit != nil:
		return in.lit
	case in.src.IsValid():
		return in.src
	default:
		return nil
	}
}

// Consumers returns a copy of the fan-out of r.
func (g *Graph) Consumers(r OutRef) []InRef {
	return g.Out(r).Targets()
}

// DetachInputs unbinds every input of a node.
func (g *Graph) DetachInputs(id ID) {
	n := g.mustNode(id)
	for i := range n.In {
		g.Unbind(n.InRef(i))
	}
}

// Retarget moves every consumer of from onto to and returns how many moved.
func (g *Graph) Retarget(from OutRef, to Bindable) int {
	targets := g.Consumers(from)
	for _, dst := range targets {
		g.Connect(to, dst)
	}
	return len(targets)
}

// Delete detaches a node's inputs and removes it. Consumers of its output
// must have been moved elsewhere.
func (g *Graph) Delete(id ID) {
	g.DetachInputs(id)
	g.RemoveNode(id)
}
