package igr

import "slices"

// BodyCopy describes a subgraph body copied into another subgraph.
type BodyCopy struct {
	// Params[i] lists the copied input ports that read entry port i of the
	// source subgraph.
	Params [][]InRef
	// Result is what fed the source exit, translated into the copy: an
	// OutRef of a copied node or a literal. Nil when the exit read an entry
	// port directly, see ResultParam.
	Result Bindable
	// ResultParam is the entry index the source exit read, or -1.
	ResultParam int
	// Nodes maps every source node, nested ones included, to its copy.
	Nodes map[ID]ID
}

// CopyBody deep-copies the nodes of subgraph from into subgraph into.
// Entry ports of from are not recreated; their consumers are reported in
// Params so the caller can bind whatever replaces them.
func (g *Graph) CopyBody(from, into ID) *BodyCopy {
	src := g.mustSubGraph(from)
	bc := &BodyCopy{
		Params:      make([][]InRef, len(src.Entry)),
		ResultParam: -1,
		Nodes:       make(map[ID]ID),
	}
	g.copyNodes(from, into, bc.Nodes, func(idx int, dst InRef) {
		bc.Params[idx] = append(bc.Params[idx], dst)
	})

	exit := &src.Exit
	switch {
	case exit.lit != nil:
		bc.Result = exit.lit
	case exit.src.Owner == from:
		bc.ResultParam = exit.src.Index
	case exit.src.IsValid():
		bc.Result = OutRef{Owner: bc.mapped(exit.src.Owner)}
	default:
		invariant("copy of %s: exit is unbound", src.Name)
	}
	return bc
}

func (bc *BodyCopy) mapped(id ID) ID {
	c, ok := bc.Nodes[id]
	if !ok {
		invariant("copy: node %d is outside the copied body", id)
	}
	return c
}

func (g *Graph) copyNodes(from, into ID, nodes map[ID]ID, onEntry func(int, InRef)) {
	ids := slices.Clone(g.mustSubGraph(from).Nodes)
	for _, id := range ids {
		n := g.mustNode(id)
		c := g.cloneNode(n, into)
		nodes[id] = c.ID
		if !n.IsCompound() {
			continue
		}
		branches := c.Branches()
		for i, b := range n.Branches() {
			nb := branches[i]
			g.copyBranch(b, nb, nodes)
		}
	}
	for _, id := range ids {
		n := g.mustNode(id)
		c := nodes[id]
		for i := range n.In {
			g.copyInput(&n.In[i], from, InRef{Owner: c, Index: i}, nodes, onEntry)
		}
	}
}

func (g *Graph) copyBranch(from, into ID, nodes map[ID]ID) {
	src := g.mustSubGraph(from)
	dst := g.mustSubGraph(into)
	for i := range src.Entry {
		dst.Entry[i].Type = src.Entry[i].Type
	}
	bindEntry := func(idx int, in InRef) {
		g.Bind(OutRef{Owner: into, Index: idx}, in)
	}
	g.copyNodes(from, into, nodes, bindEntry)
	g.copyInput(&src.Exit, from, dst.ExitRef(), nodes, bindEntry)
}

func (g *Graph) copyInput(p *InPort, from ID, dst InRef, nodes map[ID]ID, onEntry func(int, InRef)) {
	switch {
	case p.lit != nil:
		g.BindLiteral(NewTypedLiteral(p.lit.Value, p.lit.Type), dst)
	case !p.src.IsValid():
		return
	case p.src.Owner == from:
		onEntry(p.src.Index, dst)
	default:
		c, ok := nodes[p.src.Owner]
		if !ok {
			invariant("copy: edge from %d crosses a subgraph boundary", p.src.Owner)
		}
		g.Bind(OutRef{Owner: c, Index: p.src.Index}, dst)
	}
}

func (g *Graph) cloneNode(n *Node, into ID) *Node {
	var c *Node
	switch n.Kind {
	case NodeOp:
		c = g.AddOperation(into, n.Op.Code, n.Arity())
		c.Op.Const = n.Op.Const
	case NodeCall:
		c = g.AddCall(into, n.Call.Callee, n.Arity())
	case NodeIf:
		c = g.AddIf(into)
		for c.Arity() < n.Arity() {
			g.AddCompoundPort(c.ID)
		}
	case NodeFor:
		c = g.AddFor(into)
		for c.Arity() < n.Arity() {
			g.AddCompoundPort(c.ID)
		}
	default:
		invariant("clone of %s", n)
	}
	c.Out.Type = n.Out.Type
	return c
}

// ConstantResult reports the value a subgraph always produces when it is
// known at compile time: the exit is a literal, or is fed by an OpConst node.
func (g *Graph) ConstantResult(sg *SubGraph) (Value, bool) {
	if lit := sg.Exit.lit; lit != nil {
		return lit.Value, true
	}
	if !sg.Exit.src.IsValid() {
		return Value{}, false
	}
	n := g.Node(sg.Exit.src.Owner)
	if n == nil || n.Kind != NodeOp || n.Op.Code != OpConst {
		return Value{}, false
	}
	return n.Op.Const, true
}
