package igr

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// Graph is a whole program: named top-level functions plus an arena of
// every node and subgraph, indexed by ID.
type Graph struct {
	slots []slot
	funcs map[string]ID
	order []ID
}

type slot struct {
	node *Node
	sub  *SubGraph
}

// New returns an empty graph. Slot 0 is reserved for NoID.
func New() *Graph {
	return &Graph{
		slots: make([]slot, 1, 64),
		funcs: make(map[string]ID),
	}
}

// NewID allocates a fresh ID.
func (g *Graph) NewID() ID {
	raw, err := safecast.Conv[uint32](len(g.slots))
	if err != nil {
		panic(fmt.Errorf("igr: id overflow: %w", err))
	}
	g.slots = append(g.slots, slot{})
	return ID(raw)
}

// Node returns the live node with the given ID, or nil.
func (g *Graph) Node(id ID) *Node {
	if int(id) >= len(g.slots) {
		return nil
	}
	return g.slots[id].node
}

// SubGraph returns the live subgraph with the given ID, or nil.
func (g *Graph) SubGraph(id ID) *SubGraph {
	if int(id) >= len(g.slots) {
		return nil
	}
	return g.slots[id].sub
}

func (g *Graph) mustNode(id ID) *Node {
	n := g.Node(id)
	if n == nil {
		invariant("node %d does not exist", id)
	}
	return n
}

func (g *Graph) mustSubGraph(id ID) *SubGraph {
	sg := g.SubGraph(id)
	if sg == nil {
		invariant("subgraph %d does not exist", id)
	}
	return sg
}

// NodeCount returns the number of live nodes.
func (g *Graph) NodeCount() int {
	count := 0
	for i := range g.slots {
		if g.slots[i].node != nil {
			count++
		}
	}
	return count
}

// NewSubGraph allocates a detached top-level subgraph. It becomes a
// function once registered with AddFunction.
func (g *Graph) NewSubGraph(name string) *SubGraph {
	id := g.NewID()
	sg := &SubGraph{ID: id, Name: name, Func: id}
	g.slots[id].sub = sg
	return sg
}

// AddFunction registers sg under its name.
func (g *Graph) AddFunction(sg *SubGraph) error {
	if _, ok := g.funcs[sg.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateFunction, sg.Name)
	}
	sg.Parent = NoID
	sg.Func = sg.ID
	g.funcs[sg.Name] = sg.ID
	g.order = append(g.order, sg.ID)
	return nil
}

// RemoveFunction unregisters a function and frees its body.
func (g *Graph) RemoveFunction(name string) error {
	id, ok := g.funcs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownFunction, name)
	}
	delete(g.funcs, name)
	if i := slices.Index(g.order, id); i >= 0 {
		g.order = slices.Delete(g.order, i, i+1)
	}
	g.freeSubGraph(id)
	return nil
}

// Function looks a function up by name.
func (g *Graph) Function(name string) (*SubGraph, error) {
	id, ok := g.funcs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFunction, name)
	}
	return g.mustSubGraph(id), nil
}

// HasFunction reports whether name is registered.
func (g *Graph) HasFunction(name string) bool {
	_, ok := g.funcs[name]
	return ok
}

// Functions returns the registered functions in registration order.
func (g *Graph) Functions() []*SubGraph {
	out := make([]*SubGraph, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.mustSubGraph(id))
	}
	return out
}

// FunctionNames returns the registered names in registration order.
func (g *Graph) FunctionNames() []string {
	out := make([]string, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.mustSubGraph(id).Name)
	}
	return out
}

// FuncOf returns the top-level function containing the subgraph id.
func (g *Graph) FuncOf(id ID) *SubGraph {
	return g.mustSubGraph(g.mustSubGraph(id).Func)
}

func (g *Graph) addNode(owner ID, kind NodeKind, arity int) *Node {
	sg := g.mustSubGraph(owner)
	id := g.NewID()
	n := &Node{ID: id, Owner: owner, Kind: kind, In: make([]InPort, arity)}
	g.slots[id].node = n
	sg.Nodes = append(sg.Nodes, id)
	return n
}

// AddOperation appends an operation node to owner.
func (g *Graph) AddOperation(owner ID, code string, arity int) *Node {
	n := g.addNode(owner, NodeOp, arity)
	n.Op.Code = code
	return n
}

// AddConstant appends an OpConst node producing v. Its single input must
// be fed by whatever should trigger it.
func (g *Graph) AddConstant(owner ID, v Value) *Node {
	n := g.addNode(owner, NodeOp, 1)
	n.Op = OpNode{Code: OpConst, Const: v}
	n.Out.Type = v.Type()
	return n
}

// AddCall appends a call node. A call to the function containing owner is
// marked recursive, and so is that function.
func (g *Graph) AddCall(owner ID, callee string, arity int) *Node {
	n := g.addNode(owner, NodeCall, arity)
	n.Call.Callee = callee
	fn := g.FuncOf(owner)
	if fn.Name == callee {
		n.Call.Recursive = true
		fn.Recursive = true
	}
	return n
}

// AddIf appends an if node with a condition input and empty then/else
// branches, each with one entry port matching the condition.
func (g *Graph) AddIf(owner ID) *Node {
	n := g.addNode(owner, NodeIf, 1)
	n.If.Then = g.newBranch(n, fmt.Sprintf("if_then_%d", n.ID)).ID
	n.If.Else = g.newBranch(n, fmt.Sprintf("if_else_%d", n.ID)).ID
	return n
}

// AddFor appends a for node with an iterable input and an empty body with
// one entry port receiving the element.
func (g *Graph) AddFor(owner ID) *Node {
	n := g.addNode(owner, NodeFor, 1)
	n.For.Body = g.newBranch(n, fmt.Sprintf("for_body_%d", n.ID)).ID
	return n
}

func (g *Graph) newBranch(n *Node, name string) *SubGraph {
	id := g.NewID()
	sg := &SubGraph{
		ID:     id,
		Name:   name,
		Parent: n.ID,
		Func:   g.mustSubGraph(n.Owner).Func,
	}
	for range n.In {
		sg.AddParam(TypeUnknown)
	}
	g.slots[id].sub = sg
	return sg
}

// AddCompoundPort adds an input to a compound node and a matching entry
// port to each of its branches. It returns the new input index.
func (g *Graph) AddCompoundPort(id ID) int {
	n := g.mustNode(id)
	if !n.IsCompound() {
		invariant("AddCompoundPort on %s", n)
	}
	n.In = append(n.In, InPort{})
	for _, b := range n.Branches() {
		g.mustSubGraph(b).AddParam(TypeUnknown)
	}
	return len(n.In) - 1
}

// RemoveNode drops a node from its subgraph and frees it together with any
// branch bodies. Callers unbind its ports.
func (g *Graph) RemoveNode(id ID) {
	n := g.mustNode(id)
	if sg := g.SubGraph(n.Owner); sg != nil {
		sg.RemoveNode(id)
	}
	g.freeNode(id)
}

func (g *Graph) freeNode(id ID) {
	n := g.Node(id)
	if n == nil {
		return
	}
	if n.Kind == NodeIf || n.Kind == NodeFor {
		for _, b := range n.Branches() {
			g.freeSubGraph(b)
		}
	}
	g.slots[id] = slot{}
}

func (g *Graph) freeSubGraph(id ID) {
	sg := g.SubGraph(id)
	if sg == nil {
		return
	}
	for _, nid := range sg.Nodes {
		g.freeNode(nid)
	}
	g.slots[id] = slot{}
}
