// Package scope resolves names while a function body is being built and
// threads values captured from enclosing scopes into branch subgraphs as
// explicit compound inputs.
package scope

import (
	"dlc/internal/igr"
)

// Resolver tracks the nesting of function and branch bodies under
// construction. It is not safe for concurrent use.
type Resolver struct {
	g      *igr.Graph
	levels []*level
}

type level struct {
	sg     *igr.SubGraph
	node   *igr.Node // compound owning sg; nil for a function body
	scopes []map[string]igr.Bindable
	// captured maps names threaded into sg to their entry port.
	captured map[string]igr.OutRef
}

// New returns a resolver over g.
func New(g *igr.Graph) *Resolver {
	return &Resolver{g: g}
}

// EnterFunction starts a new function body. Any previous nesting is dropped.
func (r *Resolver) EnterFunction(sg *igr.SubGraph) {
	r.levels = r.levels[:0]
	r.levels = append(r.levels, &level{sg: sg, scopes: []map[string]igr.Bindable{{}}})
}

// Enter descends into a branch body of a compound node.
func (r *Resolver) Enter(branch *igr.SubGraph) {
	node := r.g.Node(branch.Parent)
	if node == nil {
		panic(igr.InvariantError{Msg: "scope: Enter on a subgraph without compound parent: " + branch.Name})
	}
	r.levels = append(r.levels, &level{
		sg:       branch,
		node:     node,
		scopes:   []map[string]igr.Bindable{{}},
		captured: map[string]igr.OutRef{},
	})
}

// Leave returns to the enclosing body.
func (r *Resolver) Leave() {
	if len(r.levels) == 0 {
		panic(igr.InvariantError{Msg: "scope: Leave without Enter"})
	}
	r.levels = r.levels[:len(r.levels)-1]
}

// Depth returns the number of open bodies.
func (r *Resolver) Depth() int { return len(r.levels) }

// Current returns the innermost body under construction.
func (r *Resolver) Current() *igr.SubGraph {
	if len(r.levels) == 0 {
		return nil
	}
	return r.top().sg
}

func (r *Resolver) top() *level { return r.levels[len(r.levels)-1] }

// PushScope opens a let scope in the current body.
func (r *Resolver) PushScope() {
	l := r.top()
	l.scopes = append(l.scopes, map[string]igr.Bindable{})
}

// PopScope closes the innermost let scope.
func (r *Resolver) PopScope() {
	l := r.top()
	if len(l.scopes) == 1 {
		panic(igr.InvariantError{Msg: "scope: PopScope on the body scope"})
	}
	l.scopes = l.scopes[:len(l.scopes)-1]
}

// Declare binds name in the innermost scope. It reports false when the
// name is already declared in that same scope.
func (r *Resolver) Declare(name string, src igr.Bindable) bool {
	l := r.top()
	inner := l.scopes[len(l.scopes)-1]
	if _, dup := inner[name]; dup {
		return false
	}
	inner[name] = src
	return true
}

// Lookup resolves name from the current body. A name found in an
// enclosing body is threaded through every compound node in between; the
// returned source is then an entry port of the current body. Literals are
// returned as is since every use binds its own copy.
func (r *Resolver) Lookup(name string) (igr.Bindable, bool) {
	if len(r.levels) == 0 {
		return nil, false
	}
	return r.lookup(len(r.levels)-1, name)
}

func (r *Resolver) lookup(depth int, name string) (igr.Bindable, bool) {
	l := r.levels[depth]
	for i := len(l.scopes) - 1; i >= 0; i-- {
		if src, ok := l.scopes[i][name]; ok {
			return src, true
		}
	}
	if l.node == nil {
		return nil, false
	}
	if src, ok := l.captured[name]; ok {
		return src, true
	}
	outer, ok := r.lookup(depth-1, name)
	if !ok {
		return nil, false
	}
	ref, isPort := outer.(igr.OutRef)
	if !isPort {
		return outer, true
	}
	idx := r.thread(l.node, ref)
	src := l.sg.EntryRef(idx)
	l.captured[name] = src
	return src, true
}

// thread returns the compound input fed by outer, adding one when needed.
// Input 0 is the condition or iterable and is never reused for captures.
func (r *Resolver) thread(node *igr.Node, outer igr.OutRef) int {
	for i := 1; i < node.Arity(); i++ {
		if src, ok := node.In[i].Source(); ok && src == outer {
			return i
		}
	}
	idx := r.g.AddCompoundPort(node.ID)
	r.g.Bind(outer, node.InRef(idx))
	for _, b := range node.Branches() {
		branch := r.g.SubGraph(b)
		branch.Entry[idx].Type = node.In[idx].Type
	}
	return idx
}
