package igr

import (
	"errors"
	"fmt"
)

// Validate checks the structural invariants of every registered function:
// binding symmetry, single ownership, bound inputs and exits, literal
// back-references and branch back-references.
func Validate(g *Graph) error {
	if g == nil {
		return nil
	}
	var errs []error
	seen := make(map[ID]ID)
	for _, fn := range g.Functions() {
		if err := validateSubGraph(g, fn, fn.ID, seen); err != nil {
			errs = append(errs, fmt.Errorf("function %s: %w", fn.Name, err))
		}
	}
	return errors.Join(errs...)
}

func validateSubGraph(g *Graph, sg *SubGraph, fn ID, seen map[ID]ID) error {
	var errs []error
	if sg.Func != fn {
		errs = append(errs, fmt.Errorf("%s: func back-reference is %d, want %d", sg.Name, sg.Func, fn))
	}
	for i := range sg.Entry {
		errs = append(errs, validateOut(g, &sg.Entry[i], sg.EntryRef(i), sg.Name))
	}
	errs = append(errs, validateIn(g, &sg.Exit, sg.ExitRef(), sg.Name+" exit"))

	for _, id := range sg.Nodes {
		n := g.Node(id)
		if n == nil {
			errs = append(errs, fmt.Errorf("%s: node %d listed but freed", sg.Name, id))
			continue
		}
		if prev, ok := seen[id]; ok {
			errs = append(errs, fmt.Errorf("%s: node %d also listed in subgraph %d", sg.Name, id, prev))
			continue
		}
		seen[id] = sg.ID
		if n.Owner != sg.ID {
			errs = append(errs, fmt.Errorf("%s: %s owner is %d", sg.Name, n, n.Owner))
		}
		for i := range n.In {
			errs = append(errs, validateIn(g, &n.In[i], n.InRef(i), n.String()))
		}
		errs = append(errs, validateOut(g, &n.Out, n.OutRef(), n.String()))

		if n.Kind == NodeCall && !g.HasFunction(n.Call.Callee) {
			errs = append(errs, fmt.Errorf("%s: %w: %s", n, ErrUnknownFunction, n.Call.Callee))
		}
		if !n.IsCompound() {
			continue
		}
		for _, b := range n.Branches() {
			br := g.SubGraph(b)
			if br == nil {
				errs = append(errs, fmt.Errorf("%s: branch %d freed", n, b))
				continue
			}
			if br.Parent != n.ID {
				errs = append(errs, fmt.Errorf("%s: branch %s parent is %d", n, br.Name, br.Parent))
			}
			if br.Arity() != n.Arity() {
				errs = append(errs, fmt.Errorf("%s: branch %s has %d entries for %d inputs", n, br.Name, br.Arity(), n.Arity()))
			}
			errs = append(errs, validateSubGraph(g, br, fn, seen))
		}
	}
	return errors.Join(errs...)
}

func validateIn(g *Graph, p *InPort, self InRef, what string) error {
	switch {
	case p.lit != nil:
		if p.src.IsValid() {
			return fmt.Errorf("%s in%d: both literal and port source", what, self.Index)
		}
		if p.lit.dst != self {
			return fmt.Errorf("%s in%d: literal points elsewhere", what, self.Index)
		}
	case p.src.IsValid():
		out := g.out(p.src)
		if out == nil {
			return fmt.Errorf("%s in%d: source %d:%d is freed", what, self.Index, p.src.Owner, p.src.Index)
		}
		if !out.Feeds(self) {
			return fmt.Errorf("%s in%d: source %d:%d does not list it", what, self.Index, p.src.Owner, p.src.Index)
		}
	default:
		return fmt.Errorf("%s in%d: unbound", what, self.Index)
	}
	return nil
}

func validateOut(g *Graph, p *OutPort, self OutRef, what string) error {
	var errs []error
	seen := make(map[InRef]struct{}, len(p.targets))
	for _, t := range p.targets {
		if _, dup := seen[t]; dup {
			errs = append(errs, fmt.Errorf("%s out: duplicate target %d:%d", what, t.Owner, t.Index))
		}
		seen[t] = struct{}{}
		in := g.in(t)
		if in == nil {
			errs = append(errs, fmt.Errorf("%s out: target %d:%d is freed", what, t.Owner, t.Index))
			continue
		}
		if in.src != self {
			errs = append(errs, fmt.Errorf("%s out: target %d:%d reads another source", what, t.Owner, t.Index))
		}
	}
	return errors.Join(errs...)
}
