package igr

import "slices"

// InPort accepts at most one source: an output port or a literal.
type InPort struct {
	Type Type

	src OutRef
	lit *Literal
}

// Bound reports whether the port has a source.
func (p *InPort) Bound() bool { return p.src.IsValid() || p.lit != nil }

// Source returns the output port feeding p, if it is not a literal.
func (p *InPort) Source() (OutRef, bool) { return p.src, p.src.IsValid() }

// Literal returns the literal feeding p, or nil.
func (p *InPort) Literal() *Literal { return p.lit }

// HasLiteral reports whether p is fed by a literal.
func (p *InPort) HasLiteral() bool { return p.lit != nil }

// OutPort fans out to an ordered set of input ports.
type OutPort struct {
	Type Type

	targets []InRef
}

// Targets returns a copy of the fan-out in binding order.
func (p *OutPort) Targets() []InRef { return slices.Clone(p.targets) }

// Len returns the number of consumers.
func (p *OutPort) Len() int { return len(p.targets) }

// Bound reports whether anything consumes the port.
func (p *OutPort) Bound() bool { return len(p.targets) != 0 }

// Feeds reports whether r is in the fan-out.
func (p *OutPort) Feeds(r InRef) bool { return slices.Contains(p.targets, r) }

func (p *OutPort) add(r InRef) {
	if !p.Feeds(r) {
		p.targets = append(p.targets, r)
	}
}

func (p *OutPort) remove(r InRef) {
	if i := slices.Index(p.targets, r); i >= 0 {
		p.targets = slices.Delete(p.targets, i, i+1)
	}
}
