package igr

// Literal is a constant feeding exactly one input port. Binding a literal
// that is already bound binds an independent clone instead.
type Literal struct {
	Value Value
	Type  Type

	dst InRef
}

// NewLiteral creates an unbound literal typed after its value.
func NewLiteral(v Value) *Literal {
	return &Literal{Value: v, Type: v.Type()}
}

// NewTypedLiteral creates an unbound literal with an explicit type tag.
// An unknown tag falls back to the value's type.
func NewTypedLiteral(v Value, t Type) *Literal {
	if t == TypeUnknown {
		t = v.Type()
	}
	return &Literal{Value: v, Type: t}
}

// Bound reports whether the literal feeds a port.
func (l *Literal) Bound() bool { return l.dst.IsValid() }

// Dest returns the port fed by the literal.
func (l *Literal) Dest() (InRef, bool) { return l.dst, l.dst.IsValid() }

// Clone returns an unbound copy.
func (l *Literal) Clone() *Literal {
	return &Literal{Value: l.Value, Type: l.Type}
}
