// Package eval interprets IGR programs directly. It serves as the native
// constant-folding evaluator and as the "native" run engine.
//
// The opcode semantics here approximate the dataflow engine; programs that
// depend on engine-specific corner cases (integer overflow, string
// formatting of floats) may observe different results.
package eval

import (
	"context"
	"errors"
	"fmt"

	"dlc/internal/igr"
)

var (
	// ErrUnsupported is returned for opcodes without a native implementation.
	ErrUnsupported = errors.New("unsupported opcode")
	// ErrStepLimit is returned when evaluation exceeds its step or depth budget.
	ErrStepLimit = errors.New("evaluation step limit exceeded")
)

// RuntimeError is a failure of the evaluated program itself.
type RuntimeError struct {
	Op  string
	Msg string
}

func (e *RuntimeError) Error() string { return e.Op + ": " + e.Msg }

func runtimeErr(op, format string, args ...any) error {
	return &RuntimeError{Op: op, Msg: fmt.Sprintf(format, args...)}
}

const (
	DefaultMaxSteps = 1_000_000
	DefaultMaxDepth = 10_000
)

// Machine evaluates nodes and functions of one graph. A Machine is not
// safe for concurrent use; the step counter is reset on every entry call.
type Machine struct {
	g        *igr.Graph
	maxSteps int
	maxDepth int

	steps int
	depth int
}

type Option func(*Machine)

// WithMaxSteps bounds the number of nodes evaluated per entry call.
func WithMaxSteps(n int) Option {
	return func(m *Machine) {
		if n > 0 {
			m.maxSteps = n
		}
	}
}

// WithMaxDepth bounds the call and branch nesting.
func WithMaxDepth(n int) Option {
	return func(m *Machine) {
		if n > 0 {
			m.maxDepth = n
		}
	}
}

func New(g *igr.Graph, opts ...Option) *Machine {
	m := &Machine{g: g, maxSteps: DefaultMaxSteps, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Steps returns the number of nodes evaluated by the last entry call.
func (m *Machine) Steps() int { return m.steps }

// Call runs a function on the given arguments.
func (m *Machine) Call(ctx context.Context, name string, args []igr.Value) (igr.Value, error) {
	m.steps, m.depth = 0, 0
	return m.call(ctx, name, args)
}

// EvalNode evaluates a single node as if its inputs carried args.
func (m *Machine) EvalNode(ctx context.Context, n *igr.Node, args []igr.Value) (igr.Value, error) {
	m.steps, m.depth = 0, 0
	if len(args) != n.Arity() {
		return igr.Value{}, fmt.Errorf("eval %s: %d arguments for %d inputs", n, len(args), n.Arity())
	}
	return m.apply(ctx, n, args)
}

func (m *Machine) call(ctx context.Context, name string, args []igr.Value) (igr.Value, error) {
	fn, err := m.g.Function(name)
	if err != nil {
		return igr.Value{}, err
	}
	if len(args) != fn.Arity() {
		return igr.Value{}, fmt.Errorf("call %s: %d arguments for %d parameters", name, len(args), fn.Arity())
	}
	return m.subGraph(ctx, fn, args)
}

type frame struct {
	sg   *igr.SubGraph
	args []igr.Value
	vals map[igr.ID]igr.Value
}

func (m *Machine) subGraph(ctx context.Context, sg *igr.SubGraph, args []igr.Value) (igr.Value, error) {
	m.depth++
	defer func() { m.depth-- }()
	if m.depth > m.maxDepth {
		return igr.Value{}, fmt.Errorf("%w: depth %d in %s", ErrStepLimit, m.depth, sg.Name)
	}
	f := &frame{sg: sg, args: args, vals: make(map[igr.ID]igr.Value)}
	return m.input(ctx, f, &sg.Exit)
}

func (m *Machine) input(ctx context.Context, f *frame, p *igr.InPort) (igr.Value, error) {
	if lit := p.Literal(); lit != nil {
		return lit.Value, nil
	}
	src, ok := p.Source()
	if !ok {
		panic(igr.InvariantError{Msg: "eval: unbound input in " + f.sg.Name})
	}
	if src.Owner == f.sg.ID {
		return f.args[src.Index], nil
	}
	if v, ok := f.vals[src.Owner]; ok {
		return v, nil
	}
	n := m.g.Node(src.Owner)
	if n == nil {
		panic(igr.InvariantError{Msg: "eval: input reads a freed node in " + f.sg.Name})
	}
	args := make([]igr.Value, len(n.In))
	for i := range n.In {
		v, err := m.input(ctx, f, &n.In[i])
		if err != nil {
			return igr.Value{}, err
		}
		args[i] = v
	}
	v, err := m.apply(ctx, n, args)
	if err != nil {
		return igr.Value{}, err
	}
	f.vals[n.ID] = v
	return v, nil
}

func (m *Machine) apply(ctx context.Context, n *igr.Node, args []igr.Value) (igr.Value, error) {
	m.steps++
	if m.steps > m.maxSteps {
		return igr.Value{}, fmt.Errorf("%w: %d steps", ErrStepLimit, m.maxSteps)
	}
	if m.steps%1024 == 0 {
		if err := ctx.Err(); err != nil {
			return igr.Value{}, err
		}
	}

	switch n.Kind {
	case igr.NodeOp:
		if n.Op.Code == igr.OpConst {
			return n.Op.Const, nil
		}
		return Apply(n.Op.Code, args)
	case igr.NodeCall:
		return m.call(ctx, n.Call.Callee, args)
	case igr.NodeIf:
		cond, err := truth("if", args[0])
		if err != nil {
			return igr.Value{}, err
		}
		branch := n.If.Else
		if cond {
			branch = n.If.Then
		}
		return m.subGraph(ctx, m.g.SubGraph(branch), args)
	case igr.NodeFor:
		gen := args[0]
		if gen.Kind != igr.ValueArray {
			return igr.Value{}, runtimeErr("for", "%s is not an array", gen)
		}
		body := m.g.SubGraph(n.For.Body)
		out := make([]igr.Value, 0, len(gen.Elems))
		for _, el := range gen.Elems {
			bodyArgs := make([]igr.Value, len(args))
			copy(bodyArgs, args)
			bodyArgs[0] = el
			v, err := m.subGraph(ctx, body, bodyArgs)
			if err != nil {
				return igr.Value{}, err
			}
			out = append(out, v)
		}
		return igr.Value{Kind: igr.ValueArray, Elems: out}, nil
	default:
		panic(igr.InvariantError{Msg: "eval: unexpected node " + n.String()})
	}
}
