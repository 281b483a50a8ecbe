package igr

import "fmt"

// NodeKind is the closed set of node variants. Every switch over it panics
// on an unknown kind so new variants cannot slip past a pass.
type NodeKind uint8

const (
	NodeInvalid NodeKind = iota
	NodeOp
	NodeCall
	NodeIf
	NodeFor
)

func (k NodeKind) String() string {
	switch k {
	case NodeOp:
		return "op"
	case NodeCall:
		return "call"
	case NodeIf:
		return "if"
	case NodeFor:
		return "for"
	default:
		return fmt.Sprintf("NodeKind(%d)", uint8(k))
	}
}

// OpConst is the opcode of the trivial node produced when a subgraph
// collapses to a constant. Its single input only triggers it.
const OpConst = "const"

// OpNode is the payload of NodeOp.
type OpNode struct {
	Code  string
	Const Value // only for OpConst
}

// CallNode is the payload of NodeCall.
type CallNode struct {
	Callee    string
	Recursive bool
}

// IfNode is the payload of NodeIf. In[0] is the condition; the remaining
// inputs are threaded captures. Each branch has one entry per input.
type IfNode struct {
	Then ID
	Else ID
}

// ForNode is the payload of NodeFor. In[0] is the iterable; the remaining
// inputs are threaded captures.
type ForNode struct {
	Body ID
}

// Node is one computation step, owned by exactly one subgraph.
type Node struct {
	ID    ID
	Owner ID
	Kind  NodeKind
	In    []InPort
	Out   OutPort

	Op   OpNode
	Call CallNode
	If   IfNode
	For  ForNode
}

// Arity returns the number of inputs.
func (n *Node) Arity() int { return len(n.In) }

// IsCompound reports whether the node owns branch subgraphs.
func (n *Node) IsCompound() bool {
	switch n.Kind {
	case NodeIf, NodeFor:
		return true
	case NodeOp, NodeCall:
		return false
	default:
		invariant("node %d has kind %s", n.ID, n.Kind)
		return false
	}
}

// Branches lists the owned subgraphs in a fixed order: then, else for If;
// body for For.
func (n *Node) Branches() []ID {
	switch n.Kind {
	case NodeIf:
		return []ID{n.If.Then, n.If.Else}
	case NodeFor:
		return []ID{n.For.Body}
	case NodeOp, NodeCall:
		return nil
	default:
		invariant("node %d has kind %s", n.ID, n.Kind)
		return nil
	}
}

// OutRef addresses the node output.
func (n *Node) OutRef() OutRef { return OutRef{Owner: n.ID} }

// InRef addresses input i.
func (n *Node) InRef(i int) InRef { return InRef{Owner: n.ID, Index: i} }

// AllLiteral reports whether every input is fed by a literal. Nodes
// without inputs never qualify.
func (n *Node) AllLiteral() bool {
	if len(n.In) == 0 {
		return false
	}
	for i := range n.In {
		if n.In[i].lit == nil {
			return false
		}
	}
	return true
}

// LiteralValues returns the values of all literal inputs in port order.
func (n *Node) LiteralValues() []Value {
	vals := make([]Value, len(n.In))
	for i := range n.In {
		if n.In[i].lit != nil {
			vals[i] = n.In[i].lit.Value
		}
	}
	return vals
}

func (n *Node) String() string {
	switch n.Kind {
	case NodeOp:
		if n.Op.Code == OpConst {
			return fmt.Sprintf("op#%d const %s", n.ID, n.Op.Const)
		}
		return fmt.Sprintf("op#%d %s", n.ID, n.Op.Code)
	case NodeCall:
		return fmt.Sprintf("call#%d %s", n.ID, n.Call.Callee)
	case NodeIf:
		return fmt.Sprintf("if#%d", n.ID)
	case NodeFor:
		return fmt.Sprintf("for#%d", n.ID)
	default:
		return fmt.Sprintf("node#%d", n.ID)
	}
}
