package igr

import "slices"

// SubGraph is a function body or a branch body of a compound node.
type SubGraph struct {
	ID    ID
	Name  string
	Nodes []ID
	Entry []OutPort
	Exit  InPort

	// Recursive is set when the body calls its own function directly.
	Recursive bool
	// Parent is the compound node owning a branch body; NoID for functions.
	Parent ID
	// Func is the top-level function transitively containing the subgraph.
	Func ID
}

// Arity returns the number of entry ports.
func (sg *SubGraph) Arity() int { return len(sg.Entry) }

// IsFunction reports whether sg is a top-level function rather than a branch.
func (sg *SubGraph) IsFunction() bool { return !sg.Parent.IsValid() }

// AddParam appends an entry port and returns its reference.
func (sg *SubGraph) AddParam(t Type) OutRef {
	sg.Entry = append(sg.Entry, OutPort{Type: t})
	return sg.EntryRef(len(sg.Entry) - 1)
}

// EntryRef addresses entry port i.
func (sg *SubGraph) EntryRef(i int) OutRef { return OutRef{Owner: sg.ID, Index: i} }

// ExitRef addresses the exit port.
func (sg *SubGraph) ExitRef() InRef { return InRef{Owner: sg.ID} }

// RemoveNode drops id from the node list. Port unlinking is left to the caller.
func (sg *SubGraph) RemoveNode(id ID) bool {
	i := slices.Index(sg.Nodes, id)
	if i < 0 {
		return false
	}
	sg.Nodes = slices.Delete(sg.Nodes, i, i+1)
	return true
}
