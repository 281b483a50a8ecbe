package igr

// ID identifies a node or a subgraph. Nodes and subgraphs share one counter,
// so an ID is unique across the whole program and is never reused.
type ID uint32

// NoID is the reserved zero ID.
const NoID ID = 0

// IsValid reports whether id was allocated.
func (id ID) IsValid() bool { return id != NoID }

// InRef addresses an input port: In[Index] of a node, or the exit port of a
// subgraph (Index is always 0 then).
type InRef struct {
	Owner ID
	Index int
}

// IsValid reports whether the reference points anywhere.
func (r InRef) IsValid() bool { return r.Owner.IsValid() }

// OutRef addresses an output port: the output of a node (Index is always 0),
// or Entry[Index] of a subgraph.
type OutRef struct {
	Owner ID
	Index int
}

// IsValid reports whether the reference points anywhere.
func (r OutRef) IsValid() bool { return r.Owner.IsValid() }
