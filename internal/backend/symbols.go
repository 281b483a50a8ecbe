package backend

import (
	"dlc/internal/dis"
	"dlc/internal/igr"
)

// symbols records, per node and per subgraph, the address to read its value
// from (src) and the address to feed values into (dst). They differ for
// calls, compounds and functions.
type symbols struct {
	src   map[igr.ID]dis.Addr
	dst   map[igr.ID]dis.Addr
	names map[string]dis.Addr
	// calls waiting for their callee to be emitted
	pending map[string][]dis.Addr
}

func newSymbols() *symbols {
	return &symbols{
		src:     make(map[igr.ID]dis.Addr),
		dst:     make(map[igr.ID]dis.Addr),
		names:   make(map[string]dis.Addr),
		pending: make(map[string][]dis.Addr),
	}
}

func (s *symbols) add(id igr.ID, src, dst dis.Addr) {
	s.src[id] = src
	s.dst[id] = dst
}

func (s *symbols) getSrc(id igr.ID) dis.Addr {
	a, ok := s.src[id]
	if !ok {
		panic(igr.InvariantError{Msg: "lowering: no source address for " + idString(id)})
	}
	return a
}

func (s *symbols) getDst(id igr.ID) dis.Addr {
	a, ok := s.dst[id]
	if !ok {
		panic(igr.InvariantError{Msg: "lowering: no destination address for " + idString(id)})
	}
	return a
}

// addName registers a function entry and patches calls emitted before it.
func (s *symbols) addName(p *dis.Program, name string, entry dis.Addr) {
	s.names[name] = entry
	for _, call := range s.pending[name] {
		patchCall(p, call, entry)
	}
	delete(s.pending, name)
}

// callTarget patches call now when the callee is known, or defers it.
func (s *symbols) callTarget(p *dis.Program, name string, call dis.Addr) {
	if entry, ok := s.names[name]; ok {
		patchCall(p, call, entry)
		return
	}
	s.pending[name] = append(s.pending[name], call)
}

func patchCall(p *dis.Program, call, entry dis.Addr) {
	p.SetArg(call, 2, entry.Chunk)
	p.SetArg(call, 3, entry.Key)
}
