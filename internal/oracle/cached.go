package oracle

import (
	"context"
	"fmt"
	"sync/atomic"

	"dlc/internal/igr"
	"dlc/internal/trace"
)

// Cached serves repeated runs from a DiskCache. Failures of the underlying
// oracle are never cached, and a failed cache write does not fail the run.
type Cached struct {
	Oracle Oracle
	Cache  *DiskCache
	// Engine is mixed into every key, usually the resolved engine path.
	Engine string

	hits, misses atomic.Int64
}

// WithCache wraps o. A nil cache returns o unchanged.
func WithCache(o Oracle, c *DiskCache, engine string) Oracle {
	if c == nil {
		return o
	}
	return &Cached{Oracle: o, Cache: c, Engine: engine}
}

func (c *Cached) Run(ctx context.Context, program string, inputs []igr.Value) (igr.Value, error) {
	key := KeyFor(c.Engine, program, inputs)
	v, ok, err := c.Cache.Get(key)
	if err != nil {
		// a corrupt entry is overwritten below
		trace.PointCtx(ctx, trace.ScopeNode, "oracle-cache", "read error", "err", err.Error())
	}
	if ok {
		c.hits.Add(1)
		trace.PointCtx(ctx, trace.ScopeNode, "oracle-cache", "hit")
		return v, nil
	}
	c.misses.Add(1)
	v, err = c.Oracle.Run(ctx, program, inputs)
	if err != nil {
		return igr.Value{}, err
	}
	if err := c.Cache.Put(key, v); err != nil {
		trace.PointCtx(ctx, trace.ScopeNode, "oracle-cache", "write error", "err", err.Error())
	}
	return v, nil
}

// Stats returns the hit and miss counts.
func (c *Cached) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// CacheNote describes the hit rate of o when it is a Cached oracle, for
// timing reports. Other oracles yield "".
func CacheNote(o Oracle) string {
	c, ok := o.(*Cached)
	if !ok {
		return ""
	}
	hits, misses := c.Stats()
	return fmt.Sprintf("cache hits=%d misses=%d", hits, misses)
}
