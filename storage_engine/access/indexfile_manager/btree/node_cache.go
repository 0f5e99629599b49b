package btree

import (
	"BTreeIdx/types"
	"fmt"

	"github.com/dgraph-io/ristretto/v2"
	"go.uber.org/zap"
)

/*
NodeCache keeps decoded nodes in memory keyed by block id, so descents from the
root do not re-read and re-decode the upper levels on every operation.

Entries are stored by value: Get hands out a private copy and Put snapshots
the node, so callers can mutate what they got without touching the cache.

ristretto applies Sets asynchronously. Invalidate therefore deletes and then
waits for the buffers to drain, otherwise a Set queued by an earlier read
could land after the delete and resurrect the old node.

A nil *NodeCache is valid and caches nothing.
*/
type NodeCache struct {
	cache  *ristretto.Cache[uint64, Node]
	logger *zap.Logger
}

// CacheStats is a snapshot of cache effectiveness.
type CacheStats struct {
	Hits   uint64
	Misses uint64
	Ratio  float64
}

// NewNodeCache creates a cache holding up to capacity nodes. A capacity of 0
// returns a nil cache, which caches nothing.
func NewNodeCache(capacity int64, logger *zap.Logger) (*NodeCache, error) {
	if capacity < 0 {
		return nil, fmt.Errorf("node cache capacity %d is negative", capacity)
	}
	if capacity == 0 {
		return nil, nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c, err := ristretto.NewCache(&ristretto.Config[uint64, Node]{
		NumCounters:        capacity * 10,
		MaxCost:            capacity,
		BufferItems:        64,
		Metrics:            true,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create node cache: %w", err)
	}
	return &NodeCache{cache: c, logger: logger.Named("nodecache")}, nil
}

func (nc *NodeCache) Get(id types.BlockID) (*Node, bool) {
	if nc == nil {
		return nil, false
	}
	n, ok := nc.cache.Get(uint64(id))
	if !ok {
		return nil, false
	}
	return &n, true
}

func (nc *NodeCache) Put(n *Node) {
	if nc == nil {
		return
	}
	nc.cache.Set(uint64(n.ID), *n, 1)
}

// Invalidate drops id and blocks until no stale write for it is pending.
func (nc *NodeCache) Invalidate(id types.BlockID) {
	if nc == nil {
		return
	}
	nc.cache.Del(uint64(id))
	nc.cache.Wait()
}

func (nc *NodeCache) Stats() CacheStats {
	if nc == nil {
		return CacheStats{}
	}
	m := nc.cache.Metrics
	return CacheStats{Hits: m.Hits(), Misses: m.Misses(), Ratio: m.Ratio()}
}

func (nc *NodeCache) Close() {
	if nc == nil {
		return
	}
	s := nc.Stats()
	nc.logger.Debug("closing node cache",
		zap.Uint64("hits", s.Hits),
		zap.Uint64("misses", s.Misses),
		zap.Float64("ratio", s.Ratio))
	nc.cache.Close()
}
