package pow

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// TargetDifficultyCache memoizes the computed target difficulty of each
// adjustment epoch. Entries are indexed by the hash of the block at the
// epoch's upper boundary. Entries are only ever added, never replaced or
// evicted.
//
// TODO: bound the cache or persist entries so memory does not grow with
// chain length.
type TargetDifficultyCache struct {
	mu    sync.RWMutex
	cache map[common.Hash]uint256.Int
}

// NewTargetDifficultyCache constructs an empty cache.
func NewTargetDifficultyCache() *TargetDifficultyCache {
	return &TargetDifficultyCache{
		cache: make(map[common.Hash]uint256.Int),
	}
}

// Get returns the cached target difficulty for the specified hash if one
// has been computed.
func (c *TargetDifficultyCache) Get(hash common.Hash) (*uint256.Int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	difficulty, exists := c.cache[hash]
	if !exists {
		return nil, false
	}

	return &difficulty, true
}

// Set records the target difficulty computed for the specified hash.
func (c *TargetDifficultyCache) Set(hash common.Hash, difficulty *uint256.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache[hash] = *difficulty
}
