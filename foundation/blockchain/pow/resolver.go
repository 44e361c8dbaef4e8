package pow

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Header is the slice of a block header the resolver consumes while
// walking an adjustment epoch.
type Header struct {
	ParentHash common.Hash
	Height     uint64
	Timestamp  uint64
	Difficulty *uint256.Int
}

// HeaderReader provides header lookups from the external block store.
// Lookups are synchronous; the store is expected to already hold every
// header the resolver touches.
type HeaderReader interface {
	HeaderByHash(hash common.Hash) (Header, bool)
}

// EpochCounter reports how many blocks logically belong to the epoch
// anchored at a hash. It abstracts the DAG epoch membership rule, which
// may count more than one block per height.
type EpochCounter func(hash common.Hash) uint64

// =============================================================================

// Resolver computes the target difficulty of each difficulty adjustment
// epoch by walking one epoch's worth of headers backward from the epoch
// boundary, memoizing results so each epoch is resolved only once.
type Resolver struct {
	cfg           Config
	headers       HeaderReader
	blocksInEpoch EpochCounter
	cache         *TargetDifficultyCache
}

// NewResolver constructs a Resolver reading headers from the provided
// store.
func NewResolver(cfg Config, headers HeaderReader, blocksInEpoch EpochCounter) *Resolver {
	return &Resolver{
		cfg:           cfg,
		headers:       headers,
		blocksInEpoch: blocksInEpoch,
		cache:         NewTargetDifficultyCache(),
	}
}

// TargetDifficulty computes the target difficulty of the epoch following
// the one that ends at curHash. curHash must identify a header already in
// the store whose height is a positive multiple of the adjustment epoch
// period; both are guaranteed by the consensus logic that calls here, so
// a violation is a caller bug and panics rather than returning an error.
//
// Results are cached by curHash. Two goroutines may race past the same
// cache miss and compute the value twice; the computation is
// deterministic over the same chain state, so the duplicate write is
// harmless.
func (r *Resolver) TargetDifficulty(curHash common.Hash) *uint256.Int {
	if target, exists := r.cache.Get(curHash); exists {
		return target
	}

	curHeader, exists := r.headers.HeaderByHash(curHash)
	if !exists {
		panic(fmt.Sprintf("pow: target difficulty for unknown header %s", curHash))
	}

	epoch := curHeader.Height
	if epoch == 0 || epoch%r.cfg.DifficultyAdjustmentEpochPeriod != 0 {
		panic(fmt.Sprintf("pow: height %d is not an adjustment epoch boundary", epoch))
	}

	cur := curHash
	curDifficulty := new(uint256.Int).Set(curHeader.Difficulty)
	maxTime := curHeader.Timestamp

	var blockCount uint64
	var minTime uint64

	// Collect the total block count and the timespan over the closing
	// epoch. A zero timestamp stands in for a checkpoint or genesis
	// header: it is skipped for timing but still counted.
	for i := uint64(0); i < r.cfg.DifficultyAdjustmentEpochPeriod; i++ {
		blockCount += r.blocksInEpoch(cur)

		cur = curHeader.ParentHash
		curHeader, exists = r.headers.HeaderByHash(cur)
		if !exists {
			panic(fmt.Sprintf("pow: epoch walk hit unknown header %s", cur))
		}

		if curHeader.Timestamp != 0 {
			minTime = curHeader.Timestamp
		}
		if maxTime < minTime {
			panic(fmt.Sprintf("pow: non-monotonic timestamps inside epoch at header %s", cur))
		}
	}

	target := r.cfg.TargetDifficulty(blockCount, maxTime-minTime, curDifficulty)

	lower, upper := r.cfg.GetAdjustmentBound(curDifficulty)
	if target.Gt(upper) {
		target = upper
	}
	if target.Lt(lower) {
		target = lower
	}

	r.cache.Set(curHash, target)

	return target
}
