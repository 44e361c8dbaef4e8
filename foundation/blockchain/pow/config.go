package pow

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Config represents the proof of work configuration for the node. It is
// constructed once at startup and treated as immutable after that, so it
// is safe to share across goroutines by value.
type Config struct {
	TestMode                        bool
	UseStratum                      bool
	InitialDifficulty               uint64
	BlockGenerationPeriod           uint64 // Microseconds between blocks the network targets.
	DifficultyAdjustmentEpochPeriod uint64 // Blocks per difficulty adjustment epoch.
	StratumListenAddr               string
	StratumPort                     uint16
	StratumSecret                   *common.Hash
}

// NewConfig constructs the proof of work configuration. In test mode the
// initial difficulty defaults low and the generation and epoch periods
// are overridden with constants tuned for fast local iteration.
func NewConfig(testMode bool, useStratum bool, initialDifficulty uint64, stratumListenAddr string, stratumPort uint16, stratumSecret *common.Hash) Config {
	if testMode {
		if initialDifficulty == 0 {
			initialDifficulty = testInitialDifficulty
		}
		return Config{
			TestMode:                        testMode,
			UseStratum:                      useStratum,
			InitialDifficulty:               initialDifficulty,
			BlockGenerationPeriod:           testBlockGenerationPeriod,
			DifficultyAdjustmentEpochPeriod: testDifficultyAdjustmentEpochPeriod,
			StratumListenAddr:               stratumListenAddr,
			StratumPort:                     stratumPort,
			StratumSecret:                   stratumSecret,
		}
	}

	return Config{
		TestMode:                        testMode,
		UseStratum:                      useStratum,
		InitialDifficulty:               InitialDifficulty,
		BlockGenerationPeriod:           TargetAverageBlockGenerationPeriod,
		DifficultyAdjustmentEpochPeriod: DifficultyAdjustmentEpochPeriod,
		StratumListenAddr:               stratumListenAddr,
		StratumPort:                     stratumPort,
		StratumSecret:                   stratumSecret,
	}
}

// TargetDifficulty computes the target difficulty of the next epoch from
// the block count and timespan observed over the previous one. A zero
// timespan or a single block cannot estimate a block rate, so those cases
// fall back to the initial difficulty, as does test mode. The result is
// clamped into [1, MaxUint256] rather than signaling on overflow.
func (cfg Config) TargetDifficulty(blockCount uint64, timespan uint64, curDifficulty *uint256.Int) *uint256.Int {
	if timespan == 0 || blockCount <= 1 || cfg.TestMode {
		return uint256.NewInt(cfg.InitialDifficulty)
	}

	// The numerator exceeds 256 bits for large difficulties, so the
	// intermediate math runs on big.Int. blockCount-1 keeps the rate
	// estimate unbiased: timespan covers blockCount-1 intervals, not
	// blockCount.
	target := new(big.Int).Mul(curDifficulty.ToBig(), new(big.Int).SetUint64(cfg.BlockGenerationPeriod))
	target.Mul(target, new(big.Int).SetUint64(blockCount-1))
	target.Div(target, new(big.Int).Mul(new(big.Int).SetUint64(timespan), big.NewInt(1_000_000)))

	if target.Sign() == 0 {
		return uint256.NewInt(1)
	}

	difficulty, overflow := uint256.FromBig(target)
	if overflow {
		return new(uint256.Int).Set(MaxUint256)
	}

	return difficulty
}

// GetAdjustmentBound returns the minimum and maximum difficulty the next
// epoch is allowed to adopt, bounding the swing of a single epoch to
// ±1/DifficultyAdjustmentFactor of diff and flooring the result at the
// configured initial difficulty.
func (cfg Config) GetAdjustmentBound(diff *uint256.Int) (*uint256.Int, *uint256.Int) {
	adjustment := new(uint256.Int).Div(diff, uint256.NewInt(DifficultyAdjustmentFactor))

	minDiff := new(uint256.Int).Sub(diff, adjustment)
	maxDiff := new(uint256.Int)
	if _, overflow := maxDiff.AddOverflow(diff, adjustment); overflow {
		maxDiff.Set(MaxUint256)
	}

	initialDiff := uint256.NewInt(cfg.InitialDifficulty)
	if minDiff.Lt(initialDiff) {
		minDiff.Set(initialDiff)
	}

	if maxDiff.Lt(minDiff) {
		maxDiff.Set(minDiff)
	}

	return minDiff, maxDiff
}
