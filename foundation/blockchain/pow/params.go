package pow

// Network parameters for a production chain. Test mode replaces these
// with the test constants below.
const (
	// InitialDifficulty is the minimum difficulty the network accepts.
	// Difficulty never adjusts below this floor.
	InitialDifficulty uint64 = 20_000_000

	// TargetAverageBlockGenerationPeriod is the time between blocks the
	// network aims for, in microseconds.
	TargetAverageBlockGenerationPeriod uint64 = 500_000

	// DifficultyAdjustmentEpochPeriod is the number of blocks in one
	// difficulty adjustment epoch.
	DifficultyAdjustmentEpochPeriod uint64 = 5_000

	// DifficultyAdjustmentFactor bounds the difficulty swing of a single
	// epoch to ±1/DifficultyAdjustmentFactor of the prior difficulty.
	DifficultyAdjustmentFactor uint64 = 2
)

// Test mode constants tuned for fast local iteration.
const (
	testInitialDifficulty               uint64 = 4
	testBlockGenerationPeriod           uint64 = 1_000_000
	testDifficultyAdjustmentEpochPeriod uint64 = 20
)
