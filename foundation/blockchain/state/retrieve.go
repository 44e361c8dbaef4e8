package state

import (
	"fmt"

	"github.com/R-Song/conflux-go/foundation/blockchain/database"
	"github.com/R-Song/conflux-go/foundation/blockchain/genesis"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// RetrieveGenesis returns a copy of the genesis information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// RetrieveLatestHeader returns the highest header admitted so far.
func (s *State) RetrieveLatestHeader() database.BlockHeader {
	return s.db.LatestHeader()
}

// RetrieveGenesisHeader returns the header the chain was seeded with.
func (s *State) RetrieveGenesisHeader() database.BlockHeader {
	return s.db.GenesisHeader()
}

// CurrentTargetDifficulty returns the difficulty a header must be mined
// at to be admitted into the current epoch.
func (s *State) CurrentTargetDifficulty() *uint256.Int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return new(uint256.Int).Set(s.targetDifficulty)
}

// EpochTargetDifficulty returns the memoized target difficulty for the
// epoch that follows the one ending at the specified block hash. Unlike
// the resolver it is called with unvalidated input, so the resolver's
// preconditions are checked here and reported as errors.
func (s *State) EpochTargetDifficulty(hash common.Hash) (*uint256.Int, error) {
	header, exists := s.db.HeaderByHash(hash)
	if !exists {
		return nil, fmt.Errorf("unknown header %s", hash)
	}

	epochPeriod := s.powConfig.DifficultyAdjustmentEpochPeriod
	if header.Height == 0 || header.Height%epochPeriod != 0 {
		return nil, fmt.Errorf("height %d is not an adjustment epoch boundary", header.Height)
	}

	return s.resolver.TargetDifficulty(hash), nil
}
