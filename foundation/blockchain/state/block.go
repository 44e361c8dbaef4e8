package state

import (
	"errors"
	"fmt"

	"github.com/R-Song/conflux-go/foundation/blockchain/database"
	"github.com/R-Song/conflux-go/foundation/blockchain/pow"
)

// ErrInvalidSolution is returned when a submitted header fails the proof
// of work admission check.
var ErrInvalidSolution = errors.New("invalid proof of work solution")

// ErrWrongDifficulty is returned when a submitted header claims a
// difficulty other than the current epoch target.
var ErrWrongDifficulty = errors.New("header difficulty does not match the epoch target")

// ErrBadTimestamp is returned when a submitted header's timestamp
// precedes its parent's. The epoch walk requires time to be monotonic
// across the headers it counts.
var ErrBadTimestamp = errors.New("header timestamp precedes its parent")

// =============================================================================

// ProcessHeader validates the proof of work on a mined header, admits it
// into the header database, and recomputes the target difficulty when
// the header closes a difficulty adjustment epoch.
func (s *State) ProcessHeader(header database.BlockHeader) error {
	s.evHandler("state: ProcessHeader: started: height[%d]", header.Height)
	defer s.evHandler("state: ProcessHeader: completed")

	s.mu.Lock()
	defer s.mu.Unlock()

	if header.Difficulty == nil || header.Nonce == nil {
		return fmt.Errorf("header is missing difficulty or nonce: %w", ErrInvalidSolution)
	}

	if !header.Difficulty.Eq(s.targetDifficulty) {
		return fmt.Errorf("claimed %v, target %v: %w", header.Difficulty, s.targetDifficulty, ErrWrongDifficulty)
	}

	problem := pow.NewProblem(header.ProblemHash(), header.Difficulty)
	solution := pow.Solution{Nonce: header.Nonce}
	if !pow.Validate(problem, solution) {
		return ErrInvalidSolution
	}

	// The epoch walk requires nonzero timestamps to be monotonic along
	// parent links. Zero timestamps are skipped for timing, so the check
	// anchors on the nearest ancestor carrying a nonzero one. This must
	// run before the write so a bad header never lands in the database.
	if header.Timestamp != 0 {
		ancestor, exists := s.db.HeaderByHash(header.ParentHash)
		for exists && ancestor.Timestamp == 0 && ancestor.Height != 0 {
			ancestor, exists = s.db.HeaderByHash(ancestor.ParentHash)
		}
		if exists && ancestor.Timestamp != 0 && header.Timestamp < ancestor.Timestamp {
			return fmt.Errorf("header timestamp %d, ancestor timestamp %d: %w", header.Timestamp, ancestor.Timestamp, ErrBadTimestamp)
		}
	}

	if err := s.db.Write(header); err != nil {
		return err
	}

	// A header whose height is a positive multiple of the epoch period
	// closes an adjustment epoch. Fix the next epoch's target from the
	// one just closed.
	epochPeriod := s.powConfig.DifficultyAdjustmentEpochPeriod
	if header.Height%epochPeriod == 0 {
		target := s.resolver.TargetDifficulty(header.Hash())
		s.evHandler("state: ProcessHeader: epoch[%d] retarget: difficulty[%v]", header.Height/epochPeriod, target)
		s.targetDifficulty = target
	}

	return nil
}
