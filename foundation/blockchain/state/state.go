// Package state is the core API for proof of work admission and
// implements the business rules for accepting mined block headers and
// adjusting the chain difficulty.
package state

import (
	"fmt"
	"sync"

	"github.com/R-Song/conflux-go/foundation/blockchain/database"
	"github.com/R-Song/conflux-go/foundation/blockchain/genesis"
	"github.com/R-Song/conflux-go/foundation/blockchain/pow"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// EventHandler defines a function that is called when events occur in
// the processing of accepting headers.
type EventHandler func(v string, args ...any)

// =============================================================================

// Config represents the configuration required to start the chain state.
type Config struct {
	Genesis   genesis.Genesis
	PowConfig pow.Config
	EvHandler EventHandler
}

// State manages the admission of mined block headers and the target
// difficulty of the current epoch.
type State struct {
	mu sync.Mutex

	genesis   genesis.Genesis
	powConfig pow.Config
	evHandler EventHandler

	db       *database.Database
	resolver *pow.Resolver

	targetDifficulty *uint256.Int
}

// New constructs a new chain state for header admission.
func New(cfg Config) (*State, error) {

	// The adjustment policy never lets difficulty fall below its
	// configured initial value, so a genesis header mined below that
	// floor could never be reproduced by the policy.
	if cfg.Genesis.InitialDifficulty < cfg.PowConfig.InitialDifficulty {
		return nil, fmt.Errorf("genesis initial difficulty %d is below the configured floor %d", cfg.Genesis.InitialDifficulty, cfg.PowConfig.InitialDifficulty)
	}

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	db, err := database.New(cfg.Genesis, ev)
	if err != nil {
		return nil, err
	}

	s := State{
		genesis:          cfg.Genesis,
		powConfig:        cfg.PowConfig,
		evHandler:        ev,
		db:               db,
		targetDifficulty: uint256.NewInt(cfg.PowConfig.InitialDifficulty),
	}
	s.resolver = pow.NewResolver(cfg.PowConfig, headerReader{db: db}, db.BlocksInEpochView)

	return &s, nil
}

// =============================================================================

// headerReader adapts the header database to the narrow view the pow
// resolver walks.
type headerReader struct {
	db *database.Database
}

// HeaderByHash implements the pow.HeaderReader interface.
func (hr headerReader) HeaderByHash(hash common.Hash) (pow.Header, bool) {
	header, exists := hr.db.HeaderByHash(hash)
	if !exists {
		return pow.Header{}, false
	}

	return pow.Header{
		ParentHash: header.ParentHash,
		Height:     header.Height,
		Timestamp:  header.Timestamp,
		Difficulty: header.Difficulty,
	}, true
}
