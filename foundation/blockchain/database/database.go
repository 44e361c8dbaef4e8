// Package database maintains the in memory store of block headers that
// proof of work admission and difficulty adjustment read from.
package database

import (
	"fmt"
	"sync"

	"github.com/R-Song/conflux-go/foundation/blockchain/genesis"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Database manages the set of known block headers and the epoch
// membership bookkeeping derived from their referee edges.
type Database struct {
	mu sync.RWMutex

	genesis       genesis.Genesis
	genesisHeader BlockHeader
	headers       map[common.Hash]BlockHeader
	latest        BlockHeader
	evHandler     func(v string, args ...any)
}

// New constructs the header database seeded with the genesis header. The
// genesis header carries a zero timestamp so the difficulty timing logic
// skips it.
func New(genesis genesis.Genesis, evHandler func(v string, args ...any)) (*Database, error) {
	if genesis.InitialDifficulty == 0 {
		return nil, fmt.Errorf("genesis initial difficulty must be positive")
	}

	if evHandler == nil {
		evHandler = func(v string, args ...any) {}
	}

	genesisHeader := BlockHeader{
		Height:     0,
		Timestamp:  0,
		Difficulty: uint256.NewInt(genesis.InitialDifficulty),
		Nonce:      new(uint256.Int),
	}

	db := Database{
		genesis:       genesis,
		genesisHeader: genesisHeader,
		headers:       map[common.Hash]BlockHeader{genesisHeader.Hash(): genesisHeader},
		latest:        genesisHeader,
		evHandler:     evHandler,
	}

	return &db, nil
}

// Write adds a header to the database. The parent must already be known
// and the height must follow the parent directly.
func (db *Database) Write(header BlockHeader) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	parent, exists := db.headers[header.ParentHash]
	if !exists {
		return fmt.Errorf("parent header %s not found", header.ParentHash)
	}

	if header.Height != parent.Height+1 {
		return fmt.Errorf("header height %d does not follow parent height %d", header.Height, parent.Height)
	}

	hash := header.Hash()
	if _, exists := db.headers[hash]; exists {
		return fmt.Errorf("header %s already known", hash)
	}

	db.headers[hash] = header
	if header.Height > db.latest.Height {
		db.latest = header
	}

	db.evHandler("database: Write: header[%s] height[%d]", hash, header.Height)

	return nil
}

// HeaderByHash returns the header stored under the specified hash.
func (db *Database) HeaderByHash(hash common.Hash) (BlockHeader, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	header, exists := db.headers[hash]
	return header, exists
}

// BlocksInEpochView reports how many blocks belong to the epoch anchored
// at the specified header: the pivot block itself plus every referee it
// folded in. An unknown hash reports zero.
func (db *Database) BlocksInEpochView(hash common.Hash) uint64 {
	db.mu.RLock()
	defer db.mu.RUnlock()

	header, exists := db.headers[hash]
	if !exists {
		return 0
	}

	return 1 + uint64(len(header.RefereeHashes))
}

// LatestHeader returns the highest header written so far.
func (db *Database) LatestHeader() BlockHeader {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.latest
}

// GenesisHeader returns the header the chain was seeded with.
func (db *Database) GenesisHeader() BlockHeader {
	return db.genesisHeader
}

// HeaderCount returns the number of headers currently stored.
func (db *Database) HeaderCount() int {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return len(db.headers)
}
