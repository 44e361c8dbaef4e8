package database

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// BlockHeader represents the information of a mined block the admission
// and difficulty logic consumes. Referee hashes record the extra DAG
// blocks folded into the epoch this block anchors.
type BlockHeader struct {
	ParentHash    common.Hash   `json:"parent_hash"`    // Hash of the parent block in the pivot chain.
	Height        uint64        `json:"height"`         // Block height in the pivot chain.
	Timestamp     uint64        `json:"timestamp"`      // Unix seconds; zero for checkpoint stand-ins.
	Difficulty    *uint256.Int  `json:"difficulty"`     // The difficulty this block was mined at.
	Nonce         *uint256.Int  `json:"nonce"`          // Value identified to solve the pow puzzle.
	RefereeHashes []common.Hash `json:"referee_hashes"` // Non-pivot blocks belonging to this block's epoch.
	TransRoot     common.Hash   `json:"trans_root"`     // Merkle root of the transactions in this block.
}

// Hash returns the unique identity of the block header.
func (h BlockHeader) Hash() common.Hash {
	data, err := json.Marshal(h)
	if err != nil {
		return common.Hash{}
	}

	return common.BytesToHash(crypto.Keccak256(data))
}

// ProblemHash returns the hash the pow problem for this block commits to.
// The nonce is excluded so the identity stays stable while the nonce
// search runs.
func (h BlockHeader) ProblemHash() common.Hash {
	h.Nonce = new(uint256.Int)
	return h.Hash()
}
