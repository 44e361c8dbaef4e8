package powgrp

import (
	"fmt"

	"github.com/R-Song/conflux-go/foundation/blockchain/database"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// headerInfo is the response form for header queries.
type headerInfo struct {
	Hash   string               `json:"hash"`
	Header database.BlockHeader `json:"header"`
}

// difficultyInfo is the response form for difficulty queries.
type difficultyInfo struct {
	Difficulty string `json:"difficulty"`
	Boundary   string `json:"boundary"`
}

// validatePow is the request form for validating a miner solution.
type validatePow struct {
	BlockHash  string `json:"block_hash" validate:"required"`
	Difficulty string `json:"difficulty" validate:"required"`
	Nonce      string `json:"nonce" validate:"required"`
}

// validatePowResult is the response form for a validated solution.
type validatePowResult struct {
	Valid   bool   `json:"valid"`
	PowHash string `json:"pow_hash"`
	Quality string `json:"quality,omitempty"`
}

// submitHeader is the request form for admitting a mined header.
type submitHeader struct {
	ParentHash    string   `json:"parent_hash" validate:"required"`
	Height        uint64   `json:"height" validate:"required"`
	Timestamp     uint64   `json:"timestamp"`
	Difficulty    string   `json:"difficulty" validate:"required"`
	Nonce         string   `json:"nonce" validate:"required"`
	RefereeHashes []string `json:"referee_hashes"`
	TransRoot     string   `json:"trans_root"`
}

// toBlockHeader converts the request form into a database block header.
func (sh submitHeader) toBlockHeader() (database.BlockHeader, error) {
	difficulty, err := toUint256("difficulty", sh.Difficulty)
	if err != nil {
		return database.BlockHeader{}, err
	}

	nonce, err := toUint256("nonce", sh.Nonce)
	if err != nil {
		return database.BlockHeader{}, err
	}

	referees := make([]common.Hash, len(sh.RefereeHashes))
	for i, hash := range sh.RefereeHashes {
		referees[i] = common.HexToHash(hash)
	}
	if len(referees) == 0 {
		referees = nil
	}

	header := database.BlockHeader{
		ParentHash:    common.HexToHash(sh.ParentHash),
		Height:        sh.Height,
		Timestamp:     sh.Timestamp,
		Difficulty:    difficulty,
		Nonce:         nonce,
		RefereeHashes: referees,
		TransRoot:     common.HexToHash(sh.TransRoot),
	}

	return header, nil
}

// toUint256 parses a 0x prefixed hex field into a 256 bit integer.
func toUint256(field string, value string) (*uint256.Int, error) {
	parsed, err := uint256.FromHex(value)
	if err != nil {
		return nil, fmt.Errorf("unable to parse %s %q: %w", field, value, err)
	}

	return parsed, nil
}
