// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"os"
	"time"
)

// Genesis represents the genesis file.
type Genesis struct {
	Date              time.Time `json:"date"`
	ChainID           uint16    `json:"chain_id"`           // The chain id represents an unique id for this running instance.
	InitialDifficulty uint64    `json:"initial_difficulty"` // The difficulty the chain starts at and never adjusts below.
}

// =============================================================================

// Load opens and consumes the genesis file.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	var genesis Genesis
	err = json.Unmarshal(content, &genesis)
	if err != nil {
		return Genesis{}, err
	}

	return genesis, nil
}
