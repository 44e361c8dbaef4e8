// Package pow implements the proof of work admission rules for the
// blockchain and the difficulty adjustment performed at each epoch
// boundary.
package pow

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// Problem represents the puzzle a miner must satisfy for a candidate
// block: find a nonce whose pow hash, offset by the nonce derived lower
// bound, falls under the boundary.
type Problem struct {
	BlockHash  common.Hash
	Difficulty *uint256.Int
	Boundary   *uint256.Int
}

// NewProblem constructs a Problem for the specified block hash and
// difficulty. The boundary is always derived from the difficulty, never
// set independently.
func NewProblem(blockHash common.Hash, difficulty *uint256.Int) Problem {
	return Problem{
		BlockHash:  blockHash,
		Difficulty: new(uint256.Int).Set(difficulty),
		Boundary:   DifficultyToBoundary(difficulty),
	}
}

// Solution represents the nonce a miner submits against a Problem.
type Solution struct {
	Nonce *uint256.Int
}

// =============================================================================

// Compute produces the pow hash for the specified nonce and block hash.
// The 32 byte block hash and the 32 byte little-endian nonce are hashed
// together, the digest is folded back into the block hash with a
// byte-wise xor, and the result is hashed once more. Binding the digest
// to its input twice keeps the function deterministic and cheap to
// recheck.
func Compute(nonce *uint256.Int, blockHash common.Hash) common.Hash {
	var buf [64]byte
	copy(buf[:32], blockHash[:])

	be := nonce.Bytes32()
	for i := 0; i < 32; i++ {
		buf[32+i] = be[31-i]
	}

	intermediate := crypto.Keccak256(buf[:])

	var tmp [32]byte
	for i := 0; i < 32; i++ {
		tmp[i] = intermediate[i] ^ blockHash[i]
	}

	return common.BytesToHash(crypto.Keccak256(tmp[:]))
}

// NonceToLowerBound derives the lower bound for the boundary check from
// the top 128 bits of the nonce, excluding the highest bit. A pool server
// hands out the block hash and difficulty while each worker picks the
// nonce, so tying the acceptance test to the nonce keeps a worker from
// silently discovering a higher quality solution than it reports.
func NonceToLowerBound(nonce *uint256.Int) *uint256.Int {
	buf := nonce.Bytes32()
	for i := 16; i < 32; i++ {
		buf[i] = 0
	}
	buf[0] &= 0x7f

	return new(uint256.Int).SetBytes(buf[:])
}

// ValidateHashAgainstBoundary reports whether the pow hash satisfies the
// boundary once offset by the nonce derived lower bound. The subtraction
// wraps around, so the no-constraint sentinel must be checked explicitly
// rather than relying on the comparison alone.
func ValidateHashAgainstBoundary(hash common.Hash, nonce *uint256.Int, boundary *uint256.Int) bool {
	lowerBound := NonceToLowerBound(nonce)
	delta := new(uint256.Int).Sub(new(uint256.Int).SetBytes(hash[:]), lowerBound)

	return delta.Lt(boundary) || boundary.Eq(MaxUint256)
}

// HashToQuality scores a solution by the effective difficulty its pow
// hash achieved. Qualities rank competing solutions for the same
// problem.
func HashToQuality(hash common.Hash, nonce *uint256.Int) *uint256.Int {
	lowerBound := NonceToLowerBound(nonce)
	delta := new(uint256.Int).Sub(new(uint256.Int).SetBytes(hash[:]), lowerBound)

	if delta.Eq(MaxUint256) {
		return uint256.NewInt(1)
	}

	return BoundaryToDifficulty(delta.AddUint64(delta, 1))
}

// Validate reports whether the solution solves the problem. It recomputes
// the pow hash from scratch and touches no shared state, so it is safe to
// call from any number of validation goroutines without coordination.
func Validate(problem Problem, solution Solution) bool {
	hash := Compute(solution.Nonce, problem.BlockHash)
	return ValidateHashAgainstBoundary(hash, solution.Nonce, problem.Boundary)
}
