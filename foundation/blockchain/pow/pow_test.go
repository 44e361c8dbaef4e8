package pow_test

import (
	"testing"

	"github.com/R-Song/conflux-go/foundation/blockchain/pow"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

func TestNonceToLowerBound(t *testing.T) {
	nonces := []*uint256.Int{
		new(uint256.Int),
		uint256.NewInt(1),
		uint256.NewInt(0xdeadbeef),
		new(uint256.Int).SetAllOne(),
		new(uint256.Int).Lsh(uint256.NewInt(0xff), 248),
		new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 128), uint256.NewInt(1)),
	}

	top := new(uint256.Int).Lsh(uint256.NewInt(1), 255)
	low128 := new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 128), uint256.NewInt(1))

	t.Log("Given the need to derive a lower bound from a nonce.")
	{
		for testID, nonce := range nonces {
			t.Logf("\tTest %d:\tWhen handling nonce %v.", testID, nonce)
			{
				lowerBound := pow.NonceToLowerBound(nonce)

				if masked := new(uint256.Int).And(lowerBound, top); !masked.IsZero() {
					t.Fatalf("\t%s\tTest %d:\tShould clear the top bit: got %v", failed, testID, lowerBound)
				}
				t.Logf("\t%s\tTest %d:\tShould clear the top bit.", success, testID)

				if masked := new(uint256.Int).And(lowerBound, low128); !masked.IsZero() {
					t.Fatalf("\t%s\tTest %d:\tShould zero the low 128 bits: got %v", failed, testID, lowerBound)
				}
				t.Logf("\t%s\tTest %d:\tShould zero the low 128 bits.", success, testID)
			}
		}
	}
}

func TestComputeDeterminism(t *testing.T) {
	t.Log("Given the need for a deterministic pow hash.")
	{
		t.Log("\tTest 0:\tWhen hashing the same nonce and block hash repeatedly.")
		{
			blockHash := common.HexToHash("0x8e1bd048672e5b7de70ee82dd7270caa67bb2c44a2c32fbe5d431f50f5ab1b31")
			nonce := uint256.NewInt(42)

			first := pow.Compute(nonce, blockHash)
			for i := 0; i < 10; i++ {
				if got := pow.Compute(nonce, blockHash); got != first {
					t.Fatalf("\t%s\tTest 0:\tShould produce the identical digest: got %s, exp %s", failed, got, first)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould produce the identical digest.", success)

			if other := pow.Compute(uint256.NewInt(43), blockHash); other == first {
				t.Fatalf("\t%s\tTest 0:\tShould produce a different digest for a different nonce.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould produce a different digest for a different nonce.", success)
		}
	}
}

func TestValidateHashAgainstBoundary(t *testing.T) {
	t.Log("Given the need to validate pow hashes against a boundary.")
	{
		t.Log("\tTest 0:\tWhen the boundary is the no-constraint sentinel.")
		{
			hashes := []common.Hash{
				{},
				common.HexToHash("0xffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"),
				common.HexToHash("0x8e1bd048672e5b7de70ee82dd7270caa67bb2c44a2c32fbe5d431f50f5ab1b31"),
			}
			nonces := []*uint256.Int{new(uint256.Int), uint256.NewInt(7), new(uint256.Int).SetAllOne()}

			for _, hash := range hashes {
				for _, nonce := range nonces {
					if !pow.ValidateHashAgainstBoundary(hash, nonce, pow.MaxUint256) {
						t.Fatalf("\t%s\tTest 0:\tShould accept every hash and nonce: hash %s nonce %v", failed, hash, nonce)
					}
				}
			}
			t.Logf("\t%s\tTest 0:\tShould accept every hash and nonce.", success)
		}

		t.Log("\tTest 1:\tWhen the hash sits on either side of the boundary.")
		{
			nonce := new(uint256.Int)
			boundary := new(uint256.Int).Lsh(uint256.NewInt(1), 200)

			under := common.Hash(new(uint256.Int).Sub(boundary, uint256.NewInt(1)).Bytes32())
			if !pow.ValidateHashAgainstBoundary(under, nonce, boundary) {
				t.Fatalf("\t%s\tTest 1:\tShould accept a hash below the boundary.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould accept a hash below the boundary.", success)

			over := common.Hash(boundary.Bytes32())
			if pow.ValidateHashAgainstBoundary(over, nonce, boundary) {
				t.Fatalf("\t%s\tTest 1:\tShould reject a hash at the boundary.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould reject a hash at the boundary.", success)
		}

		t.Log("\tTest 2:\tWhen the lower bound shifts the hash below the boundary.")
		{
			// A nonce with only high bits set produces a lower bound that
			// gets subtracted from the hash before the comparison.
			nonce := new(uint256.Int).Lsh(uint256.NewInt(1), 254)
			lowerBound := pow.NonceToLowerBound(nonce)
			boundary := new(uint256.Int).Lsh(uint256.NewInt(1), 200)

			hash := common.Hash(new(uint256.Int).Add(lowerBound, uint256.NewInt(5)).Bytes32())
			if !pow.ValidateHashAgainstBoundary(hash, nonce, boundary) {
				t.Fatalf("\t%s\tTest 2:\tShould accept a hash whose offset delta is small.", failed)
			}
			t.Logf("\t%s\tTest 2:\tShould accept a hash whose offset delta is small.", success)

			if pow.ValidateHashAgainstBoundary(hash, new(uint256.Int), boundary) {
				t.Fatalf("\t%s\tTest 2:\tShould reject the same hash without the nonce offset.", failed)
			}
			t.Logf("\t%s\tTest 2:\tShould reject the same hash without the nonce offset.", success)
		}
	}
}

func TestHashToQuality(t *testing.T) {
	t.Log("Given the need to rank solutions by quality.")
	{
		t.Log("\tTest 0:\tWhen the offset delta saturates.")
		{
			hash := common.Hash(new(uint256.Int).SetAllOne().Bytes32())
			quality := pow.HashToQuality(hash, new(uint256.Int))
			if !quality.Eq(uint256.NewInt(1)) {
				t.Fatalf("\t%s\tTest 0:\tShould degrade to a quality of one: got %v", failed, quality)
			}
			t.Logf("\t%s\tTest 0:\tShould degrade to a quality of one.", success)
		}

		t.Log("\tTest 1:\tWhen comparing a near and a far hash.")
		{
			nonce := new(uint256.Int)
			near := common.Hash(uint256.NewInt(1).Bytes32())
			far := common.Hash(new(uint256.Int).Lsh(uint256.NewInt(1), 250).Bytes32())

			nearQuality := pow.HashToQuality(near, nonce)
			farQuality := pow.HashToQuality(far, nonce)
			if !nearQuality.Gt(farQuality) {
				t.Fatalf("\t%s\tTest 1:\tShould score the smaller delta higher: near %v, far %v", failed, nearQuality, farQuality)
			}
			t.Logf("\t%s\tTest 1:\tShould score the smaller delta higher.", success)
		}
	}
}

func TestValidate(t *testing.T) {
	t.Log("Given the need to validate miner solutions end to end.")
	{
		t.Log("\tTest 0:\tWhen searching for a valid nonce at a low difficulty.")
		{
			blockHash := common.HexToHash("0x3bd1df7a7b2178d02e9e06e165947a485e50f0b8888665cff59a1cb4cd3dc65f")
			problem := pow.NewProblem(blockHash, uint256.NewInt(4))

			var solution pow.Solution
			for nonce := uint64(0); ; nonce++ {
				candidate := pow.Solution{Nonce: uint256.NewInt(nonce)}
				if pow.Validate(problem, candidate) {
					solution = candidate
					break
				}
				if nonce > 10_000 {
					t.Fatalf("\t%s\tTest 0:\tShould find a solution within the nonce budget.", failed)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould find a solution within the nonce budget.", success)

			if pow.Validate(pow.NewProblem(blockHash, new(uint256.Int).Lsh(uint256.NewInt(1), 255)), solution) {
				t.Fatalf("\t%s\tTest 0:\tShould reject the solution at an extreme difficulty.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould reject the solution at an extreme difficulty.", success)
		}

		t.Log("\tTest 1:\tWhen the difficulty is one.")
		{
			problem := pow.NewProblem(common.Hash{}, uint256.NewInt(1))
			if !pow.Validate(problem, pow.Solution{Nonce: uint256.NewInt(12345)}) {
				t.Fatalf("\t%s\tTest 1:\tShould accept any nonce.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould accept any nonce.", success)
		}
	}
}
