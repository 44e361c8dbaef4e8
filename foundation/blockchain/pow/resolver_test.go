package pow_test

import (
	"testing"

	"github.com/R-Song/conflux-go/foundation/blockchain/pow"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// chainStore is an in-memory header store that counts lookups so tests
// can observe whether the resolver walked the chain or served a cache
// hit.
type chainStore struct {
	headers map[common.Hash]pow.Header
	lookups int
}

func (cs *chainStore) HeaderByHash(hash common.Hash) (pow.Header, bool) {
	cs.lookups++
	header, exists := cs.headers[hash]
	return header, exists
}

// buildChain constructs a linear chain of length blocks above a zero
// timestamp genesis, spacing timestamps spacing seconds apart, all at the
// same difficulty. It returns the store and the hash of the tip.
func buildChain(length uint64, spacing uint64, difficulty *uint256.Int) (*chainStore, common.Hash) {
	cs := chainStore{
		headers: make(map[common.Hash]pow.Header),
	}

	hashFor := func(height uint64) common.Hash {
		var hash common.Hash
		hash[0] = byte(height >> 8)
		hash[1] = byte(height)
		hash[31] = 0xcc
		return hash
	}

	cs.headers[hashFor(0)] = pow.Header{
		Height:     0,
		Timestamp:  0,
		Difficulty: new(uint256.Int).Set(difficulty),
	}

	for height := uint64(1); height <= length; height++ {
		cs.headers[hashFor(height)] = pow.Header{
			ParentHash: hashFor(height - 1),
			Height:     height,
			Timestamp:  1_000 + height*spacing,
			Difficulty: new(uint256.Int).Set(difficulty),
		}
	}

	return &cs, hashFor(length)
}

func resolverConfig() pow.Config {
	return pow.Config{
		InitialDifficulty:               4,
		BlockGenerationPeriod:           1_000_000,
		DifficultyAdjustmentEpochPeriod: 20,
	}
}

func oneBlockPerEpoch(common.Hash) uint64 { return 1 }

func TestResolverSteadyState(t *testing.T) {
	t.Log("Given the need to resolve a steady-state epoch.")
	{
		t.Log("\tTest 0:\tWhen blocks arrive exactly at the target rate.")
		{
			cfg := resolverConfig()
			store, tip := buildChain(20, 1, uint256.NewInt(1000))
			resolver := pow.NewResolver(cfg, store, oneBlockPerEpoch)

			target := resolver.TargetDifficulty(tip)
			if !target.Eq(uint256.NewInt(1000)) {
				t.Fatalf("\t%s\tTest 0:\tShould hold the difficulty steady: got %v", failed, target)
			}
			t.Logf("\t%s\tTest 0:\tShould hold the difficulty steady.", success)
		}
	}
}

func TestResolverClamping(t *testing.T) {
	type table struct {
		name    string
		spacing uint64
		exp     *uint256.Int
	}

	// With 20 blocks counted over 19 intervals against a one second
	// generation period, halving the spacing doubles the raw target and
	// the adjustment bound clips it to ±50%.
	tt := []table{
		{name: "fast chain clipped high", spacing: 0, exp: uint256.NewInt(1500)},
		{name: "slow chain clipped low", spacing: 10, exp: uint256.NewInt(500)},
	}

	t.Log("Given the need to clamp the resolved target into the adjustment bound.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling the %s case.", testID, tst.name)
			{
				cfg := resolverConfig()

				var store *chainStore
				var tip common.Hash
				if tst.spacing == 0 {
					// Zero timespan falls back to the initial difficulty,
					// which then clamps to the lower bound. Build a burst
					// chain instead: all 19 intervals inside one second
					// buckets except a single second of total span.
					store, tip = buildChainWithSpan(20, 1, uint256.NewInt(1000))
				} else {
					store, tip = buildChain(20, tst.spacing, uint256.NewInt(1000))
				}

				resolver := pow.NewResolver(cfg, store, oneBlockPerEpoch)

				target := resolver.TargetDifficulty(tip)
				if !target.Eq(tst.exp) {
					t.Fatalf("\t%s\tTest %d:\tShould clamp to the bound: got %v, exp %v", failed, testID, target, tst.exp)
				}
				t.Logf("\t%s\tTest %d:\tShould clamp to the bound.", success, testID)
			}
		}
	}
}

// buildChainWithSpan builds a chain whose whole epoch elapses within the
// specified total span in seconds, compressing the block rate.
func buildChainWithSpan(length uint64, span uint64, difficulty *uint256.Int) (*chainStore, common.Hash) {
	cs := chainStore{
		headers: make(map[common.Hash]pow.Header),
	}

	hashFor := func(height uint64) common.Hash {
		var hash common.Hash
		hash[0] = byte(height >> 8)
		hash[1] = byte(height)
		hash[31] = 0xdd
		return hash
	}

	cs.headers[hashFor(0)] = pow.Header{
		Height:     0,
		Timestamp:  0,
		Difficulty: new(uint256.Int).Set(difficulty),
	}

	for height := uint64(1); height <= length; height++ {
		timestamp := uint64(1_000)
		if height == length {
			timestamp = 1_000 + span
		}
		cs.headers[hashFor(height)] = pow.Header{
			ParentHash: hashFor(height - 1),
			Height:     height,
			Timestamp:  timestamp,
			Difficulty: new(uint256.Int).Set(difficulty),
		}
	}

	return &cs, hashFor(length)
}

func TestResolverCaching(t *testing.T) {
	t.Log("Given the need to resolve each epoch only once.")
	{
		t.Log("\tTest 0:\tWhen resolving the same epoch boundary twice.")
		{
			cfg := resolverConfig()
			store, tip := buildChain(20, 1, uint256.NewInt(1000))
			resolver := pow.NewResolver(cfg, store, oneBlockPerEpoch)

			first := resolver.TargetDifficulty(tip)
			walked := store.lookups
			if walked == 0 {
				t.Fatalf("\t%s\tTest 0:\tShould walk the chain on the first resolution.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould walk the chain on the first resolution.", success)

			second := resolver.TargetDifficulty(tip)
			if store.lookups != walked {
				t.Fatalf("\t%s\tTest 0:\tShould serve the second resolution from cache: lookups went %d -> %d", failed, walked, store.lookups)
			}
			t.Logf("\t%s\tTest 0:\tShould serve the second resolution from cache.", success)

			if !first.Eq(second) {
				t.Fatalf("\t%s\tTest 0:\tShould return the identical value: %v vs %v", failed, first, second)
			}
			t.Logf("\t%s\tTest 0:\tShould return the identical value.", success)
		}
	}
}

func TestResolverEpochCounting(t *testing.T) {
	t.Log("Given the need to honor the DAG epoch membership rule.")
	{
		t.Log("\tTest 0:\tWhen each pivot block carries an extra epoch member.")
		{
			cfg := resolverConfig()
			store, tip := buildChain(20, 2, uint256.NewInt(1000))
			resolver := pow.NewResolver(cfg, store, func(common.Hash) uint64 { return 2 })

			// Forty blocks over the same 38 second span reads as a chain
			// running ~2% above rate; 1000*1_000_000*39/(38*1_000_000).
			target := resolver.TargetDifficulty(tip)
			if !target.Eq(uint256.NewInt(1026)) {
				t.Fatalf("\t%s\tTest 0:\tShould scale the target with the member count: got %v", failed, target)
			}
			t.Logf("\t%s\tTest 0:\tShould scale the target with the member count.", success)
		}
	}
}

func TestResolverPreconditions(t *testing.T) {
	t.Log("Given the need to treat resolver misuse as fatal.")
	{
		t.Log("\tTest 0:\tWhen resolving a height off the epoch boundary.")
		{
			cfg := resolverConfig()
			store, _ := buildChain(25, 1, uint256.NewInt(1000))
			resolver := pow.NewResolver(cfg, store, oneBlockPerEpoch)

			var tip common.Hash
			tip[1] = 25
			tip[31] = 0xcc

			func() {
				defer func() {
					if r := recover(); r == nil {
						t.Fatalf("\t%s\tTest 0:\tShould panic off the epoch boundary.", failed)
					}
					t.Logf("\t%s\tTest 0:\tShould panic off the epoch boundary.", success)
				}()
				resolver.TargetDifficulty(tip)
			}()
		}

		t.Log("\tTest 1:\tWhen resolving an unknown hash.")
		{
			cfg := resolverConfig()
			store, _ := buildChain(20, 1, uint256.NewInt(1000))
			resolver := pow.NewResolver(cfg, store, oneBlockPerEpoch)

			func() {
				defer func() {
					if r := recover(); r == nil {
						t.Fatalf("\t%s\tTest 1:\tShould panic on an unknown hash.", failed)
					}
					t.Logf("\t%s\tTest 1:\tShould panic on an unknown hash.", success)
				}()
				resolver.TargetDifficulty(common.HexToHash("0xffff000000000000000000000000000000000000000000000000000000000000"))
			}()
		}
	}
}
