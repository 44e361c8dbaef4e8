package pow

import "github.com/holiman/uint256"

// MaxUint256 is the largest representable 256 bit value. A boundary equal
// to MaxUint256 places no constraint on solutions, and a difficulty equal
// to MaxUint256 is the tightest constraint representable.
var MaxUint256 = new(uint256.Int).SetAllOne()

var one = uint256.NewInt(1)

// DifficultyToBoundary converts a difficulty to its target boundary.
// Basically just f(x) = 2^256 / x. A difficulty of one yields the
// no-constraint sentinel MaxUint256. A zero difficulty can never arise
// from valid chain state, so it panics.
func DifficultyToBoundary(difficulty *uint256.Int) *uint256.Int {
	if difficulty.IsZero() {
		panic("pow: difficulty is zero")
	}

	if difficulty.Eq(one) {
		return new(uint256.Int).Set(MaxUint256)
	}

	return invXTimes2Pow256Floor(difficulty)
}

// BoundaryToDifficulty converts a boundary back to its original
// difficulty. Basically just f(x) = 2^256 / x. A zero boundary can never
// arise from valid chain state, so it panics.
func BoundaryToDifficulty(boundary *uint256.Int) *uint256.Int {
	if boundary.IsZero() {
		panic("pow: boundary is zero")
	}

	if boundary.Eq(one) {
		return new(uint256.Int).Set(MaxUint256)
	}

	return invXTimes2Pow256Floor(boundary)
}

// invXTimes2Pow256Floor computes floor(2^256 / x) for 2 <= x < 2^256.
// 2^256 itself does not fit in 256 bits, so the quotient is taken against
// MaxUint256 and bumped by one when the remainder plus one reaches x,
// which accounts for 2^256 being MaxUint256 + 1.
func invXTimes2Pow256Floor(x *uint256.Int) *uint256.Int {
	div, mod := new(uint256.Int).DivMod(MaxUint256, x, new(uint256.Int))

	if mod.AddUint64(mod, 1).Eq(x) {
		div.AddUint64(div, 1)
	}

	return div
}
