package numeric

import (
	"math/big"

	"github.com/holiman/uint256"
)

// MaxAmount is the ceiling of the 128-bit amount domain shared by the staking,
// burn and rate modules. Saturating helpers clamp against it instead of
// wrapping or panicking.
var MaxAmount = func() *big.Int {
	max := new(big.Int).Lsh(big.NewInt(1), 128)
	return max.Sub(max, big.NewInt(1))
}()

// Clamp bounds the supplied value into [0, MaxAmount]. Nil and negative inputs
// collapse to zero.
func Clamp(v *big.Int) *big.Int {
	if v == nil || v.Sign() < 0 {
		return big.NewInt(0)
	}
	if v.Cmp(MaxAmount) > 0 {
		return new(big.Int).Set(MaxAmount)
	}
	return new(big.Int).Set(v)
}

// SatAdd returns a+b saturating at MaxAmount.
func SatAdd(a, b *big.Int) *big.Int {
	x, overflow := toWord(a)
	if overflow {
		return new(big.Int).Set(MaxAmount)
	}
	y, overflow := toWord(b)
	if overflow {
		return new(big.Int).Set(MaxAmount)
	}
	sum, carry := new(uint256.Int).AddOverflow(x, y)
	if carry {
		return new(big.Int).Set(MaxAmount)
	}
	return Clamp(sum.ToBig())
}

// SatSub returns a-b flooring at zero.
func SatSub(a, b *big.Int) *big.Int {
	av := Clamp(a)
	bv := Clamp(b)
	if av.Cmp(bv) <= 0 {
		return big.NewInt(0)
	}
	return av.Sub(av, bv)
}

// SatMul returns a*b saturating at MaxAmount.
func SatMul(a, b *big.Int) *big.Int {
	x, overflow := toWord(a)
	if overflow {
		return new(big.Int).Set(MaxAmount)
	}
	y, overflow := toWord(b)
	if overflow {
		return new(big.Int).Set(MaxAmount)
	}
	if x.IsZero() || y.IsZero() {
		return big.NewInt(0)
	}
	product, overflow := new(uint256.Int).MulOverflow(x, y)
	if overflow {
		return new(big.Int).Set(MaxAmount)
	}
	return Clamp(product.ToBig())
}

// Div returns a/b truncating toward zero. A zero divisor yields zero; callers
// are expected to reject zero divisors during configuration validation so the
// branch never fires on the hot path.
func Div(a, b *big.Int) *big.Int {
	if b == nil || b.Sign() == 0 {
		return big.NewInt(0)
	}
	return new(big.Int).Quo(Clamp(a), b)
}

// AddWouldOverflow reports whether a+b exceeds MaxAmount. It backs the single
// hard-failure path the burn tracker exposes for its lifetime total.
func AddWouldOverflow(a, b *big.Int) bool {
	sum := new(big.Int).Add(Clamp(a), Clamp(b))
	return sum.Cmp(MaxAmount) > 0
}

func toWord(v *big.Int) (*uint256.Int, bool) {
	if v == nil || v.Sign() <= 0 {
		return new(uint256.Int), false
	}
	return uint256.FromBig(v)
}
