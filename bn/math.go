// Copyright (c) 2025 The TruStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package bn implements the fixed point arithmetic used by the share
// accounting engine. All intermediates are bounded to 256 bits; exceeding
// that range, or dividing by zero, indicates a modeling bug and panics.
package bn

import (
	"math/big"

	"github.com/holiman/uint256"
)

var big1 = big.NewInt(1)

// Mul returns a*b, panicking if the product does not fit in 256 bits.
func Mul(a, b *big.Int) *big.Int {
	return check256(new(big.Int).Mul(a, b))
}

// MulDiv returns x*y/d with the product computed in extended precision.
// When roundUp is set and the division is inexact, the result is incremented.
func MulDiv(x, y, d *big.Int, roundUp bool) *big.Int {
	if d.Sign() == 0 {
		panic("bn: division by zero")
	}
	product := check256(new(big.Int).Mul(x, y))
	quo, rem := new(big.Int).QuoRem(product, d, new(big.Int))
	if roundUp && rem.Sign() != 0 {
		quo.Add(quo, big1)
	}
	return quo
}

// SatSub returns a-b, flooring at zero. Small negative drift from remote
// rounding must never wrap the ledger.
func SatSub(a, b *big.Int) *big.Int {
	if a.Cmp(b) < 0 {
		return new(big.Int)
	}
	return new(big.Int).Sub(a, b)
}

// Min returns the smaller of a and b.
func Min(a, b *big.Int) *big.Int {
	if a.Cmp(b) < 0 {
		return new(big.Int).Set(a)
	}
	return new(big.Int).Set(b)
}

func check256(v *big.Int) *big.Int {
	if _, overflow := uint256.FromBig(v); overflow {
		panic("bn: multiplication overflow")
	}
	return v
}
