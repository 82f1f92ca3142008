// Copyright (c) 2025 The TruStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package bn

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMulDiv(t *testing.T) {
	assert.Equal(t, big.NewInt(6), MulDiv(big.NewInt(3), big.NewInt(4), big.NewInt(2), false))

	// 7*3/2 = 10.5
	assert.Equal(t, big.NewInt(10), MulDiv(big.NewInt(7), big.NewInt(3), big.NewInt(2), false))
	assert.Equal(t, big.NewInt(11), MulDiv(big.NewInt(7), big.NewInt(3), big.NewInt(2), true))

	// exact division never rounds up
	assert.Equal(t, big.NewInt(21), MulDiv(big.NewInt(7), big.NewInt(6), big.NewInt(2), true))
}

func TestMulDivLargeOperands(t *testing.T) {
	// u128-scale operands must survive the extended precision intermediate
	x, _ := new(big.Int).SetString("340282366920938463463374607431768211455", 10) // 2^128-1
	got := MulDiv(x, x, x, false)
	assert.Equal(t, x, got)
}

func TestMulDivPanics(t *testing.T) {
	assert.Panics(t, func() {
		MulDiv(big.NewInt(1), big.NewInt(1), big.NewInt(0), false)
	})

	huge := new(big.Int).Lsh(big.NewInt(1), 200)
	assert.Panics(t, func() {
		MulDiv(huge, huge, big.NewInt(1), false)
	})
	assert.Panics(t, func() {
		Mul(huge, huge)
	})
}

func TestSatSub(t *testing.T) {
	assert.Equal(t, big.NewInt(3), SatSub(big.NewInt(5), big.NewInt(2)))
	assert.Equal(t, big.NewInt(0), SatSub(big.NewInt(2), big.NewInt(5)))
	assert.Equal(t, big.NewInt(0), SatSub(big.NewInt(2), big.NewInt(2)))
}

func TestMin(t *testing.T) {
	assert.Equal(t, big.NewInt(2), Min(big.NewInt(5), big.NewInt(2)))
	assert.Equal(t, big.NewInt(2), Min(big.NewInt(2), big.NewInt(5)))
}
