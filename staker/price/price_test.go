// Copyright (c) 2025 The TruStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package price

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trustake/staker/near"
)

func TestZeroSupplyPrice(t *testing.T) {
	p := Of(near.NEAR(100), big.NewInt(0), big.NewInt(0), 500)
	assert.Equal(t, near.SharePriceScale, p.Num)
	assert.Equal(t, big.NewInt(1), p.Denom)
}

func TestFeeDeduction(t *testing.T) {
	// total 346, supply 200, tax exempt 246, fee 5%:
	// taxable = 100, fee in value = 5, price = (346-5)/200 = 1.705
	p := Of(near.NEAR(346), near.NEAR(200), near.NEAR(246), 500)

	// 1.705 in SCALE units
	expected := new(big.Int).Mul(big.NewInt(1705), new(big.Int).Exp(big.NewInt(10), big.NewInt(21), nil))
	assert.Equal(t, expected, new(big.Int).Quo(p.Num, p.Denom))

	// exact rational check: num/denom == 341*SCALE/200
	lhs := new(big.Int).Mul(p.Num, near.NEAR(200))
	rhs := new(big.Int).Mul(new(big.Int).Mul(near.NEAR(341), near.SharePriceScale), p.Denom)
	assert.Equal(t, 0, lhs.Cmp(rhs))
}

func TestPriceMonotonicity(t *testing.T) {
	supply := near.NEAR(200)
	taxExempt := near.NEAR(100)

	prev := new(big.Int)
	for _, staked := range []int64{100, 150, 200, 1000} {
		p := Of(near.NEAR(staked), supply, taxExempt, 500)
		cur := new(big.Int).Quo(p.Num, p.Denom)
		assert.True(t, cur.Cmp(prev) >= 0, "price must not decrease in total staked")
		prev = cur
	}

	prevFee := Of(near.NEAR(300), supply, taxExempt, 0)
	for _, fee := range []uint64{100, 500, 9999} {
		p := Of(near.NEAR(300), supply, taxExempt, fee)
		a := new(big.Int).Mul(p.Num, prevFee.Denom)
		b := new(big.Int).Mul(prevFee.Num, p.Denom)
		assert.True(t, a.Cmp(b) <= 0, "price must not increase in fee")
		prevFee = p
	}
}

func TestConversionRoundTripFavorsVault(t *testing.T) {
	p := Of(near.NEAR(347), near.NEAR(200), near.NEAR(150), 700)

	for _, v := range []int64{1, 3, 17, 100} {
		value := near.NEAR(v)

		// rounding down on both legs: the caller can never come out ahead
		down := p.ToAssets(p.ToShares(value, false), false)
		assert.True(t, down.Cmp(value) <= 0, "caller must not gain from a round trip")

		// rounding up on both legs: the vault can never be shorted
		up := p.ToAssets(p.ToShares(value, true), true)
		assert.True(t, up.Cmp(value) >= 0, "vault must not lose from a round trip")
	}
}

func TestStakeAtParMintsOneToOne(t *testing.T) {
	p := Of(big.NewInt(0), big.NewInt(0), big.NewInt(0), 0)
	shares := p.ToShares(near.NEAR(10), false)
	assert.Equal(t, near.NEAR(10), shares)
}

func TestEqual(t *testing.T) {
	a := Of(near.NEAR(300), near.NEAR(200), near.NEAR(300), 500)
	b := Of(near.NEAR(300), near.NEAR(200), near.NEAR(300), 500)
	c := Of(near.NEAR(301), near.NEAR(200), near.NEAR(300), 0)
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}
