// Copyright (c) 2025 The TruStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package price implements the share price engine.
//
// The price is an exact rational so no precision is lost between the two
// conversion directions. The reward fee is deducted inside the numerator:
// minting the corresponding treasury shares afterwards leaves the price
// unchanged, which is the invariant fee collection depends on.
package price

import (
	"math/big"

	"github.com/trustake/staker/bn"
	"github.com/trustake/staker/near"
)

// Price is the value/share exchange ratio as an exact rational,
// scaled by near.SharePriceScale.
type Price struct {
	Num   *big.Int
	Denom *big.Int
}

// Of computes the current share price from the vault totals.
// With no shares outstanding the price is exactly 1.0.
func Of(totalStaked, sharesSupply, taxExemptStake *big.Int, fee uint64) Price {
	if sharesSupply.Sign() == 0 {
		return Price{
			Num:   new(big.Int).Set(near.SharePriceScale),
			Denom: big.NewInt(1),
		}
	}

	// the taxable amount is the accrued rewards not yet charged a fee
	taxable := bn.SatSub(totalStaked, taxExemptStake)
	taxedTotal := new(big.Int).Sub(
		bn.Mul(totalStaked, big.NewInt(near.FeePrecision)),
		bn.Mul(taxable, new(big.Int).SetUint64(fee)),
	)
	return Price{
		Num:   bn.Mul(taxedTotal, near.SharePriceScale),
		Denom: bn.Mul(sharesSupply, big.NewInt(near.FeePrecision)),
	}
}

// ToShares converts a value amount to shares with the given rounding.
func (p Price) ToShares(assets *big.Int, roundUp bool) *big.Int {
	return bn.MulDiv(assets, p.Denom, p.unscaledNum(), roundUp)
}

// ToAssets converts a share amount to value with the given rounding.
func (p Price) ToAssets(shares *big.Int, roundUp bool) *big.Int {
	return bn.MulDiv(shares, p.unscaledNum(), p.Denom, roundUp)
}

// Equal reports whether two prices are numerically equal at integer
// precision. Distribution treats equal prices as "nothing accrued".
func (p Price) Equal(other Price) bool {
	a := new(big.Int).Quo(p.Num, p.Denom)
	b := new(big.Int).Quo(other.Num, other.Denom)
	return a.Cmp(b) == 0
}

// unscaledNum strips the scaling factor off the numerator. The integer
// division mirrors the conversion order of the accounting engine exactly:
// changing it would shift rounding against the vault.
func (p Price) unscaledNum() *big.Int {
	return new(big.Int).Quo(p.Num, near.SharePriceScale)
}
