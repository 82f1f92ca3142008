// Copyright (c) 2025 The TruStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"

	"github.com/trustake/staker/bn"
	"github.com/trustake/staker/near"
)

// CollectFees charges the reward fee on the value accrued since the last
// collection, minting the equivalent shares to the treasury. Agent only.
//
// The price already carries the fee deduction in its numerator, so minting
// the treasury shares at that same price leaves the price unchanged.
func (s *Staker) CollectFees(caller near.AccountID) (*big.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.paused {
		return nil, ErrPaused
	}
	if err := s.requireAgent(caller); err != nil {
		return nil, err
	}
	if s.locked {
		return nil, ErrLocked
	}
	if !s.inSync() {
		return nil, ErrNotInSync
	}

	pr := s.currentPrice()
	taxable := bn.SatSub(s.totalStaked, s.taxExemptStake)
	feeValue := bn.MulDiv(taxable, new(big.Int).SetUint64(s.fee), big.NewInt(near.FeePrecision), false)
	feeShares := pr.ToShares(feeValue, false)
	if feeShares.Sign() == 0 {
		logger.Debug("no fees to collect", "taxable", taxable)
		return new(big.Int), nil
	}

	s.token.Mint(s.treasury, feeShares)
	s.taxExemptStake = new(big.Int).Set(s.totalStaked)

	logger.Info("fees collected", "value", feeValue, "shares", feeShares, "treasury", s.treasury)
	s.persist()
	s.updateGauges()
	return feeShares, nil
}
