// Copyright (c) 2025 The TruStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/trustake/staker/bn"
	"github.com/trustake/staker/near"
	"github.com/trustake/staker/staker/alloc"
)

// Allocate commits value toward a recipient's future yield claim at the
// current share price. A first allocation to a recipient requires an
// attached deposit covering its storage cost; any excess is refunded.
func (s *Staker) Allocate(caller, recipient near.AccountID, amount, deposit *big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.paused {
		return ErrPaused
	}
	if err := s.requireWhitelisted(caller); err != nil {
		return err
	}
	if s.locked {
		return ErrLocked
	}
	if recipient.IsZero() || recipient == caller {
		return ErrInvalidRecipient
	}
	if amount == nil || amount.Cmp(near.OneNEAR) < 0 {
		return ErrAllocationTooSmall
	}

	attached := new(big.Int)
	if deposit != nil {
		attached.Set(deposit)
	}
	existing, ok := s.allocations.Get(caller, recipient)
	required := new(big.Int)
	if !ok {
		required.Set(near.StorageCost)
	}
	if attached.Cmp(required) < 0 {
		return ErrStorageDeposit
	}

	global := s.currentPrice()
	if !ok {
		s.allocations.Set(caller, recipient, alloc.Allocation{
			Amount: new(big.Int).Set(amount),
			Price:  global,
		})
	} else {
		s.allocations.Set(caller, recipient, alloc.Merge(existing, amount, global))
	}

	if excess := new(big.Int).Sub(attached, required); excess.Sign() > 0 {
		if err := s.bank.Send(caller, excess); err != nil {
			logger.Error("allocation deposit refund failed", "to", caller, "err", err)
		}
	}

	logger.Info("allocated", "source", caller, "recipient", recipient, "amount", amount)
	s.persist()
	return nil
}

// Deallocate releases committed value. Zeroing the allocation deletes it and
// refunds its storage deposit; a partial release must leave at least one
// base unit committed.
func (s *Staker) Deallocate(caller, recipient near.AccountID, amount *big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.paused {
		return ErrPaused
	}
	if err := s.requireWhitelisted(caller); err != nil {
		return err
	}
	if s.locked {
		return ErrLocked
	}
	existing, ok := s.allocations.Get(caller, recipient)
	if !ok {
		return ErrNoAllocation
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrAllocationTooSmall
	}
	if amount.Cmp(existing.Amount) > 0 {
		return ErrExcessiveDeallocation
	}

	remaining := new(big.Int).Sub(existing.Amount, amount)
	if remaining.Sign() == 0 {
		s.allocations.Remove(caller, recipient)
		if err := s.bank.Send(caller, near.StorageCost); err != nil {
			logger.Error("storage deposit refund failed", "to", caller, "err", err)
		}
	} else {
		if remaining.Cmp(near.OneNEAR) < 0 {
			return ErrAllocationRemainder
		}
		s.allocations.Set(caller, recipient, alloc.Allocation{
			Amount: remaining,
			Price:  existing.Price,
		})
	}

	logger.Info("deallocated", "source", caller, "recipient", recipient, "amount", amount)
	s.persist()
	return nil
}

// payout is the result of one distribution.
type payout struct {
	shares *big.Int // net shares after the distribution fee
	value  *big.Int // value paid out, in-asset mode only
	fee    *big.Int // fee shares credited to the treasury
}

// distributeTo settles the accrued yield of one (source, recipient) pair at
// the current price. In-asset mode pays the recipient from the running
// attached value and the net shares stay with the source; in-share mode
// transfers the net shares. The allocation's price is reset to the current
// price afterwards. The caller holds the mutex.
func (s *Staker) distributeTo(source, recipient near.AccountID, inAsset bool, remaining *big.Int) (payout, error) {
	a, ok := s.allocations.Get(source, recipient)
	if !ok {
		return payout{}, ErrNoAllocation
	}
	global := s.currentPrice()
	distributable := a.DistributableShares(global)
	out := payout{shares: new(big.Int), value: new(big.Int), fee: new(big.Int)}
	if distributable.Sign() == 0 {
		return out, nil
	}

	out.fee = bn.MulDiv(distributable, new(big.Int).SetUint64(s.distributionFee), big.NewInt(near.FeePrecision), false)
	out.shares = new(big.Int).Sub(distributable, out.fee)

	if inAsset {
		if s.token.BalanceOf(source).Cmp(out.fee) < 0 {
			return payout{}, ErrInsufficientShares
		}
		out.value = global.ToAssets(out.shares, false)
		if remaining.Cmp(out.value) < 0 {
			return payout{}, ErrInsufficientDeposit
		}
		if out.fee.Sign() > 0 {
			if err := s.token.Transfer(source, s.treasury, out.fee); err != nil {
				return payout{}, err
			}
		}
		remaining.Sub(remaining, out.value)
		if err := s.bank.Send(recipient, out.value); err != nil {
			logger.Error("distribution payout failed", "to", recipient, "amount", out.value, "err", err)
		}
	} else {
		if s.token.BalanceOf(source).Cmp(distributable) < 0 {
			return payout{}, ErrInsufficientShares
		}
		if out.fee.Sign() > 0 {
			if err := s.token.Transfer(source, s.treasury, out.fee); err != nil {
				return payout{}, err
			}
		}
		s.token.Register(recipient)
		if err := s.token.Transfer(source, recipient, out.shares); err != nil {
			return payout{}, err
		}
	}

	s.allocations.Set(source, recipient, alloc.Allocation{Amount: a.Amount, Price: global})
	return out, nil
}

// distributionTotals sums the source's currently distributable yield at the
// current price: gross shares, fee shares, net shares, and the in-asset
// value, with the same per-recipient rounding the payouts use. The caller
// holds the mutex.
func (s *Staker) distributionTotals(source near.AccountID) (gross, fee, net, value *big.Int) {
	global := s.currentPrice()
	feeRate := new(big.Int).SetUint64(s.distributionFee)
	gross, fee, net, value = new(big.Int), new(big.Int), new(big.Int), new(big.Int)
	for _, recipient := range s.allocations.Recipients(source) {
		a, _ := s.allocations.Get(source, recipient)
		distributable := a.DistributableShares(global)
		if distributable.Sign() == 0 {
			continue
		}
		f := bn.MulDiv(distributable, feeRate, big.NewInt(near.FeePrecision), false)
		n := new(big.Int).Sub(distributable, f)
		gross.Add(gross, distributable)
		fee.Add(fee, f)
		net.Add(net, n)
		value.Add(value, global.ToAssets(n, false))
	}
	return
}

// DistributeRewards settles the accrued yield of the caller's allocation to
// one recipient. In-asset mode pays from the attached deposit and refunds
// the excess; in-share mode transfers shares, registering the recipient's
// account if absent. Equal prices are a no-op.
func (s *Staker) DistributeRewards(caller, recipient near.AccountID, inAsset bool, deposit *big.Int) (*big.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.paused {
		return nil, ErrPaused
	}
	if err := s.requireWhitelisted(caller); err != nil {
		return nil, err
	}
	if s.locked {
		return nil, ErrLocked
	}
	if !s.inSync() {
		return nil, ErrNotInSync
	}

	remaining := new(big.Int)
	if deposit != nil {
		remaining.Set(deposit)
	}
	out, err := s.distributeTo(caller, recipient, inAsset, remaining)
	if err != nil {
		return nil, err
	}
	if inAsset {
		s.refundRemaining(caller, remaining)
	}

	logger.Info("rewards distributed",
		"source", caller, "recipient", recipient, "shares", out.shares, "value", out.value, "feeShares", out.fee)
	s.persist()
	s.updateGauges()
	if inAsset {
		return out.value, nil
	}
	return out.shares, nil
}

// DistributeAll settles the caller's allocations to every recipient,
// carrying a running attached-value remainder in in-asset mode. Recipients
// with nothing accrued are skipped; whatever value remains after the last
// payout is refunded.
func (s *Staker) DistributeAll(caller near.AccountID, inAsset bool, deposit *big.Int) (*big.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.paused {
		return nil, ErrPaused
	}
	if err := s.requireWhitelisted(caller); err != nil {
		return nil, err
	}
	if s.locked {
		return nil, ErrLocked
	}
	if !s.inSync() {
		return nil, ErrNotInSync
	}
	if !s.allocations.Has(caller) {
		return nil, ErrNoAllocations
	}

	remaining := new(big.Int)
	if deposit != nil {
		remaining.Set(deposit)
	}

	// validate the whole run before paying anyone, so insufficiency cannot
	// surface mid-loop with earlier recipients already paid
	gross, feeShares, _, totalValue := s.distributionTotals(caller)
	if inAsset {
		if s.token.BalanceOf(caller).Cmp(feeShares) < 0 {
			return nil, ErrInsufficientShares
		}
		if remaining.Cmp(totalValue) < 0 {
			return nil, ErrInsufficientDeposit
		}
	} else if s.token.BalanceOf(caller).Cmp(gross) < 0 {
		return nil, ErrInsufficientShares
	}

	total := new(big.Int)
	for _, recipient := range s.allocations.Recipients(caller) {
		out, err := s.distributeTo(caller, recipient, inAsset, remaining)
		if err != nil {
			// earlier payouts stand; return the unspent remainder
			if inAsset {
				s.refundRemaining(caller, remaining)
			}
			s.persist()
			return total, errors.Wrap(err, recipient.String())
		}
		if out.shares.Sign() == 0 {
			logger.Debug("nothing accrued, skipping", "source", caller, "recipient", recipient)
			continue
		}
		if inAsset {
			total.Add(total, out.value)
		} else {
			total.Add(total, out.shares)
		}
	}
	if inAsset {
		s.refundRemaining(caller, remaining)
	}

	logger.Info("all rewards distributed", "source", caller, "total", total, "inAsset", inAsset)
	s.persist()
	s.updateGauges()
	return total, nil
}

// refundRemaining returns unspent attached value. The caller holds the
// mutex.
func (s *Staker) refundRemaining(to near.AccountID, remaining *big.Int) {
	if remaining.Sign() <= 0 {
		return
	}
	if err := s.bank.Send(to, remaining); err != nil {
		logger.Error("attached value refund failed", "to", to, "amount", remaining, "err", err)
	}
	remaining.SetInt64(0)
}
