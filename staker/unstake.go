// Copyright (c) 2025 The TruStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"context"
	"math/big"
	"time"

	"github.com/pkg/errors"

	"github.com/trustake/staker/bn"
	"github.com/trustake/staker/near"
)

// Unstake requests value back from the default pool.
func (s *Staker) Unstake(caller near.AccountID, amount, deposit *big.Int) (*Receipt, error) {
	return s.UnstakeFromPool(caller, near.AccountID(""), amount, deposit)
}

// UnstakeFromPool burns shares and requests the value back from a named
// pool, creating a nonce'd unstake request that matures after the unlock
// window. The attached deposit covers the request's storage cost and is
// refunded on failure.
//
// Shares are burned and the vault totals decremented before the remote call;
// a remote failure rolls both back.
func (s *Staker) UnstakeFromPool(caller, poolID near.AccountID, amount, deposit *big.Int) (*Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.paused {
		return nil, ErrPaused
	}
	if err := s.requireWhitelisted(caller); err != nil {
		return nil, err
	}
	if poolID.IsZero() {
		poolID = s.defaultPool
	}
	p, err := s.pools.Get(poolID)
	if err != nil {
		return nil, err
	}
	client, ok := s.clients[poolID]
	if !ok {
		return nil, errors.Wrap(ErrClientMissing, poolID.String())
	}
	if !s.inSync() {
		return nil, ErrNotInSync
	}
	if deposit == nil || deposit.Cmp(near.StorageCost) < 0 {
		return nil, ErrStorageDeposit
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidUnstakeAmount
	}

	pr := s.currentPrice()
	balance := s.token.BalanceOf(caller)
	maxWithdraw := pr.ToAssets(balance, false)
	if amount.Cmp(maxWithdraw) > 0 {
		return nil, ErrInvalidUnstakeAmount
	}

	epoch := s.epochs.EpochHeight()
	if !p.UnstakeAvailable(epoch) {
		return nil, ErrUnstakeLocked
	}

	// no dust remainders: a near-full unstake takes the whole balance
	amount = new(big.Int).Set(amount)
	if bn.SatSub(maxWithdraw, amount).Cmp(near.OneNEAR) < 0 {
		amount.Set(maxWithdraw)
	}
	if amount.Cmp(p.TotalStaked) > 0 {
		return nil, ErrInsufficientPoolStake
	}

	var shares *big.Int
	if amount.Cmp(maxWithdraw) == 0 {
		shares = balance
	} else {
		// round up so the burned shares fully cover the unstaked value
		shares = bn.Min(pr.ToShares(amount, true), balance)
	}

	if err := s.acquireLock(); err != nil {
		return nil, err
	}

	// pessimistic accounting, rolled back in the failure branch
	if err := s.token.Burn(caller, shares); err != nil {
		s.releaseLock()
		return nil, err
	}
	prevTaxExempt := new(big.Int).Set(s.taxExemptStake)
	s.totalStaked = bn.SatSub(s.totalStaked, amount)
	s.taxExemptStake = bn.SatSub(s.taxExemptStake, amount)

	// matured unstaked value still on the pool must be pulled first, or the
	// new unstake would reset its unlock timer on top of it
	pullFirst := p.HasMaturedUnstake(epoch)
	pullAmount := new(big.Int).Set(p.TotalUnstaked)
	storageDeposit := new(big.Int).Set(deposit)

	r := newReceipt()
	r.amount = amount
	started := time.Now()
	logger.Debug("unstake dispatched",
		"caller", caller, "pool", poolID, "amount", amount, "shares", shares, "pullFirst", pullFirst)

	s.goes.Go(func() {
		ctx := context.Background()
		var err error
		if pullFirst {
			err = client.Withdraw(ctx, pullAmount)
		}
		if err == nil {
			err = client.Unstake(ctx, amount)
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		if err != nil {
			logger.Warn("unstake failed on pool, rolling back",
				"pool", poolID, "amount", amount, "err", err)
			s.token.Mint(caller, shares)
			s.totalStaked.Add(s.totalStaked, amount)
			restored := new(big.Int).Add(s.taxExemptStake, amount)
			s.taxExemptStake = bn.Min(restored, prevTaxExempt)
			if serr := s.bank.Send(caller, storageDeposit); serr != nil {
				logger.Error("storage deposit refund failed", "to", caller, "err", serr)
			}
			s.settle(r, "unstake", started, err)
			return
		}

		if pullFirst {
			s.withdrawnAmount.Add(s.withdrawnAmount, pullAmount)
			p.TotalUnstaked = new(big.Int).Set(amount)
		} else {
			p.TotalUnstaked.Add(p.TotalUnstaked, amount)
		}
		p.TotalStaked = bn.SatSub(p.TotalStaked, amount)
		requestEpoch := epoch
		p.LastUnstakeEpoch = &requestEpoch

		s.unstakeNonce++
		nonce := s.unstakeNonce
		s.requests[nonce] = &UnstakeRequest{
			Pool:   poolID,
			Owner:  caller,
			Amount: new(big.Int).Set(amount),
			Epoch:  epoch,
		}
		r.nonce = nonce

		if excess := new(big.Int).Sub(storageDeposit, near.StorageCost); excess.Sign() > 0 {
			if serr := s.bank.Send(caller, excess); serr != nil {
				logger.Error("excess deposit refund failed", "to", caller, "err", serr)
			}
		}

		logger.Info("unstake settled",
			"caller", caller, "pool", poolID, "amount", amount, "nonce", nonce, "epoch", epoch)
		s.persist()
		s.settle(r, "unstake", started, nil)
	})
	return r, nil
}
