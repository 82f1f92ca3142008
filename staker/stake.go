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

var errNoIncrease = errors.New("no balance increase observed on pool")

// Stake deposits value into the default pool and mints shares at the
// pre-operation price.
func (s *Staker) Stake(caller near.AccountID, deposit *big.Int) (*Receipt, error) {
	return s.StakeToPool(caller, near.AccountID(""), deposit)
}

// StakeToPool deposits value into a named pool. An empty pool id selects the
// default pool.
//
// The minted share amount is fixed at dispatch time from the pre-operation
// price. On remote failure the deposit is refunded and nothing is minted.
func (s *Staker) StakeToPool(caller, poolID near.AccountID, deposit *big.Int) (*Receipt, error) {
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
	p, err := s.pools.GetEnabled(poolID)
	if err != nil {
		return nil, err
	}
	client, ok := s.clients[poolID]
	if !ok {
		return nil, errors.Wrap(ErrClientMissing, poolID.String())
	}
	if deposit == nil || deposit.Cmp(s.minDeposit) < 0 {
		return nil, ErrBelowMinDeposit
	}
	if !s.inSync() {
		return nil, ErrNotInSync
	}
	if err := s.acquireLock(); err != nil {
		return nil, err
	}

	amount := new(big.Int).Set(deposit)
	shares := s.currentPrice().ToShares(amount, false)
	r := newReceipt()
	r.amount = shares
	started := time.Now()
	logger.Debug("stake dispatched", "caller", caller, "pool", poolID, "amount", amount)

	s.goes.Go(func() {
		ctx := context.Background()
		err := client.DepositAndStake(ctx, amount)
		var total *big.Int
		if err == nil {
			total, err = client.TotalBalance(ctx)
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		if err != nil {
			logger.Warn("stake failed on pool, refunding", "pool", poolID, "amount", amount, "err", err)
			if serr := s.bank.Send(caller, amount); serr != nil {
				logger.Error("stake refund failed", "to", caller, "amount", amount, "err", serr)
			}
			s.settle(r, "stake", started, err)
			return
		}

		increased := bn.SatSub(total, new(big.Int).Add(p.TotalStaked, p.TotalUnstaked))
		if increased.Sign() == 0 {
			// the deposit already left for the pool; a later refresh
			// reconciles whatever actually landed
			logger.Error("stake settled without a balance increase", "pool", poolID, "amount", amount)
			s.settle(r, "stake", started, errNoIncrease)
			return
		}
		if increased.Cmp(amount) != 0 {
			logger.Debug("pool rounded the staked amount", "pool", poolID, "intended", amount, "observed", increased)
		}

		// credit the intended amount, not the observed increase: pool-side
		// rounding shortfall must not move the share price
		s.totalStaked.Add(s.totalStaked, amount)
		s.taxExemptStake.Add(s.taxExemptStake, amount)
		p.TotalStaked.Add(p.TotalStaked, amount)
		s.token.Register(caller)
		s.token.Mint(caller, shares)

		logger.Info("stake settled", "caller", caller, "pool", poolID, "amount", amount, "shares", shares)
		s.persist()
		s.settle(r, "stake", started, nil)
	})
	return r, nil
}
