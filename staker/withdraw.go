// Copyright (c) 2025 The TruStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"context"
	"math/big"
	"time"

	"github.com/pkg/errors"

	"github.com/trustake/staker/near"
)

// Withdraw redeems a matured unstake request, paying its owner the
// requested value plus the storage deposit refund.
//
// Each nonce pays out exactly once: the request is deleted on successful
// finalization and a second call fails with ErrInvalidNonce. If the tracked
// withdrawn balance cannot cover the request the finalization is aborted
// without mutation, leaving the nonce claimable for a later retry.
func (s *Staker) Withdraw(caller near.AccountID, nonce uint64) (*Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.paused {
		return nil, ErrPaused
	}
	if err := s.requireWhitelisted(caller); err != nil {
		return nil, err
	}
	req, ok := s.requests[nonce]
	if !ok {
		return nil, ErrInvalidNonce
	}
	if req.Owner != caller {
		return nil, ErrNotRequestOwner
	}
	epoch := s.epochs.EpochHeight()
	if req.Epoch+near.EpochsToUnlock > epoch {
		return nil, ErrWithdrawNotReady
	}
	p, err := s.pools.Get(req.Pool)
	if err != nil {
		return nil, err
	}
	client, ok := s.clients[req.Pool]
	if !ok {
		return nil, errors.Wrap(ErrClientMissing, req.Pool.String())
	}
	if err := s.acquireLock(); err != nil {
		return nil, err
	}

	// pull whatever matured value still sits on the pool before paying out
	pull := p.HasMaturedUnstake(epoch)
	pullAmount := new(big.Int).Set(p.TotalUnstaked)

	r := newReceipt()
	r.nonce = nonce
	started := time.Now()
	logger.Debug("withdraw dispatched", "caller", caller, "nonce", nonce, "pull", pull)

	s.goes.Go(func() {
		var err error
		if pull {
			err = client.Withdraw(context.Background(), pullAmount)
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		if err != nil {
			logger.Warn("withdraw failed on pool", "pool", req.Pool, "nonce", nonce, "err", err)
			s.settle(r, "withdraw", started, err)
			return
		}
		if pull {
			s.withdrawnAmount.Add(s.withdrawnAmount, pullAmount)
			p.TotalUnstaked = new(big.Int)
		}

		if s.withdrawnAmount.Cmp(req.Amount) < 0 {
			// should not happen; leave the request claimable rather than
			// paying out partially
			logger.Error("withdrawn balance cannot cover request",
				"nonce", nonce, "requested", req.Amount, "withdrawn", s.withdrawnAmount)
			s.persist()
			s.settle(r, "withdraw", started, errors.New("withdrawn balance below requested amount"))
			return
		}

		s.withdrawnAmount.Sub(s.withdrawnAmount, req.Amount)
		delete(s.requests, nonce)
		payout := new(big.Int).Add(req.Amount, near.StorageCost)
		r.amount = payout
		if serr := s.bank.Send(req.Owner, payout); serr != nil {
			logger.Error("withdraw payout failed", "to", req.Owner, "amount", payout, "err", serr)
		}

		logger.Info("withdraw settled", "caller", caller, "nonce", nonce, "payout", payout)
		s.persist()
		s.settle(r, "withdraw", started, nil)
	})
	return r, nil
}
