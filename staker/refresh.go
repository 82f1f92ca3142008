// Copyright (c) 2025 The TruStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"context"
	"math/big"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/trustake/staker/bn"
	"github.com/trustake/staker/staker/pool"
)

// Refresh reconciles the vault's believed totals against every registered
// pool and stamps the current epoch, opening the in-sync gate.
//
// The per-pool ping and balance query pairs run concurrently and are joined
// all-or-nothing: one failing pool aborts the refresh with no mutation.
func (s *Staker) Refresh() (*Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.pools.IDs()
	records := make([]*pool.Pool, len(ids))
	clients := make([]pool.Client, len(ids))
	for i, id := range ids {
		p, _ := s.pools.Get(id)
		client, ok := s.clients[id]
		if !ok {
			return nil, ErrClientMissing
		}
		records[i] = p
		clients[i] = client
	}
	if err := s.acquireLock(); err != nil {
		return nil, err
	}

	r := newReceipt()
	started := time.Now()
	logger.Debug("refresh dispatched", "pools", len(ids))

	s.goes.Go(func() {
		totals := make([]*big.Int, len(ids))
		group, ctx := errgroup.WithContext(context.Background())
		for i := range ids {
			group.Go(func() error {
				if err := clients[i].Ping(ctx); err != nil {
					return err
				}
				total, err := clients[i].TotalBalance(ctx)
				if err != nil {
					return err
				}
				totals[i] = total
				return nil
			})
		}
		err := group.Wait()

		s.mu.Lock()
		defer s.mu.Unlock()

		if err != nil {
			logger.Warn("refresh aborted, keeping previous totals", "err", err)
			s.settle(r, "refresh", started, err)
			return
		}

		epoch := s.epochs.EpochHeight()
		sum := new(big.Int)
		for i, p := range records {
			p.TotalStaked = bn.SatSub(totals[i], p.TotalUnstaked)
			sum.Add(sum, p.TotalStaked)
			logger.Debug("pool refreshed",
				"pool", ids[i], "staked", p.TotalStaked, "unstaked", p.TotalUnstaked)
		}
		s.totalStaked = sum
		s.totalStakedUpdatedAt = epoch
		r.amount = new(big.Int).Set(sum)

		logger.Info("refresh settled", "totalStaked", s.totalStaked, "epoch", epoch)
		s.persist()
		s.settle(r, "refresh", started, nil)
	})
	return r, nil
}

// IsInSync reports whether the totals were refreshed within the current
// epoch.
func (s *Staker) IsInSync() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inSync()
}
