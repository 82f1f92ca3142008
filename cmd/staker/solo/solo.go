// Copyright (c) 2025 The TruStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package solo runs a simulated delegation network for local development.
// Epochs advance on a wall clock timer and each pool accrues rewards at a
// fixed rate per epoch, so share price movement can be observed without a
// live network.
package solo

import (
	"context"
	"math/big"
	"time"

	"github.com/trustake/staker/bn"
	"github.com/trustake/staker/log"
	"github.com/trustake/staker/near"
	"github.com/trustake/staker/staker/pool"
	"github.com/trustake/staker/staker/pool/pooltest"
)

var logger = log.WithContext("pkg", "solo")

// Net is a set of simulated delegation pools sharing one epoch clock.
type Net struct {
	clock     *pooltest.Clock
	pools     map[near.AccountID]*pooltest.Pool
	rewardBPS uint64
}

// New creates a simulated network with one pool per id.
func New(poolIDs []near.AccountID, rewardBPS uint64) *Net {
	clock := pooltest.NewClock(1)
	pools := make(map[near.AccountID]*pooltest.Pool, len(poolIDs))
	for _, id := range poolIDs {
		pools[id] = pooltest.NewPool(clock)
	}
	return &Net{
		clock:     clock,
		pools:     pools,
		rewardBPS: rewardBPS,
	}
}

// Clock returns the shared epoch source.
func (n *Net) Clock() *pooltest.Clock {
	return n.clock
}

// Clients returns the pool client bindings for the vault.
func (n *Net) Clients() map[near.AccountID]pool.Client {
	clients := make(map[near.AccountID]pool.Client, len(n.pools))
	for id, p := range n.pools {
		clients[id] = p
	}
	return clients
}

// Run advances epochs until ctx is done, accruing rewards at each boundary.
func (n *Net) Run(ctx context.Context, epochDuration time.Duration) {
	ticker := time.NewTicker(epochDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n.clock.Advance(1)
			n.accrue(ctx)
			logger.Info("📦 new epoch", "epoch", n.clock.EpochHeight())
		}
	}
}

func (n *Net) accrue(ctx context.Context) {
	bps := new(big.Int).SetUint64(n.rewardBPS)
	for id, p := range n.pools {
		staked, err := p.StakedBalance(ctx)
		if err != nil {
			continue
		}
		reward := bn.MulDiv(staked, bps, big.NewInt(near.FeePrecision), false)
		if reward.Sign() == 0 {
			continue
		}
		p.AccrueReward(reward)
		logger.Debug("accrued reward", "pool", id, "amount", reward)
	}
}

// Bank pays out by logging. Solo mode has no asset transport.
type Bank struct{}

// Send implements the vault's bank interface.
func (b *Bank) Send(to near.AccountID, amount *big.Int) error {
	logger.Info("💸 sent", "to", to, "amount", amount)
	return nil
}
