// Copyright (c) 2025 The TruStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package pooltest provides an in-memory delegation pool for tests and for
// solo mode, with injectable failures and simulated staking rewards.
package pooltest

import (
	"context"
	"math/big"
	"sync"

	"github.com/pkg/errors"

	"github.com/trustake/staker/near"
)

// Clock is a manually advanced epoch source.
type Clock struct {
	mu    sync.Mutex
	epoch uint64
}

// NewClock creates a clock at the given epoch.
func NewClock(epoch uint64) *Clock {
	return &Clock{epoch: epoch}
}

// EpochHeight returns the current epoch.
func (c *Clock) EpochHeight() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch
}

// Advance moves the clock forward by n epochs.
func (c *Clock) Advance(n uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch += n
}

// Pool simulates one delegation pool. Accrued rewards only become visible to
// balance reads, like the real pool's epoch-settled accounting.
type Pool struct {
	mu           sync.Mutex
	clock        *Clock
	staked       *big.Int
	unstaked     *big.Int
	unstakeEpoch *uint64

	// injectable failures, cleared by the caller
	StakeErr    error
	UnstakeErr  error
	WithdrawErr error
	PingErr     error
	BalanceErr  error
}

// NewPool creates an empty simulated pool on the given clock.
func NewPool(clock *Clock) *Pool {
	return &Pool{
		clock:    clock,
		staked:   new(big.Int),
		unstaked: new(big.Int),
	}
}

// AccrueReward adds staking rewards to the staked balance, as the validator
// would between epochs.
func (p *Pool) AccrueReward(amount *big.Int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.staked.Add(p.staked, amount)
}

// DepositAndStake implements pool.Client.
func (p *Pool) DepositAndStake(_ context.Context, amount *big.Int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.StakeErr != nil {
		return p.StakeErr
	}
	p.staked.Add(p.staked, amount)
	return nil
}

// Unstake implements pool.Client.
func (p *Pool) Unstake(_ context.Context, amount *big.Int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.UnstakeErr != nil {
		return p.UnstakeErr
	}
	if p.staked.Cmp(amount) < 0 {
		return errors.New("pooltest: unstake exceeds staked balance")
	}
	p.staked.Sub(p.staked, amount)
	p.unstaked.Add(p.unstaked, amount)
	epoch := p.clock.EpochHeight()
	p.unstakeEpoch = &epoch
	return nil
}

// Withdraw implements pool.Client.
func (p *Pool) Withdraw(_ context.Context, amount *big.Int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.WithdrawErr != nil {
		return p.WithdrawErr
	}
	if p.unstakeEpoch != nil && *p.unstakeEpoch+near.EpochsToUnlock > p.clock.EpochHeight() {
		return errors.New("pooltest: unstaked balance not yet unlocked")
	}
	if p.unstaked.Cmp(amount) < 0 {
		return errors.New("pooltest: withdraw exceeds unstaked balance")
	}
	p.unstaked.Sub(p.unstaked, amount)
	return nil
}

// Ping implements pool.Client.
func (p *Pool) Ping(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.PingErr
}

// StakedBalance implements pool.Client.
func (p *Pool) StakedBalance(_ context.Context) (*big.Int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.BalanceErr != nil {
		return nil, p.BalanceErr
	}
	return new(big.Int).Set(p.staked), nil
}

// UnstakedBalance implements pool.Client.
func (p *Pool) UnstakedBalance(_ context.Context) (*big.Int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.BalanceErr != nil {
		return nil, p.BalanceErr
	}
	return new(big.Int).Set(p.unstaked), nil
}

// TotalBalance implements pool.Client.
func (p *Pool) TotalBalance(_ context.Context) (*big.Int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.BalanceErr != nil {
		return nil, p.BalanceErr
	}
	return new(big.Int).Add(p.staked, p.unstaked), nil
}

// Bank records outbound transfers from the vault.
type Bank struct {
	mu        sync.Mutex
	transfers []Transfer

	// SendErr fails the next transfer when set.
	SendErr error
}

// Transfer is one recorded payout.
type Transfer struct {
	To     near.AccountID
	Amount *big.Int
}

// NewBank creates an empty transfer recorder.
func NewBank() *Bank {
	return &Bank{}
}

// Send records the transfer.
func (b *Bank) Send(to near.AccountID, amount *big.Int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.SendErr != nil {
		return b.SendErr
	}
	b.transfers = append(b.transfers, Transfer{To: to, Amount: new(big.Int).Set(amount)})
	return nil
}

// Transfers returns all recorded payouts in order.
func (b *Bank) Transfers() []Transfer {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Transfer, len(b.transfers))
	copy(out, b.transfers)
	return out
}

// SentTo sums all payouts to one account.
func (b *Bank) SentTo(to near.AccountID) *big.Int {
	b.mu.Lock()
	defer b.mu.Unlock()
	sum := new(big.Int)
	for _, tr := range b.transfers {
		if tr.To == to {
			sum.Add(sum, tr.Amount)
		}
	}
	return sum
}
