// Copyright (c) 2025 The TruStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trustake/staker/near"
)

func TestWithdrawPaysOutOnce(t *testing.T) {
	e := newEnv(t)
	e.whitelist(alice)
	e.stake(alice, 10)
	nonce := e.unstake(alice, near.NEAR(4))

	e.clock.Advance(near.EpochsToUnlock)
	r := e.settle(e.s.Withdraw(alice, nonce))

	// the payout is the requested value plus the storage deposit refund
	want := new(big.Int).Add(near.NEAR(4), near.StorageCost)
	assert.Equal(t, want, r.Amount())
	assert.Equal(t, want, e.bank.SentTo(alice))

	info := e.s.Info()
	assert.Zero(t, info.WithdrawnAmount.Sign())
	assert.Zero(t, e.s.Pools()[0].TotalUnstaked.Sign())

	// the nonce pays out exactly once
	_, err := e.s.Withdraw(alice, nonce)
	assert.ErrorIs(t, err, ErrInvalidNonce)
	assert.Equal(t, want, e.bank.SentTo(alice))
}

func TestWithdrawPreconditions(t *testing.T) {
	e := newEnv(t)
	e.whitelist(alice, bob)
	e.stake(alice, 10)
	nonce := e.unstake(alice, near.NEAR(4))

	_, err := e.s.Withdraw(alice, 99)
	assert.ErrorIs(t, err, ErrInvalidNonce)

	_, err = e.s.Withdraw(bob, nonce)
	assert.ErrorIs(t, err, ErrNotRequestOwner)

	_, err = e.s.Withdraw(alice, nonce)
	assert.ErrorIs(t, err, ErrWithdrawNotReady)

	e.clock.Advance(near.EpochsToUnlock - 1)
	_, err = e.s.Withdraw(alice, nonce)
	assert.ErrorIs(t, err, ErrWithdrawNotReady)
}

func TestWithdrawRemoteFailureLeavesRequestClaimable(t *testing.T) {
	e := newEnv(t)
	e.whitelist(alice)
	e.stake(alice, 10)
	nonce := e.unstake(alice, near.NEAR(4))
	e.clock.Advance(near.EpochsToUnlock)

	e.pools[poolA].WithdrawErr = errors.New("pool unreachable")
	err := e.settleErr(e.s.Withdraw(alice, nonce))
	assert.Error(t, err)

	// no payout, the request survives for a retry
	assert.Zero(t, e.bank.SentTo(alice).Sign())
	assert.True(t, e.s.IsClaimable(nonce))
	assert.False(t, e.s.IsLocked())

	e.pools[poolA].WithdrawErr = nil
	e.settle(e.s.Withdraw(alice, nonce))
	assert.Equal(t, new(big.Int).Add(near.NEAR(4), near.StorageCost), e.bank.SentTo(alice))
}

func TestWithdrawAfterEarlierPull(t *testing.T) {
	e := newEnv(t)
	e.whitelist(alice)
	e.stake(alice, 10)

	// the second unstake pulls the first's matured value into the vault
	first := e.unstake(alice, near.NEAR(2))
	e.clock.Advance(near.EpochsToUnlock)
	e.refresh()
	second := e.unstake(alice, near.NEAR(3))

	// the first request finalizes from the already-withdrawn balance
	r := e.settle(e.s.Withdraw(alice, first))
	assert.Equal(t, new(big.Int).Add(near.NEAR(2), near.StorageCost), r.Amount())

	// the second still needs its own maturity
	_, err := e.s.Withdraw(alice, second)
	assert.ErrorIs(t, err, ErrWithdrawNotReady)

	e.clock.Advance(near.EpochsToUnlock)
	r = e.settle(e.s.Withdraw(alice, second))
	assert.Equal(t, new(big.Int).Add(near.NEAR(3), near.StorageCost), r.Amount())
}
