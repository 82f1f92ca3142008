// Copyright (c) 2025 The TruStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trustake/staker/near"
)

// doublePrice accrues enough rewards to move the share price from 1.0 to
// exactly 2.0 for a vault with fee 0 holding n staked.
func (e *env) doublePrice(n int64) {
	e.t.Helper()
	e.pools[poolA].AccrueReward(near.NEAR(n))
	e.clock.Advance(1)
	e.refresh()
}

func TestAllocateValidation(t *testing.T) {
	e := newEnv(t)
	e.whitelist(alice)
	e.stake(alice, 100)

	err := e.s.Allocate(alice, alice, near.NEAR(10), near.StorageCost)
	assert.ErrorIs(t, err, ErrInvalidRecipient)

	err = e.s.Allocate(alice, bob, big.NewInt(1), near.StorageCost)
	assert.ErrorIs(t, err, ErrAllocationTooSmall)

	// first allocation needs the storage deposit
	err = e.s.Allocate(alice, bob, near.NEAR(10), nil)
	assert.ErrorIs(t, err, ErrStorageDeposit)

	require.NoError(t, e.s.Allocate(alice, bob, near.NEAR(10), near.StorageCost))

	// top-ups do not
	require.NoError(t, e.s.Allocate(alice, bob, near.NEAR(5), nil))

	infos := e.s.Allocations(alice)
	require.Len(t, infos, 1)
	assert.Equal(t, near.NEAR(15), infos[0].Amount)
}

func TestAllocateRefundsExcessDeposit(t *testing.T) {
	e := newEnv(t)
	e.whitelist(alice)
	e.stake(alice, 100)

	deposit := new(big.Int).Add(near.StorageCost, near.NEAR(1))
	require.NoError(t, e.s.Allocate(alice, bob, near.NEAR(10), deposit))
	assert.Equal(t, near.NEAR(1), e.bank.SentTo(alice))
}

func TestAllocateMergesWeightedAverage(t *testing.T) {
	e := newEnvWithFees(t, 0, 0)
	e.whitelist(alice)
	e.stake(alice, 200)

	require.NoError(t, e.s.Allocate(alice, bob, near.NEAR(200), near.StorageCost))
	e.doublePrice(200)
	require.NoError(t, e.s.Allocate(alice, bob, near.NEAR(100), nil))

	_, avg := e.s.TotalAllocated(alice)
	// 300 / (200/1 + 100/2) = 1.2
	got := new(big.Int).Quo(avg.Num, avg.Denom)
	want := new(big.Int).Div(new(big.Int).Mul(big.NewInt(12), near.SharePriceScale), big.NewInt(10))
	assert.Equal(t, want, got)
}

func TestDeallocate(t *testing.T) {
	e := newEnv(t)
	e.whitelist(alice)
	e.stake(alice, 100)
	require.NoError(t, e.s.Allocate(alice, bob, near.NEAR(10), near.StorageCost))

	err := e.s.Deallocate(alice, carol, near.NEAR(1))
	assert.ErrorIs(t, err, ErrNoAllocation)

	err = e.s.Deallocate(alice, bob, near.NEAR(11))
	assert.ErrorIs(t, err, ErrExcessiveDeallocation)

	// a partial release may not leave dust behind
	nineAndAHalf := new(big.Int).Div(near.NEAR(19), big.NewInt(2))
	err = e.s.Deallocate(alice, bob, nineAndAHalf)
	assert.ErrorIs(t, err, ErrAllocationRemainder)

	require.NoError(t, e.s.Deallocate(alice, bob, near.NEAR(4)))
	infos := e.s.Allocations(alice)
	require.Len(t, infos, 1)
	assert.Equal(t, near.NEAR(6), infos[0].Amount)

	// zeroing out deletes the record and refunds the storage deposit
	require.NoError(t, e.s.Deallocate(alice, bob, near.NEAR(6)))
	assert.Empty(t, e.s.Allocations(alice))
	assert.Equal(t, near.StorageCost, e.bank.SentTo(alice))
}

func TestDistributeInShares(t *testing.T) {
	e := newEnvWithFees(t, 0, 100) // 1% distribution fee
	e.whitelist(alice)
	e.stake(alice, 100)
	require.NoError(t, e.s.Allocate(alice, bob, near.NEAR(100), near.StorageCost))

	// nothing accrued yet: a distribution is a no-op
	paid, err := e.s.DistributeRewards(alice, bob, false, nil)
	require.NoError(t, err)
	assert.Zero(t, paid.Sign())

	e.doublePrice(100)

	// 100 allocated at 1.0 needs 100 shares, at 2.0 only 50: 50 freed,
	// 0.5 fee to the treasury, 49.5 to the recipient
	paid, err = e.s.DistributeRewards(alice, bob, false, nil)
	require.NoError(t, err)

	half := new(big.Int).Div(near.OneNEAR, big.NewInt(2))
	wantNet := new(big.Int).Sub(near.NEAR(50), half)
	assert.Equal(t, wantNet, paid)
	assert.Equal(t, wantNet, e.s.ShareBalanceOf(bob))
	assert.Equal(t, half, e.s.ShareBalanceOf(treasury))
	assert.Equal(t, near.NEAR(50), e.s.ShareBalanceOf(alice))

	// conservation across the whole flow
	sum := new(big.Int).Add(e.s.ShareBalanceOf(alice), e.s.ShareBalanceOf(bob))
	sum.Add(sum, e.s.ShareBalanceOf(treasury))
	assert.Equal(t, e.s.ShareSupply(), sum)

	// the allocation price reset to the current price: nothing more accrues
	paid, err = e.s.DistributeRewards(alice, bob, false, nil)
	require.NoError(t, err)
	assert.Zero(t, paid.Sign())
}

func TestDistributeInAsset(t *testing.T) {
	e := newEnvWithFees(t, 0, 100)
	e.whitelist(alice)
	e.stake(alice, 100)
	require.NoError(t, e.s.Allocate(alice, bob, near.NEAR(100), near.StorageCost))
	e.doublePrice(100)

	// net 49.5 shares at price 2.0 owe 99; pay with 100 attached, 1 back
	paid, err := e.s.DistributeRewards(alice, bob, true, near.NEAR(100))
	require.NoError(t, err)
	assert.Equal(t, near.NEAR(99), paid)
	assert.Equal(t, near.NEAR(99), e.bank.SentTo(bob))
	assert.Equal(t, near.NEAR(1), e.bank.SentTo(alice))

	// the net shares stay with the source, only the fee leaves
	half := new(big.Int).Div(near.OneNEAR, big.NewInt(2))
	assert.Equal(t, new(big.Int).Sub(near.NEAR(100), half), e.s.ShareBalanceOf(alice))
	assert.Equal(t, half, e.s.ShareBalanceOf(treasury))
	assert.Zero(t, e.s.ShareBalanceOf(bob).Sign())

	// an insufficient attached value fails before anything moves
	require.NoError(t, e.s.Allocate(alice, carol, near.NEAR(50), near.StorageCost))
	e.pools[poolA].AccrueReward(near.NEAR(200))
	e.clock.Advance(1)
	e.refresh()
	_, err = e.s.DistributeRewards(alice, carol, true, near.NEAR(1))
	assert.ErrorIs(t, err, ErrInsufficientDeposit)
}

func TestDistributeAll(t *testing.T) {
	e := newEnvWithFees(t, 0, 0)
	e.whitelist(alice)
	e.stake(alice, 200)
	require.NoError(t, e.s.Allocate(alice, bob, near.NEAR(100), near.StorageCost))
	require.NoError(t, e.s.Allocate(alice, carol, near.NEAR(50), near.StorageCost))
	e.doublePrice(200)

	// bob: 100@1.0 -> 50 freed; carol: 50@1.0 -> 25 freed
	total, err := e.s.DistributeAll(alice, false, nil)
	require.NoError(t, err)
	assert.Equal(t, near.NEAR(75), total)
	assert.Equal(t, near.NEAR(50), e.s.ShareBalanceOf(bob))
	assert.Equal(t, near.NEAR(25), e.s.ShareBalanceOf(carol))

	// both reset: a second pass distributes nothing
	total, err = e.s.DistributeAll(alice, false, nil)
	require.NoError(t, err)
	assert.Zero(t, total.Sign())
}

func TestDistributeAllInAssetRefundsRemainder(t *testing.T) {
	e := newEnvWithFees(t, 0, 0)
	e.whitelist(alice)
	e.stake(alice, 200)
	require.NoError(t, e.s.Allocate(alice, bob, near.NEAR(100), near.StorageCost))
	require.NoError(t, e.s.Allocate(alice, carol, near.NEAR(50), near.StorageCost))
	e.doublePrice(200)

	// owes 100 to bob and 50 to carol; 160 attached, 10 back
	total, err := e.s.DistributeAll(alice, true, near.NEAR(160))
	require.NoError(t, err)
	assert.Equal(t, near.NEAR(150), total)
	assert.Equal(t, near.NEAR(100), e.bank.SentTo(bob))
	assert.Equal(t, near.NEAR(50), e.bank.SentTo(carol))
	assert.Equal(t, near.NEAR(10), e.bank.SentTo(alice))
}

func TestDistributeAllValidatesUpfront(t *testing.T) {
	e := newEnvWithFees(t, 0, 0)
	e.whitelist(alice)
	e.stake(alice, 200)
	require.NoError(t, e.s.Allocate(alice, bob, near.NEAR(40), near.StorageCost))
	require.NoError(t, e.s.Allocate(alice, carol, near.NEAR(40), near.StorageCost))
	e.doublePrice(200)

	// each allocation freed 20 shares worth 40 at the doubled price
	shares, value, feeShares := e.s.DistributionAmounts(alice)
	assert.Equal(t, near.NEAR(40), shares)
	assert.Equal(t, near.NEAR(80), value)
	assert.Zero(t, feeShares.Sign())

	bobShares, bobValue, _ := e.s.DistributionAmount(alice, bob)
	assert.Equal(t, near.NEAR(20), bobShares)
	assert.Equal(t, near.NEAR(40), bobValue)

	// 50 attached cannot cover the 80 owed: nobody is paid
	_, err := e.s.DistributeAll(alice, true, near.NEAR(50))
	assert.ErrorIs(t, err, ErrInsufficientDeposit)
	assert.Zero(t, e.bank.SentTo(bob).Sign())
	assert.Zero(t, e.bank.SentTo(carol).Sign())

	// with enough attached both recipients settle in one pass
	total, err := e.s.DistributeAll(alice, true, near.NEAR(80))
	require.NoError(t, err)
	assert.Equal(t, near.NEAR(80), total)
	assert.Equal(t, near.NEAR(40), e.bank.SentTo(bob))
	assert.Equal(t, near.NEAR(40), e.bank.SentTo(carol))
}

func TestDistributeGates(t *testing.T) {
	e := newEnv(t)
	e.whitelist(alice)
	e.stake(alice, 100)

	_, err := e.s.DistributeAll(alice, false, nil)
	assert.ErrorIs(t, err, ErrNoAllocations)

	_, err = e.s.DistributeRewards(alice, bob, false, nil)
	assert.ErrorIs(t, err, ErrNoAllocation)

	_, err = e.s.DistributeRewards(bob, alice, false, nil)
	assert.ErrorIs(t, err, ErrNotWhitelisted)

	require.NoError(t, e.s.Allocate(alice, bob, near.NEAR(10), near.StorageCost))
	e.clock.Advance(1)
	_, err = e.s.DistributeRewards(alice, bob, false, nil)
	assert.ErrorIs(t, err, ErrNotInSync)
}
