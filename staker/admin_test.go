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

func TestPauseBlocksOperations(t *testing.T) {
	e := newEnv(t)
	e.whitelist(alice)

	assert.ErrorIs(t, e.s.Pause(alice), ErrNotOwner)
	require.NoError(t, e.s.Pause(owner))
	assert.True(t, e.s.IsPaused())

	_, err := e.s.Stake(alice, near.NEAR(10))
	assert.ErrorIs(t, err, ErrPaused)
	_, err = e.s.Withdraw(alice, 1)
	assert.ErrorIs(t, err, ErrPaused)
	assert.ErrorIs(t, e.s.Allocate(alice, bob, near.NEAR(2), near.StorageCost), ErrPaused)

	require.NoError(t, e.s.Unpause(owner))
	e.stake(alice, 10)
}

func TestSetters(t *testing.T) {
	e := newEnv(t)

	assert.ErrorIs(t, e.s.SetFee(alice, 100), ErrNotOwner)
	assert.ErrorIs(t, e.s.SetFee(owner, near.FeePrecision), ErrFeeTooLarge)
	require.NoError(t, e.s.SetFee(owner, 100))

	assert.ErrorIs(t, e.s.SetDistributionFee(owner, near.FeePrecision+1), ErrFeeTooLarge)
	require.NoError(t, e.s.SetDistributionFee(owner, 50))

	assert.ErrorIs(t, e.s.SetMinDeposit(owner, big.NewInt(10)), ErrMinDepositTooSmall)
	require.NoError(t, e.s.SetMinDeposit(owner, near.NEAR(2)))
	info := e.s.Info()
	assert.Equal(t, uint64(100), info.Fee)
	assert.Equal(t, uint64(50), info.DistributionFee)
	assert.Equal(t, near.NEAR(2), info.MinDeposit)

	assert.ErrorIs(t, e.s.SetTreasury(owner, near.AccountID("")), ErrInvalidAccount)
	require.NoError(t, e.s.SetTreasury(owner, carol))
	assert.Equal(t, carol, e.s.Info().Treasury)
}

func TestDefaultPoolManagement(t *testing.T) {
	e := newEnv(t)

	// the default pool must be registered and enabled
	assert.Error(t, e.s.SetDefaultPool(owner, poolB))
	e.addPool(poolB)
	require.NoError(t, e.s.SetDefaultPool(owner, poolB))
	assert.Equal(t, poolB, e.s.Info().DefaultPool)

	require.NoError(t, e.s.DisablePool(owner, poolB))
	assert.Error(t, e.s.SetDefaultPool(owner, poolB))
}

func TestOwnershipHandover(t *testing.T) {
	e := newEnv(t)

	assert.ErrorIs(t, e.s.ClaimOwnership(alice), ErrNoPendingOwner)
	assert.ErrorIs(t, e.s.TransferOwnership(owner, owner), ErrInvalidAccount)

	require.NoError(t, e.s.TransferOwnership(owner, alice))
	assert.ErrorIs(t, e.s.ClaimOwnership(bob), ErrNotPendingOwner)

	require.NoError(t, e.s.ClaimOwnership(alice))
	assert.Equal(t, alice, e.s.Info().Owner)
	assert.True(t, e.s.Info().PendingOwner.IsZero())

	// the old owner lost the administrative surface
	assert.ErrorIs(t, e.s.Pause(owner), ErrNotOwner)
	require.NoError(t, e.s.Pause(alice))
}
