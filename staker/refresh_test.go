// Copyright (c) 2025 The TruStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trustake/staker/near"
)

func TestRefreshReconcilesTotals(t *testing.T) {
	e := newEnv(t)
	pb := e.addPool(poolB)
	e.whitelist(alice)

	e.stake(alice, 10)
	e.settle(e.s.StakeToPool(alice, poolB, near.NEAR(5)))

	// rewards landed on both pools since the last refresh
	e.pools[poolA].AccrueReward(near.NEAR(2))
	pb.AccrueReward(near.NEAR(1))
	e.clock.Advance(1)

	assert.False(t, e.s.IsInSync())
	e.refresh()
	assert.True(t, e.s.IsInSync())

	info := e.s.Info()
	assert.Equal(t, near.NEAR(18), info.TotalStaked)
	assert.Equal(t, info.CurrentEpoch, info.TotalStakedUpdatedAt)

	pools := e.s.Pools()
	require.Len(t, pools, 2)
	assert.Equal(t, near.NEAR(12), pools[0].TotalStaked)
	assert.Equal(t, near.NEAR(6), pools[1].TotalStaked)
}

func TestRefreshIsAllOrNothing(t *testing.T) {
	e := newEnv(t)
	pb := e.addPool(poolB)
	e.whitelist(alice)
	e.stake(alice, 10)
	e.clock.Advance(1)

	pb.PingErr = errors.New("pool unreachable")
	err := e.settleErr(e.s.Refresh())
	assert.Error(t, err)

	// one failing pool leaves every total untouched and the gate closed
	assert.False(t, e.s.IsInSync())
	assert.Equal(t, near.NEAR(10), e.s.Info().TotalStaked)
	assert.False(t, e.s.IsLocked())

	pb.PingErr = nil
	e.refresh()
	assert.True(t, e.s.IsInSync())
}
