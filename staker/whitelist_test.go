// Copyright (c) 2025 The TruStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trustake/staker/near"
)

func TestAgents(t *testing.T) {
	e := newEnv(t)

	assert.True(t, e.s.IsAgent(owner))
	assert.False(t, e.s.IsAgent(alice))

	assert.ErrorIs(t, e.s.AddAgent(alice, bob), ErrNotOwner)
	assert.ErrorIs(t, e.s.AddAgent(owner, owner), ErrOwnerAgent)

	require.NoError(t, e.s.AddAgent(owner, alice))
	assert.ErrorIs(t, e.s.AddAgent(owner, alice), ErrAlreadyAgent)
	assert.True(t, e.s.IsAgent(alice))
	assert.Equal(t, []near.AccountID{alice}, e.s.Agents())

	// agents manage the whitelist but not other agents
	require.NoError(t, e.s.SetUserStatus(alice, bob, StatusWhitelisted))
	assert.ErrorIs(t, e.s.AddAgent(alice, carol), ErrNotOwner)

	require.NoError(t, e.s.RemoveAgent(owner, alice))
	assert.False(t, e.s.IsAgent(alice))
	assert.ErrorIs(t, e.s.RemoveAgent(owner, alice), ErrNotAgent)
}

func TestUserStatus(t *testing.T) {
	e := newEnv(t)

	assert.Equal(t, StatusNone, e.s.UserStatusOf(alice))

	assert.ErrorIs(t, e.s.SetUserStatus(alice, bob, StatusWhitelisted), ErrNotAgent)

	require.NoError(t, e.s.SetUserStatus(owner, alice, StatusWhitelisted))
	assert.Equal(t, StatusWhitelisted, e.s.UserStatusOf(alice))
	assert.ErrorIs(t, e.s.SetUserStatus(owner, alice, StatusWhitelisted), ErrUserStatusNoop)

	require.NoError(t, e.s.SetUserStatus(owner, alice, StatusBlacklisted))
	_, err := e.s.Stake(alice, near.NEAR(10))
	assert.ErrorIs(t, err, ErrNotWhitelisted)

	require.NoError(t, e.s.SetUserStatus(owner, alice, StatusNone))
	assert.Equal(t, StatusNone, e.s.UserStatusOf(alice))
}
