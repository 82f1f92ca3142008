// Copyright (c) 2025 The TruStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trustake/staker/near"
)

func sumOfBalances(l *Ledger) *big.Int {
	sum := new(big.Int)
	for _, id := range l.Accounts() {
		sum.Add(sum, l.BalanceOf(id))
	}
	return sum
}

func TestMintBurnTransfer(t *testing.T) {
	l := New()
	alice := near.AccountID("alice.near")
	bob := near.AccountID("bob.near")

	l.Mint(alice, big.NewInt(100))
	assert.Equal(t, big.NewInt(100), l.BalanceOf(alice))
	assert.Equal(t, big.NewInt(100), l.TotalSupply())

	// transfers require a registered receiver
	err := l.Transfer(alice, bob, big.NewInt(40))
	assert.ErrorIs(t, err, ErrNotRegistered)

	l.Register(bob)
	require.NoError(t, l.Transfer(alice, bob, big.NewInt(40)))
	assert.Equal(t, big.NewInt(60), l.BalanceOf(alice))
	assert.Equal(t, big.NewInt(40), l.BalanceOf(bob))
	assert.Equal(t, big.NewInt(100), l.TotalSupply())

	err = l.Burn(alice, big.NewInt(100))
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	require.NoError(t, l.Burn(alice, big.NewInt(60)))
	assert.Equal(t, big.NewInt(0), l.BalanceOf(alice))
	assert.Equal(t, big.NewInt(40), l.TotalSupply())

	// zero balance accounts persist
	assert.True(t, l.IsRegistered(alice))
	assert.Equal(t, sumOfBalances(l), l.TotalSupply())
}

func TestBalanceCopiesAreIsolated(t *testing.T) {
	l := New()
	alice := near.AccountID("alice.near")
	l.Mint(alice, big.NewInt(10))

	l.BalanceOf(alice).SetInt64(999)
	assert.Equal(t, big.NewInt(10), l.BalanceOf(alice))

	l.TotalSupply().SetInt64(999)
	assert.Equal(t, big.NewInt(10), l.TotalSupply())
}

func TestMeta(t *testing.T) {
	m := Meta()
	assert.Equal(t, "TruNEAR", m.Symbol)
	assert.Equal(t, uint8(24), m.Decimals)
}
