// Copyright (c) 2025 The TruStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package near

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstants(t *testing.T) {
	one, ok := new(big.Int).SetString("1000000000000000000000000", 10)
	assert.True(t, ok)
	assert.Zero(t, OneNEAR.Cmp(one))
	assert.Zero(t, SharePriceScale.Cmp(one))

	byteCost, ok := new(big.Int).SetString("10000000000000000000", 10)
	assert.True(t, ok)
	assert.Zero(t, StorageByteCost.Cmp(byteCost))

	// 200 bytes per record
	storage, ok := new(big.Int).SetString("2000000000000000000000", 10)
	assert.True(t, ok)
	assert.Zero(t, StorageCost.Cmp(storage))

	assert.True(t, StorageCost.Cmp(OneNEAR) < 0)
}

func TestNEAR(t *testing.T) {
	assert.Zero(t, NEAR(0).Sign())
	assert.Zero(t, NEAR(3).Cmp(new(big.Int).Mul(big.NewInt(3), OneNEAR)))
}

func TestAccountID(t *testing.T) {
	assert.True(t, AccountID("").IsZero())
	assert.False(t, AccountID("alice.near").IsZero())
	assert.Equal(t, "alice.near", AccountID("alice.near").String())
}
