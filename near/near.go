// Copyright (c) 2025 The TruStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package near holds base types and protocol constants of the host chain.
package near

import "math/big"

// AccountID identifies an account on the host chain.
type AccountID string

// IsZero returns true if the account id is unset.
func (a AccountID) IsZero() bool {
	return a == ""
}

func (a AccountID) String() string {
	return string(a)
}

// FeePrecision is the denominator of all fee rates, i.e. fee 1000 = 10%.
const FeePrecision = 10000

// EpochsToUnlock is the number of epochs until an unstaked amount becomes withdrawable.
const EpochsToUnlock uint64 = 4

// storageBytes approximates the bytes consumed by an unstake request or allocation record.
const storageBytes = 200

var (
	// OneNEAR is 1 NEAR in yocto.
	OneNEAR = NEAR(1)

	// SharePriceScale keeps the share price numerator an integer after fee deduction.
	SharePriceScale = NEAR(1)

	// StorageByteCost is the host's price per byte of persisted state,
	// 10^19 yocto. Beyond the int64 range, so built by exponentiation.
	StorageByteCost = new(big.Int).Exp(big.NewInt(10), big.NewInt(19), nil)

	// StorageCost is the deposit required to create an unstake request or allocation.
	StorageCost = new(big.Int).Mul(StorageByteCost, big.NewInt(storageBytes))
)

// NEAR converts a whole NEAR amount to yocto.
// Callers must not mutate the result of package level vars derived from it.
func NEAR(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(24), nil))
}
