// Copyright (c) 2025 The TruStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"context"
	"math/big"
)

// Client is the remote interface of one delegation pool, invoked
// asynchronously by the settlement engine. A failed call carries no payload
// beyond the error.
type Client interface {
	// DepositAndStake attaches amount to the pool and stakes it.
	DepositAndStake(ctx context.Context, amount *big.Int) error
	// Unstake requests amount to be unstaked, starting the unlock window.
	Unstake(ctx context.Context, amount *big.Int) error
	// Withdraw pulls matured unstaked value back to the vault.
	Withdraw(ctx context.Context, amount *big.Int) error
	// Ping forces the pool to settle its own epoch accounting.
	Ping(ctx context.Context) error

	// StakedBalance returns the vault's staked balance on the pool.
	StakedBalance(ctx context.Context) (*big.Int, error)
	// UnstakedBalance returns the vault's unstaked balance on the pool.
	UnstakedBalance(ctx context.Context) (*big.Int, error)
	// TotalBalance returns the vault's staked plus unstaked balance.
	TotalBalance(ctx context.Context) (*big.Int, error)
}
