// Copyright (c) 2025 The TruStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import "github.com/pkg/errors"

// Precondition violations. All are raised synchronously, before any remote
// call is issued and before any state changes.
var (
	ErrPaused         = errors.New("contract is paused")
	ErrLocked         = errors.New("another operation is in progress")
	ErrNotOwner       = errors.New("caller is not the owner")
	ErrNotAgent       = errors.New("caller is not an agent")
	ErrNotWhitelisted = errors.New("caller is not whitelisted")
	ErrNotInSync      = errors.New("total staked is out of sync, refresh first")

	ErrBelowMinDeposit = errors.New("deposit is below the minimum")
	ErrStorageDeposit  = errors.New("attached deposit does not cover storage cost")

	ErrInvalidUnstakeAmount   = errors.New("invalid unstake amount")
	ErrUnstakeLocked          = errors.New("pool is inside its unlock window")
	ErrInsufficientPoolStake  = errors.New("pool has less staked than requested")
	ErrInvalidNonce           = errors.New("unstake request does not exist")
	ErrNotRequestOwner        = errors.New("caller does not own the unstake request")
	ErrWithdrawNotReady       = errors.New("unstake request has not matured")
	ErrInsufficientShares     = errors.New("insufficient share balance")
	ErrInsufficientDeposit    = errors.New("attached deposit does not cover the payout")
	ErrInvalidRecipient       = errors.New("invalid recipient")
	ErrAllocationTooSmall     = errors.New("allocation amount is below one base unit")
	ErrNoAllocations          = errors.New("caller has no allocations")
	ErrNoAllocation           = errors.New("no allocation to this recipient")
	ErrExcessiveDeallocation  = errors.New("deallocation exceeds the allocated amount")
	ErrAllocationRemainder    = errors.New("remaining allocation would be below one base unit")
	ErrFeeTooLarge            = errors.New("fee must be below the fee precision")
	ErrMinDepositTooSmall     = errors.New("minimum deposit must be at least one base unit")
	ErrNoPendingOwner         = errors.New("no ownership transfer is pending")
	ErrNotPendingOwner        = errors.New("caller is not the pending owner")
	ErrAlreadyAgent           = errors.New("account is already an agent")
	ErrOwnerAgent             = errors.New("owner cannot be managed as an agent")
	ErrUserStatusNoop         = errors.New("user already has the requested status")
	ErrNotUnlockable          = errors.New("vault is not locked")
	ErrInvalidAccount         = errors.New("invalid account id")
	ErrClientMissing          = errors.New("no client configured for pool")
)
