// Copyright (c) 2025 The TruStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"

	"github.com/trustake/staker/near"
	"github.com/trustake/staker/staker/pool"
)

// requireOwner gates the administrative surface. The caller holds the mutex.
func (s *Staker) requireOwner(caller near.AccountID) error {
	if caller != s.owner {
		return ErrNotOwner
	}
	return nil
}

// Pause stops all user-facing operations. Owner only.
func (s *Staker) Pause(caller near.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireOwner(caller); err != nil {
		return err
	}
	s.paused = true
	logger.Warn("vault paused", "by", caller)
	s.persist()
	return nil
}

// Unpause resumes user-facing operations. Owner only.
func (s *Staker) Unpause(caller near.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireOwner(caller); err != nil {
		return err
	}
	s.paused = false
	logger.Warn("vault unpaused", "by", caller)
	s.persist()
	return nil
}

// ManualUnlock clears a reentrancy flag left behind by a lost continuation.
// Owner only. The stuck operation's captured state is simply dropped.
func (s *Staker) ManualUnlock(caller near.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireOwner(caller); err != nil {
		return err
	}
	if !s.locked {
		return ErrNotUnlockable
	}
	s.locked = false
	logger.Warn("vault manually unlocked", "by", caller)
	return nil
}

// SetFee changes the reward fee, in parts per near.FeePrecision. Owner only.
func (s *Staker) SetFee(caller near.AccountID, fee uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireOwner(caller); err != nil {
		return err
	}
	if fee >= near.FeePrecision {
		return ErrFeeTooLarge
	}
	logger.Info("fee changed", "from", s.fee, "to", fee)
	s.fee = fee
	s.persist()
	return nil
}

// SetDistributionFee changes the distribution fee. Owner only.
func (s *Staker) SetDistributionFee(caller near.AccountID, fee uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireOwner(caller); err != nil {
		return err
	}
	if fee >= near.FeePrecision {
		return ErrFeeTooLarge
	}
	logger.Info("distribution fee changed", "from", s.distributionFee, "to", fee)
	s.distributionFee = fee
	s.persist()
	return nil
}

// SetMinDeposit changes the minimum stake deposit, at least one base unit.
// Owner only.
func (s *Staker) SetMinDeposit(caller near.AccountID, minDeposit *big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireOwner(caller); err != nil {
		return err
	}
	if minDeposit == nil || minDeposit.Cmp(near.OneNEAR) < 0 {
		return ErrMinDepositTooSmall
	}
	s.minDeposit = new(big.Int).Set(minDeposit)
	logger.Info("minimum deposit changed", "minDeposit", s.minDeposit)
	s.persist()
	return nil
}

// SetTreasury changes the fee-receiving account. Owner only.
func (s *Staker) SetTreasury(caller, treasury near.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireOwner(caller); err != nil {
		return err
	}
	if treasury.IsZero() {
		return ErrInvalidAccount
	}
	s.treasury = treasury
	s.token.Register(treasury)
	logger.Info("treasury changed", "treasury", treasury)
	s.persist()
	return nil
}

// SetDefaultPool changes the pool used when operations name none. The pool
// must be registered and enabled. Owner only.
func (s *Staker) SetDefaultPool(caller, poolID near.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireOwner(caller); err != nil {
		return err
	}
	if _, err := s.pools.GetEnabled(poolID); err != nil {
		return err
	}
	s.defaultPool = poolID
	logger.Info("default pool changed", "pool", poolID)
	s.persist()
	return nil
}

// AddPool registers a new enabled delegation pool with its client. Owner
// only.
func (s *Staker) AddPool(caller, poolID near.AccountID, client pool.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireOwner(caller); err != nil {
		return err
	}
	if poolID.IsZero() {
		return ErrInvalidAccount
	}
	if client == nil {
		return ErrClientMissing
	}
	if _, err := s.pools.Add(poolID); err != nil {
		return err
	}
	s.clients[poolID] = client
	if s.defaultPool.IsZero() {
		s.defaultPool = poolID
	}
	logger.Info("pool added", "pool", poolID)
	s.persist()
	return nil
}

// EnablePool re-enables a disabled pool. Owner only.
func (s *Staker) EnablePool(caller, poolID near.AccountID) error {
	return s.setPoolState(caller, poolID, pool.StateEnabled)
}

// DisablePool stops new stakes to a pool. Unstakes and withdraws remain
// possible so principals can exit. Owner only.
func (s *Staker) DisablePool(caller, poolID near.AccountID) error {
	return s.setPoolState(caller, poolID, pool.StateDisabled)
}

func (s *Staker) setPoolState(caller, poolID near.AccountID, state pool.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireOwner(caller); err != nil {
		return err
	}
	if err := s.pools.SetState(poolID, state); err != nil {
		return err
	}
	logger.Info("pool state changed", "pool", poolID, "state", state)
	s.persist()
	return nil
}

// TransferOwnership starts a two-step ownership handover. Owner only.
func (s *Staker) TransferOwnership(caller, newOwner near.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireOwner(caller); err != nil {
		return err
	}
	if newOwner.IsZero() || newOwner == s.owner {
		return ErrInvalidAccount
	}
	s.pendingOwner = newOwner
	logger.Info("ownership transfer started", "pendingOwner", newOwner)
	s.persist()
	return nil
}

// ClaimOwnership completes a pending ownership handover. Pending owner only.
func (s *Staker) ClaimOwnership(caller near.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pendingOwner.IsZero() {
		return ErrNoPendingOwner
	}
	if caller != s.pendingOwner {
		return ErrNotPendingOwner
	}
	logger.Info("ownership transferred", "from", s.owner, "to", caller)
	s.owner = caller
	s.pendingOwner = near.AccountID("")
	s.token.Register(s.owner)
	s.persist()
	return nil
}
