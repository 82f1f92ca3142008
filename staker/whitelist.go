// Copyright (c) 2025 The TruStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"sort"

	"github.com/trustake/staker/near"
	"github.com/trustake/staker/store"
)

// UserStatus is the whitelist state of an account.
type UserStatus uint8

const (
	StatusNone UserStatus = iota
	StatusWhitelisted
	StatusBlacklisted
)

func (u UserStatus) String() string {
	switch u {
	case StatusWhitelisted:
		return "WHITELISTED"
	case StatusBlacklisted:
		return "BLACKLISTED"
	default:
		return "NO_STATUS"
	}
}

// isAgent reports whether the account may manage the whitelist. The owner is
// implicitly an agent. The caller holds the mutex.
func (s *Staker) isAgent(id near.AccountID) bool {
	return id == s.owner || s.agents[id]
}

// requireAgent gates whitelist management. The caller holds the mutex.
func (s *Staker) requireAgent(caller near.AccountID) error {
	if !s.isAgent(caller) {
		return ErrNotAgent
	}
	return nil
}

// requireWhitelisted gates the user-facing operations. The caller holds the
// mutex.
func (s *Staker) requireWhitelisted(caller near.AccountID) error {
	if s.users[caller] != StatusWhitelisted {
		return ErrNotWhitelisted
	}
	return nil
}

// AddAgent grants whitelist management to an account. Owner only; the owner
// itself cannot be managed as an agent.
func (s *Staker) AddAgent(caller, agent near.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if caller != s.owner {
		return ErrNotOwner
	}
	if agent == s.owner {
		return ErrOwnerAgent
	}
	if s.agents[agent] {
		return ErrAlreadyAgent
	}
	s.agents[agent] = true
	logger.Info("agent added", "agent", agent)
	s.persist()
	return nil
}

// RemoveAgent revokes an agent. Owner only.
func (s *Staker) RemoveAgent(caller, agent near.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if caller != s.owner {
		return ErrNotOwner
	}
	if agent == s.owner {
		return ErrOwnerAgent
	}
	if !s.agents[agent] {
		return ErrNotAgent
	}
	delete(s.agents, agent)
	logger.Info("agent removed", "agent", agent)
	s.persist()
	return nil
}

// IsAgent reports whether the account may manage the whitelist.
func (s *Staker) IsAgent(id near.AccountID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isAgent(id)
}

// Agents lists the explicit agents, owner excluded.
func (s *Staker) Agents() []near.AccountID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedAccounts(s.agents)
}

// SetUserStatus moves a user to the given whitelist status. Agent only;
// StatusNone removes the record.
func (s *Staker) SetUserStatus(caller, user near.AccountID, status UserStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireAgent(caller); err != nil {
		return err
	}
	if user.IsZero() {
		return ErrInvalidAccount
	}
	if s.users[user] == status {
		return ErrUserStatusNoop
	}
	if status == StatusNone {
		delete(s.users, user)
	} else {
		s.users[user] = status
	}
	logger.Info("user status changed", "user", user, "status", status)
	s.persist()
	return nil
}

// UserStatusOf returns the user's whitelist status.
func (s *Staker) UserStatusOf(user near.AccountID) UserStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[user]
}

func sortedAccounts(set map[near.AccountID]bool) []near.AccountID {
	ids := make([]near.AccountID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func sortUserRecords(recs []store.UserRecord) {
	sort.Slice(recs, func(i, j int) bool { return recs[i].ID < recs[j].ID })
}
