// Copyright (c) 2025 The TruStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package pool tracks the vault's private ledger of each delegation pool.
//
// The recorded balances are the vault's belief, not a live view: remote reads
// are asynchronous, so they are refreshed by an explicit protocol step and
// otherwise trusted.
package pool

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/trustake/staker/near"
)

var (
	ErrExists       = errors.New("delegation pool already exists")
	ErrNotFound     = errors.New("delegation pool does not exist")
	ErrNotEnabled   = errors.New("delegation pool not enabled")
	ErrStateNoop    = errors.New("delegation pool already in requested state")
	ErrInsufficient = errors.New("insufficient funds on delegation pool")
)

// State is the life cycle state of a pool.
type State uint8

const (
	StateNone State = iota
	StateEnabled
	StateDisabled
)

func (s State) String() string {
	switch s {
	case StateEnabled:
		return "ENABLED"
	case StateDisabled:
		return "DISABLED"
	default:
		return "NONE"
	}
}

// Pool is the vault's record of one delegation pool.
// TotalUnstaked only decreases on a successful withdraw from the pool and
// LastUnstakeEpoch only moves forward.
type Pool struct {
	State            State
	TotalStaked      *big.Int
	TotalUnstaked    *big.Int
	LastUnstakeEpoch *uint64
}

func newPool() *Pool {
	return &Pool{
		State:         StateEnabled,
		TotalStaked:   new(big.Int),
		TotalUnstaked: new(big.Int),
	}
}

// UnstakeAvailable reports whether a new unstake may be requested at the
// given epoch. Unstaking is allowed with no prior unstake, within the same
// epoch as the last one, or once the unlock window has fully passed;
// anything else would push back the pending unlock by a full window.
func (p *Pool) UnstakeAvailable(epoch uint64) bool {
	if p.LastUnstakeEpoch == nil {
		return true
	}
	last := *p.LastUnstakeEpoch
	return last == epoch || last+near.EpochsToUnlock <= epoch
}

// NextUnstakeEpoch returns the earliest epoch a new unstake window opens.
func (p *Pool) NextUnstakeEpoch(epoch uint64) uint64 {
	if p.LastUnstakeEpoch == nil {
		return epoch
	}
	return *p.LastUnstakeEpoch + near.EpochsToUnlock
}

// HasMaturedUnstake reports whether unstaked value sits withdrawable on the
// pool at the given epoch.
func (p *Pool) HasMaturedUnstake(epoch uint64) bool {
	return p.LastUnstakeEpoch != nil &&
		*p.LastUnstakeEpoch+near.EpochsToUnlock <= epoch &&
		p.TotalUnstaked.Sign() > 0
}

// Registry holds all registered pools, preserving registration order.
type Registry struct {
	pools map[near.AccountID]*Pool
	order []near.AccountID
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{pools: make(map[near.AccountID]*Pool)}
}

// Add registers a new enabled pool.
func (r *Registry) Add(id near.AccountID) (*Pool, error) {
	if _, ok := r.pools[id]; ok {
		return nil, ErrExists
	}
	p := newPool()
	r.pools[id] = p
	r.order = append(r.order, id)
	return p, nil
}

// Restore registers a pool with previously persisted state.
func (r *Registry) Restore(id near.AccountID, p *Pool) error {
	if _, ok := r.pools[id]; ok {
		return ErrExists
	}
	r.pools[id] = p
	r.order = append(r.order, id)
	return nil
}

// Get returns the pool record.
func (r *Registry) Get(id near.AccountID) (*Pool, error) {
	p, ok := r.pools[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

// GetEnabled returns the pool record, requiring it to be enabled.
func (r *Registry) GetEnabled(id near.AccountID) (*Pool, error) {
	p, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	if p.State != StateEnabled {
		return nil, ErrNotEnabled
	}
	return p, nil
}

// Has reports whether the pool is registered.
func (r *Registry) Has(id near.AccountID) bool {
	_, ok := r.pools[id]
	return ok
}

// SetState flips a pool between ENABLED and DISABLED.
func (r *Registry) SetState(id near.AccountID, state State) error {
	p, err := r.Get(id)
	if err != nil {
		return err
	}
	if p.State == state {
		return ErrStateNoop
	}
	p.State = state
	return nil
}

// IDs lists pools in registration order.
func (r *Registry) IDs() []near.AccountID {
	ids := make([]near.AccountID, len(r.order))
	copy(ids, r.order)
	return ids
}

// Len returns the number of registered pools.
func (r *Registry) Len() int {
	return len(r.order)
}
