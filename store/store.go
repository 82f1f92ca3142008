// Copyright (c) 2025 The TruStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package store persists the vault state as a single RLP encoded snapshot.
//
// The vault mutates in memory and writes the whole snapshot after each
// finalized operation; the state is small (pools, accounts, allocations,
// pending requests), so whole-snapshot writes stay cheap and keep restore
// trivially consistent.
package store

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/trustake/staker/kv"
)

// The key carries a schema version: a future layout change reads the old key
// and writes the new one.
var snapshotKey = []byte("staker/snapshot/v1")

// PoolRecord is the persisted form of one delegation pool.
type PoolRecord struct {
	ID               string
	State            uint8
	TotalStaked      *big.Int
	TotalUnstaked    *big.Int
	HasLastUnstake   bool
	LastUnstakeEpoch uint64
}

// AccountRecord is one share token account.
type AccountRecord struct {
	ID      string
	Balance *big.Int
}

// AllocationRecord is one (source, recipient) allocation.
type AllocationRecord struct {
	Source     string
	Recipient  string
	Amount     *big.Int
	PriceNum   *big.Int
	PriceDenom *big.Int
}

// RequestRecord is one pending unstake request.
type RequestRecord struct {
	Nonce  uint64
	Pool   string
	Owner  string
	Amount *big.Int
	Epoch  uint64
}

// UserRecord is one whitelist entry.
type UserRecord struct {
	ID     string
	Status uint8
}

// Snapshot is the complete persisted vault state. The reentrancy lock is
// deliberately absent: a restarted process has no in-flight settlement, so it
// always comes back unlocked.
type Snapshot struct {
	Owner        string
	PendingOwner string
	Treasury     string
	DefaultPool  string

	Paused          bool
	Fee             uint64
	DistributionFee uint64
	MinDeposit      *big.Int

	TotalStaked          *big.Int
	TaxExemptStake       *big.Int
	WithdrawnAmount      *big.Int
	TotalStakedUpdatedAt uint64
	UnstakeNonce         uint64

	Pools       []PoolRecord
	Accounts    []AccountRecord
	TotalSupply *big.Int
	Allocations []AllocationRecord
	Requests    []RequestRecord
	Agents      []string
	Users       []UserRecord
}

// Store reads and writes snapshots on a key-value backend.
type Store struct {
	db kv.GetPutter
}

// New creates a store on the given backend.
func New(db kv.GetPutter) *Store {
	return &Store{db: db}
}

// Save writes the snapshot, replacing any previous one.
func (s *Store) Save(snap *Snapshot) error {
	data, err := rlp.EncodeToBytes(snap)
	if err != nil {
		return errors.Wrap(err, "encode snapshot")
	}
	return errors.Wrap(s.db.Put(snapshotKey, data), "put snapshot")
}

// Load returns the stored snapshot, or nil if none has been saved yet.
func (s *Store) Load() (*Snapshot, error) {
	ok, err := s.db.Has(snapshotKey)
	if err != nil {
		return nil, errors.Wrap(err, "probe snapshot")
	}
	if !ok {
		return nil, nil
	}
	data, err := s.db.Get(snapshotKey)
	if err != nil {
		return nil, errors.Wrap(err, "get snapshot")
	}
	var snap Snapshot
	if err := rlp.DecodeBytes(data, &snap); err != nil {
		return nil, errors.Wrap(err, "decode snapshot")
	}
	return &snap, nil
}
