// Copyright (c) 2025 The TruStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package staker implements the vault: pooled staking across delegation
// pools, share accounting, and the asynchronous settlement protocol that
// keeps the two consistent.
package staker

import (
	"math/big"
	"sync"

	"github.com/pkg/errors"

	"github.com/trustake/staker/co"
	"github.com/trustake/staker/log"
	"github.com/trustake/staker/metrics"
	"github.com/trustake/staker/near"
	"github.com/trustake/staker/staker/alloc"
	"github.com/trustake/staker/staker/pool"
	"github.com/trustake/staker/staker/price"
	"github.com/trustake/staker/staker/token"
	"github.com/trustake/staker/store"
)

var (
	logger = log.WithContext("pkg", "staker")

	metricOps = metrics.LazyLoad(func() metrics.CountVecMeter {
		return metrics.CounterVec("operations_total", []string{"op", "result"})
	})
	metricSettleMs = metrics.LazyLoad(func() metrics.HistogramMeter {
		return metrics.Histogram("settlement_duration_ms", metrics.Bucket10s)
	})
	metricTotalStaked = metrics.LazyLoad(func() metrics.GaugeMeter {
		return metrics.Gauge("total_staked_near")
	})
	metricTotalSupply = metrics.LazyLoad(func() metrics.GaugeMeter {
		return metrics.Gauge("share_supply_near")
	})
)

// EpochSource reports the host's monotonic epoch counter.
type EpochSource interface {
	EpochHeight() uint64
}

// Bank moves base-asset value out of the vault: refunds and payouts.
type Bank interface {
	Send(to near.AccountID, amount *big.Int) error
}

// UnstakeRequest is one pending claim on unstaked value, keyed by nonce.
type UnstakeRequest struct {
	Pool   near.AccountID
	Owner  near.AccountID
	Amount *big.Int
	Epoch  uint64
}

// Config carries the dependencies and initial parameters of a vault.
type Config struct {
	Owner       near.AccountID
	Treasury    near.AccountID
	DefaultPool near.AccountID

	Fee             uint64
	DistributionFee uint64
	MinDeposit      *big.Int

	Epochs EpochSource
	Bank   Bank
	Store  *store.Store

	// Clients binds pool accounts to their remote interface. A restored
	// snapshot requires a client for every persisted pool.
	Clients map[near.AccountID]pool.Client
}

// Staker is the vault singleton.
type Staker struct {
	mu   sync.Mutex
	goes co.Goes

	epochs EpochSource
	bank   Bank
	db     *store.Store

	owner        near.AccountID
	pendingOwner near.AccountID
	treasury     near.AccountID
	defaultPool  near.AccountID
	paused       bool
	locked       bool

	fee             uint64
	distributionFee uint64
	minDeposit      *big.Int

	totalStaked          *big.Int
	taxExemptStake       *big.Int
	withdrawnAmount      *big.Int
	totalStakedUpdatedAt uint64
	unstakeNonce         uint64
	requests             map[uint64]*UnstakeRequest

	pools   *pool.Registry
	clients map[near.AccountID]pool.Client

	token       *token.Ledger
	allocations *alloc.Ledger

	agents map[near.AccountID]bool
	users  map[near.AccountID]UserStatus
}

// New creates a vault, restoring persisted state when the store holds a
// snapshot.
func New(cfg Config) (*Staker, error) {
	switch {
	case cfg.Owner.IsZero():
		return nil, errors.Wrap(ErrInvalidAccount, "owner")
	case cfg.Treasury.IsZero():
		return nil, errors.Wrap(ErrInvalidAccount, "treasury")
	case cfg.Epochs == nil:
		return nil, errors.New("epoch source is required")
	case cfg.Bank == nil:
		return nil, errors.New("bank is required")
	case cfg.Fee >= near.FeePrecision || cfg.DistributionFee >= near.FeePrecision:
		return nil, ErrFeeTooLarge
	}
	minDeposit := cfg.MinDeposit
	if minDeposit == nil {
		minDeposit = near.OneNEAR
	}
	if minDeposit.Cmp(near.OneNEAR) < 0 {
		return nil, ErrMinDepositTooSmall
	}

	s := &Staker{
		epochs:          cfg.Epochs,
		bank:            cfg.Bank,
		db:              cfg.Store,
		owner:           cfg.Owner,
		treasury:        cfg.Treasury,
		defaultPool:     cfg.DefaultPool,
		fee:             cfg.Fee,
		distributionFee: cfg.DistributionFee,
		minDeposit:      new(big.Int).Set(minDeposit),
		totalStaked:     new(big.Int),
		taxExemptStake:  new(big.Int),
		withdrawnAmount: new(big.Int),
		requests:        make(map[uint64]*UnstakeRequest),
		pools:           pool.NewRegistry(),
		clients:         make(map[near.AccountID]pool.Client),
		token:           token.New(),
		allocations:     alloc.New(),
		agents:          make(map[near.AccountID]bool),
		users:           make(map[near.AccountID]UserStatus),
	}

	if s.db != nil {
		snap, err := s.db.Load()
		if err != nil {
			return nil, err
		}
		if snap != nil {
			if err := s.restore(snap, cfg.Clients); err != nil {
				return nil, err
			}
			logger.Info("restored vault state",
				"pools", s.pools.Len(), "accounts", len(s.token.Accounts()), "nonce", s.unstakeNonce)
			return s, nil
		}
	}

	// fresh initialization
	s.token.Register(s.owner)
	s.token.Register(s.treasury)
	s.users[s.owner] = StatusWhitelisted
	s.users[s.treasury] = StatusWhitelisted
	s.totalStakedUpdatedAt = s.epochs.EpochHeight()
	if !cfg.DefaultPool.IsZero() {
		client, ok := cfg.Clients[cfg.DefaultPool]
		if !ok {
			return nil, errors.Wrap(ErrClientMissing, cfg.DefaultPool.String())
		}
		if _, err := s.pools.Add(cfg.DefaultPool); err != nil {
			return nil, err
		}
		s.clients[cfg.DefaultPool] = client
	}
	s.persist()
	return s, nil
}

// Wait blocks until all in-flight settlement continuations have run.
func (s *Staker) Wait() {
	s.goes.Wait()
}

func (s *Staker) restore(snap *store.Snapshot, clients map[near.AccountID]pool.Client) error {
	s.owner = near.AccountID(snap.Owner)
	s.pendingOwner = near.AccountID(snap.PendingOwner)
	s.treasury = near.AccountID(snap.Treasury)
	s.defaultPool = near.AccountID(snap.DefaultPool)
	s.paused = snap.Paused
	s.fee = snap.Fee
	s.distributionFee = snap.DistributionFee
	s.minDeposit = snap.MinDeposit
	s.totalStaked = snap.TotalStaked
	s.taxExemptStake = snap.TaxExemptStake
	s.withdrawnAmount = snap.WithdrawnAmount
	s.totalStakedUpdatedAt = snap.TotalStakedUpdatedAt
	s.unstakeNonce = snap.UnstakeNonce

	for _, rec := range snap.Pools {
		id := near.AccountID(rec.ID)
		p := &pool.Pool{
			State:         pool.State(rec.State),
			TotalStaked:   rec.TotalStaked,
			TotalUnstaked: rec.TotalUnstaked,
		}
		if rec.HasLastUnstake {
			epoch := rec.LastUnstakeEpoch
			p.LastUnstakeEpoch = &epoch
		}
		if err := s.pools.Restore(id, p); err != nil {
			return err
		}
		client, ok := clients[id]
		if !ok {
			return errors.Wrap(ErrClientMissing, id.String())
		}
		s.clients[id] = client
	}

	for _, rec := range snap.Accounts {
		id := near.AccountID(rec.ID)
		s.token.Register(id)
		if rec.Balance.Sign() > 0 {
			s.token.Mint(id, rec.Balance)
		}
	}
	if s.token.TotalSupply().Cmp(snap.TotalSupply) != 0 {
		return errors.New("snapshot supply does not match account balances")
	}

	for _, rec := range snap.Allocations {
		s.allocations.Set(near.AccountID(rec.Source), near.AccountID(rec.Recipient), alloc.Allocation{
			Amount: rec.Amount,
			Price:  price.Price{Num: rec.PriceNum, Denom: rec.PriceDenom},
		})
	}
	for _, rec := range snap.Requests {
		s.requests[rec.Nonce] = &UnstakeRequest{
			Pool:   near.AccountID(rec.Pool),
			Owner:  near.AccountID(rec.Owner),
			Amount: rec.Amount,
			Epoch:  rec.Epoch,
		}
	}
	for _, id := range snap.Agents {
		s.agents[near.AccountID(id)] = true
	}
	for _, rec := range snap.Users {
		s.users[near.AccountID(rec.ID)] = UserStatus(rec.Status)
	}
	return nil
}

// snapshot builds the persisted form of the current state. The caller holds
// the mutex.
func (s *Staker) snapshot() *store.Snapshot {
	snap := &store.Snapshot{
		Owner:                s.owner.String(),
		PendingOwner:         s.pendingOwner.String(),
		Treasury:             s.treasury.String(),
		DefaultPool:          s.defaultPool.String(),
		Paused:               s.paused,
		Fee:                  s.fee,
		DistributionFee:      s.distributionFee,
		MinDeposit:           s.minDeposit,
		TotalStaked:          s.totalStaked,
		TaxExemptStake:       s.taxExemptStake,
		WithdrawnAmount:      s.withdrawnAmount,
		TotalStakedUpdatedAt: s.totalStakedUpdatedAt,
		UnstakeNonce:         s.unstakeNonce,
		TotalSupply:          s.token.TotalSupply(),
	}
	for _, id := range s.pools.IDs() {
		p, _ := s.pools.Get(id)
		rec := store.PoolRecord{
			ID:            id.String(),
			State:         uint8(p.State),
			TotalStaked:   p.TotalStaked,
			TotalUnstaked: p.TotalUnstaked,
		}
		if p.LastUnstakeEpoch != nil {
			rec.HasLastUnstake = true
			rec.LastUnstakeEpoch = *p.LastUnstakeEpoch
		}
		snap.Pools = append(snap.Pools, rec)
	}
	for _, id := range s.token.Accounts() {
		snap.Accounts = append(snap.Accounts, store.AccountRecord{
			ID:      id.String(),
			Balance: s.token.BalanceOf(id),
		})
	}
	for _, source := range s.allocations.Sources() {
		for _, recipient := range s.allocations.Recipients(source) {
			a, _ := s.allocations.Get(source, recipient)
			snap.Allocations = append(snap.Allocations, store.AllocationRecord{
				Source:     source.String(),
				Recipient:  recipient.String(),
				Amount:     a.Amount,
				PriceNum:   a.Price.Num,
				PriceDenom: a.Price.Denom,
			})
		}
	}
	for nonce := uint64(1); nonce <= s.unstakeNonce; nonce++ {
		req, ok := s.requests[nonce]
		if !ok {
			continue
		}
		snap.Requests = append(snap.Requests, store.RequestRecord{
			Nonce:  nonce,
			Pool:   req.Pool.String(),
			Owner:  req.Owner.String(),
			Amount: req.Amount,
			Epoch:  req.Epoch,
		})
	}
	for _, id := range sortedAccounts(s.agents) {
		snap.Agents = append(snap.Agents, id.String())
	}
	for id, status := range s.users {
		snap.Users = append(snap.Users, store.UserRecord{ID: id.String(), Status: uint8(status)})
	}
	sortUserRecords(snap.Users)
	return snap
}

// persist writes the current state to the store, best effort. The caller
// holds the mutex.
func (s *Staker) persist() {
	if s.db == nil {
		return
	}
	if err := s.db.Save(s.snapshot()); err != nil {
		logger.Warn("failed to persist vault state", "err", err)
	}
}

// currentPrice computes the share price from the current totals. The caller
// holds the mutex.
func (s *Staker) currentPrice() price.Price {
	return price.Of(s.totalStaked, s.token.TotalSupply(), s.taxExemptStake, s.fee)
}

// inSync reports whether the totals were refreshed within the current epoch.
// The caller holds the mutex.
func (s *Staker) inSync() bool {
	return s.totalStakedUpdatedAt == s.epochs.EpochHeight()
}

func (s *Staker) updateGauges() {
	metricTotalStaked().Set(asWholeNEAR(s.totalStaked))
	metricTotalSupply().Set(asWholeNEAR(s.token.TotalSupply()))
}

func asWholeNEAR(amount *big.Int) int64 {
	return new(big.Int).Quo(amount, near.OneNEAR).Int64()
}
