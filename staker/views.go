// Copyright (c) 2025 The TruStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"

	"github.com/trustake/staker/bn"
	"github.com/trustake/staker/near"
	"github.com/trustake/staker/staker/pool"
	"github.com/trustake/staker/staker/price"
)

// Read-only queries. None of them are blocked by the settlement lock, so
// they may observe state mid-settlement.

// Info is the aggregate vault state.
type Info struct {
	Owner                near.AccountID
	PendingOwner         near.AccountID
	Treasury             near.AccountID
	DefaultPool          near.AccountID
	Paused               bool
	Locked               bool
	Fee                  uint64
	DistributionFee      uint64
	MinDeposit           *big.Int
	TotalStaked          *big.Int
	TaxExemptStake       *big.Int
	WithdrawnAmount      *big.Int
	TotalSupply          *big.Int
	TotalStakedUpdatedAt uint64
	CurrentEpoch         uint64
	LatestNonce          uint64
}

// PoolInfo is the believed state of one delegation pool.
type PoolInfo struct {
	ID               near.AccountID
	State            pool.State
	TotalStaked      *big.Int
	TotalUnstaked    *big.Int
	LastUnstakeEpoch *uint64
	UnstakeAvailable bool
	NextUnstakeEpoch uint64
}

// AllocationInfo is one allocation with its currently distributable yield.
type AllocationInfo struct {
	Recipient           near.AccountID
	Amount              *big.Int
	PriceNum            *big.Int
	PriceDenom          *big.Int
	DistributableShares *big.Int
	DistributableValue  *big.Int
}

// Info returns the aggregate vault state.
func (s *Staker) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Info{
		Owner:                s.owner,
		PendingOwner:         s.pendingOwner,
		Treasury:             s.treasury,
		DefaultPool:          s.defaultPool,
		Paused:               s.paused,
		Locked:               s.locked,
		Fee:                  s.fee,
		DistributionFee:      s.distributionFee,
		MinDeposit:           new(big.Int).Set(s.minDeposit),
		TotalStaked:          new(big.Int).Set(s.totalStaked),
		TaxExemptStake:       new(big.Int).Set(s.taxExemptStake),
		WithdrawnAmount:      new(big.Int).Set(s.withdrawnAmount),
		TotalSupply:          s.token.TotalSupply(),
		TotalStakedUpdatedAt: s.totalStakedUpdatedAt,
		CurrentEpoch:         s.epochs.EpochHeight(),
		LatestNonce:          s.unstakeNonce,
	}
}

// SharePrice returns the current price as an exact rational.
func (s *Staker) SharePrice() price.Price {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.currentPrice()
	return price.Price{
		Num:   new(big.Int).Set(p.Num),
		Denom: new(big.Int).Set(p.Denom),
	}
}

// MaxWithdraw returns the value the account could unstake at the current
// price.
func (s *Staker) MaxWithdraw(account near.AccountID) *big.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentPrice().ToAssets(s.token.BalanceOf(account), false)
}

// ShareBalanceOf returns the account's share balance.
func (s *Staker) ShareBalanceOf(account near.AccountID) *big.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token.BalanceOf(account)
}

// ShareSupply returns the total share supply.
func (s *Staker) ShareSupply() *big.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token.TotalSupply()
}

// Pools returns the believed state of every registered pool, in
// registration order.
func (s *Staker) Pools() []PoolInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	epoch := s.epochs.EpochHeight()
	infos := make([]PoolInfo, 0, s.pools.Len())
	for _, id := range s.pools.IDs() {
		p, _ := s.pools.Get(id)
		info := PoolInfo{
			ID:               id,
			State:            p.State,
			TotalStaked:      new(big.Int).Set(p.TotalStaked),
			TotalUnstaked:    new(big.Int).Set(p.TotalUnstaked),
			UnstakeAvailable: p.UnstakeAvailable(epoch),
			NextUnstakeEpoch: p.NextUnstakeEpoch(epoch),
		}
		if p.LastUnstakeEpoch != nil {
			last := *p.LastUnstakeEpoch
			info.LastUnstakeEpoch = &last
		}
		infos = append(infos, info)
	}
	return infos
}

// Allocations returns the source's allocations with their currently
// distributable yield, in recipient order.
func (s *Staker) Allocations(source near.AccountID) []AllocationInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	global := s.currentPrice()
	infos := make([]AllocationInfo, 0)
	for _, recipient := range s.allocations.Recipients(source) {
		a, _ := s.allocations.Get(source, recipient)
		shares := a.DistributableShares(global)
		infos = append(infos, AllocationInfo{
			Recipient:           recipient,
			Amount:              new(big.Int).Set(a.Amount),
			PriceNum:            new(big.Int).Set(a.Price.Num),
			PriceDenom:          new(big.Int).Set(a.Price.Denom),
			DistributableShares: shares,
			DistributableValue:  global.ToAssets(shares, false),
		})
	}
	return infos
}

// DistributionAmounts returns what a distribute-all by the source would move
// at the current price: net shares, their in-asset value, and the fee shares
// owed to the treasury.
func (s *Staker) DistributionAmounts(source near.AccountID) (shares, value, feeShares *big.Int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, fee, net, v := s.distributionTotals(source)
	return net, v, fee
}

// DistributionAmount returns what distributing to one recipient would move
// at the current price: net shares, their in-asset value, and the fee
// shares. All zero when nothing is allocated or nothing has accrued.
func (s *Staker) DistributionAmount(source, recipient near.AccountID) (shares, value, feeShares *big.Int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	shares, value, feeShares = new(big.Int), new(big.Int), new(big.Int)
	a, ok := s.allocations.Get(source, recipient)
	if !ok {
		return
	}
	global := s.currentPrice()
	distributable := a.DistributableShares(global)
	if distributable.Sign() == 0 {
		return
	}
	feeShares = bn.MulDiv(distributable, new(big.Int).SetUint64(s.distributionFee), big.NewInt(near.FeePrecision), false)
	shares = new(big.Int).Sub(distributable, feeShares)
	value = global.ToAssets(shares, false)
	return
}

// TotalAllocated folds the source's allocations into a total amount and its
// money weighted average price.
func (s *Staker) TotalAllocated(source near.AccountID) (*big.Int, price.Price) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := s.allocations.Total(source)
	if total.IsZero() {
		return new(big.Int), price.Price{Num: new(big.Int).Set(near.SharePriceScale), Denom: big.NewInt(1)}
	}
	return new(big.Int).Set(total.Amount), total.Price
}

// Request returns a copy of the pending unstake request for the nonce.
func (s *Staker) Request(nonce uint64) (UnstakeRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[nonce]
	if !ok {
		return UnstakeRequest{}, false
	}
	return UnstakeRequest{
		Pool:   req.Pool,
		Owner:  req.Owner,
		Amount: new(big.Int).Set(req.Amount),
		Epoch:  req.Epoch,
	}, true
}

// IsClaimable reports whether the nonce exists and has matured.
func (s *Staker) IsClaimable(nonce uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[nonce]
	return ok && req.Epoch+near.EpochsToUnlock <= s.epochs.EpochHeight()
}

// IsLocked reports whether a settlement operation is in flight.
func (s *Staker) IsLocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locked
}

// IsPaused reports whether the vault is paused.
func (s *Staker) IsPaused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}
