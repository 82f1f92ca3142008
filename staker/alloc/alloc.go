// Copyright (c) 2025 The TruStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package alloc implements the allocation ledger: per (source, recipient)
// commitments of value and the share price at which they were made.
package alloc

import (
	"math/big"
	"sort"

	"github.com/trustake/staker/bn"
	"github.com/trustake/staker/near"
	"github.com/trustake/staker/staker/price"
)

// Allocation records a committed value amount and the money weighted average
// share price across its contributions.
type Allocation struct {
	Amount *big.Int
	Price  price.Price
}

// IsZero reports whether the allocation holds no value.
func (a Allocation) IsZero() bool {
	return a.Amount == nil || a.Amount.Sign() == 0
}

// Merge folds a new contribution at the current global price into an existing
// allocation. The merged price is the harmonic style average
// total / (oldAmount/oldPrice + newAmount/globalPrice), which keeps the
// average acquisition price exactly recoverable from the cost basis.
func Merge(existing Allocation, amount *big.Int, global price.Price) Allocation {
	denom := new(big.Int).Add(
		existing.Price.ToShares(existing.Amount, false),
		global.ToShares(amount, false),
	)
	total := new(big.Int).Add(existing.Amount, amount)
	return Allocation{
		Amount: total,
		Price: price.Price{
			Num:   bn.Mul(total, near.SharePriceScale),
			Denom: denom,
		},
	}
}

// DistributableShares returns the shares freed up since the allocation price:
// fewer shares are now needed to represent the committed value when the
// global price has risen. Equal prices distribute nothing.
func (a Allocation) DistributableShares(global price.Price) *big.Int {
	if a.Price.Equal(global) {
		return new(big.Int)
	}
	return bn.SatSub(
		a.Price.ToShares(a.Amount, false),
		global.ToShares(a.Amount, false),
	)
}

// Ledger stores allocations keyed by (source, recipient).
type Ledger struct {
	entries map[near.AccountID]map[near.AccountID]Allocation
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{entries: make(map[near.AccountID]map[near.AccountID]Allocation)}
}

// Get returns the allocation for the pair, if any.
func (l *Ledger) Get(source, recipient near.AccountID) (Allocation, bool) {
	a, ok := l.entries[source][recipient]
	return a, ok
}

// Set stores the allocation for the pair.
func (l *Ledger) Set(source, recipient near.AccountID, a Allocation) {
	m, ok := l.entries[source]
	if !ok {
		m = make(map[near.AccountID]Allocation)
		l.entries[source] = m
	}
	m[recipient] = a
}

// Remove deletes the pair's allocation, dropping the source's bucket when it
// empties.
func (l *Ledger) Remove(source, recipient near.AccountID) {
	m, ok := l.entries[source]
	if !ok {
		return
	}
	delete(m, recipient)
	if len(m) == 0 {
		delete(l.entries, source)
	}
}

// Has reports whether the source has any allocations.
func (l *Ledger) Has(source near.AccountID) bool {
	return len(l.entries[source]) > 0
}

// Recipients lists the source's recipients in lexical order.
func (l *Ledger) Recipients(source near.AccountID) []near.AccountID {
	ids := make([]near.AccountID, 0, len(l.entries[source]))
	for id := range l.entries[source] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Sources lists all allocators in lexical order.
func (l *Ledger) Sources() []near.AccountID {
	ids := make([]near.AccountID, 0, len(l.entries))
	for id := range l.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Total folds all of the source's allocations into one aggregate allocation
// with the money weighted average price.
func (l *Ledger) Total(source near.AccountID) Allocation {
	total := Allocation{Amount: new(big.Int)}
	for _, recipient := range l.Recipients(source) {
		a := l.entries[source][recipient]
		if total.IsZero() {
			total = a
		} else {
			total = Merge(total, a.Amount, a.Price)
		}
	}
	return total
}
