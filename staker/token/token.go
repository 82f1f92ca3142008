// Copyright (c) 2025 The TruStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token implements the TruNEAR share ledger.
package token

import (
	"math/big"
	"sort"

	"github.com/pkg/errors"

	"github.com/trustake/staker/near"
)

var (
	ErrInsufficientBalance = errors.New("insufficient TruNEAR balance")
	ErrNotRegistered       = errors.New("account is not registered")
)

// Metadata describes the share token.
type Metadata struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

// Meta returns the TruNEAR metadata.
func Meta() Metadata {
	return Metadata{
		Name:     "TruNEAR Token",
		Symbol:   "TruNEAR",
		Decimals: 24,
	}
}

// Ledger tracks share balances per account. Total supply is kept redundantly
// so price computation stays O(1). Accounts persist once registered, even at
// zero balance.
type Ledger struct {
	balances    map[near.AccountID]*big.Int
	totalSupply *big.Int
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{
		balances:    make(map[near.AccountID]*big.Int),
		totalSupply: new(big.Int),
	}
}

// Register creates a zero balance account if absent.
func (l *Ledger) Register(id near.AccountID) {
	if _, ok := l.balances[id]; !ok {
		l.balances[id] = new(big.Int)
	}
}

// IsRegistered returns whether the account exists.
func (l *Ledger) IsRegistered(id near.AccountID) bool {
	_, ok := l.balances[id]
	return ok
}

// BalanceOf returns the account balance, zero for unknown accounts.
func (l *Ledger) BalanceOf(id near.AccountID) *big.Int {
	if b, ok := l.balances[id]; ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

// TotalSupply returns the sum of all balances.
func (l *Ledger) TotalSupply() *big.Int {
	return new(big.Int).Set(l.totalSupply)
}

// Mint credits shares to the account, registering it if needed.
func (l *Ledger) Mint(id near.AccountID, amount *big.Int) {
	l.Register(id)
	l.balances[id] = new(big.Int).Add(l.balances[id], amount)
	l.totalSupply.Add(l.totalSupply, amount)
}

// Burn removes shares from the account.
func (l *Ledger) Burn(id near.AccountID, amount *big.Int) error {
	balance, ok := l.balances[id]
	if !ok || balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	l.balances[id] = new(big.Int).Sub(balance, amount)
	l.totalSupply.Sub(l.totalSupply, amount)
	return nil
}

// Transfer moves shares between accounts. The receiver must be registered.
func (l *Ledger) Transfer(from, to near.AccountID, amount *big.Int) error {
	if _, ok := l.balances[to]; !ok {
		return ErrNotRegistered
	}
	balance, ok := l.balances[from]
	if !ok || balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	l.balances[from] = new(big.Int).Sub(balance, amount)
	l.balances[to] = new(big.Int).Add(l.balances[to], amount)
	return nil
}

// Accounts lists all registered accounts in lexical order.
func (l *Ledger) Accounts() []near.AccountID {
	ids := make([]near.AccountID, 0, len(l.balances))
	for id := range l.balances {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
