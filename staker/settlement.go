// Copyright (c) 2025 The TruStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"
	"time"
)

// Receipt is the handle of one in-flight settlement operation. The result
// accessors are valid only after Done is closed.
type Receipt struct {
	done   chan struct{}
	err    error
	nonce  uint64
	amount *big.Int
}

func newReceipt() *Receipt {
	return &Receipt{done: make(chan struct{})}
}

// Done closes when the operation's continuation has run and the vault lock
// has been released.
func (r *Receipt) Done() <-chan struct{} {
	return r.done
}

// Err returns the remote failure, if any.
func (r *Receipt) Err() error {
	return r.err
}

// Nonce returns the unstake request nonce created by the operation, if any.
func (r *Receipt) Nonce() uint64 {
	return r.nonce
}

// Amount returns the operation's settled amount: shares minted on stake,
// value unstaked, or value paid out on withdraw.
func (r *Receipt) Amount() *big.Int {
	return r.amount
}

func (r *Receipt) complete(err error) {
	r.err = err
	close(r.done)
}

// acquireLock takes the reentrancy flag. The caller holds the mutex and has
// verified every other precondition: nothing may fail between acquisition
// and the launch of the continuation.
func (s *Staker) acquireLock() error {
	if s.locked {
		return ErrLocked
	}
	s.locked = true
	return nil
}

// releaseLock clears the reentrancy flag. Continuations call it on both the
// success and the failure path. The caller holds the mutex.
func (s *Staker) releaseLock() {
	s.locked = false
}

// settle records the outcome of a settlement operation and completes the
// receipt. The caller holds the mutex.
func (s *Staker) settle(r *Receipt, op string, started time.Time, err error) {
	s.releaseLock()
	s.updateGauges()
	metricSettleMs().Observe(time.Since(started).Milliseconds())
	result := "ok"
	if err != nil {
		result = "failed"
	}
	metricOps().AddWithLabel(1, map[string]string{"op": op, "result": result})
	r.complete(err)
}
