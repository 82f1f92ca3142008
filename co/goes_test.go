// Copyright (c) 2025 The TruStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trustake/staker/co"
)

func TestGoes(t *testing.T) {
	var g co.Goes
	var n atomic.Int32
	for range 10 {
		g.Go(func() { n.Add(1) })
	}
	g.Wait()
	assert.Equal(t, int32(10), n.Load())
}

func TestGoesDone(t *testing.T) {
	var g co.Goes
	g.Go(func() { time.Sleep(10 * time.Millisecond) })

	select {
	case <-g.Done():
	case <-time.After(time.Second):
		t.Fatal("Done channel never closed")
	}
}
