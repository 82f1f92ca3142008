// Copyright (c) 2025 The TruStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trustake/staker/metrics"
	"github.com/trustake/staker/near"
	"github.com/trustake/staker/staker"
	"github.com/trustake/staker/staker/pool"
	"github.com/trustake/staker/staker/pool/pooltest"
)

const (
	owner = "owner.near"
	alice = "alice.near"
	poolA = "pool-a.near"
)

func newTestServer(t *testing.T) (*httptest.Server, *staker.Staker, *pooltest.Clock) {
	t.Helper()
	clock := pooltest.NewClock(10)
	s, err := staker.New(staker.Config{
		Owner:       near.AccountID(owner),
		Treasury:    near.AccountID("treasury.near"),
		DefaultPool: near.AccountID(poolA),
		Fee:         500,
		Epochs:      clock,
		Bank:        pooltest.NewBank(),
		Clients:     map[near.AccountID]pool.Client{near.AccountID(poolA): pooltest.NewPool(clock)},
	})
	require.NoError(t, err)
	srv := httptest.NewServer(New(s, Options{AllowedOrigins: "*", EnableAdmin: true, EnableMetrics: true}))
	t.Cleanup(srv.Close)
	return srv, s, clock
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	res, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return res
}

func decode(t *testing.T, res *http.Response, v any) {
	t.Helper()
	defer res.Body.Close()
	require.NoError(t, json.NewDecoder(res.Body).Decode(v))
}

func TestStakeFlow(t *testing.T) {
	srv, _, _ := newTestServer(t)

	res := postJSON(t, srv.URL+"/admin/whitelist", map[string]any{
		"caller": owner, "account": alice, "status": "WHITELISTED",
	})
	require.Equal(t, http.StatusOK, res.StatusCode)
	res.Body.Close()

	res = postJSON(t, srv.URL+"/staker/stake", map[string]any{
		"caller": alice, "amount": near.NEAR(10).String(),
	})
	require.Equal(t, http.StatusOK, res.StatusCode)
	var settled map[string]any
	decode(t, res, &settled)
	assert.Equal(t, near.NEAR(10).String(), settled["amount"])

	res, err := http.Get(srv.URL + "/token/balance/" + alice)
	require.NoError(t, err)
	var balance map[string]any
	decode(t, res, &balance)
	assert.Equal(t, near.NEAR(10).String(), balance["balance"])

	res, err = http.Get(srv.URL + "/staker/info")
	require.NoError(t, err)
	var info map[string]any
	decode(t, res, &info)
	assert.Equal(t, near.NEAR(10).String(), info["totalStaked"])
	assert.Equal(t, false, info["locked"])
}

func TestMetricsEndpoint(t *testing.T) {
	metrics.InitializePrometheusMetrics()
	srv, _, _ := newTestServer(t)

	res, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestStakeRejections(t *testing.T) {
	srv, _, _ := newTestServer(t)

	// not whitelisted
	res := postJSON(t, srv.URL+"/staker/stake", map[string]any{
		"caller": alice, "amount": near.NEAR(10).String(),
	})
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	res.Body.Close()

	// malformed amount
	res = postJSON(t, srv.URL+"/staker/stake", map[string]any{
		"caller": alice, "amount": "not-a-number",
	})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	res.Body.Close()

	// unknown field rejected by strict parsing
	res = postJSON(t, srv.URL+"/staker/stake", map[string]any{
		"caller": alice, "amount": "1", "bogus": true,
	})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	res.Body.Close()
}

func TestViewsAndAdminGates(t *testing.T) {
	srv, _, clock := newTestServer(t)

	res, err := http.Get(srv.URL + "/staker/price")
	require.NoError(t, err)
	var price map[string]any
	decode(t, res, &price)
	assert.Equal(t, near.SharePriceScale.String(), price["num"])
	assert.Equal(t, "1", price["denom"])

	res, err = http.Get(srv.URL + "/staker/pools")
	require.NoError(t, err)
	var pools []map[string]any
	decode(t, res, &pools)
	require.Len(t, pools, 1)
	assert.Equal(t, poolA, pools[0]["id"])
	assert.Equal(t, "ENABLED", pools[0]["state"])

	res, err = http.Get(srv.URL + "/staker/claimable/1")
	require.NoError(t, err)
	var claimable map[string]any
	decode(t, res, &claimable)
	assert.Equal(t, false, claimable["claimable"])

	// admin surface rejects non-owners
	res = postJSON(t, srv.URL+"/admin/pause", map[string]any{"caller": alice})
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	res.Body.Close()

	res = postJSON(t, srv.URL+"/admin/pause", map[string]any{"caller": owner})
	assert.Equal(t, http.StatusOK, res.StatusCode)
	res.Body.Close()

	// a stale vault rejects stakes until refreshed
	clock.Advance(1)
	res = postJSON(t, srv.URL+"/admin/unpause", map[string]any{"caller": owner})
	require.Equal(t, http.StatusOK, res.StatusCode)
	res.Body.Close()

	res = postJSON(t, srv.URL+"/admin/whitelist", map[string]any{
		"caller": owner, "account": alice, "status": "WHITELISTED",
	})
	require.Equal(t, http.StatusOK, res.StatusCode)
	res.Body.Close()

	res = postJSON(t, srv.URL+"/staker/stake", map[string]any{
		"caller": alice, "amount": near.NEAR(10).String(),
	})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	res.Body.Close()

	res = postJSON(t, srv.URL+"/staker/refresh", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	res.Body.Close()

	res = postJSON(t, srv.URL+"/staker/stake", map[string]any{
		"caller": alice, "amount": near.NEAR(10).String(),
	})
	assert.Equal(t, http.StatusOK, res.StatusCode)
	res.Body.Close()
}
