// Copyright (c) 2026 The Liquefy developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"bytes"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liquefy/liquefy/lst"
	"github.com/liquefy/liquefy/lvldb"
	"github.com/liquefy/liquefy/pool"
	"github.com/liquefy/liquefy/state"
)

var (
	admin    = lst.BytesToAddress([]byte("admin"))
	operator = lst.BytesToAddress([]byte("operator"))
	alice    = lst.BytesToAddress([]byte("alice"))
)

func newServer(t *testing.T) *httptest.Server {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	p, err := pool.New(state.New(db), nil, &pool.Genesis{
		Admin:     admin,
		Operator:  operator,
		Treasury:  admin,
		EraPeriod: 1,
	})
	require.NoError(t, err)

	router := mux.NewRouter()
	New(p).Mount(router, "/staking")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts
}

func httpGet(t *testing.T, url string) ([]byte, int) {
	t.Helper()
	res, err := http.Get(url)
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return body, res.StatusCode
}

func httpPost(t *testing.T, url string, payload interface{}) ([]byte, int) {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	res, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return body, res.StatusCode
}

func dec(v int64) *math.HexOrDecimal256 {
	return (*math.HexOrDecimal256)(big.NewInt(v))
}

func TestReadEndpoints(t *testing.T) {
	ts := newServer(t)

	body, code := httpGet(t, ts.URL+"/staking/state")
	require.Equal(t, http.StatusOK, code)
	var st PoolState
	require.NoError(t, json.Unmarshal(body, &st))
	assert.Equal(t, uint64(0), st.ActiveBatchID)
	assert.Equal(t, lst.RateScale().String(), (*big.Int)(st.ShareRate).String())

	body, code = httpGet(t, ts.URL+"/staking/roles")
	require.Equal(t, http.StatusOK, code)
	var roles Roles
	require.NoError(t, json.Unmarshal(body, &roles))
	assert.Equal(t, admin, roles.Admin)
	assert.Equal(t, operator, roles.Operator)

	_, code = httpGet(t, ts.URL+"/staking/config/deposit-cap")
	assert.Equal(t, http.StatusOK, code)
	_, code = httpGet(t, ts.URL+"/staking/config/no-such-key")
	assert.Equal(t, http.StatusBadRequest, code)

	_, code = httpGet(t, ts.URL+"/staking/batches/1")
	assert.Equal(t, http.StatusNotFound, code)

	_, code = httpGet(t, ts.URL+"/staking/accounts/not-an-address/balance")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestDepositAndBalance(t *testing.T) {
	ts := newServer(t)

	body, code := httpPost(t, ts.URL+"/staking/deposits", &DepositBody{
		Caller: alice,
		Amount: dec(100),
	})
	require.Equal(t, http.StatusOK, code)
	var minted struct {
		Shares *math.HexOrDecimal256 `json:"shares"`
	}
	require.NoError(t, json.Unmarshal(body, &minted))
	assert.Equal(t, "100", (*big.Int)(minted.Shares).String())

	body, code = httpGet(t, ts.URL+"/staking/accounts/"+alice.String()+"/balance")
	require.Equal(t, http.StatusOK, code)
	var balance struct {
		Balance *math.HexOrDecimal256 `json:"balance"`
	}
	require.NoError(t, json.Unmarshal(body, &balance))
	assert.Equal(t, "100", (*big.Int)(balance.Balance).String())

	// zero amount is a validation revert
	_, code = httpPost(t, ts.URL+"/staking/deposits", &DepositBody{
		Caller: alice,
		Amount: dec(0),
	})
	assert.Equal(t, http.StatusBadRequest, code)

	// unknown fields are rejected
	_, code = httpPost(t, ts.URL+"/staking/deposits", map[string]interface{}{
		"caller":  alice,
		"amount":  "0x64",
		"unknown": true,
	})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestWithdrawLifecycle(t *testing.T) {
	ts := newServer(t)

	_, code := httpPost(t, ts.URL+"/staking/deposits", &DepositBody{Caller: alice, Amount: dec(100)})
	require.Equal(t, http.StatusOK, code)
	_, code = httpPost(t, ts.URL+"/staking/stake", &AmountBody{Caller: operator, Amount: dec(100)})
	require.Equal(t, http.StatusOK, code)

	body, code := httpPost(t, ts.URL+"/staking/withdrawals", &WithdrawBody{Caller: alice, Shares: dec(100)})
	require.Equal(t, http.StatusOK, code)
	var queued struct {
		BatchID uint64 `json:"batchId"`
	}
	require.NoError(t, json.Unmarshal(body, &queued))
	require.Equal(t, uint64(1), queued.BatchID)

	body, code = httpGet(t, ts.URL+"/staking/batches/1")
	require.Equal(t, http.StatusOK, code)
	var b Batch
	require.NoError(t, json.Unmarshal(body, &b))
	assert.Equal(t, "active", b.Status)
	assert.Equal(t, "100", (*big.Int)(b.QueuedShares).String())

	_, code = httpPost(t, ts.URL+"/staking/era", &EraBody{Caller: operator, Era: 1})
	require.Equal(t, http.StatusOK, code)

	// the batch left the collecting phase, canceling now conflicts
	_, code = httpPost(t, ts.URL+"/staking/withdrawals/1/cancel", &CallerBody{Caller: alice})
	assert.Equal(t, http.StatusConflict, code)

	body, code = httpPost(t, ts.URL+"/staking/liquidity", &AmountBody{Caller: operator, Amount: dec(100)})
	require.Equal(t, http.StatusOK, code)
	var confirmed struct {
		Finalized []uint64 `json:"finalized"`
	}
	require.NoError(t, json.Unmarshal(body, &confirmed))
	assert.Equal(t, []uint64{1}, confirmed.Finalized)

	body, code = httpPost(t, ts.URL+"/staking/withdrawals/1/claim", &CallerBody{Caller: alice})
	require.Equal(t, http.StatusOK, code)
	var claimed struct {
		Received *math.HexOrDecimal256 `json:"received"`
	}
	require.NoError(t, json.Unmarshal(body, &claimed))
	assert.Equal(t, "100", (*big.Int)(claimed.Received).String())

	body, code = httpGet(t, ts.URL+"/staking/accounts/"+alice.String()+"/requests/1")
	require.Equal(t, http.StatusOK, code)
	var req WithdrawRequest
	require.NoError(t, json.Unmarshal(body, &req))
	assert.Equal(t, "redeemed", req.Status)
	assert.Equal(t, "100", (*big.Int)(req.ReceivedAsset).String())
}

func TestRevertStatusCodes(t *testing.T) {
	ts := newServer(t)

	// unauthorized callers get 403
	_, code := httpPost(t, ts.URL+"/staking/admin/paused", &PausedBody{Caller: alice, Paused: true})
	assert.Equal(t, http.StatusForbidden, code)
	_, code = httpPost(t, ts.URL+"/staking/era", &EraBody{Caller: alice, Era: 1})
	assert.Equal(t, http.StatusForbidden, code)

	// pausing gates deposits with 409
	_, code = httpPost(t, ts.URL+"/staking/admin/paused", &PausedBody{Caller: admin, Paused: true})
	require.Equal(t, http.StatusOK, code)
	_, code = httpPost(t, ts.URL+"/staking/deposits", &DepositBody{Caller: alice, Amount: dec(100)})
	assert.Equal(t, http.StatusConflict, code)
}
