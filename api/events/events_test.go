// Copyright (c) 2026 The Liquefy developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"bytes"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liquefy/liquefy/eventdb"
	"github.com/liquefy/liquefy/lst"
)

var alice = lst.BytesToAddress([]byte("alice"))

func newServer(t *testing.T) *httptest.Server {
	db, err := eventdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Append(
		&eventdb.Event{Timestamp: 1, Kind: eventdb.KindDeposit, User: &alice, Amount: big.NewInt(100)},
		&eventdb.Event{Timestamp: 2, Kind: eventdb.KindWithdrawRequested, User: &alice, BatchID: 1, Amount: big.NewInt(50)},
		&eventdb.Event{Timestamp: 3, Kind: eventdb.KindEraAdvanced, Amount: big.NewInt(1)},
	))

	router := mux.NewRouter()
	New(db, 2).Mount(router, "/events")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts
}

func queryEvents(t *testing.T, ts *httptest.Server, filter interface{}) ([]*eventdb.Event, int) {
	t.Helper()
	data, err := json.Marshal(filter)
	require.NoError(t, err)
	res, err := http.Post(ts.URL+"/events", "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	if res.StatusCode != http.StatusOK {
		return nil, res.StatusCode
	}
	var events []*eventdb.Event
	require.NoError(t, json.Unmarshal(body, &events))
	return events, res.StatusCode
}

func TestFilterByKind(t *testing.T) {
	ts := newServer(t)

	events, code := queryEvents(t, ts, &eventdb.Filter{Kind: eventdb.KindDeposit})
	require.Equal(t, http.StatusOK, code)
	require.Len(t, events, 1)
	assert.Equal(t, eventdb.KindDeposit, events[0].Kind)
	require.NotNil(t, events[0].User)
	assert.Equal(t, alice, *events[0].User)
	assert.Equal(t, "100", events[0].Amount.String())
}

func TestDefaultLimitApplied(t *testing.T) {
	ts := newServer(t)

	// three stored, page size capped at two
	events, code := queryEvents(t, ts, &eventdb.Filter{})
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, events, 2)
}

func TestOversizedLimitForbidden(t *testing.T) {
	ts := newServer(t)

	_, code := queryEvents(t, ts, &eventdb.Filter{
		Options: &eventdb.Options{Limit: 3},
	})
	assert.Equal(t, http.StatusForbidden, code)
}

func TestMalformedBodyRejected(t *testing.T) {
	ts := newServer(t)

	res, err := http.Post(ts.URL+"/events", "application/json", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}
