// Copyright (c) 2026 The Liquefy developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package request

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liquefy/liquefy/lst"
	"github.com/liquefy/liquefy/lvldb"
	"github.com/liquefy/liquefy/pool/reverts"
	"github.com/liquefy/liquefy/sslot"
	"github.com/liquefy/liquefy/state"
)

var alice = lst.BytesToAddress([]byte("alice"))

func newRegistry(t *testing.T) *Registry {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(sslot.NewContext(lst.BytesToAddress([]byte("pool")), state.New(db)))
}

func TestAbsentRequestReadsInactive(t *testing.T) {
	r := newRegistry(t)

	req, err := r.Get(alice, 1)
	assert.NoError(t, err)
	assert.Equal(t, StatusInactive, req.Status)
	assert.Equal(t, "0", req.UnstakedShares.String())
	assert.Equal(t, "0", req.ReceivedAsset.String())
}

func TestFirstAddOnFreshRegistry(t *testing.T) {
	r := newRegistry(t)

	// the very first request for a (user, batch) pair starts from the
	// absent entry and must not trip over its zero amounts
	require.NoError(t, r.Add(alice, 9, big.NewInt(5)))

	req, err := r.Get(alice, 9)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, req.Status)
	assert.Equal(t, "5", req.UnstakedShares.String())
	assert.Equal(t, "0", req.ReceivedAsset.String())
}

func TestAddMergesShares(t *testing.T) {
	r := newRegistry(t)

	assert.NoError(t, r.Add(alice, 1, big.NewInt(100)))
	assert.NoError(t, r.Add(alice, 1, big.NewInt(50)))

	req, err := r.Get(alice, 1)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, req.Status)
	assert.Equal(t, "150", req.UnstakedShares.String())

	// a different batch is a different request
	req, err = r.Get(alice, 2)
	require.NoError(t, err)
	assert.Equal(t, StatusInactive, req.Status)
}

func TestCancel(t *testing.T) {
	r := newRegistry(t)
	require.NoError(t, r.Add(alice, 1, big.NewInt(100)))

	shares, err := r.Cancel(alice, 1)
	assert.NoError(t, err)
	assert.Equal(t, "100", shares.String())

	req, err := r.Get(alice, 1)
	require.NoError(t, err)
	assert.Equal(t, StatusInactive, req.Status)

	// canceling twice fails on the second attempt
	_, err = r.Cancel(alice, 1)
	kind, ok := reverts.KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, reverts.KindState, kind)
}

func TestRedeem(t *testing.T) {
	r := newRegistry(t)
	require.NoError(t, r.Add(alice, 1, big.NewInt(100)))

	// redeem at 1.5
	rate := new(big.Int).Mul(big.NewInt(15), new(big.Int).Div(lst.RateScale(), big.NewInt(10)))
	received, err := r.Redeem(alice, 1, rate)
	assert.NoError(t, err)
	assert.Equal(t, "150", received.String())

	req, err := r.Get(alice, 1)
	require.NoError(t, err)
	assert.Equal(t, StatusRedeemed, req.Status)
	assert.Equal(t, "150", req.ReceivedAsset.String())

	// a second redeem fails
	_, err = r.Redeem(alice, 1, rate)
	kind, ok := reverts.KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, reverts.KindState, kind)

	// redeemed requests never reactivate
	err = r.Add(alice, 1, big.NewInt(1))
	kind, ok = reverts.KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, reverts.KindState, kind)
}

func TestRedeemInactiveFails(t *testing.T) {
	r := newRegistry(t)

	_, err := r.Redeem(alice, 1, lst.RateScale())
	kind, ok := reverts.KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, reverts.KindState, kind)
}
