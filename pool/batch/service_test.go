// Copyright (c) 2026 The Liquefy developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package batch

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

func newService(t *testing.T) *Service {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(sslot.NewContext(lst.BytesToAddress([]byte("pool")), state.New(db)))
}

func TestEnsureActiveOpensFirstBatch(t *testing.T) {
	s := newService(t)

	id, err := s.ActiveID()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), id)

	id, b, err := s.EnsureActive(3, 7)
	assert.NoError(t, err)
	assert.Equal(t, uint64(1), id)
	assert.Equal(t, StatusActive, b.Status)
	assert.Equal(t, uint64(10), b.EndingEra)

	// a second call returns the same batch
	id2, _, err := s.EnsureActive(5, 7)
	assert.NoError(t, err)
	assert.Equal(t, id, id2)
}

func TestAddSubShares(t *testing.T) {
	s := newService(t)
	id, _, err := s.EnsureActive(0, 7)
	require.NoError(t, err)

	assert.NoError(t, s.AddShares(id, big.NewInt(100)))
	assert.NoError(t, s.AddShares(id, big.NewInt(50)))

	b, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "150", b.QueuedShares.String())

	assert.NoError(t, s.SubShares(id, big.NewInt(150)))
	b, err = s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "0", b.QueuedShares.String())

	err = s.SubShares(id, big.NewInt(1))
	kind, ok := reverts.KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, reverts.KindCapacity, kind)

	assert.Equal(t, reverts.ErrInvalidInput, s.AddShares(99, big.NewInt(1)))
}

func TestRoll(t *testing.T) {
	s := newService(t)
	id, _, err := s.EnsureActive(0, 7) // ending era 7
	require.NoError(t, err)

	// before the ending era nothing rolls
	rolled, err := s.Roll(6, 7)
	assert.NoError(t, err)
	assert.Equal(t, uint64(0), rolled)

	rolled, err = s.Roll(7, 7)
	assert.NoError(t, err)
	assert.Equal(t, id, rolled)

	b, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, StatusUnlocking, b.Status)

	// a fresh active batch opened with the next window
	activeID, err := s.ActiveID()
	require.NoError(t, err)
	assert.Equal(t, id+1, activeID)
	b2, err := s.Get(activeID)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, b2.Status)
	assert.Equal(t, uint64(14), b2.EndingEra)
}

func TestFinalizeInOrder(t *testing.T) {
	s := newService(t)
	id1, _, err := s.EnsureActive(0, 1)
	require.NoError(t, err)
	_, err = s.Roll(1, 1)
	require.NoError(t, err)
	id2, err := s.ActiveID()
	require.NoError(t, err)
	_, err = s.Roll(2, 1)
	require.NoError(t, err)

	// both rolled; the older one is next
	next, b, err := s.NextToFinalize()
	assert.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, id1, next)

	// finalizing the younger one out of order fails
	err = s.Finalize(id2, lst.RateScale())
	kind, ok := reverts.KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, reverts.KindState, kind)

	assert.NoError(t, s.Finalize(id1, lst.RateScale()))
	b, err = s.Get(id1)
	require.NoError(t, err)
	assert.Equal(t, StatusFinalized, b.Status)
	assert.Equal(t, lst.RateScale().String(), b.FinalRate.String())

	next, _, err = s.NextToFinalize()
	assert.NoError(t, err)
	assert.Equal(t, id2, next)
}

func TestFinalizedBatchImmutable(t *testing.T) {
	s := newService(t)
	id, _, err := s.EnsureActive(0, 1)
	require.NoError(t, err)
	require.NoError(t, s.AddShares(id, big.NewInt(100)))
	_, err = s.Roll(1, 1)
	require.NoError(t, err)
	require.NoError(t, s.Finalize(id, lst.RateScale()))

	err = s.AddShares(id, big.NewInt(1))
	kind, ok := reverts.KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, reverts.KindState, kind)

	err = s.SubShares(id, big.NewInt(1))
	kind, ok = reverts.KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, reverts.KindState, kind)

	// double finalization fails
	err = s.Finalize(id, lst.RateScale())
	_, ok = reverts.KindOf(err)
	assert.True(t, ok)
}
