// Copyright (c) 2026 The Liquefy developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liquefy/liquefy/lst"
	"github.com/liquefy/liquefy/lvldb"
)

func newState(t *testing.T) (*State, *lvldb.LevelDB) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db), db
}

func TestStorageWordRoundTrip(t *testing.T) {
	st, _ := newState(t)
	key := lst.BytesToBytes32([]byte("key"))

	got, err := st.GetStorage(key)
	assert.NoError(t, err)
	assert.True(t, got.IsZero())

	want := lst.BytesToBytes32([]byte("value"))
	st.SetStorage(key, want)

	got, err = st.GetStorage(key)
	assert.NoError(t, err)
	assert.Equal(t, want, got)

	// zero value deletes
	st.SetStorage(key, lst.Bytes32{})
	raw, err := st.GetRawStorage(key)
	assert.NoError(t, err)
	assert.Len(t, raw, 0)
}

func TestCheckpointRevert(t *testing.T) {
	st, _ := newState(t)
	key := lst.BytesToBytes32([]byte("key"))
	st.SetStorage(key, lst.BytesToBytes32([]byte("before")))

	cp := st.NewCheckpoint()
	st.SetStorage(key, lst.BytesToBytes32([]byte("after")))

	got, err := st.GetStorage(key)
	assert.NoError(t, err)
	assert.Equal(t, lst.BytesToBytes32([]byte("after")), got)

	st.RevertTo(cp)
	got, err = st.GetStorage(key)
	assert.NoError(t, err)
	assert.Equal(t, lst.BytesToBytes32([]byte("before")), got)
}

func TestCommitPersists(t *testing.T) {
	st, db := newState(t)
	key := lst.BytesToBytes32([]byte("key"))
	want := lst.BytesToBytes32([]byte("value"))

	st.SetStorage(key, want)
	require.NoError(t, st.Commit())

	// a fresh state over the same store sees the committed value
	st2 := New(db)
	got, err := st2.GetStorage(key)
	assert.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestCommitDeletes(t *testing.T) {
	st, db := newState(t)
	key := lst.BytesToBytes32([]byte("key"))

	st.SetStorage(key, lst.BytesToBytes32([]byte("value")))
	require.NoError(t, st.Commit())

	st.SetStorage(key, lst.Bytes32{})
	require.NoError(t, st.Commit())

	_, err := db.Get(key.Bytes())
	assert.True(t, db.IsNotFound(err))
}

func TestUncommittedChangesInvisibleToStore(t *testing.T) {
	st, db := newState(t)
	key := lst.BytesToBytes32([]byte("key"))

	st.SetStorage(key, lst.BytesToBytes32([]byte("value")))

	_, err := db.Get(key.Bytes())
	assert.True(t, db.IsNotFound(err))

	got, err := st.GetStorage(key)
	assert.NoError(t, err)
	assert.Equal(t, lst.BytesToBytes32([]byte("value")), got)
}
