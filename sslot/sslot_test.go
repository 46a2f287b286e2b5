// Copyright (c) 2026 The Liquefy developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sslot

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liquefy/liquefy/lst"
	"github.com/liquefy/liquefy/lvldb"
	"github.com/liquefy/liquefy/state"
)

func newCtx(t *testing.T) *Context {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewContext(lst.BytesToAddress([]byte("test")), state.New(db))
}

func TestUint256(t *testing.T) {
	ctx := newCtx(t)
	u := NewUint256(ctx, lst.BytesToBytes32([]byte("counter")))

	v, err := u.Get()
	assert.NoError(t, err)
	assert.Equal(t, "0", v.String())

	assert.NoError(t, u.Add(big.NewInt(1000)))
	assert.NoError(t, u.Sub(big.NewInt(400)))

	v, err = u.Get()
	assert.NoError(t, err)
	assert.Equal(t, "600", v.String())

	err = u.Sub(big.NewInt(601))
	assert.ErrorIs(t, err, ErrUnderflow)

	// failed sub must not mutate
	v, err = u.Get()
	assert.NoError(t, err)
	assert.Equal(t, "600", v.String())
}

func TestUint64(t *testing.T) {
	ctx := newCtx(t)
	u := NewUint64(ctx, lst.BytesToBytes32([]byte("id")))

	v, err := u.Get()
	assert.NoError(t, err)
	assert.Equal(t, uint64(0), v)

	u.Set(42)
	v, err = u.Get()
	assert.NoError(t, err)
	assert.Equal(t, uint64(42), v)
}

func TestAddressSlot(t *testing.T) {
	ctx := newCtx(t)
	a := NewAddress(ctx, lst.BytesToBytes32([]byte("admin")))

	addr, err := a.Get()
	assert.NoError(t, err)
	assert.True(t, addr.IsZero())

	want := lst.BytesToAddress([]byte("somebody"))
	a.Set(want)
	addr, err = a.Get()
	assert.NoError(t, err)
	assert.Equal(t, want, addr)
}

type entry struct {
	Flag  uint8
	Value *big.Int
}

func TestMapping(t *testing.T) {
	ctx := newCtx(t)
	m := NewMapping[lst.Address, *entry](ctx, lst.BytesToBytes32([]byte("entries")))

	key := lst.BytesToAddress([]byte("user"))

	got, err := m.Get(key)
	assert.NoError(t, err)
	assert.Nil(t, got)

	has, err := m.Has(key)
	assert.NoError(t, err)
	assert.False(t, has)

	want := &entry{Flag: 1, Value: big.NewInt(12345)}
	assert.NoError(t, m.Set(key, want))

	got, err = m.Get(key)
	assert.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, uint8(1), got.Flag)
	assert.Equal(t, "12345", got.Value.String())

	has, err = m.Has(key)
	assert.NoError(t, err)
	assert.True(t, has)

	assert.NoError(t, m.Delete(key))
	got, err = m.Get(key)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestMappingAbsentKeyReadsNil(t *testing.T) {
	ctx := newCtx(t)
	m := NewMapping[lst.Address, *entry](ctx, lst.BytesToBytes32([]byte("entries")))

	// a never-written key must read as nil, not as an allocated zero
	// struct with nil big.Int fields
	got, err := m.Get(lst.BytesToAddress([]byte("nobody")))
	assert.NoError(t, err)
	assert.Nil(t, got)

	// a deleted key reads as nil again
	key := lst.BytesToAddress([]byte("user"))
	require.NoError(t, m.Set(key, &entry{Flag: 1, Value: big.NewInt(1)}))
	require.NoError(t, m.Delete(key))
	got, err = m.Get(key)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestMappingKeysDoNotCollide(t *testing.T) {
	ctx := newCtx(t)
	m1 := NewMapping[lst.Address, *big.Int](ctx, lst.BytesToBytes32([]byte("m1")))
	m2 := NewMapping[lst.Address, *big.Int](ctx, lst.BytesToBytes32([]byte("m2")))

	key := lst.BytesToAddress([]byte("user"))
	assert.NoError(t, m1.Set(key, big.NewInt(1)))
	assert.NoError(t, m2.Set(key, big.NewInt(2)))

	v1, err := m1.Get(key)
	assert.NoError(t, err)
	v2, err := m2.Get(key)
	assert.NoError(t, err)
	assert.Equal(t, "1", v1.String())
	assert.Equal(t, "2", v2.String())
}
