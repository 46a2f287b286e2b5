// Copyright (c) 2026 The Liquefy developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sslot

import (
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/liquefy/liquefy/lst"
)

type Key interface {
	Bytes() []byte
}

// Mapping is a key/value storage abstraction similar to the mapping in
// Solidity: values are RLP encoded and stored at positions derived from the
// base slot and the key. A zero value is not distinguishable from an absent
// entry; entity types carry a status field for that reason.
type Mapping[K Key, V any] struct {
	context *Context
	basePos lst.Bytes32
}

func NewMapping[K Key, V any](context *Context, pos lst.Bytes32) *Mapping[K, V] {
	return &Mapping[K, V]{context: context, basePos: pos}
}

func (m *Mapping[K, V]) position(key K) lst.Bytes32 {
	return lst.Blake2b(m.context.address.Bytes(), m.basePos.Bytes(), key.Bytes())
}

// Get returns the stored value, or the zero V (nil for pointer values)
// when no entry has been written for key.
func (m *Mapping[K, V]) Get(key K) (value V, err error) {
	err = m.context.state.DecodeStorage(m.position(key), func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		if reflect.ValueOf(value).Kind() == reflect.Ptr {
			value = reflect.New(reflect.TypeOf(value).Elem()).Interface().(V)
		}
		return rlp.DecodeBytes(raw, &value)
	})
	return
}

func (m *Mapping[K, V]) Set(key K, value V) error {
	return m.context.state.EncodeStorage(m.position(key), func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	})
}

// Delete removes the entry for key.
func (m *Mapping[K, V]) Delete(key K) error {
	return m.context.state.EncodeStorage(m.position(key), func() ([]byte, error) {
		return nil, nil
	})
}

// Has returns whether an entry is present for key.
func (m *Mapping[K, V]) Has(key K) (bool, error) {
	var present bool
	err := m.context.state.DecodeStorage(m.position(key), func(raw []byte) error {
		present = len(raw) > 0
		return nil
	})
	return present, err
}
