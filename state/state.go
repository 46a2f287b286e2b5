// Copyright (c) 2026 The Liquefy developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/liquefy/liquefy/kv"
	"github.com/liquefy/liquefy/lst"
	"github.com/liquefy/liquefy/stackedmap"
)

// State provides slot-addressed storage over a key-value store, with
// checkpoint/revert semantics. Mutations are buffered in an in-memory
// overlay and only reach the underlying store on Commit, so a failed
// operation can be rolled back without any partial write.
type State struct {
	store kv.GetPutter
	sm    *stackedmap.StackedMap
}

// New create state object backed by the given store.
func New(store kv.GetPutter) *State {
	st := &State{store: store}
	st.sm = stackedmap.New(func(key any) (any, bool, error) {
		raw, err := store.Get(key.(lst.Bytes32).Bytes())
		if err != nil {
			if store.IsNotFound(err) {
				return []byte(nil), true, nil
			}
			return nil, false, errors.Wrap(err, "get storage")
		}
		return raw, true, nil
	})
	// base layer, never popped
	st.sm.Push()
	return st
}

// NewCheckpoint makes a checkpoint of current state.
// It returns checkpoint id to be used with RevertTo.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo reverts the state to the given checkpoint.
// The checkpoint and all those made after it are invalidated.
func (s *State) RevertTo(checkpoint int) {
	s.sm.PopTo(checkpoint)
}

// GetRawStorage returns the raw value stored at key, nil if absent.
func (s *State) GetRawStorage(key lst.Bytes32) ([]byte, error) {
	raw, _, err := s.sm.Get(key)
	if err != nil {
		return nil, err
	}
	return raw.([]byte), nil
}

// SetRawStorage sets the raw value at key. A nil or empty raw deletes the key.
func (s *State) SetRawStorage(key lst.Bytes32, raw []byte) {
	s.sm.Put(key, raw)
}

// GetStorage returns the 32-byte word stored at key.
func (s *State) GetStorage(key lst.Bytes32) (lst.Bytes32, error) {
	raw, err := s.GetRawStorage(key)
	if err != nil {
		return lst.Bytes32{}, err
	}
	if len(raw) == 0 {
		return lst.Bytes32{}, nil
	}
	_, content, _, err := rlp.Split(raw)
	if err != nil {
		return lst.Bytes32{}, errors.Wrap(err, "decode storage word")
	}
	return lst.BytesToBytes32(content), nil
}

// SetStorage sets the 32-byte word at key. A zero value deletes the key.
func (s *State) SetStorage(key, value lst.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(key, nil)
		return
	}
	trimmed, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	s.SetRawStorage(key, trimmed)
}

// DecodeStorage passes the raw value at key to the decode callback.
// The callback receives nil when the key is absent.
func (s *State) DecodeStorage(key lst.Bytes32, decode func(raw []byte) error) error {
	raw, err := s.GetRawStorage(key)
	if err != nil {
		return err
	}
	return decode(raw)
}

// EncodeStorage stores the value produced by the encode callback at key.
// An empty encoding deletes the key.
func (s *State) EncodeStorage(key lst.Bytes32, encode func() ([]byte, error)) error {
	raw, err := encode()
	if err != nil {
		return err
	}
	s.SetRawStorage(key, raw)
	return nil
}

// Commit writes all buffered changes into the underlying store in one
// atomic batch and collapses the overlay. It must only be called when no
// checkpoint is outstanding.
func (s *State) Commit() error {
	batch := s.store.NewBatch()
	s.sm.Journal(func(key, value any) bool {
		raw := value.([]byte)
		if len(raw) == 0 {
			_ = batch.Delete(key.(lst.Bytes32).Bytes())
		} else {
			_ = batch.Put(key.(lst.Bytes32).Bytes(), raw)
		}
		return true
	})
	if err := batch.Write(); err != nil {
		return errors.Wrap(err, "commit state")
	}
	// everything written; start a fresh overlay on top of the store
	s.sm.PopTo(0)
	s.sm.Push()
	return nil
}
