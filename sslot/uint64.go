// Copyright (c) 2026 The Liquefy developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sslot

import (
	"math/big"

	"github.com/liquefy/liquefy/lst"
)

// Uint64 is a wrapper for storage and retrieval of an uint64 counter
// (batch ids, eras and the like).
type Uint64 struct {
	context *Context
	pos     lst.Bytes32
}

func NewUint64(context *Context, slot lst.Bytes32) *Uint64 {
	return &Uint64{context: context, pos: context.position(slot)}
}

func (u *Uint64) Get() (uint64, error) {
	storage, err := u.context.state.GetStorage(u.pos)
	if err != nil {
		return 0, err
	}
	return new(big.Int).SetBytes(storage.Bytes()).Uint64(), nil
}

func (u *Uint64) Set(value uint64) {
	u.context.state.SetStorage(u.pos, lst.BytesToBytes32(new(big.Int).SetUint64(value).Bytes()))
}
