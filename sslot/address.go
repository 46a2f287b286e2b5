// Copyright (c) 2026 The Liquefy developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sslot

import (
	"github.com/liquefy/liquefy/lst"
)

// Address is a wrapper for storage and retrieval of a single address slot
// (treasury, admin, operator).
type Address struct {
	context *Context
	pos     lst.Bytes32
}

func NewAddress(context *Context, slot lst.Bytes32) *Address {
	return &Address{context: context, pos: context.position(slot)}
}

func (a *Address) Get() (lst.Address, error) {
	storage, err := a.context.state.GetStorage(a.pos)
	if err != nil {
		return lst.Address{}, err
	}
	return lst.BytesToAddress(storage.Bytes()), nil
}

func (a *Address) Set(addr lst.Address) {
	a.context.state.SetStorage(a.pos, lst.BytesToBytes32(addr.Bytes()))
}
