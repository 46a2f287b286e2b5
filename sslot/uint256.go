// Copyright (c) 2026 The Liquefy developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sslot

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/liquefy/liquefy/lst"
)

// ErrUnderflow is returned when a Sub would take a stored amount negative.
// Amounts in the pool are unsigned; negative balances are not representable.
var ErrUnderflow = errors.New("storage amount underflow")

// Uint256 is a wrapper for storage and retrieval of an unsigned 256-bit
// integer, similar to storing an uint256 in a smart contract.
// If the provided value exceeds 256 bits, it will be truncated to fit into lst.Bytes32.
type Uint256 struct {
	context *Context
	pos     lst.Bytes32
}

func NewUint256(context *Context, slot lst.Bytes32) *Uint256 {
	return &Uint256{context: context, pos: context.position(slot)}
}

func (u *Uint256) Get() (*big.Int, error) {
	storage, err := u.context.state.GetStorage(u.pos)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(storage.Bytes()), nil
}

func (u *Uint256) Set(value *big.Int) {
	u.context.state.SetStorage(u.pos, lst.BytesToBytes32(value.Bytes()))
}

func (u *Uint256) Add(value *big.Int) error {
	storage, err := u.Get()
	if err != nil {
		return err
	}
	storage.Add(storage, value)
	u.Set(storage)
	return nil
}

// Sub decreases the stored value, failing with ErrUnderflow if value
// exceeds the stored amount.
func (u *Uint256) Sub(value *big.Int) error {
	storage, err := u.Get()
	if err != nil {
		return err
	}
	if storage.Cmp(value) < 0 {
		return ErrUnderflow
	}
	storage.Sub(storage, value)
	u.Set(storage)
	return nil
}
