// Copyright (c) 2026 The Liquefy developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sslot

import (
	"github.com/liquefy/liquefy/lst"
	"github.com/liquefy/liquefy/state"
)

// Context scopes storage slots to a component address, so that services
// sharing one state object never collide on slot positions.
type Context struct {
	address lst.Address
	state   *state.State
}

func NewContext(address lst.Address, state *state.State) *Context {
	return &Context{
		address: address,
		state:   state,
	}
}

func (c *Context) State() *state.State {
	return c.state
}

func (c *Context) Address() lst.Address {
	return c.address
}

// position computes the storage position of a scalar slot within this context.
func (c *Context) position(slot lst.Bytes32) lst.Bytes32 {
	return lst.Blake2b(c.address.Bytes(), slot.Bytes())
}
