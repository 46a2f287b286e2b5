// Copyright (c) 2026 The Liquefy developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package batch

import (
	"encoding/binary"
	"math/big"
)

// Status is the lifecycle stage of a withdrawal batch.
type Status uint8

const (
	StatusUnknown Status = iota
	StatusActive
	StatusUnlocking
	StatusFinalized
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusUnlocking:
		return "unlocking"
	case StatusFinalized:
		return "finalized"
	default:
		return "unknown"
	}
}

// Batch aggregates the withdrawal shares queued during one collection
// window. FinalRate stays zero until the batch is finalized, at which point
// it pins the rate all of the batch's requests redeem at.
type Batch struct {
	Status       Status
	QueuedShares *big.Int
	EndingEra    uint64
	FinalRate    *big.Int
}

// batchID makes an uint64 batch id usable as a storage mapping key.
type batchID uint64

func (i batchID) Bytes() []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(i))
	return b[:]
}
