// Copyright (c) 2026 The Liquefy developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package request

import (
	"encoding/binary"
	"math/big"

	"github.com/pkg/errors"

	"github.com/liquefy/liquefy/lst"
	"github.com/liquefy/liquefy/pool/reverts"
	"github.com/liquefy/liquefy/sslot"
)

var slotRequests = lst.BytesToBytes32([]byte("withdraw-requests"))

// Status is the lifecycle stage of a withdraw request.
type Status uint8

const (
	StatusInactive Status = iota
	StatusActive
	StatusRedeemed
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusRedeemed:
		return "redeemed"
	default:
		return "inactive"
	}
}

// WithdrawRequest records one user's queued shares within one batch.
// Requests to the same batch merge; the (user, batch) pair is the identity.
type WithdrawRequest struct {
	Status         Status
	UnstakedShares *big.Int
	ReceivedAsset  *big.Int
}

// Registry stores withdraw requests keyed by user and batch id.
type Registry struct {
	entries *sslot.Mapping[lst.Bytes32, *WithdrawRequest]
}

func New(sctx *sslot.Context) *Registry {
	return &Registry{
		entries: sslot.NewMapping[lst.Bytes32, *WithdrawRequest](sctx, slotRequests),
	}
}

func key(user lst.Address, batchID uint64) lst.Bytes32 {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], batchID)
	return lst.Blake2b(user.Bytes(), b[:])
}

// Get returns the request of user in batchID. An absent request reads as
// an inactive one with zero amounts.
func (r *Registry) Get(user lst.Address, batchID uint64) (*WithdrawRequest, error) {
	req, err := r.entries.Get(key(user, batchID))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get withdraw request")
	}
	if req == nil {
		return &WithdrawRequest{
			Status:         StatusInactive,
			UnstakedShares: new(big.Int),
			ReceivedAsset:  new(big.Int),
		}, nil
	}
	return req, nil
}

func (r *Registry) set(user lst.Address, batchID uint64, req *WithdrawRequest) error {
	if err := r.entries.Set(key(user, batchID), req); err != nil {
		return errors.Wrap(err, "failed to set withdraw request")
	}
	return nil
}

// Add queues shares under (user, batchID), merging with an existing active
// request. Redeemed requests never reactivate.
func (r *Registry) Add(user lst.Address, batchID uint64, shares *big.Int) error {
	req, err := r.Get(user, batchID)
	if err != nil {
		return err
	}
	if req.Status == StatusRedeemed {
		return reverts.New(reverts.KindState, "request already redeemed")
	}
	req.Status = StatusActive
	req.UnstakedShares = new(big.Int).Add(req.UnstakedShares, shares)
	return r.set(user, batchID, req)
}

// Cancel deactivates the request and returns the shares it held.
func (r *Registry) Cancel(user lst.Address, batchID uint64) (*big.Int, error) {
	req, err := r.Get(user, batchID)
	if err != nil {
		return nil, err
	}
	if req.Status != StatusActive {
		return nil, reverts.New(reverts.KindState, "no active request to cancel")
	}
	if err := r.entries.Delete(key(user, batchID)); err != nil {
		return nil, errors.Wrap(err, "failed to delete withdraw request")
	}
	return req.UnstakedShares, nil
}

// Redeem converts the request's shares at rate and marks it redeemed.
// It returns the asset amount owed to the user.
func (r *Registry) Redeem(user lst.Address, batchID uint64, rate *big.Int) (*big.Int, error) {
	req, err := r.Get(user, batchID)
	if err != nil {
		return nil, err
	}
	switch req.Status {
	case StatusRedeemed:
		return nil, reverts.New(reverts.KindState, "request already redeemed")
	case StatusInactive:
		return nil, reverts.New(reverts.KindState, "no active request to redeem")
	}
	asset := new(big.Int).Mul(req.UnstakedShares, rate)
	asset.Div(asset, lst.RateScale())

	req.Status = StatusRedeemed
	req.ReceivedAsset = asset
	if err := r.set(user, batchID, req); err != nil {
		return nil, err
	}
	return asset, nil
}
