// Copyright (c) 2026 The Liquefy developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package batch

import (
	"math/big"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/liquefy/liquefy/lst"
	"github.com/liquefy/liquefy/pool/reverts"
	"github.com/liquefy/liquefy/sslot"
)

var (
	slotBatches        = lst.BytesToBytes32([]byte("batches"))
	slotActiveID       = lst.BytesToBytes32([]byte("active-batch-id"))
	slotNextFinalizeID = lst.BytesToBytes32([]byte("next-finalize-batch-id"))
)

const finalizedCacheSize = 1024

// Service manages the batch sequence. Batch ids start at 1 and are
// strictly increasing; at most one batch is active at a time and batches
// finalize in id order.
type Service struct {
	entries        *sslot.Mapping[batchID, *Batch]
	activeID       *sslot.Uint64
	nextFinalizeID *sslot.Uint64

	// finalized batches are immutable, so they are safe to cache across
	// commits and reverts
	finalized *lru.Cache
}

func New(sctx *sslot.Context) *Service {
	cache, _ := lru.New(finalizedCacheSize)
	return &Service{
		entries:        sslot.NewMapping[batchID, *Batch](sctx, slotBatches),
		activeID:       sslot.NewUint64(sctx, slotActiveID),
		nextFinalizeID: sslot.NewUint64(sctx, slotNextFinalizeID),
		finalized:      cache,
	}
}

// Get returns the batch with the given id, or nil if it does not exist.
func (s *Service) Get(id uint64) (*Batch, error) {
	if cached, ok := s.finalized.Get(id); ok {
		return cached.(*Batch), nil
	}
	b, err := s.entries.Get(batchID(id))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get batch")
	}
	if b == nil || b.Status == StatusUnknown {
		return nil, nil
	}
	if b.Status == StatusFinalized {
		s.finalized.Add(id, b)
	}
	return b, nil
}

func (s *Service) set(id uint64, b *Batch) error {
	if err := s.entries.Set(batchID(id), b); err != nil {
		return errors.Wrap(err, "failed to set batch")
	}
	return nil
}

// ActiveID returns the id of the active batch, 0 if none has been opened.
func (s *Service) ActiveID() (uint64, error) {
	return s.activeID.Get()
}

// EnsureActive returns the active batch, opening the first one when the
// pool has never collected a withdrawal before.
func (s *Service) EnsureActive(currentEra, period uint64) (uint64, *Batch, error) {
	id, err := s.activeID.Get()
	if err != nil {
		return 0, nil, err
	}
	if id != 0 {
		b, err := s.Get(id)
		if err != nil {
			return 0, nil, err
		}
		if b == nil {
			return 0, nil, errors.New("active batch missing from storage")
		}
		return id, b, nil
	}
	return s.open(currentEra, period)
}

// open starts the next collection window.
func (s *Service) open(currentEra, period uint64) (uint64, *Batch, error) {
	id, err := s.activeID.Get()
	if err != nil {
		return 0, nil, err
	}
	id++
	b := &Batch{
		Status:       StatusActive,
		QueuedShares: new(big.Int),
		EndingEra:    currentEra + period,
		FinalRate:    new(big.Int),
	}
	if err := s.set(id, b); err != nil {
		return 0, nil, err
	}
	s.activeID.Set(id)
	if id == 1 {
		s.nextFinalizeID.Set(1)
	}
	return id, b, nil
}

// AddShares queues shares into the batch. Only non-finalized batches accept
// share changes.
func (s *Service) AddShares(id uint64, shares *big.Int) error {
	b, err := s.Get(id)
	if err != nil {
		return err
	}
	if b == nil {
		return reverts.ErrInvalidInput
	}
	if b.Status == StatusFinalized {
		return reverts.New(reverts.KindState, "batch already finalized")
	}
	b.QueuedShares = new(big.Int).Add(b.QueuedShares, shares)
	return s.set(id, b)
}

// SubShares removes shares from the batch (withdraw cancellation).
func (s *Service) SubShares(id uint64, shares *big.Int) error {
	b, err := s.Get(id)
	if err != nil {
		return err
	}
	if b == nil {
		return reverts.ErrInvalidInput
	}
	if b.Status == StatusFinalized {
		return reverts.New(reverts.KindState, "batch already finalized")
	}
	if b.QueuedShares.Cmp(shares) < 0 {
		return reverts.New(reverts.KindCapacity, "insufficient queued shares")
	}
	b.QueuedShares = new(big.Int).Sub(b.QueuedShares, shares)
	return s.set(id, b)
}

// Roll checks the active batch against the new era. A batch whose ending
// era has been reached moves to unlocking and a fresh active batch opens.
// It returns the id of the rolled batch, 0 if nothing rolled.
func (s *Service) Roll(newEra, period uint64) (uint64, error) {
	id, err := s.activeID.Get()
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, nil
	}
	b, err := s.Get(id)
	if err != nil {
		return 0, err
	}
	if b == nil || b.Status != StatusActive || newEra < b.EndingEra {
		return 0, nil
	}
	b.Status = StatusUnlocking
	if err := s.set(id, b); err != nil {
		return 0, err
	}
	if _, _, err := s.open(newEra, period); err != nil {
		return 0, err
	}
	return id, nil
}

// NextToFinalize returns the oldest batch awaiting finalization, nil when
// every rolled batch has been finalized already.
func (s *Service) NextToFinalize() (uint64, *Batch, error) {
	id, err := s.nextFinalizeID.Get()
	if err != nil {
		return 0, nil, err
	}
	if id == 0 {
		return 0, nil, nil
	}
	b, err := s.Get(id)
	if err != nil {
		return 0, nil, err
	}
	if b == nil || b.Status != StatusUnlocking {
		return 0, nil, nil
	}
	return id, b, nil
}

// Finalize pins the final exchange rate on an unlocking batch. Finalized
// batches are immutable; finalization order follows batch id order.
func (s *Service) Finalize(id uint64, finalRate *big.Int) error {
	next, err := s.nextFinalizeID.Get()
	if err != nil {
		return err
	}
	if id != next {
		return reverts.New(reverts.KindState, "batch finalization out of order")
	}
	b, err := s.Get(id)
	if err != nil {
		return err
	}
	if b == nil {
		return reverts.ErrInvalidInput
	}
	if b.Status != StatusUnlocking {
		return reverts.New(reverts.KindState, "batch not unlocking")
	}
	b.Status = StatusFinalized
	b.FinalRate = finalRate
	if err := s.set(id, b); err != nil {
		return err
	}
	s.nextFinalizeID.Set(id + 1)
	return nil
}
