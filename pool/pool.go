// Copyright (c) 2026 The Liquefy developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package pool implements the liquid staking pool: an accounting ledger
// plus a batched withdrawal queue. Deposits mint shares at the current
// exchange rate; withdrawals queue shares into era-bounded batches that
// finalize at a pinned rate once liquidity is confirmed.
//
// Every operation runs under an exclusive lock and either fully commits
// or fully reverts. Reverts carry a machine-readable kind (package
// reverts); any other error is an internal storage failure.
package pool

import (
	"math/big"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/liquefy/liquefy/eventdb"
	"github.com/liquefy/liquefy/log"
	"github.com/liquefy/liquefy/lst"
	"github.com/liquefy/liquefy/pool/batch"
	"github.com/liquefy/liquefy/pool/ledger"
	"github.com/liquefy/liquefy/pool/params"
	"github.com/liquefy/liquefy/pool/request"
	"github.com/liquefy/liquefy/pool/reverts"
	"github.com/liquefy/liquefy/sslot"
	"github.com/liquefy/liquefy/state"
)

var logger = log.WithContext("pkg", "pool")

// Address scopes the pool's storage slots within the state.
var Address = lst.BytesToAddress([]byte("liquefy-pool"))

// EventStore persists the pool's audit trail. Event writes happen after
// the state commit; a failed write is logged, never propagated.
type EventStore interface {
	Append(events ...*eventdb.Event) error
}

// Pool orchestrates the ledger, the batch queue and the withdraw request
// registry over a single shared state.
type Pool struct {
	mu     sync.Mutex
	state  *state.State
	events EventStore
	now    func() uint64

	params   *params.Params
	ledger   *ledger.Ledger
	batches  *batch.Service
	requests *request.Registry
}

// New creates a pool over the given state. If the pool has no admin yet
// and a genesis is provided, the genesis configuration is applied and
// committed before the pool accepts operations.
func New(st *state.State, events EventStore, gen *Genesis) (*Pool, error) {
	sctx := sslot.NewContext(Address, st)
	p := &Pool{
		state:    st,
		events:   events,
		now:      func() uint64 { return uint64(time.Now().Unix()) },
		params:   params.New(sctx),
		ledger:   ledger.New(sctx),
		batches:  batch.New(sctx),
		requests: request.New(sctx),
	}
	if gen != nil {
		if err := p.applyGenesis(gen); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// run executes op under the pool lock with all-or-nothing semantics.
// Audit events returned by op are persisted only after the state commit.
func (p *Pool) run(op func() ([]*eventdb.Event, error)) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	checkpoint := p.state.NewCheckpoint()
	events, err := op()
	if err != nil {
		p.state.RevertTo(checkpoint)
		return err
	}
	if err := p.state.Commit(); err != nil {
		p.state.RevertTo(checkpoint)
		return errors.Wrap(err, "commit pool state")
	}
	p.refreshGauges()
	if p.events != nil && len(events) > 0 {
		if err := p.events.Append(events...); err != nil {
			logger.Warn("failed to persist audit events", "err", err)
		}
	}
	return nil
}

// refreshGauges publishes the committed rate and supply readings.
func (p *Pool) refreshGauges() {
	if rate, err := p.ledger.ShareRate(); err == nil {
		milli := new(big.Int).Mul(rate, big.NewInt(1000))
		metricShareRateMilli().Set(milli.Div(milli, lst.RateScale()).Int64())
	}
	if supply, err := p.ledger.ShareSupply(); err == nil {
		// shares carry RateDecimals decimals, so RateScale is one whole share
		metricShareSupply().Set(new(big.Int).Div(supply, lst.RateScale()).Int64())
	}
}

// view executes a read-only op under the pool lock.
func (p *Pool) view(op func() error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return op()
}

func (p *Pool) requireAdmin(caller lst.Address) error {
	admin, err := p.params.Admin()
	if err != nil {
		return err
	}
	if admin.IsZero() || admin != caller {
		return reverts.ErrAuthenticationFailed
	}
	return nil
}

// requireOperator accepts the operator or the admin.
func (p *Pool) requireOperator(caller lst.Address) error {
	operator, err := p.params.Operator()
	if err != nil {
		return err
	}
	if !operator.IsZero() && operator == caller {
		return nil
	}
	return p.requireAdmin(caller)
}

func (p *Pool) requireNotPaused() error {
	paused, err := p.params.IsPaused()
	if err != nil {
		return err
	}
	if paused {
		return reverts.ErrActionPaused
	}
	return nil
}

// ShareRate returns the current asset value of one share, scaled by
// lst.RateScale.
func (p *Pool) ShareRate() (rate *big.Int, err error) {
	err = p.view(func() error {
		rate, err = p.ledger.ShareRate()
		return err
	})
	return
}

// AssetState returns a snapshot of the ledger aggregates.
func (p *Pool) AssetState() (meta *ledger.AssetState, err error) {
	err = p.view(func() error {
		meta, err = p.ledger.AssetState()
		return err
	})
	return
}

// BalanceOf returns user's spendable share balance.
func (p *Pool) BalanceOf(user lst.Address) (balance *big.Int, err error) {
	err = p.view(func() error {
		balance, err = p.ledger.BalanceOf(user)
		return err
	})
	return
}

// GetBatch returns the batch with the given id, nil if unknown.
func (p *Pool) GetBatch(id uint64) (b *batch.Batch, err error) {
	err = p.view(func() error {
		b, err = p.batches.Get(id)
		return err
	})
	return
}

// ActiveBatchID returns the id of the currently collecting batch,
// 0 if none has been opened yet.
func (p *Pool) ActiveBatchID() (id uint64, err error) {
	err = p.view(func() error {
		id, err = p.batches.ActiveID()
		return err
	})
	return
}

// GetWithdrawRequest returns user's request in the given batch. An absent
// request reads as inactive with zero amounts.
func (p *Pool) GetWithdrawRequest(user lst.Address, batchID uint64) (req *request.WithdrawRequest, err error) {
	err = p.view(func() error {
		req, err = p.requests.Get(user, batchID)
		return err
	})
	return
}

// ProtocolConfig returns the config value stored under key, zero if unset.
func (p *Pool) ProtocolConfig(key lst.Bytes32) (value *big.Int, err error) {
	err = p.view(func() error {
		value, err = p.params.Get(key)
		return err
	})
	return
}

// EraConfig returns the era cadence configuration.
func (p *Pool) EraConfig() (cfg *params.EraConfig, err error) {
	err = p.view(func() error {
		cfg, err = p.params.EraConfig()
		return err
	})
	return
}

// Roles returns the admin, operator and treasury addresses.
func (p *Pool) Roles() (admin, operator, treasury lst.Address, err error) {
	err = p.view(func() error {
		if admin, err = p.params.Admin(); err != nil {
			return err
		}
		if operator, err = p.params.Operator(); err != nil {
			return err
		}
		treasury, err = p.params.Treasury()
		return err
	})
	return
}
