// Copyright (c) 2026 The Liquefy developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/liquefy/liquefy/eventdb"
	"github.com/liquefy/liquefy/lst"
	"github.com/liquefy/liquefy/pool/params"
)

// Genesis is the initial pool configuration. It is applied exactly once,
// on the first start against an empty state.
type Genesis struct {
	Admin    lst.Address
	Operator lst.Address
	Treasury lst.Address

	DepositCap     *big.Int // 0 disables the cap
	MinStakeAmount *big.Int
	EraPeriod      uint64 // eras an active batch stays open

	IncreaseLimitBps uint64 // upper reprice band, 0 disables
	DecreaseLimitBps uint64 // lower reprice band, 0 disables
	BonusFeeBps      uint64 // treasury cut of staking bonuses
}

// applyGenesis writes the genesis configuration unless the state already
// has an admin, in which case the persisted configuration wins.
func (p *Pool) applyGenesis(gen *Genesis) error {
	if gen.Admin.IsZero() {
		return errors.New("genesis admin must not be zero")
	}
	return p.run(func() ([]*eventdb.Event, error) {
		admin, err := p.params.Admin()
		if err != nil {
			return nil, err
		}
		if !admin.IsZero() {
			logger.Debug("genesis skipped, pool already configured", "admin", admin)
			return nil, nil
		}

		p.params.SetAdmin(gen.Admin)
		p.params.SetOperator(gen.Operator)
		p.params.SetTreasury(gen.Treasury)

		cap := gen.DepositCap
		if cap == nil {
			cap = new(big.Int)
		}
		if err := p.params.Set(params.KeyDepositCap, cap); err != nil {
			return nil, err
		}
		if err := p.params.Set(params.KeyIncreaseLimitBps, new(big.Int).SetUint64(gen.IncreaseLimitBps)); err != nil {
			return nil, err
		}
		if err := p.params.Set(params.KeyDecreaseLimitBps, new(big.Int).SetUint64(gen.DecreaseLimitBps)); err != nil {
			return nil, err
		}
		if err := p.params.Set(params.KeyBonusFeeBps, new(big.Int).SetUint64(gen.BonusFeeBps)); err != nil {
			return nil, err
		}

		period := gen.EraPeriod
		if period == 0 {
			period = lst.DefaultEraPeriod
		}
		minStake := gen.MinStakeAmount
		if minStake == nil {
			minStake = new(big.Int)
		}
		if err := p.params.SetEraConfig(&params.EraConfig{
			Era:            0,
			Period:         period,
			MinStakeAmount: minStake,
		}); err != nil {
			return nil, err
		}

		logger.Info("genesis applied",
			"admin", gen.Admin,
			"operator", gen.Operator,
			"treasury", gen.Treasury,
			"depositCap", cap,
			"minStake", minStake,
			"eraPeriod", period)
		return nil, nil
	})
}

// DefaultGenesis returns a genesis with the stock limits and no cap,
// suitable for tests and local runs.
func DefaultGenesis(admin lst.Address) *Genesis {
	return &Genesis{
		Admin:            admin,
		Operator:         admin,
		Treasury:         admin,
		DepositCap:       new(big.Int),
		MinStakeAmount:   new(big.Int),
		EraPeriod:        lst.DefaultEraPeriod,
		IncreaseLimitBps: lst.DefaultIncreaseLimitBps,
		DecreaseLimitBps: lst.DefaultDecreaseLimitBps,
	}
}
