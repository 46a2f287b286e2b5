// Copyright (c) 2026 The Liquefy developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/liquefy/liquefy/eventdb"
	"github.com/liquefy/liquefy/lst"
	"github.com/liquefy/liquefy/metrics"
	"github.com/liquefy/liquefy/pool/batch"
	"github.com/liquefy/liquefy/pool/params"
	"github.com/liquefy/liquefy/pool/reverts"
)

var (
	metricOpCount        = metrics.LazyLoadCounterVec("pool_op_count", []string{"op", "status"})
	metricBatchFinalized = metrics.LazyLoadCounter("pool_batch_finalized_count")

	// gauges hold scaled-down readings, big.Int amounts do not fit int64
	metricShareRateMilli = metrics.LazyLoadGauge("pool_share_rate_milli")
	metricShareSupply    = metrics.LazyLoadGauge("pool_share_supply_whole")
)

func countOp(op string, err error) {
	status := "ok"
	if err != nil {
		if kind, ok := reverts.KindOf(err); ok {
			status = string(kind)
		} else {
			status = "error"
		}
	}
	metricOpCount().AddWithLabel(1, map[string]string{"op": op, "status": status})
}

// Deposit accepts amount from caller and mints shares at the current
// exchange rate. An optional referrer is recorded in the audit trail only.
func (p *Pool) Deposit(caller lst.Address, amount *big.Int, referrer *lst.Address) (shares *big.Int, err error) {
	defer func() { countOp("deposit", err) }()
	err = p.run(func() ([]*eventdb.Event, error) {
		if err := p.requireNotPaused(); err != nil {
			return nil, err
		}
		cfg, err := p.params.EraConfig()
		if err != nil {
			return nil, err
		}
		cap, err := p.params.Get(params.KeyDepositCap)
		if err != nil {
			return nil, err
		}
		logger.Debug("deposit", "user", caller, "amount", amount)
		if shares, err = p.ledger.Deposit(caller, amount, cfg.MinStakeAmount, cap); err != nil {
			return nil, err
		}
		logger.Info("shares minted", "user", caller, "amount", amount, "shares", shares)

		now := p.now()
		events := []*eventdb.Event{{
			Timestamp: now,
			Kind:      eventdb.KindDeposit,
			User:      &caller,
			Amount:    amount,
		}}
		if referrer != nil && !referrer.IsZero() {
			events = append(events, &eventdb.Event{
				Timestamp: now,
				Kind:      eventdb.KindReferral,
				User:      referrer,
				Amount:    amount,
				Extra:     caller.String(),
			})
		}
		return events, nil
	})
	return
}

// RequestWithdraw burns shares from caller's balance and queues them into
// the active batch, returning the batch id the request landed in.
func (p *Pool) RequestWithdraw(caller lst.Address, shares *big.Int) (batchID uint64, err error) {
	defer func() { countOp("request_withdraw", err) }()
	err = p.run(func() ([]*eventdb.Event, error) {
		if err := p.requireNotPaused(); err != nil {
			return nil, err
		}
		cfg, err := p.params.EraConfig()
		if err != nil {
			return nil, err
		}
		id, _, err := p.batches.EnsureActive(cfg.Era, cfg.Period)
		if err != nil {
			return nil, err
		}
		logger.Debug("withdraw requested", "user", caller, "shares", shares, "batch", id)
		if err := p.ledger.BurnShares(caller, shares); err != nil {
			return nil, err
		}
		if err := p.batches.AddShares(id, shares); err != nil {
			return nil, err
		}
		if err := p.requests.Add(caller, id, shares); err != nil {
			return nil, err
		}
		batchID = id
		logger.Info("withdraw queued", "user", caller, "shares", shares, "batch", id)
		return []*eventdb.Event{{
			Timestamp: p.now(),
			Kind:      eventdb.KindWithdrawRequested,
			User:      &caller,
			BatchID:   id,
			Amount:    shares,
		}}, nil
	})
	return
}

// CancelWithdraw removes caller's request from batchID and re-mints the
// queued shares. Cancellation is only possible while the batch is active.
func (p *Pool) CancelWithdraw(caller lst.Address, batchID uint64) (shares *big.Int, err error) {
	defer func() { countOp("cancel_withdraw", err) }()
	err = p.run(func() ([]*eventdb.Event, error) {
		b, err := p.batches.Get(batchID)
		if err != nil {
			return nil, err
		}
		if b == nil {
			return nil, reverts.ErrInvalidInput
		}
		if b.Status != batch.StatusActive {
			return nil, reverts.New(reverts.KindState, "cancel failed: batch no longer active")
		}
		if shares, err = p.requests.Cancel(caller, batchID); err != nil {
			return nil, err
		}
		if err := p.batches.SubShares(batchID, shares); err != nil {
			return nil, err
		}
		if err := p.ledger.MintShares(caller, shares); err != nil {
			return nil, err
		}
		logger.Info("withdraw canceled", "user", caller, "shares", shares, "batch", batchID)
		return []*eventdb.Event{{
			Timestamp: p.now(),
			Kind:      eventdb.KindWithdrawCanceled,
			User:      &caller,
			BatchID:   batchID,
			Amount:    shares,
		}}, nil
	})
	return
}

// Claim redeems caller's request in a finalized batch at the batch's
// pinned rate and pays the asset out of the redeemable liquidity.
func (p *Pool) Claim(caller lst.Address, batchID uint64) (received *big.Int, err error) {
	defer func() { countOp("claim", err) }()
	err = p.run(func() ([]*eventdb.Event, error) {
		b, err := p.batches.Get(batchID)
		if err != nil {
			return nil, err
		}
		if b == nil {
			return nil, reverts.ErrInvalidInput
		}
		if b.Status != batch.StatusFinalized {
			return nil, reverts.New(reverts.KindState, "claim failed: batch not finalized")
		}
		if received, err = p.requests.Redeem(caller, batchID, b.FinalRate); err != nil {
			return nil, err
		}
		if err := p.ledger.Payout(received); err != nil {
			return nil, err
		}
		logger.Info("claimed", "user", caller, "received", received, "batch", batchID)
		return []*eventdb.Event{{
			Timestamp: p.now(),
			Kind:      eventdb.KindClaimed,
			User:      &caller,
			BatchID:   batchID,
			Amount:    received,
		}}, nil
	})
	return
}

// AdvanceEra moves the era forward. The active batch rolls to unlocking
// once the new era reaches its ending era. Operator only.
func (p *Pool) AdvanceEra(caller lst.Address, newEra uint64) (err error) {
	defer func() { countOp("advance_era", err) }()
	return p.run(func() ([]*eventdb.Event, error) {
		if err := p.requireOperator(caller); err != nil {
			return nil, err
		}
		cfg, err := p.params.EraConfig()
		if err != nil {
			return nil, err
		}
		if newEra <= cfg.Era {
			return nil, reverts.New(reverts.KindValidation, "era must increase")
		}
		cfg.Era = newEra
		if err := p.params.SetEraConfig(cfg); err != nil {
			return nil, err
		}
		rolled, err := p.batches.Roll(newEra, cfg.Period)
		if err != nil {
			return nil, err
		}
		logger.Info("era advanced", "era", newEra, "rolledBatch", rolled)

		now := p.now()
		events := []*eventdb.Event{{
			Timestamp: now,
			Kind:      eventdb.KindEraAdvanced,
			Amount:    new(big.Int).SetUint64(newEra),
		}}
		if rolled != 0 {
			events = append(events, &eventdb.Event{
				Timestamp: now,
				Kind:      eventdb.KindBatchUnlocking,
				BatchID:   rolled,
			})
		}
		return events, nil
	})
}

// ConfirmLiquidity reports redeemable liquidity made available by the
// staking backend. Unlocking batches finalize oldest first for as long as
// the reported amount covers their claims; each finalized batch pins the
// exchange rate of that instant. Operator only.
func (p *Pool) ConfirmLiquidity(caller lst.Address, available *big.Int) (finalized []uint64, err error) {
	defer func() { countOp("confirm_liquidity", err) }()
	err = p.run(func() ([]*eventdb.Event, error) {
		if err := p.requireOperator(caller); err != nil {
			return nil, err
		}
		if available == nil || available.Sign() < 0 {
			return nil, reverts.ErrInvalidInput
		}
		remaining := new(big.Int).Set(available)
		var events []*eventdb.Event
		for {
			id, b, err := p.batches.NextToFinalize()
			if err != nil {
				return nil, err
			}
			if b == nil {
				break
			}
			rate, err := p.ledger.ShareRate()
			if err != nil {
				return nil, err
			}
			needed := new(big.Int).Mul(b.QueuedShares, rate)
			needed.Div(needed, lst.RateScale())
			if remaining.Cmp(needed) < 0 {
				break
			}
			asset, finalRate, err := p.ledger.FinalizeShares(b.QueuedShares)
			if err != nil {
				return nil, err
			}
			if err := p.batches.Finalize(id, finalRate); err != nil {
				return nil, err
			}
			remaining.Sub(remaining, asset)
			finalized = append(finalized, id)
			logger.Info("batch finalized", "batch", id, "asset", asset, "finalRate", finalRate)
			events = append(events, &eventdb.Event{
				Timestamp: p.now(),
				Kind:      eventdb.KindBatchFinalized,
				BatchID:   id,
				Amount:    asset,
			})
		}
		return events, nil
	})
	if err == nil {
		metricBatchFinalized().Add(int64(len(finalized)))
	}
	return
}

// Stake confirms that amount of pending liquidity has been placed with
// validators. Operator only.
func (p *Pool) Stake(caller lst.Address, amount *big.Int) (err error) {
	defer func() { countOp("stake", err) }()
	return p.run(func() ([]*eventdb.Event, error) {
		if err := p.requireOperator(caller); err != nil {
			return nil, err
		}
		if err := p.ledger.MarkStaked(amount); err != nil {
			return nil, err
		}
		logger.Info("liquidity staked", "amount", amount)
		return []*eventdb.Event{{
			Timestamp: p.now(),
			Kind:      eventdb.KindStaked,
			Amount:    amount,
		}}, nil
	})
}

// AddBonus credits staking rewards, raising the exchange rate within the
// configured deviation band. The treasury fee is carved out before the
// credit; routing the fee itself is the operator's concern. Operator only.
func (p *Pool) AddBonus(caller lst.Address, amount *big.Int) (err error) {
	defer func() { countOp("add_bonus", err) }()
	return p.run(func() ([]*eventdb.Event, error) {
		if err := p.requireOperator(caller); err != nil {
			return nil, err
		}
		if amount == nil || amount.Sign() <= 0 {
			return nil, reverts.ErrInvalidInput
		}
		feeBps, err := p.params.Get(params.KeyBonusFeeBps)
		if err != nil {
			return nil, err
		}
		fee := new(big.Int).Mul(amount, feeBps)
		fee.Div(fee, big.NewInt(lst.BasisPoints))
		net := new(big.Int).Sub(amount, fee)

		prev, err := p.ledger.ShareRate()
		if err != nil {
			return nil, err
		}
		if err := p.ledger.AddBonus(net); err != nil {
			return nil, err
		}
		limit, err := p.params.Get(params.KeyIncreaseLimitBps)
		if err != nil {
			return nil, err
		}
		if err := p.ledger.EnsureWithinBand(prev, limit.Uint64(), 0); err != nil {
			return nil, err
		}
		logger.Info("bonus added", "amount", net, "fee", fee)
		return []*eventdb.Event{{
			Timestamp: p.now(),
			Kind:      eventdb.KindBonus,
			Amount:    net,
			Extra:     "fee=" + fee.String(),
		}}, nil
	})
}

// RecognizeLoss writes a slash down from the staked liquidity, lowering
// the exchange rate within the configured deviation band. Operator only.
func (p *Pool) RecognizeLoss(caller lst.Address, amount *big.Int) (err error) {
	defer func() { countOp("recognize_loss", err) }()
	return p.run(func() ([]*eventdb.Event, error) {
		if err := p.requireOperator(caller); err != nil {
			return nil, err
		}
		prev, err := p.ledger.ShareRate()
		if err != nil {
			return nil, err
		}
		if err := p.ledger.RecognizeLoss(amount); err != nil {
			return nil, err
		}
		limit, err := p.params.Get(params.KeyDecreaseLimitBps)
		if err != nil {
			return nil, err
		}
		if err := p.ledger.EnsureWithinBand(prev, 0, limit.Uint64()); err != nil {
			return nil, err
		}
		logger.Warn("loss recognized", "amount", amount)
		return []*eventdb.Event{{
			Timestamp: p.now(),
			Kind:      eventdb.KindLoss,
			Amount:    amount,
		}}, nil
	})
}

// SetDepositCap updates the deposit cap, 0 disables it. Admin only.
func (p *Pool) SetDepositCap(caller lst.Address, cap *big.Int) (err error) {
	defer func() { countOp("set_deposit_cap", err) }()
	return p.setConfig(caller, "deposit-cap", params.KeyDepositCap, cap)
}

// SetPaused toggles the global pause flag. Admin only.
func (p *Pool) SetPaused(caller lst.Address, paused bool) (err error) {
	defer func() { countOp("set_paused", err) }()
	v := new(big.Int)
	if paused {
		v.SetUint64(1)
	}
	return p.setConfig(caller, "paused", params.KeyPaused, v)
}

func (p *Pool) setConfig(caller lst.Address, name string, key lst.Bytes32, value *big.Int) error {
	return p.run(func() ([]*eventdb.Event, error) {
		if err := p.requireAdmin(caller); err != nil {
			return nil, err
		}
		if value == nil || value.Sign() < 0 {
			return nil, reverts.ErrInvalidInput
		}
		if err := p.params.Set(key, value); err != nil {
			return nil, err
		}
		logger.Info("config changed", "key", name, "value", value)
		return []*eventdb.Event{{
			Timestamp: p.now(),
			Kind:      eventdb.KindConfigChanged,
			User:      &caller,
			Amount:    value,
			Extra:     name,
		}}, nil
	})
}

// SetTreasury updates the treasury address. Admin only.
func (p *Pool) SetTreasury(caller, treasury lst.Address) (err error) {
	defer func() { countOp("set_treasury", err) }()
	return p.run(func() ([]*eventdb.Event, error) {
		if err := p.requireAdmin(caller); err != nil {
			return nil, err
		}
		if treasury.IsZero() {
			return nil, reverts.ErrInvalidInput
		}
		p.params.SetTreasury(treasury)
		logger.Info("config changed", "key", "treasury", "value", treasury)
		return []*eventdb.Event{{
			Timestamp: p.now(),
			Kind:      eventdb.KindConfigChanged,
			User:      &caller,
			Extra:     "treasury=" + treasury.String(),
		}}, nil
	})
}

// SetMinStake updates the minimum accepted deposit. Admin only.
func (p *Pool) SetMinStake(caller lst.Address, amount *big.Int) (err error) {
	defer func() { countOp("set_min_stake", err) }()
	return p.run(func() ([]*eventdb.Event, error) {
		if err := p.requireAdmin(caller); err != nil {
			return nil, err
		}
		if amount == nil || amount.Sign() < 0 {
			return nil, reverts.ErrInvalidInput
		}
		cfg, err := p.params.EraConfig()
		if err != nil {
			return nil, err
		}
		cfg.MinStakeAmount = amount
		if err := p.params.SetEraConfig(cfg); err != nil {
			return nil, err
		}
		logger.Info("config changed", "key", "min-stake", "value", amount)
		return []*eventdb.Event{{
			Timestamp: p.now(),
			Kind:      eventdb.KindConfigChanged,
			User:      &caller,
			Amount:    amount,
			Extra:     "min-stake",
		}}, nil
	})
}

// SetEraPeriod updates the batch collection window length. Admin only.
func (p *Pool) SetEraPeriod(caller lst.Address, period uint64) (err error) {
	defer func() { countOp("set_era_period", err) }()
	return p.run(func() ([]*eventdb.Event, error) {
		if err := p.requireAdmin(caller); err != nil {
			return nil, err
		}
		if period == 0 {
			return nil, reverts.ErrInvalidInput
		}
		cfg, err := p.params.EraConfig()
		if err != nil {
			return nil, err
		}
		cfg.Period = period
		if err := p.params.SetEraConfig(cfg); err != nil {
			return nil, err
		}
		logger.Info("config changed", "key", "era-period", "value", period)
		return []*eventdb.Event{{
			Timestamp: p.now(),
			Kind:      eventdb.KindConfigChanged,
			User:      &caller,
			Amount:    new(big.Int).SetUint64(period),
			Extra:     "era-period",
		}}, nil
	})
}

// RescueTokens releases stray tokens held by the pool to the treasury.
// The transfer itself is carried out by the surrounding environment; the
// pool validates and records the intent. Admin only.
func (p *Pool) RescueTokens(caller, token lst.Address, amount *big.Int) (err error) {
	defer func() { countOp("rescue_tokens", err) }()
	return p.run(func() ([]*eventdb.Event, error) {
		if err := p.requireAdmin(caller); err != nil {
			return nil, err
		}
		if amount == nil || amount.Sign() <= 0 {
			return nil, reverts.ErrInvalidRescueAmount
		}
		treasury, err := p.params.Treasury()
		if err != nil {
			return nil, err
		}
		if treasury.IsZero() {
			return nil, reverts.New(reverts.KindState, "rescue failed: treasury not set")
		}
		logger.Info("tokens rescued", "token", token, "amount", amount, "treasury", treasury)
		return []*eventdb.Event{{
			Timestamp: p.now(),
			Kind:      eventdb.KindRescue,
			User:      &caller,
			Amount:    amount,
			Extra:     "token=" + token.String(),
		}}, nil
	})
}
