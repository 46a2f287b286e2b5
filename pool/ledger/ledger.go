// Copyright (c) 2026 The Liquefy developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/liquefy/liquefy/lst"
	"github.com/liquefy/liquefy/pool/reverts"
	"github.com/liquefy/liquefy/sslot"
)

var (
	slotTotalDeposited    = lst.BytesToBytes32([]byte("total-deposited"))
	slotTotalStaked       = lst.BytesToBytes32([]byte("total-staked"))
	slotTotalPendingStake = lst.BytesToBytes32([]byte("total-pending-stake"))
	slotTotalPendingBonus = lst.BytesToBytes32([]byte("total-pending-bonus"))
	slotTotalRedeemable   = lst.BytesToBytes32([]byte("total-redeemable"))
	slotTotalShareSupply  = lst.BytesToBytes32([]byte("total-share-supply"))
	slotShareBalances     = lst.BytesToBytes32([]byte("share-balances"))
)

// AssetState is a read-only snapshot of the ledger aggregates.
type AssetState struct {
	TotalDeposited    *big.Int `json:"totalDeposited"`
	TotalStaked       *big.Int `json:"totalStaked"`
	TotalPendingStake *big.Int `json:"totalPendingStake"`
	TotalPendingBonus *big.Int `json:"totalPendingBonus"`
	TotalRedeemable   *big.Int `json:"totalRedeemable"`
	TotalShareSupply  *big.Int `json:"totalShareSupply"`
}

// Ledger tracks the pool's asset aggregates and per-user share balances,
// and derives the asset/share exchange rate from them. Shares queued for
// withdrawal stay inside the total supply until their batch is finalized,
// so queuing itself never moves the rate.
type Ledger struct {
	totalDeposited    *sslot.Uint256
	totalStaked       *sslot.Uint256
	totalPendingStake *sslot.Uint256
	totalPendingBonus *sslot.Uint256
	totalRedeemable   *sslot.Uint256
	totalShareSupply  *sslot.Uint256
	balances          *sslot.Mapping[lst.Address, *big.Int]
}

func New(sctx *sslot.Context) *Ledger {
	return &Ledger{
		totalDeposited:    sslot.NewUint256(sctx, slotTotalDeposited),
		totalStaked:       sslot.NewUint256(sctx, slotTotalStaked),
		totalPendingStake: sslot.NewUint256(sctx, slotTotalPendingStake),
		totalPendingBonus: sslot.NewUint256(sctx, slotTotalPendingBonus),
		totalRedeemable:   sslot.NewUint256(sctx, slotTotalRedeemable),
		totalShareSupply:  sslot.NewUint256(sctx, slotTotalShareSupply),
		balances:          sslot.NewMapping[lst.Address, *big.Int](sctx, slotShareBalances),
	}
}

// ShareRate returns the current asset value of one share, scaled by
// lst.RateScale. An empty pool prices one share at exactly one asset unit.
func (l *Ledger) ShareRate() (*big.Int, error) {
	supply, err := l.totalShareSupply.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get share supply")
	}
	if supply.Sign() == 0 {
		return lst.RateScale(), nil
	}
	backing, err := l.backing()
	if err != nil {
		return nil, err
	}
	backing.Mul(backing, lst.RateScale())
	return backing.Div(backing, supply), nil
}

// ShareSupply returns the total minted share supply.
func (l *Ledger) ShareSupply() (*big.Int, error) {
	supply, err := l.totalShareSupply.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get share supply")
	}
	return supply, nil
}

// backing returns staked + pending stake + pending bonus.
func (l *Ledger) backing() (*big.Int, error) {
	staked, err := l.totalStaked.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get total staked")
	}
	pending, err := l.totalPendingStake.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get pending stake")
	}
	bonus, err := l.totalPendingBonus.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get pending bonus")
	}
	staked.Add(staked, pending)
	return staked.Add(staked, bonus), nil
}

// Deposit accepts amount from user, mints shares at the current rate and
// queues the amount as pending stake. The mint truncates toward zero.
func (l *Ledger) Deposit(user lst.Address, amount, minStake, cap *big.Int) (*big.Int, error) {
	if amount == nil || amount.Sign() <= 0 || amount.Cmp(minStake) < 0 {
		return nil, reverts.ErrInvalidStakeAmount
	}
	if cap.Sign() > 0 {
		deposited, err := l.totalDeposited.Get()
		if err != nil {
			return nil, errors.Wrap(err, "failed to get total deposited")
		}
		if deposited.Add(deposited, amount).Cmp(cap) > 0 {
			return nil, reverts.ErrDepositCapExceeded
		}
	}
	rate, err := l.ShareRate()
	if err != nil {
		return nil, err
	}
	shares := new(big.Int).Mul(amount, lst.RateScale())
	shares.Div(shares, rate)

	if err := l.totalDeposited.Add(amount); err != nil {
		return nil, errors.Wrap(err, "failed to add total deposited")
	}
	if err := l.totalPendingStake.Add(amount); err != nil {
		return nil, errors.Wrap(err, "failed to add pending stake")
	}
	if err := l.totalShareSupply.Add(shares); err != nil {
		return nil, errors.Wrap(err, "failed to add share supply")
	}
	if err := l.credit(user, shares); err != nil {
		return nil, err
	}
	return shares, nil
}

// BalanceOf returns user's spendable share balance.
func (l *Ledger) BalanceOf(user lst.Address) (*big.Int, error) {
	balance, err := l.balances.Get(user)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get share balance")
	}
	if balance == nil {
		return new(big.Int), nil
	}
	return balance, nil
}

// BurnShares removes shares from user's balance without touching the total
// supply. The caller owns the burnt shares from here on (batch queuing).
func (l *Ledger) BurnShares(user lst.Address, shares *big.Int) error {
	if shares == nil || shares.Sign() <= 0 {
		return reverts.ErrInvalidInput
	}
	balance, err := l.BalanceOf(user)
	if err != nil {
		return err
	}
	if balance.Cmp(shares) < 0 {
		return reverts.ErrInsufficientBalance
	}
	balance.Sub(balance, shares)
	return l.setBalance(user, balance)
}

// MintShares returns previously burnt shares to user's balance
// (withdraw cancellation).
func (l *Ledger) MintShares(user lst.Address, shares *big.Int) error {
	return l.credit(user, shares)
}

func (l *Ledger) credit(user lst.Address, shares *big.Int) error {
	balance, err := l.BalanceOf(user)
	if err != nil {
		return err
	}
	balance.Add(balance, shares)
	return l.setBalance(user, balance)
}

func (l *Ledger) setBalance(user lst.Address, balance *big.Int) error {
	if balance.Sign() == 0 {
		if err := l.balances.Delete(user); err != nil {
			return errors.Wrap(err, "failed to delete share balance")
		}
		return nil
	}
	if err := l.balances.Set(user, balance); err != nil {
		return errors.Wrap(err, "failed to set share balance")
	}
	return nil
}

// MarkStaked moves amount from pending stake to staked, recognizing that
// the operator has placed the liquidity with validators.
func (l *Ledger) MarkStaked(amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return reverts.ErrInvalidInput
	}
	if err := l.totalPendingStake.Sub(amount); err != nil {
		if errors.Is(err, sslot.ErrUnderflow) {
			return reverts.New(reverts.KindCapacity, "insufficient pending stake")
		}
		return errors.Wrap(err, "failed to sub pending stake")
	}
	if err := l.totalStaked.Add(amount); err != nil {
		return errors.Wrap(err, "failed to add total staked")
	}
	return nil
}

// AddBonus credits staking rewards to the pending bonus bucket, raising
// the share rate. Band enforcement is the caller's concern via EnsureWithinBand.
func (l *Ledger) AddBonus(amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return reverts.ErrInvalidInput
	}
	if err := l.totalPendingBonus.Add(amount); err != nil {
		return errors.Wrap(err, "failed to add pending bonus")
	}
	return nil
}

// RecognizeLoss writes a slash down from the staked aggregate, lowering
// the share rate.
func (l *Ledger) RecognizeLoss(amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return reverts.ErrInvalidInput
	}
	if err := l.totalStaked.Sub(amount); err != nil {
		if errors.Is(err, sslot.ErrUnderflow) {
			return reverts.New(reverts.KindCapacity, "loss exceeds staked amount")
		}
		return errors.Wrap(err, "failed to sub total staked")
	}
	return nil
}

// EnsureWithinBand checks the current rate against prev. A move above
// prev*(1+increaseBps/10000) or below prev*(1-decreaseBps/10000) reverts.
// A zero limit on a side disables the check for that side.
func (l *Ledger) EnsureWithinBand(prev *big.Int, increaseBps, decreaseBps uint64) error {
	rate, err := l.ShareRate()
	if err != nil {
		return err
	}
	base := new(big.Int).SetUint64(lst.BasisPoints)
	if increaseBps > 0 && rate.Cmp(prev) > 0 {
		ceil := new(big.Int).SetUint64(lst.BasisPoints + increaseBps)
		ceil.Mul(ceil, prev)
		ceil.Div(ceil, base)
		if rate.Cmp(ceil) > 0 {
			return reverts.ErrRepriceOutOfBand
		}
	}
	if decreaseBps > 0 && rate.Cmp(prev) < 0 {
		floor := new(big.Int).SetUint64(lst.BasisPoints - decreaseBps)
		floor.Mul(floor, prev)
		floor.Div(floor, base)
		if rate.Cmp(floor) < 0 {
			return reverts.ErrRepriceOutOfBand
		}
	}
	return nil
}

// FinalizeShares retires shares from the supply at the current rate and
// moves their asset value to redeemable. The pending bonus backs the rate
// but was never counted into totalDeposited, so it is drawn first and
// realized as a deposit; the remainder comes out of staked. It returns
// the asset amount and the rate the conversion was priced at.
func (l *Ledger) FinalizeShares(shares *big.Int) (*big.Int, *big.Int, error) {
	rate, err := l.ShareRate()
	if err != nil {
		return nil, nil, err
	}
	asset := new(big.Int).Mul(shares, rate)
	asset.Div(asset, lst.RateScale())

	if err := l.totalShareSupply.Sub(shares); err != nil {
		if errors.Is(err, sslot.ErrUnderflow) {
			return nil, nil, reverts.New(reverts.KindCapacity, "insufficient share supply")
		}
		return nil, nil, errors.Wrap(err, "failed to sub share supply")
	}
	bonus, err := l.totalPendingBonus.Get()
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to get pending bonus")
	}
	fromBonus := new(big.Int).Set(bonus)
	if fromBonus.Cmp(asset) > 0 {
		fromBonus.Set(asset)
	}
	if fromBonus.Sign() > 0 {
		if err := l.totalPendingBonus.Sub(fromBonus); err != nil {
			return nil, nil, errors.Wrap(err, "failed to sub pending bonus")
		}
		if err := l.totalDeposited.Add(fromBonus); err != nil {
			return nil, nil, errors.Wrap(err, "failed to add total deposited")
		}
	}
	fromStaked := new(big.Int).Sub(asset, fromBonus)
	if err := l.totalStaked.Sub(fromStaked); err != nil {
		if errors.Is(err, sslot.ErrUnderflow) {
			return nil, nil, reverts.New(reverts.KindCapacity, "insufficient staked liquidity")
		}
		return nil, nil, errors.Wrap(err, "failed to sub total staked")
	}
	if err := l.totalRedeemable.Add(asset); err != nil {
		return nil, nil, errors.Wrap(err, "failed to add redeemable")
	}
	return asset, rate, nil
}

// Payout releases amount of redeemable liquidity out of the pool (claim,
// treasury rescue).
func (l *Ledger) Payout(amount *big.Int) error {
	if err := l.totalRedeemable.Sub(amount); err != nil {
		if errors.Is(err, sslot.ErrUnderflow) {
			return reverts.New(reverts.KindCapacity, "insufficient redeemable liquidity")
		}
		return errors.Wrap(err, "failed to sub redeemable")
	}
	if err := l.totalDeposited.Sub(amount); err != nil {
		if errors.Is(err, sslot.ErrUnderflow) {
			return reverts.New(reverts.KindCapacity, "insufficient deposited total")
		}
		return errors.Wrap(err, "failed to sub total deposited")
	}
	return nil
}

// AssetState snapshots all aggregates.
func (l *Ledger) AssetState() (*AssetState, error) {
	deposited, err := l.totalDeposited.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get total deposited")
	}
	staked, err := l.totalStaked.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get total staked")
	}
	pendingStake, err := l.totalPendingStake.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get pending stake")
	}
	pendingBonus, err := l.totalPendingBonus.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get pending bonus")
	}
	redeemable, err := l.totalRedeemable.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get redeemable")
	}
	supply, err := l.totalShareSupply.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get share supply")
	}
	return &AssetState{
		TotalDeposited:    deposited,
		TotalStaked:       staked,
		TotalPendingStake: pendingStake,
		TotalPendingBonus: pendingBonus,
		TotalRedeemable:   redeemable,
		TotalShareSupply:  supply,
	}, nil
}
