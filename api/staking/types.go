// Copyright (c) 2026 The Liquefy developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/liquefy/liquefy/lst"
	"github.com/liquefy/liquefy/pool/batch"
	"github.com/liquefy/liquefy/pool/ledger"
	"github.com/liquefy/liquefy/pool/request"
)

// AssetState mirrors the ledger aggregates with JSON-safe amounts.
type AssetState struct {
	TotalDeposited    *math.HexOrDecimal256 `json:"totalDeposited"`
	TotalStaked       *math.HexOrDecimal256 `json:"totalStaked"`
	TotalPendingStake *math.HexOrDecimal256 `json:"totalPendingStake"`
	TotalPendingBonus *math.HexOrDecimal256 `json:"totalPendingBonus"`
	TotalRedeemable   *math.HexOrDecimal256 `json:"totalRedeemable"`
	TotalShareSupply  *math.HexOrDecimal256 `json:"totalShareSupply"`
}

func convertAssetState(meta *ledger.AssetState) *AssetState {
	return &AssetState{
		TotalDeposited:    (*math.HexOrDecimal256)(meta.TotalDeposited),
		TotalStaked:       (*math.HexOrDecimal256)(meta.TotalStaked),
		TotalPendingStake: (*math.HexOrDecimal256)(meta.TotalPendingStake),
		TotalPendingBonus: (*math.HexOrDecimal256)(meta.TotalPendingBonus),
		TotalRedeemable:   (*math.HexOrDecimal256)(meta.TotalRedeemable),
		TotalShareSupply:  (*math.HexOrDecimal256)(meta.TotalShareSupply),
	}
}

// PoolState is the combined read-only snapshot of the pool.
type PoolState struct {
	ShareRate     *math.HexOrDecimal256 `json:"shareRate"`
	Assets        *AssetState           `json:"assets"`
	ActiveBatchID uint64                `json:"activeBatchId"`
	Era           uint64                `json:"era"`
	EraPeriod     uint64                `json:"eraPeriod"`
	MinStake      *math.HexOrDecimal256 `json:"minStake"`
}

// Batch is the JSON form of a withdrawal batch.
type Batch struct {
	ID           uint64                `json:"id"`
	Status       string                `json:"status"`
	QueuedShares *math.HexOrDecimal256 `json:"queuedShares"`
	EndingEra    uint64                `json:"endingEra"`
	FinalRate    *math.HexOrDecimal256 `json:"finalRate"`
}

func convertBatch(id uint64, b *batch.Batch) *Batch {
	return &Batch{
		ID:           id,
		Status:       b.Status.String(),
		QueuedShares: (*math.HexOrDecimal256)(b.QueuedShares),
		EndingEra:    b.EndingEra,
		FinalRate:    (*math.HexOrDecimal256)(b.FinalRate),
	}
}

// WithdrawRequest is the JSON form of a withdraw request.
type WithdrawRequest struct {
	Status         string                `json:"status"`
	UnstakedShares *math.HexOrDecimal256 `json:"unstakedShares"`
	ReceivedAsset  *math.HexOrDecimal256 `json:"receivedAsset"`
}

func convertRequest(req *request.WithdrawRequest) *WithdrawRequest {
	return &WithdrawRequest{
		Status:         req.Status.String(),
		UnstakedShares: (*math.HexOrDecimal256)(req.UnstakedShares),
		ReceivedAsset:  (*math.HexOrDecimal256)(req.ReceivedAsset),
	}
}

// Roles lists the privileged addresses.
type Roles struct {
	Admin    lst.Address `json:"admin"`
	Operator lst.Address `json:"operator"`
	Treasury lst.Address `json:"treasury"`
}

// DepositBody is the payload of a deposit.
type DepositBody struct {
	Caller   lst.Address           `json:"caller"`
	Amount   *math.HexOrDecimal256 `json:"amount"`
	Referrer *lst.Address          `json:"referrer"`
}

// WithdrawBody is the payload of a withdraw request.
type WithdrawBody struct {
	Caller lst.Address           `json:"caller"`
	Shares *math.HexOrDecimal256 `json:"shares"`
}

// CallerBody carries just the caller (cancel, claim).
type CallerBody struct {
	Caller lst.Address `json:"caller"`
}

// AmountBody carries the caller plus an amount (stake, bonus, loss,
// liquidity confirmation, deposit cap, min stake).
type AmountBody struct {
	Caller lst.Address           `json:"caller"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

// EraBody advances the era.
type EraBody struct {
	Caller lst.Address `json:"caller"`
	Era    uint64      `json:"era"`
}

// PeriodBody updates the batch collection window.
type PeriodBody struct {
	Caller lst.Address `json:"caller"`
	Period uint64      `json:"period"`
}

// TreasuryBody updates the treasury address.
type TreasuryBody struct {
	Caller   lst.Address `json:"caller"`
	Treasury lst.Address `json:"treasury"`
}

// PausedBody toggles the pause flag.
type PausedBody struct {
	Caller lst.Address `json:"caller"`
	Paused bool        `json:"paused"`
}

// RescueBody releases stray tokens to the treasury.
type RescueBody struct {
	Caller lst.Address           `json:"caller"`
	Token  lst.Address           `json:"token"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

func amount(v *math.HexOrDecimal256) *big.Int {
	if v == nil {
		return nil
	}
	return (*big.Int)(v)
}
