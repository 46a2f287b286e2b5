// Copyright (c) 2026 The Liquefy developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/liquefy/liquefy/api/restutil"
	"github.com/liquefy/liquefy/lst"
	"github.com/liquefy/liquefy/pool"
	"github.com/liquefy/liquefy/pool/params"
)

// Staking exposes the pool over REST.
type Staking struct {
	pool *pool.Pool
}

func New(p *pool.Pool) *Staking {
	return &Staking{pool: p}
}

var configKeys = map[string]lst.Bytes32{
	"deposit-cap":             params.KeyDepositCap,
	"paused":                  params.KeyPaused,
	"rate-increase-limit-bps": params.KeyIncreaseLimitBps,
	"rate-decrease-limit-bps": params.KeyDecreaseLimitBps,
	"bonus-fee-bps":           params.KeyBonusFeeBps,
}

func (s *Staking) handleGetState(w http.ResponseWriter, _ *http.Request) error {
	meta, err := s.pool.AssetState()
	if err != nil {
		return err
	}
	rate, err := s.pool.ShareRate()
	if err != nil {
		return err
	}
	activeID, err := s.pool.ActiveBatchID()
	if err != nil {
		return err
	}
	cfg, err := s.pool.EraConfig()
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &PoolState{
		ShareRate:     (*math.HexOrDecimal256)(rate),
		Assets:        convertAssetState(meta),
		ActiveBatchID: activeID,
		Era:           cfg.Era,
		EraPeriod:     cfg.Period,
		MinStake:      (*math.HexOrDecimal256)(cfg.MinStakeAmount),
	})
}

func (s *Staking) handleGetRate(w http.ResponseWriter, _ *http.Request) error {
	rate, err := s.pool.ShareRate()
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.M{"shareRate": (*math.HexOrDecimal256)(rate)})
}

func (s *Staking) handleGetConfig(w http.ResponseWriter, req *http.Request) error {
	name := mux.Vars(req)["key"]
	key, ok := configKeys[name]
	if !ok {
		return restutil.BadRequest(errors.New("unknown config key: " + name))
	}
	value, err := s.pool.ProtocolConfig(key)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.M{"key": name, "value": (*math.HexOrDecimal256)(value)})
}

func (s *Staking) handleGetRoles(w http.ResponseWriter, _ *http.Request) error {
	admin, operator, treasury, err := s.pool.Roles()
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &Roles{
		Admin:    admin,
		Operator: operator,
		Treasury: treasury,
	})
}

func (s *Staking) handleGetBatch(w http.ResponseWriter, req *http.Request) error {
	id, err := parseUint64(mux.Vars(req)["id"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "id"))
	}
	b, err := s.pool.GetBatch(id)
	if err != nil {
		return err
	}
	if b == nil {
		return restutil.HTTPError(errors.New("batch not found"), http.StatusNotFound)
	}
	return restutil.WriteJSON(w, convertBatch(id, b))
}

func (s *Staking) handleGetBalance(w http.ResponseWriter, req *http.Request) error {
	addr, err := lst.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "address"))
	}
	balance, err := s.pool.BalanceOf(*addr)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.M{"balance": (*math.HexOrDecimal256)(balance)})
}

func (s *Staking) handleGetRequest(w http.ResponseWriter, req *http.Request) error {
	vars := mux.Vars(req)
	addr, err := lst.ParseAddress(vars["address"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "address"))
	}
	batchID, err := parseUint64(vars["id"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "id"))
	}
	r, err := s.pool.GetWithdrawRequest(*addr, batchID)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, convertRequest(r))
}

func (s *Staking) handleDeposit(w http.ResponseWriter, req *http.Request) error {
	var body DepositBody
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	shares, err := s.pool.Deposit(body.Caller, amount(body.Amount), body.Referrer)
	if err != nil {
		return restutil.RevertError(err)
	}
	return restutil.WriteJSON(w, restutil.M{"shares": (*math.HexOrDecimal256)(shares)})
}

func (s *Staking) handleRequestWithdraw(w http.ResponseWriter, req *http.Request) error {
	var body WithdrawBody
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	batchID, err := s.pool.RequestWithdraw(body.Caller, amount(body.Shares))
	if err != nil {
		return restutil.RevertError(err)
	}
	return restutil.WriteJSON(w, restutil.M{"batchId": batchID})
}

func (s *Staking) handleCancelWithdraw(w http.ResponseWriter, req *http.Request) error {
	batchID, err := parseUint64(mux.Vars(req)["id"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "id"))
	}
	var body CallerBody
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	shares, err := s.pool.CancelWithdraw(body.Caller, batchID)
	if err != nil {
		return restutil.RevertError(err)
	}
	return restutil.WriteJSON(w, restutil.M{"shares": (*math.HexOrDecimal256)(shares)})
}

func (s *Staking) handleClaim(w http.ResponseWriter, req *http.Request) error {
	batchID, err := parseUint64(mux.Vars(req)["id"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "id"))
	}
	var body CallerBody
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	received, err := s.pool.Claim(body.Caller, batchID)
	if err != nil {
		return restutil.RevertError(err)
	}
	return restutil.WriteJSON(w, restutil.M{"received": (*math.HexOrDecimal256)(received)})
}

func (s *Staking) handleAdvanceEra(w http.ResponseWriter, req *http.Request) error {
	var body EraBody
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := s.pool.AdvanceEra(body.Caller, body.Era); err != nil {
		return restutil.RevertError(err)
	}
	return restutil.WriteJSON(w, restutil.M{"era": body.Era})
}

func (s *Staking) handleConfirmLiquidity(w http.ResponseWriter, req *http.Request) error {
	var body AmountBody
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	finalized, err := s.pool.ConfirmLiquidity(body.Caller, amount(body.Amount))
	if err != nil {
		return restutil.RevertError(err)
	}
	if finalized == nil {
		finalized = []uint64{}
	}
	return restutil.WriteJSON(w, restutil.M{"finalized": finalized})
}

func (s *Staking) handleStake(w http.ResponseWriter, req *http.Request) error {
	var body AmountBody
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := s.pool.Stake(body.Caller, amount(body.Amount)); err != nil {
		return restutil.RevertError(err)
	}
	return restutil.WriteJSON(w, restutil.M{"staked": body.Amount})
}

func (s *Staking) handleAddBonus(w http.ResponseWriter, req *http.Request) error {
	var body AmountBody
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := s.pool.AddBonus(body.Caller, amount(body.Amount)); err != nil {
		return restutil.RevertError(err)
	}
	return restutil.WriteJSON(w, restutil.M{"bonus": body.Amount})
}

func (s *Staking) handleRecognizeLoss(w http.ResponseWriter, req *http.Request) error {
	var body AmountBody
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := s.pool.RecognizeLoss(body.Caller, amount(body.Amount)); err != nil {
		return restutil.RevertError(err)
	}
	return restutil.WriteJSON(w, restutil.M{"loss": body.Amount})
}

func (s *Staking) handleSetDepositCap(w http.ResponseWriter, req *http.Request) error {
	var body AmountBody
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := s.pool.SetDepositCap(body.Caller, amount(body.Amount)); err != nil {
		return restutil.RevertError(err)
	}
	return restutil.WriteJSON(w, restutil.M{"depositCap": body.Amount})
}

func (s *Staking) handleSetMinStake(w http.ResponseWriter, req *http.Request) error {
	var body AmountBody
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := s.pool.SetMinStake(body.Caller, amount(body.Amount)); err != nil {
		return restutil.RevertError(err)
	}
	return restutil.WriteJSON(w, restutil.M{"minStake": body.Amount})
}

func (s *Staking) handleSetEraPeriod(w http.ResponseWriter, req *http.Request) error {
	var body PeriodBody
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := s.pool.SetEraPeriod(body.Caller, body.Period); err != nil {
		return restutil.RevertError(err)
	}
	return restutil.WriteJSON(w, restutil.M{"eraPeriod": body.Period})
}

func (s *Staking) handleSetTreasury(w http.ResponseWriter, req *http.Request) error {
	var body TreasuryBody
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := s.pool.SetTreasury(body.Caller, body.Treasury); err != nil {
		return restutil.RevertError(err)
	}
	return restutil.WriteJSON(w, restutil.M{"treasury": body.Treasury})
}

func (s *Staking) handleSetPaused(w http.ResponseWriter, req *http.Request) error {
	var body PausedBody
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := s.pool.SetPaused(body.Caller, body.Paused); err != nil {
		return restutil.RevertError(err)
	}
	return restutil.WriteJSON(w, restutil.M{"paused": body.Paused})
}

func (s *Staking) handleRescueTokens(w http.ResponseWriter, req *http.Request) error {
	var body RescueBody
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := s.pool.RescueTokens(body.Caller, body.Token, amount(body.Amount)); err != nil {
		return restutil.RevertError(err)
	}
	return restutil.WriteJSON(w, restutil.M{"rescued": body.Amount})
}

func parseUint64(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}

func (s *Staking) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/state").
		Methods(http.MethodGet).
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetState))
	sub.Path("/rate").
		Methods(http.MethodGet).
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetRate))
	sub.Path("/config/{key}").
		Methods(http.MethodGet).
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetConfig))
	sub.Path("/roles").
		Methods(http.MethodGet).
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetRoles))
	sub.Path("/batches/{id}").
		Methods(http.MethodGet).
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetBatch))
	sub.Path("/accounts/{address}/balance").
		Methods(http.MethodGet).
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetBalance))
	sub.Path("/accounts/{address}/requests/{id}").
		Methods(http.MethodGet).
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetRequest))

	sub.Path("/deposits").
		Methods(http.MethodPost).
		HandlerFunc(restutil.WrapHandlerFunc(s.handleDeposit))
	sub.Path("/withdrawals").
		Methods(http.MethodPost).
		HandlerFunc(restutil.WrapHandlerFunc(s.handleRequestWithdraw))
	sub.Path("/withdrawals/{id}/cancel").
		Methods(http.MethodPost).
		HandlerFunc(restutil.WrapHandlerFunc(s.handleCancelWithdraw))
	sub.Path("/withdrawals/{id}/claim").
		Methods(http.MethodPost).
		HandlerFunc(restutil.WrapHandlerFunc(s.handleClaim))

	sub.Path("/era").
		Methods(http.MethodPost).
		HandlerFunc(restutil.WrapHandlerFunc(s.handleAdvanceEra))
	sub.Path("/liquidity").
		Methods(http.MethodPost).
		HandlerFunc(restutil.WrapHandlerFunc(s.handleConfirmLiquidity))
	sub.Path("/stake").
		Methods(http.MethodPost).
		HandlerFunc(restutil.WrapHandlerFunc(s.handleStake))
	sub.Path("/bonus").
		Methods(http.MethodPost).
		HandlerFunc(restutil.WrapHandlerFunc(s.handleAddBonus))
	sub.Path("/loss").
		Methods(http.MethodPost).
		HandlerFunc(restutil.WrapHandlerFunc(s.handleRecognizeLoss))

	sub.Path("/admin/deposit-cap").
		Methods(http.MethodPost).
		HandlerFunc(restutil.WrapHandlerFunc(s.handleSetDepositCap))
	sub.Path("/admin/min-stake").
		Methods(http.MethodPost).
		HandlerFunc(restutil.WrapHandlerFunc(s.handleSetMinStake))
	sub.Path("/admin/era-period").
		Methods(http.MethodPost).
		HandlerFunc(restutil.WrapHandlerFunc(s.handleSetEraPeriod))
	sub.Path("/admin/treasury").
		Methods(http.MethodPost).
		HandlerFunc(restutil.WrapHandlerFunc(s.handleSetTreasury))
	sub.Path("/admin/paused").
		Methods(http.MethodPost).
		HandlerFunc(restutil.WrapHandlerFunc(s.handleSetPaused))
	sub.Path("/admin/rescue").
		Methods(http.MethodPost).
		HandlerFunc(restutil.WrapHandlerFunc(s.handleRescueTokens))
}
