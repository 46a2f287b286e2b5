// Copyright (c) 2026 The Liquefy developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package params

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/liquefy/liquefy/lst"
	"github.com/liquefy/liquefy/sslot"
)

var (
	slotConfig    = lst.BytesToBytes32([]byte("protocol-config"))
	slotEraConfig = lst.BytesToBytes32([]byte("era-config"))
	slotAdmin     = lst.BytesToBytes32([]byte("admin"))
	slotOperator  = lst.BytesToBytes32([]byte("operator"))
	slotTreasury  = lst.BytesToBytes32([]byte("treasury"))
)

// Well-known protocol config keys, readable through the keyed lookup.
var (
	KeyDepositCap       = lst.BytesToBytes32([]byte("deposit-cap"))
	KeyPaused           = lst.BytesToBytes32([]byte("paused"))
	KeyIncreaseLimitBps = lst.BytesToBytes32([]byte("rate-increase-limit-bps"))
	KeyDecreaseLimitBps = lst.BytesToBytes32([]byte("rate-decrease-limit-bps"))
	KeyBonusFeeBps      = lst.BytesToBytes32([]byte("bonus-fee-bps"))
)

// EraConfig holds the global staking cadence parameters.
type EraConfig struct {
	Era            uint64   // current era, advanced by the external era oracle
	Period         uint64   // eras an active batch stays open
	MinStakeAmount *big.Int // minimum accepted deposit
}

// Params is the keyed protocol configuration store plus the era config
// singleton and the privileged role/treasury addresses.
type Params struct {
	config   *sslot.Mapping[lst.Bytes32, *big.Int]
	eraPos   lst.Bytes32
	admin    *sslot.Address
	operator *sslot.Address
	treasury *sslot.Address
	sctx     *sslot.Context
}

func New(sctx *sslot.Context) *Params {
	return &Params{
		config:   sslot.NewMapping[lst.Bytes32, *big.Int](sctx, slotConfig),
		eraPos:   lst.Blake2b(sctx.Address().Bytes(), slotEraConfig.Bytes()),
		admin:    sslot.NewAddress(sctx, slotAdmin),
		operator: sslot.NewAddress(sctx, slotOperator),
		treasury: sslot.NewAddress(sctx, slotTreasury),
		sctx:     sctx,
	}
}

// Get returns the config value for key, zero if unset.
func (p *Params) Get(key lst.Bytes32) (*big.Int, error) {
	v, err := p.config.Get(key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get config value")
	}
	if v == nil {
		return new(big.Int), nil
	}
	return v, nil
}

// Set stores the config value for key.
func (p *Params) Set(key lst.Bytes32, value *big.Int) error {
	if err := p.config.Set(key, value); err != nil {
		return errors.Wrap(err, "failed to set config value")
	}
	return nil
}

// IsPaused returns the global pause flag.
func (p *Params) IsPaused() (bool, error) {
	v, err := p.Get(KeyPaused)
	if err != nil {
		return false, err
	}
	return v.Sign() != 0, nil
}

// EraConfig returns the era config singleton, with defaults when unset.
func (p *Params) EraConfig() (*EraConfig, error) {
	var cfg EraConfig
	found := false
	err := p.sctx.State().DecodeStorage(p.eraPos, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		found = true
		return rlp.DecodeBytes(raw, &cfg)
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get era config")
	}
	if !found {
		return &EraConfig{
			Era:            0,
			Period:         lst.DefaultEraPeriod,
			MinStakeAmount: new(big.Int),
		}, nil
	}
	if cfg.MinStakeAmount == nil {
		cfg.MinStakeAmount = new(big.Int)
	}
	return &cfg, nil
}

// SetEraConfig stores the era config singleton.
func (p *Params) SetEraConfig(cfg *EraConfig) error {
	err := p.sctx.State().EncodeStorage(p.eraPos, func() ([]byte, error) {
		return rlp.EncodeToBytes(cfg)
	})
	if err != nil {
		return errors.Wrap(err, "failed to set era config")
	}
	return nil
}

func (p *Params) Admin() (lst.Address, error) {
	return p.admin.Get()
}

func (p *Params) SetAdmin(addr lst.Address) {
	p.admin.Set(addr)
}

func (p *Params) Operator() (lst.Address, error) {
	return p.operator.Get()
}

func (p *Params) SetOperator(addr lst.Address) {
	p.operator.Set(addr)
}

func (p *Params) Treasury() (lst.Address, error) {
	return p.treasury.Get()
}

func (p *Params) SetTreasury(addr lst.Address) {
	p.treasury.Set(addr)
}
