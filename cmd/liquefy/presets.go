// Copyright (c) 2026 The Liquefy developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"math/big"
	"os"

	cli "gopkg.in/urfave/cli.v1"
	"gopkg.in/yaml.v3"

	"github.com/liquefy/liquefy/lst"
	"github.com/liquefy/liquefy/pool"
)

// genesisFile is the yaml form of the pool genesis. Amounts are decimal
// strings to keep exact numeric fidelity.
type genesisFile struct {
	Admin    string `yaml:"admin"`
	Operator string `yaml:"operator"`
	Treasury string `yaml:"treasury"`

	DepositCap string `yaml:"depositCap"`
	MinStake   string `yaml:"minStake"`
	EraPeriod  uint64 `yaml:"eraPeriod"`

	IncreaseLimitBps uint64 `yaml:"increaseLimitBps"`
	DecreaseLimitBps uint64 `yaml:"decreaseLimitBps"`
	BonusFeeBps      uint64 `yaml:"bonusFeeBps"`
}

func parseAmount(name, value string) *big.Int {
	if value == "" {
		return new(big.Int)
	}
	v, ok := new(big.Int).SetString(value, 10)
	if !ok || v.Sign() < 0 {
		fatal(fmt.Sprintf("genesis: invalid %v amount [%v]", name, value))
	}
	return v
}

func parseRole(name, value string) lst.Address {
	if value == "" {
		return lst.Address{}
	}
	addr, err := lst.ParseAddress(value)
	if err != nil {
		fatal(fmt.Sprintf("genesis: invalid %v address [%v]: %v", name, value, err))
	}
	return *addr
}

func loadGenesis(path string) *pool.Genesis {
	data, err := os.ReadFile(path)
	if err != nil {
		fatal(fmt.Sprintf("open genesis file: %v", err))
	}
	var file genesisFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		fatal(fmt.Sprintf("decode genesis file: %v", err))
	}
	if file.Admin == "" {
		fatal("genesis: admin is required")
	}
	return &pool.Genesis{
		Admin:            parseRole("admin", file.Admin),
		Operator:         parseRole("operator", file.Operator),
		Treasury:         parseRole("treasury", file.Treasury),
		DepositCap:       parseAmount("depositCap", file.DepositCap),
		MinStakeAmount:   parseAmount("minStake", file.MinStake),
		EraPeriod:        file.EraPeriod,
		IncreaseLimitBps: file.IncreaseLimitBps,
		DecreaseLimitBps: file.DecreaseLimitBps,
		BonusFeeBps:      file.BonusFeeBps,
	}
}

// devGenesis is the well-known local setup: one account holds every role.
func devGenesis() *pool.Genesis {
	admin := lst.MustParseAddress("0xf077b491b355e64048ce21e3a6fc4751eeea77fa")
	gene := pool.DefaultGenesis(admin)
	gene.BonusFeeBps = 1000
	return gene
}

func selectGenesis(ctx *cli.Context) *pool.Genesis {
	if ctx.Bool(devFlag.Name) {
		return devGenesis()
	}
	if path := ctx.String(genesisFlag.Name); path != "" {
		return loadGenesis(path)
	}
	// no genesis given; fine for an already initialized data dir
	return nil
}
