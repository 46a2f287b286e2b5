// Copyright (c) 2026 The Liquefy developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package params

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liquefy/liquefy/lst"
	"github.com/liquefy/liquefy/lvldb"
	"github.com/liquefy/liquefy/sslot"
	"github.com/liquefy/liquefy/state"
)

func newParams(t *testing.T) *Params {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(sslot.NewContext(lst.BytesToAddress([]byte("pool")), state.New(db)))
}

func TestConfigGetSet(t *testing.T) {
	p := newParams(t)

	v, err := p.Get(KeyDepositCap)
	assert.NoError(t, err)
	assert.Equal(t, "0", v.String())

	assert.NoError(t, p.Set(KeyDepositCap, big.NewInt(1_000_000)))
	v, err = p.Get(KeyDepositCap)
	assert.NoError(t, err)
	assert.Equal(t, "1000000", v.String())
}

func TestPausedFlag(t *testing.T) {
	p := newParams(t)

	paused, err := p.IsPaused()
	assert.NoError(t, err)
	assert.False(t, paused)

	require.NoError(t, p.Set(KeyPaused, big.NewInt(1)))
	paused, err = p.IsPaused()
	assert.NoError(t, err)
	assert.True(t, paused)

	require.NoError(t, p.Set(KeyPaused, big.NewInt(0)))
	paused, err = p.IsPaused()
	assert.NoError(t, err)
	assert.False(t, paused)
}

func TestEraConfigDefaults(t *testing.T) {
	p := newParams(t)

	cfg, err := p.EraConfig()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), cfg.Era)
	assert.Equal(t, uint64(lst.DefaultEraPeriod), cfg.Period)
	assert.Equal(t, "0", cfg.MinStakeAmount.String())
}

func TestEraConfigRoundTrip(t *testing.T) {
	p := newParams(t)

	require.NoError(t, p.SetEraConfig(&EraConfig{
		Era:            12,
		Period:         3,
		MinStakeAmount: big.NewInt(5000),
	}))

	cfg, err := p.EraConfig()
	require.NoError(t, err)
	assert.Equal(t, uint64(12), cfg.Era)
	assert.Equal(t, uint64(3), cfg.Period)
	assert.Equal(t, "5000", cfg.MinStakeAmount.String())
}

func TestRoles(t *testing.T) {
	p := newParams(t)

	admin, err := p.Admin()
	require.NoError(t, err)
	assert.True(t, admin.IsZero())

	wantAdmin := lst.BytesToAddress([]byte("admin"))
	wantOperator := lst.BytesToAddress([]byte("operator"))
	wantTreasury := lst.BytesToAddress([]byte("treasury"))

	p.SetAdmin(wantAdmin)
	p.SetOperator(wantOperator)
	p.SetTreasury(wantTreasury)

	admin, err = p.Admin()
	require.NoError(t, err)
	assert.Equal(t, wantAdmin, admin)
	operator, err := p.Operator()
	require.NoError(t, err)
	assert.Equal(t, wantOperator, operator)
	treasury, err := p.Treasury()
	require.NoError(t, err)
	assert.Equal(t, wantTreasury, treasury)
}
