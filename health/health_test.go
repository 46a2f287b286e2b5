// Copyright (c) 2026 The Liquefy developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"math/big"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liquefy/liquefy/lst"
	"github.com/liquefy/liquefy/pool/params"
)

type stubReader struct {
	era     uint64
	readErr error
}

func (r *stubReader) EraConfig() (*params.EraConfig, error) {
	if r.readErr != nil {
		return nil, r.readErr
	}
	return &params.EraConfig{Era: r.era, Period: 1, MinStakeAmount: new(big.Int)}, nil
}

func (r *stubReader) ShareRate() (*big.Int, error) {
	if r.readErr != nil {
		return nil, r.readErr
	}
	return lst.RateScale(), nil
}

func TestHealthy(t *testing.T) {
	h := New(&stubReader{era: 5}, DefaultMaxEraStaleness)

	status, err := h.Status()
	require.NoError(t, err)
	assert.True(t, status.Healthy)
	require.NotNil(t, status.EraIngestion)
	assert.Equal(t, uint64(5), status.EraIngestion.Era)
	assert.Equal(t, lst.RateScale().String(), (*big.Int)(status.ShareRate).String())
}

func TestUnreadableStateIsUnhealthy(t *testing.T) {
	h := New(&stubReader{readErr: errors.New("db closed")}, DefaultMaxEraStaleness)

	status, err := h.Status()
	require.NoError(t, err)
	assert.False(t, status.Healthy)
}

func TestStaleEraIsUnhealthy(t *testing.T) {
	reader := &stubReader{era: 5}
	h := New(reader, time.Nanosecond)

	// first observation records the era
	status, err := h.Status()
	require.NoError(t, err)
	assert.True(t, status.Healthy)

	// same era past the staleness bound
	time.Sleep(time.Millisecond)
	status, err = h.Status()
	require.NoError(t, err)
	assert.False(t, status.Healthy)

	// an advancing era recovers
	reader.era = 6
	status, err = h.Status()
	require.NoError(t, err)
	assert.True(t, status.Healthy)
	assert.Equal(t, uint64(6), status.EraIngestion.Era)
}

func TestZeroStalenessDisablesCheck(t *testing.T) {
	h := New(&stubReader{era: 5}, 0)

	status, err := h.Status()
	require.NoError(t, err)
	assert.True(t, status.Healthy)

	time.Sleep(time.Millisecond)
	status, err = h.Status()
	require.NoError(t, err)
	assert.True(t, status.Healthy)
}
