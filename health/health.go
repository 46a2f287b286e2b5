// Copyright (c) 2026 The Liquefy developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/liquefy/liquefy/pool/params"
)

// DefaultMaxEraStaleness is how long the era may stand still before the
// node reports unhealthy. Eras advance on a cadence of days, driven by an
// external oracle; a stuck era means the oracle feed is down.
const DefaultMaxEraStaleness = 48 * time.Hour

// Reader is the pool surface the health check depends on.
type Reader interface {
	EraConfig() (*params.EraConfig, error)
	ShareRate() (*big.Int, error)
}

type EraIngestion struct {
	Era        uint64     `json:"era"`
	ObservedAt *time.Time `json:"observedAt"`
}

type Status struct {
	Healthy      bool                  `json:"healthy"`
	EraIngestion *EraIngestion         `json:"eraIngestion"`
	ShareRate    *math.HexOrDecimal256 `json:"shareRate"`
}

// Health reports liveness of the pool: state must be readable and the
// era feed must not be stale.
type Health struct {
	lock            sync.Mutex
	reader          Reader
	maxEraStaleness time.Duration

	lastEra     uint64
	lastEraSeen time.Time
}

// New creates a health tracker. A zero maxEraStaleness disables the
// staleness check.
func New(reader Reader, maxEraStaleness time.Duration) *Health {
	return &Health{
		reader:          reader,
		maxEraStaleness: maxEraStaleness,
	}
}

func (h *Health) Status() (*Status, error) {
	h.lock.Lock()
	defer h.lock.Unlock()

	cfg, err := h.reader.EraConfig()
	if err != nil {
		return &Status{Healthy: false}, nil
	}
	rate, err := h.reader.ShareRate()
	if err != nil {
		return &Status{Healthy: false}, nil
	}

	now := time.Now()
	if h.lastEraSeen.IsZero() || cfg.Era != h.lastEra {
		h.lastEra = cfg.Era
		h.lastEraSeen = now
	}

	healthy := true
	if h.maxEraStaleness > 0 && now.Sub(h.lastEraSeen) > h.maxEraStaleness {
		healthy = false
	}

	seen := h.lastEraSeen
	return &Status{
		Healthy: healthy,
		EraIngestion: &EraIngestion{
			Era:        h.lastEra,
			ObservedAt: &seen,
		},
		ShareRate: (*math.HexOrDecimal256)(rate),
	}, nil
}
