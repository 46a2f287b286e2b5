// Copyright (c) 2026 The Liquefy developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lst

import "math/big"

// Constants of the liquid staking pool.
const (
	// RateDecimals is the fixed-point precision of the share exchange rate.
	RateDecimals = 18

	// BasisPoints is the denominator used for all bps-expressed limits and fees.
	BasisPoints = 10_000

	// DefaultEraPeriod is the number of eras an active batch stays open.
	DefaultEraPeriod = 7

	// DefaultIncreaseLimitBps bounds a single upward reprice (1%).
	DefaultIncreaseLimitBps = 100

	// DefaultDecreaseLimitBps bounds a single downward reprice (0.5%).
	DefaultDecreaseLimitBps = 50
)

// RateScale is the scaling factor of the share exchange rate, i.e. a rate of
// exactly 1.0 is represented as RateScale. All rate arithmetic truncates
// toward zero.
func RateScale() *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(RateDecimals), nil)
}
