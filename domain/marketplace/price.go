package marketplace

import (
	"math/big"
	"time"
)

// CurrentPrice computes the price of a time-decaying listing at `now`.
//
// Before startingAt the price is pinned to start; at or past
// startingAt+duration it is pinned to end. In between it interpolates
// linearly using signed intermediate arithmetic, end may exceed start, and
// the division truncates toward the start-relative direction. A zero
// duration jumps straight to end once now passes startingAt.
func CurrentPrice(start, end *big.Int, startingAt time.Time, duration time.Duration, now time.Time) *big.Int {
	if !now.After(startingAt) {
		return new(big.Int).Set(start)
	}
	if duration <= 0 || !now.Before(startingAt.Add(duration)) {
		return new(big.Int).Set(end)
	}

	elapsed := big.NewInt(int64(now.Sub(startingAt) / time.Second))
	total := big.NewInt(int64(duration / time.Second))
	if total.Sign() == 0 {
		return new(big.Int).Set(end)
	}

	delta := new(big.Int).Sub(end, start)
	delta.Mul(delta, elapsed)
	delta.Quo(delta, total)
	return delta.Add(start, delta)
}
