package marketplace

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCurrentPrice(t *testing.T) {
	req := require.New(t)

	start := big.NewInt(1400)
	end := big.NewInt(200)
	startingAt := time.Unix(1_000_000, 0)
	duration := 1000 * time.Second

	cases := []struct {
		name string
		now  time.Time
		want int64
	}{
		{"before start pins to starting price", startingAt.Add(-10 * time.Second), 1400},
		{"at start pins to starting price", startingAt, 1400},
		{"interpolates linearly", startingAt.Add(800 * time.Second), 440},
		{"halfway", startingAt.Add(500 * time.Second), 800},
		{"at deadline pins to ending price", startingAt.Add(duration), 200},
		{"after deadline stays at ending price", startingAt.Add(2 * duration), 200},
	}

	for _, c := range cases {
		got := CurrentPrice(start, end, startingAt, duration, c.now)
		req.Equal(c.want, got.Int64(), c.name)
	}
}

func TestCurrentPriceFixed(t *testing.T) {
	req := require.New(t)

	// a fixed listing has start == end, the curve is flat
	price := big.NewInt(777)
	startingAt := time.Unix(1_000_000, 0)

	got := CurrentPrice(price, price, startingAt, 600*time.Second, startingAt.Add(time.Minute))
	req.Equal(int64(777), got.Int64())
}

func TestCurrentPriceRising(t *testing.T) {
	req := require.New(t)

	// end above start is allowed, the interpolation is signed
	start := big.NewInt(100)
	end := big.NewInt(600)
	startingAt := time.Unix(1_000_000, 0)

	got := CurrentPrice(start, end, startingAt, 1000*time.Second, startingAt.Add(400*time.Second))
	req.Equal(int64(300), got.Int64())
}

func TestCurrentPriceZeroDuration(t *testing.T) {
	req := require.New(t)

	start := big.NewInt(1000)
	end := big.NewInt(100)
	startingAt := time.Unix(1_000_000, 0)

	req.Equal(int64(1000), CurrentPrice(start, end, startingAt, 0, startingAt).Int64())
	req.Equal(int64(100), CurrentPrice(start, end, startingAt, 0, startingAt.Add(time.Second)).Int64())
}

func TestListingPriceAt(t *testing.T) {
	req := require.New(t)

	listing := &Listing{
		Kind:          KindDecaying,
		StartingPrice: "1400000000000000000",
		EndingPrice:   "200000000000000000",
		StartingAt:    time.Unix(1_000_000, 0),
		Duration:      1000,
	}

	got, err := listing.PriceAt(listing.StartingAt.Add(800 * time.Second))
	req.NoError(err)
	req.Equal("440000000000000000", got.String())
}
