package mc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/banachtech/binotree/lattice"
	"github.com/banachtech/binotree/payoff"
	"github.com/banachtech/binotree/snell"
)

func TestUniformMoves(t *testing.T) {
	s := NewUniform(rand.NewSource(1))
	m := s.Moves(1000)
	require.Len(t, m, 1000)
	ups := 0
	for _, x := range m {
		require.Contains(t, []int{-1, 1}, x)
		if x == 1 {
			ups++
		}
	}
	require.InDelta(t, 500, ups, 100)
}

func TestRiskNeutralMoves(t *testing.T) {
	s := NewRiskNeutral([]float64{1, 0, 1, 0}, rand.NewSource(7))
	require.Equal(t, []int{1, -1, 1, -1}, s.Moves(4))
}

func TestRandomPath(t *testing.T) {
	p, err := RandomPath(126, 42)
	require.NoError(t, err)
	require.Equal(t, 127, p.Len())

	again, err := RandomPath(126, 42)
	require.NoError(t, err)
	require.Equal(t, p, again)
}

func TestEstimate(t *testing.T) {
	l, err := lattice.Generate(lattice.Params{
		Periods:   60,
		Drift:     6e-4,
		Vol:       1.04e-2,
		Rate:      4e-5,
		Spot:      64.94,
		Dividends: []lattice.Dividend{{Period: 53, Yield: 5e-3}},
	})
	require.NoError(t, err)

	testCases := []payoff.Contract{
		{Style: payoff.European, Side: payoff.Put, Strike: 64.94},
		{Style: payoff.European, Side: payoff.Call, Strike: 64.94},
		{Style: payoff.European, Kind: payoff.Binary, Side: payoff.Call, Strike: 66},
	}
	for _, c := range testCases {
		t.Run(c.String(), func(t *testing.T) {
			a, err := snell.NewAnalyzer(l, c)
			require.NoError(t, err)

			calls := 0
			r, err := Estimate(context.Background(), l, c, Config{Samples: 4000, Seed: 3, OnSample: func() { calls++ }})
			require.NoError(t, err)
			require.Equal(t, 4000, calls)
			require.Equal(t, 4000, r.Samples)
			require.Positive(t, r.StdErr)
			require.InDelta(t, a.Value(), r.Mean, 4*r.StdErr)
		})
	}
}

func TestEstimateInvalid(t *testing.T) {
	l, err := lattice.Generate(lattice.Params{Periods: 5, Vol: 0.01, Spot: 10})
	require.NoError(t, err)

	_, err = Estimate(context.Background(), l, payoff.Contract{Side: payoff.Put, Strike: 10}, Config{Samples: 1})
	require.ErrorIs(t, err, ErrInvalidSamples)

	_, err = Estimate(context.Background(), l, payoff.Contract{Side: payoff.Side(5)}, Config{Samples: 10})
	require.ErrorIs(t, err, payoff.ErrUnsupported)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Estimate(ctx, l, payoff.Contract{Side: payoff.Put, Strike: 10}, Config{Samples: 10})
	require.ErrorIs(t, err, context.Canceled)
}
