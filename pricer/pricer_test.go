package pricer

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/banachtech/binotree/barrier"
	"github.com/banachtech/binotree/lattice"
	"github.com/banachtech/binotree/metrics"
	"github.com/banachtech/binotree/paths"
	"github.com/banachtech/binotree/payoff"
)

func scenario(periods int) Scenario {
	return Scenario{
		Lattice: lattice.Params{
			Periods:   periods,
			Drift:     6e-4,
			Vol:       1.04e-2,
			Rate:      4e-5,
			Spot:      64.94,
			Dividends: []lattice.Dividend{{Period: periods / 2, Yield: 5e-3}},
		},
		Contract: payoff.Contract{Style: payoff.American, Side: payoff.Put, Strike: 64.94},
	}
}

func TestEvaluate(t *testing.T) {
	pr := New(metrics.NewMetrics())
	moves := make([]int, 40)
	for i := range moves {
		moves[i] = -1
	}
	p, err := paths.FromMoves(moves)
	require.NoError(t, err)

	r, err := pr.Evaluate(scenario(40), p)
	require.NoError(t, err)
	require.Len(t, r.Prices, 41)
	require.Len(t, r.Payoff, 41)
	require.Equal(t, 64.94, r.Prices[0])
	for i := 1; i < len(r.Prices); i++ {
		require.Less(t, r.Prices[i], r.Prices[i-1])
	}
	require.Equal(t, r.Decomposition.Envelope[40], r.Payoff[40])
	require.Contains(t, r.Stopping.Indices, 40)
}

func TestEvaluateNoPath(t *testing.T) {
	pr := New(nil)
	_, err := pr.Evaluate(scenario(10), paths.Path{})
	require.ErrorIs(t, err, ErrNoPath)

	short, err := paths.FromMoves([]int{1, 1})
	require.NoError(t, err)
	_, err = pr.Evaluate(scenario(10), short)
	require.ErrorIs(t, err, paths.ErrInvalidPath)
}

func TestAlongEndpoint(t *testing.T) {
	v, err := New(nil).Build(scenario(20))
	require.NoError(t, err)

	r, err := v.AlongEndpoint(5, 20)
	require.NoError(t, err)
	require.Equal(t, 5, r.Path.Rows[20])

	_, err = v.AlongEndpoint(5, 19)
	require.ErrorIs(t, err, ErrNoPath)
}

func TestBuildBarrier(t *testing.T) {
	s := scenario(30)
	plain, err := New(nil).Build(s)
	require.NoError(t, err)

	s.Barrier = &barrier.Spec{Level: 60, Calendar: []int{10, 20, 30}}
	ko, err := New(nil).Build(s)
	require.NoError(t, err)
	require.IsType(t, &barrier.Lattice{}, ko.Model)
	require.Less(t, ko.Value(), plain.Value())

	s.Barrier = &barrier.Spec{Level: 60}
	_, err = New(nil).Build(s)
	require.ErrorIs(t, err, barrier.ErrInvalidCalendar)
}

func TestBuildUnsupported(t *testing.T) {
	m := metrics.NewMetrics()
	s := scenario(10)
	s.Contract.Style = payoff.Style(5)
	_, err := New(m).Build(s)
	require.ErrorIs(t, err, payoff.ErrUnsupported)

	s = scenario(10)
	s.Contract.Kind = payoff.Kind(9)
	s.Barrier = &barrier.Spec{Level: 60, Calendar: []int{10}}
	_, err = New(m).Build(s)
	require.ErrorIs(t, err, payoff.ErrUnsupported)

	n, err := testutil.GatherAndCount(m.Registry(), "binotree_evaluations_total")
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestEvaluateAll(t *testing.T) {
	m := metrics.NewMetrics()
	pr := New(m)
	pr.Limit = 2

	var scenarios []Scenario
	for _, style := range []payoff.Style{payoff.European, payoff.American, payoff.Bermuda} {
		s := scenario(50)
		s.Contract.Style = style
		s.Contract.Frequency = 10
		scenarios = append(scenarios, s)
	}
	vs, err := pr.EvaluateAll(context.Background(), scenarios)
	require.NoError(t, err)
	require.Len(t, vs, 3)
	require.LessOrEqual(t, vs[0].Value(), vs[2].Value())
	require.LessOrEqual(t, vs[2].Value(), vs[1].Value())
	n, err := testutil.GatherAndCount(m.Registry(), "binotree_lattice_periods")
	require.NoError(t, err)
	require.Equal(t, 1, n)

	bad := append(scenarios, Scenario{Contract: scenarios[0].Contract})
	_, err = pr.EvaluateAll(context.Background(), bad)
	require.ErrorIs(t, err, lattice.ErrInvalidParams)
}
