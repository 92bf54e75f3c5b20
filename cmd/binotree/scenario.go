package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/banachtech/binotree/barrier"
	"github.com/banachtech/binotree/lattice"
	"github.com/banachtech/binotree/payoff"
	"github.com/banachtech/binotree/pricer"
	"github.com/banachtech/binotree/util"
)

// scenarioFlags are the model and contract inputs shared by price and
// simulate. Drift, vol and rate are annualised.
type scenarioFlags struct {
	periods   int
	drift     float64
	vol       float64
	rate      float64
	spot      float64
	numeraire float64
	start     string
	dividends []string
	style     string
	kind      string
	side      string
	strike    float64
	frequency int
	barrier   float64
	calendar  []int
}

func (f *scenarioFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.IntVarP(&f.periods, "periods", "n", 126, "Number of lattice periods")
	fs.Float64Var(&f.drift, "drift", 0.1512, "Annualised drift")
	fs.Float64Var(&f.vol, "vol", 0.16509, "Annualised volatility")
	fs.Float64Var(&f.rate, "rate", 0.009, "Annualised risk-free rate")
	fs.Float64Var(&f.spot, "spot", 64.94, "Spot price")
	fs.Float64Var(&f.numeraire, "numeraire", 1, "Initial numeraire value")
	fs.StringVar(&f.start, "start", "", "Pricing date (YYYY-MM-DD) for dated dividends; defaults to today")
	fs.StringSliceVar(&f.dividends, "dividend", nil, "Proportional dividend as period:yield or YYYY-MM-DD:yield (repeatable)")
	fs.StringVar(&f.style, "style", "american", "Exercise style (european, american, bermuda)")
	fs.StringVar(&f.kind, "kind", "vanilla", "Payoff kind (vanilla, binary, asset-or-nothing)")
	fs.StringVar(&f.side, "side", "put", "Option side (call, put)")
	fs.Float64Var(&f.strike, "strike", 64.94, "Strike price")
	fs.IntVar(&f.frequency, "frequency", 0, "Bermuda exercise spacing in periods")
	fs.Float64Var(&f.barrier, "barrier", 0, "Down-and-out barrier level; zero disables the barrier")
	fs.IntSliceVar(&f.calendar, "calendar", nil, "Barrier exercise periods")
}

// parseDividend reads period:yield or date:yield. For the dated form the
// period is left at zero and the ex-date is returned.
func parseDividend(s string) (lattice.Dividend, time.Time, error) {
	at, yield, ok := strings.Cut(s, ":")
	if !ok {
		return lattice.Dividend{}, time.Time{}, fmt.Errorf("dividend %q: want period:yield", s)
	}
	y, err := strconv.ParseFloat(yield, 64)
	if err != nil {
		return lattice.Dividend{}, time.Time{}, fmt.Errorf("dividend %q: %w", s, err)
	}
	if p, err := strconv.Atoi(at); err == nil {
		return lattice.Dividend{Period: p, Yield: y}, time.Time{}, nil
	}
	ex, err := time.Parse(util.Layout, at)
	if err != nil {
		return lattice.Dividend{}, time.Time{}, fmt.Errorf("dividend %q: not a period or a date", s)
	}
	return lattice.Dividend{Yield: y}, ex, nil
}

func (f *scenarioFlags) parseDividends() ([]lattice.Dividend, error) {
	out := make([]lattice.Dividend, len(f.dividends))
	var exDates []time.Time
	var at []int
	for i, d := range f.dividends {
		div, ex, err := parseDividend(d)
		if err != nil {
			return nil, err
		}
		out[i] = div
		if !ex.IsZero() {
			exDates = append(exDates, ex)
			at = append(at, i)
		}
	}
	if len(exDates) == 0 {
		return out, nil
	}

	start := time.Now().UTC().Truncate(24 * time.Hour)
	if f.start != "" {
		var err error
		if start, err = time.Parse(util.Layout, f.start); err != nil {
			return nil, fmt.Errorf("start: %w", err)
		}
	}
	hols, err := util.Hols(util.NYSE)
	if err != nil {
		return nil, err
	}
	periods, err := util.DividendPeriods(start, exDates, f.periods, hols)
	if err != nil {
		return nil, err
	}
	for j, i := range at {
		out[i].Period = periods[j]
	}
	return out, nil
}

func (f *scenarioFlags) scenario(scale int) (pricer.Scenario, error) {
	drift, vol, rate := lattice.Periodize(f.drift, f.vol, f.rate, scale)
	c, err := payoff.Parse(f.style, f.kind, f.side, f.strike, f.frequency)
	if err != nil {
		return pricer.Scenario{}, err
	}
	s := pricer.Scenario{
		Lattice: lattice.Params{
			Periods:   f.periods,
			Drift:     drift,
			Vol:       vol,
			Rate:      rate,
			Spot:      f.spot,
			Numeraire: f.numeraire,
		},
		Contract: c,
	}
	if s.Lattice.Dividends, err = f.parseDividends(); err != nil {
		return pricer.Scenario{}, err
	}
	if f.barrier > 0 {
		s.Barrier = &barrier.Spec{Level: f.barrier, Calendar: f.calendar}
	}
	return s, nil
}
