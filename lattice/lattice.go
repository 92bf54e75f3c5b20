// Package lattice builds recombining binomial price lattices and the
// risk-neutral measure on them.
//
// A lattice with T periods is stored as a (T+1)×(T+1) matrix. Column t is
// period t and row r is the number of down-moves realised by then, so only
// entries with r <= t are meaningful; the rest is filler that the engine
// never reads. Prices are expressed in units of the numeraire, i.e.
// discounted by exp(rate*t).
package lattice

import (
	"errors"
	"fmt"
	"math"

	"github.com/banachtech/binotree/paths"
	"github.com/banachtech/binotree/payoff"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// TradingDays is the default number of periods per year.
const TradingDays = 252

var ErrInvalidParams = errors.New("lattice: invalid parameters")

// Dividend is a proportional dividend paid at the end of a period.
type Dividend struct {
	Period int
	Yield  float64
}

// Params are per-period model inputs. Use Periodize to convert annualised
// figures.
type Params struct {
	Periods int
	Drift   float64
	Vol     float64
	Rate    float64
	Spot    float64
	// Numeraire is the initial value of the numeraire asset; zero means 1.
	Numeraire float64
	Dividends []Dividend
}

// Periodize converts annualised drift, volatility and rate to per-period
// values for a year of scale periods.
func Periodize(drift, vol, rate float64, scale int) (float64, float64, float64) {
	s := float64(scale)
	return drift / s, vol / math.Sqrt(s), rate / s
}

// Lattice is an immutable binomial price lattice.
type Lattice struct {
	params Params
	prices *mat.Dense
	q      []float64
}

// Generate builds the price lattice and calibrates the risk-neutral
// up-probabilities. Only structural inputs are validated: an arbitrage
// admitting parameter set yields probabilities outside (0, 1) which are
// propagated as is.
func Generate(p Params) (*Lattice, error) {
	if p.Periods <= 0 {
		return nil, fmt.Errorf("%w: periods must be positive, got %d", ErrInvalidParams, p.Periods)
	}
	if p.Spot <= 0 {
		return nil, fmt.Errorf("%w: spot must be positive, got %g", ErrInvalidParams, p.Spot)
	}
	if p.Numeraire == 0 {
		p.Numeraire = 1
	}
	for _, d := range p.Dividends {
		if d.Period < 1 || d.Period > p.Periods {
			return nil, fmt.Errorf("%w: dividend period %d outside [1, %d]", ErrInvalidParams, d.Period, p.Periods)
		}
	}
	p.Dividends = append([]Dividend(nil), p.Dividends...)

	l := &Lattice{params: p}
	l.q = probabilities(p)
	l.prices = generatePrices(p)
	return l, nil
}

// dividendFactors returns, per period, the product of (1+yield) over the
// dividends paid in that period.
func dividendFactors(p Params) []float64 {
	f := make([]float64, p.Periods+1)
	for i := range f {
		f[i] = 1
	}
	for _, d := range p.Dividends {
		f[d.Period] *= 1 + d.Yield
	}
	return f
}

// cumulativeDividends returns D(t), the product of all dividend factors
// paid at or before t. Each event scales every later period independently.
func cumulativeDividends(p Params) []float64 {
	f := dividendFactors(p)
	for t := 1; t < len(f); t++ {
		f[t] *= f[t-1]
	}
	return f
}

// probabilities solves the one-period no-arbitrage condition
//
//	q*exp(vol) + (1-q)*exp(-vol) = exp(rate - drift) * (1 + d)
//
// for every period, where d is the dividend paid on arrival.
func probabilities(p Params) []float64 {
	f := dividendFactors(p)
	q := make([]float64, p.Periods)
	for t := range q {
		q[t] = (math.Exp(p.Rate+math.Log(f[t+1])-p.Drift) - math.Exp(-p.Vol)) / (2 * math.Sinh(p.Vol))
	}
	return q
}

// increments returns the log-increment row for paths with r down-moves:
// zero before period r, -r at period r, +1 afterwards. Its cumulative sum
// at t >= r is t - 2r, the number of ups minus downs.
func increments(r, n int) []float64 {
	inc := make([]float64, n)
	if r < n {
		inc[r] = -float64(r)
		for t := r + 1; t < n; t++ {
			inc[t] = 1
		}
	}
	return inc
}

func generatePrices(p Params) *mat.Dense {
	n := p.Periods + 1
	div := cumulativeDividends(p)
	prices := mat.NewDense(n, n, nil)
	row := make([]float64, n)
	for r := 0; r < n; r++ {
		floats.CumSum(row, increments(r, n))
		for t, x := range row {
			v := p.Spot / p.Numeraire * math.Exp(p.Vol*x)
			v /= div[t]
			v *= math.Exp((p.Drift - p.Rate) * float64(t))
			row[t] = v
		}
		prices.SetRow(r, row)
	}
	return prices
}

func (l *Lattice) Params() Params     { return l.params }
func (l *Lattice) Periods() int       { return l.params.Periods }
func (l *Lattice) Size() int          { return l.params.Periods + 1 }
func (l *Lattice) Rate() float64      { return l.params.Rate }
func (l *Lattice) Numeraire() float64 { return l.params.Numeraire }

// Prices exposes the lattice. Callers must not modify it.
func (l *Lattice) Prices() mat.Matrix { return l.prices }

func (l *Lattice) Price(row, col int) float64 { return l.prices.At(row, col) }

// Probability returns the risk-neutral probability of an up-move from
// period t to t+1.
func (l *Lattice) Probability(t int) float64 { return l.q[t] }

func (l *Lattice) Probabilities() []float64 {
	return append([]float64(nil), l.q...)
}

// PayoffTree evaluates a catalog contract on the lattice.
func (l *Lattice) PayoffTree(c payoff.Contract) (*mat.Dense, error) {
	return payoff.Tree(l.prices, l.params.Rate, c)
}

// Continuation is the one-step risk-neutral expectation given the values
// at the up and down children. Both the envelope induction and the path
// expectations go through it so that they agree to the last bit.
func Continuation(q, up, down float64) float64 {
	return float64(q*up) + float64((1-q)*down)
}

// EnvelopeTree computes the Snell envelope of a payoff tree by backward
// induction. Only rows 0..t of column t are computed; filler entries keep
// the payoff values.
func (l *Lattice) EnvelopeTree(h mat.Matrix) *mat.Dense {
	u := mat.DenseCopyOf(h)
	for t := l.params.Periods - 1; t >= 0; t-- {
		q := l.q[t]
		for r := 0; r <= t; r++ {
			cont := Continuation(q, u.At(r, t+1), u.At(r+1, t+1))
			u.Set(r, t, math.Max(cont, h.At(r, t)))
		}
	}
	return u
}

// Expectation returns E_t[X_{t+1}] at every period t < T along p, where X
// is tree (the price lattice when tree is nil). Of the two children the
// one with the higher price receives the up-probability.
func (l *Lattice) Expectation(p paths.Path, tree mat.Matrix) ([]float64, error) {
	if tree == nil {
		tree = l.prices
	}
	values, siblings, err := paths.ExtractWithNeighbors(tree, p)
	if err != nil {
		return nil, err
	}
	prices, priceSiblings, err := paths.ExtractWithNeighbors(l.prices, p)
	if err != nil {
		return nil, err
	}
	out := make([]float64, l.params.Periods)
	for t := range out {
		hi, lo := values[t+1], siblings[t+1]
		if priceSiblings[t+1] > prices[t+1] {
			hi, lo = lo, hi
		}
		out[t] = Continuation(l.q[t], hi, lo)
	}
	return out, nil
}

// PathPrices returns the lattice prices along p.
func (l *Lattice) PathPrices(p paths.Path) ([]float64, error) {
	return paths.Extract(l.prices, p)
}
