// Package snell prices options on a binomial lattice through the Snell
// envelope of their payoff and decomposes the envelope along a path into a
// martingale and a non-decreasing excess (the early-exercise premium).
package snell

import (
	"errors"
	"fmt"
	"math"

	"github.com/banachtech/binotree/paths"
	"github.com/banachtech/binotree/payoff"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ErrDegenerate is returned when two reachable sibling nodes carry the
// same price, so no replicating portfolio exists.
var ErrDegenerate = errors.New("snell: degenerate lattice")

// Model interface to be satisfied by lattice types the analyzer can work on.
type Model interface {
	// Prices of the underlying in numeraire units. Models may mark cells
	// that are never relevant; Price always returns the lattice value.
	Prices() mat.Matrix
	Price(row, col int) float64
	// Up-probability of the transition t -> t+1.
	Probability(t int) float64
	PayoffTree(c payoff.Contract) (*mat.Dense, error)
	EnvelopeTree(h mat.Matrix) *mat.Dense
	// One-step conditional expectations of tree along a path.
	Expectation(p paths.Path, tree mat.Matrix) ([]float64, error)
}

// Analyzer holds the payoff and envelope trees of one contract on one model.
type Analyzer struct {
	model    Model
	contract payoff.Contract
	payoff   *mat.Dense
	envelope *mat.Dense
}

func NewAnalyzer(m Model, c payoff.Contract) (*Analyzer, error) {
	h, err := m.PayoffTree(c)
	if err != nil {
		return nil, err
	}
	return &Analyzer{
		model:    m,
		contract: c,
		payoff:   h,
		envelope: m.EnvelopeTree(h),
	}, nil
}

func (a *Analyzer) Model() Model              { return a.model }
func (a *Analyzer) Contract() payoff.Contract { return a.contract }
func (a *Analyzer) PayoffTree() mat.Matrix    { return a.payoff }
func (a *Analyzer) EnvelopeTree() mat.Matrix  { return a.envelope }

// Value is the no-arbitrage value of the option at the root, in numeraire
// units.
func (a *Analyzer) Value() float64 { return a.envelope.At(0, 0) }

// Decomposition of the envelope U along a path into M and A with M = U + A.
type Decomposition struct {
	Martingale []float64
	Excess     []float64
	Envelope   []float64
}

// Decompose computes the envelope along p together with its martingale and
// excess parts. The excess starts at zero and accumulates the one-step
// slack U_{t-1} - E_{t-1}[U_t], which is never negative.
func (a *Analyzer) Decompose(p paths.Path) (Decomposition, error) {
	u, err := paths.Extract(a.envelope, p)
	if err != nil {
		return Decomposition{}, err
	}
	e, err := a.model.Expectation(p, a.envelope)
	if err != nil {
		return Decomposition{}, err
	}

	slack := make([]float64, len(e))
	floats.SubTo(slack, u[:len(e)], e)
	excess := make([]float64, len(u))
	floats.CumSum(excess[1:], slack)

	mtg := make([]float64, len(u))
	floats.AddTo(mtg, u, excess)
	return Decomposition{Martingale: mtg, Excess: excess, Envelope: u}, nil
}

// Stopping lists the periods on a path where exercising is optimal.
type Stopping struct {
	// Periods where the payoff equals the envelope.
	Indices []int
	// TauMax is the largest optimal stopping time: the last period at
	// which the excess is still zero.
	TauMax int
}

func (a *Analyzer) StoppingTimes(p paths.Path) (Stopping, error) {
	h, err := paths.Extract(a.payoff, p)
	if err != nil {
		return Stopping{}, err
	}
	d, err := a.Decompose(p)
	if err != nil {
		return Stopping{}, err
	}

	var s Stopping
	for t := range h {
		if h[t] == d.Envelope[t] {
			s.Indices = append(s.Indices, t)
		}
	}
	s.TauMax = len(d.Excess) - 1
	for t, x := range d.Excess {
		if x > 0 {
			s.TauMax = t - 1
			break
		}
	}
	return s, nil
}

// Strategy is the self-financing portfolio replicating the envelope one
// period ahead: Cash units of the numeraire and Shares units of the
// underlying held over (t, t+1] at node (row, t). Column T and rows
// beyond the triangle carry no position.
type Strategy struct {
	Cash   *mat.Dense
	Shares *mat.Dense
}

// ReplicatingStrategy solves, at every node (r, t) with t < T,
//
//	cash + shares*S[r,t+1]   = U[r,t+1]
//	cash + shares*S[r+1,t+1] = U[r+1,t+1]
//
// Positions outside the triangle are left at zero.
func (a *Analyzer) ReplicatingStrategy() (Strategy, error) {
	n, _ := a.model.Prices().Dims()
	cash := mat.NewDense(n, n, nil)
	shares := mat.NewDense(n, n, nil)
	for t := 0; t < n-1; t++ {
		for r := 0; r <= t; r++ {
			hi, lo := a.model.Price(r, t+1), a.model.Price(r+1, t+1)
			uHi, uLo := a.envelope.At(r, t+1), a.envelope.At(r+1, t+1)
			den := lo - hi
			if den == 0 || math.IsNaN(den) {
				return Strategy{}, fmt.Errorf("%w: equal prices below node (%d, %d)", ErrDegenerate, r, t)
			}
			cash.Set(r, t, (uHi*lo-uLo*hi)/den)
			shares.Set(r, t, (uLo-uHi)/den)
		}
	}
	return Strategy{Cash: cash, Shares: shares}, nil
}
