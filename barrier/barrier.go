// Package barrier specialises the binomial lattice to down-and-out options
// exercisable on a discrete calendar. A node whose price is at or below the
// barrier is knocked out: its payoff and envelope are zero.
package barrier

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/banachtech/binotree/lattice"
	"github.com/banachtech/binotree/paths"
	"github.com/banachtech/binotree/payoff"
	"gonum.org/v1/gonum/mat"
)

// Sentinel marks price cells that are never economically relevant: the
// filler above the diagonal, columns where a call struck at Spec.Strike is
// out of the money on every node, and nodes only reachable through a
// knocked-out node. It is distinct from a knocked-out cell, which keeps
// its price when it can be reached alive.
var Sentinel = math.Inf(1)

var (
	ErrInvalidCalendar = errors.New("barrier: invalid exercise calendar")
	ErrInvalidLevel    = errors.New("barrier: invalid barrier level")
)

// Spec is a down-and-out barrier with its exercise calendar.
type Spec struct {
	// Level in price units; it is discounted per period like the lattice.
	Level float64
	// Calendar lists the exercise periods, each in (0, T].
	Calendar []int
	// Strike of a call-side contract priced on the lattice. When positive
	// the columns through its strike horizon are marked with Sentinel.
	Strike float64
}

type Lattice struct {
	*lattice.Lattice
	spec          Spec
	levels        []float64
	prices        *mat.Dense
	knockRows     []int
	firstCrossing int
	horizon       int
}

func Generate(p lattice.Params, s Spec) (*Lattice, error) {
	if !(s.Level > 0) {
		return nil, fmt.Errorf("%w: %g", ErrInvalidLevel, s.Level)
	}
	base, err := lattice.Generate(p)
	if err != nil {
		return nil, err
	}
	cal, err := normalizeCalendar(s.Calendar, base.Periods())
	if err != nil {
		return nil, err
	}
	s.Calendar = cal

	l := &Lattice{Lattice: base, spec: s}
	l.levels = make([]float64, base.Size())
	for t := range l.levels {
		l.levels[t] = s.Level / math.Exp(base.Rate()*float64(t))
	}
	l.walkBoundary()
	l.horizon = l.StrikeHorizon(payoff.Contract{Side: payoff.Call, Strike: s.Strike})
	l.markBand()
	return l, nil
}

func normalizeCalendar(cal []int, periods int) ([]int, error) {
	if len(cal) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidCalendar)
	}
	out := append([]int(nil), cal...)
	sort.Ints(out)
	for i, t := range out {
		if t < 1 || t > periods {
			return nil, fmt.Errorf("%w: period %d outside [1, %d]", ErrInvalidCalendar, t, periods)
		}
		if i > 0 && out[i-1] == t {
			return nil, fmt.Errorf("%w: duplicate period %d", ErrInvalidCalendar, t)
		}
	}
	return out, nil
}

// walkBoundary finds, for every column t, the first row k_t whose price is
// at or below the discounted barrier (t+1 when the whole column is alive).
// The walk is sequential: k_t starts from k_{t-1}, moves up while the row
// above is still knocked out and then down while the current row is alive.
// The earliest column with k_t <= t is where the all-down path crosses.
func (l *Lattice) walkBoundary() {
	n := l.Size()
	l.knockRows = make([]int, n)
	l.firstCrossing = -1
	k := 0
	for t := 0; t < n; t++ {
		for k > 0 && l.Price(k-1, t) <= l.levels[t] {
			k--
		}
		for k <= t && l.Price(k, t) > l.levels[t] {
			k++
		}
		l.knockRows[t] = k
		if l.firstCrossing < 0 && k <= t {
			l.firstCrossing = t
		}
	}
}

// markBand copies the prices and overwrites every cell outside the band
// between the strike horizon and the knock-out boundary with Sentinel.
// A node is in the band when some path reaches it without passing through
// a knocked-out node first, so the knock-out boundary cuts nothing before
// the first crossing.
func (l *Lattice) markBand() {
	n := l.Size()
	l.prices = mat.DenseCopyOf(l.Lattice.Prices())
	reach := make([]bool, n)
	next := make([]bool, n)
	reach[0] = true
	for t := 0; t < n; t++ {
		for r := 0; r < n; r++ {
			if r > t || !reach[r] || l.dominated(r, t, l.horizon) {
				l.prices.Set(r, t, Sentinel)
			}
		}
		if t == n-1 {
			break
		}
		for r := range next {
			next[r] = false
		}
		for r := 0; r <= t; r++ {
			if reach[r] && !l.KnockedOut(r, t) {
				next[r], next[r+1] = true, true
			}
		}
		reach, next = next, reach
	}
}

// Prices returns the lattice with irrelevant cells set to Sentinel. Use
// Price for the underlying value of any node.
func (l *Lattice) Prices() mat.Matrix { return l.prices }

// Relevant reports whether node (row, col) lies in the band, that is its
// entry in Prices is not Sentinel.
func (l *Lattice) Relevant(row, col int) bool {
	return !math.IsInf(l.prices.At(row, col), 1)
}

func (l *Lattice) Spec() Spec { return l.spec }

// Level is the barrier discounted to period t.
func (l *Lattice) Level(t int) float64 { return l.levels[t] }

func (l *Lattice) KnockRows() []int { return append([]int(nil), l.knockRows...) }

// FirstCrossing is the earliest period at which the all-down path is at
// or below the barrier, or -1 if it never is.
func (l *Lattice) FirstCrossing() int { return l.firstCrossing }

func (l *Lattice) KnockedOut(row, col int) bool {
	return row <= col && row >= l.knockRows[col]
}

// StrikeHorizon is the latest period through which the all-up path from
// the root stays strictly below the discounted strike, so every node up to
// it is out of the money for call-side payoffs. It is -1 for put-side
// contracts or when the root is already at or above the strike.
//
// Along the top row ln S(0,t) = ln(spot/num0) + (vol+drift-rate)*t - ln D(t)
// and the discounted strike is ln K - rate*t, so the comparison needs no
// lattice lookups.
func (l *Lattice) StrikeHorizon(c payoff.Contract) int {
	if c.Side != payoff.Call || !(c.Strike > 0) {
		return -1
	}
	p := l.Params()
	lnSpot := math.Log(p.Spot / p.Numeraire)
	lnK := math.Log(c.Strike)
	divs := make([]float64, l.Size())
	for _, d := range p.Dividends {
		divs[d.Period] += math.Log(1 + d.Yield)
	}
	lnD := 0.0
	h := -1
	for t := 0; t < l.Size(); t++ {
		lnD += divs[t]
		top := lnSpot + (p.Vol+p.Drift-p.Rate)*float64(t) - lnD
		if top >= lnK-p.Rate*float64(t) {
			break
		}
		h = t
	}
	return h
}

// Dominated reports whether node (row, col) can be skipped when
// evaluating c because its whole column is out of the money.
func (l *Lattice) Dominated(row, col int, c payoff.Contract) bool {
	return l.dominated(row, col, l.StrikeHorizon(c))
}

func (l *Lattice) dominated(row, col, horizon int) bool {
	return row <= col && col <= horizon
}

// PayoffTree evaluates the contract shape on the calendar columns only.
// Knocked-out and dominated nodes pay nothing. The contract's style is
// ignored. Prices are read with Price, never from the Sentinel band.
func (l *Lattice) PayoffTree(c payoff.Contract) (*mat.Dense, error) {
	c.Style = payoff.American
	if err := c.Validate(); err != nil {
		return nil, err
	}
	strikes := payoff.Discount(c, l.Rate(), l.Periods())
	horizon := l.StrikeHorizon(c)
	n := l.Size()
	h := mat.NewDense(n, n, nil)
	for _, t := range l.spec.Calendar {
		for r := 0; r < l.knockRows[t]; r++ {
			if l.dominated(r, t, horizon) {
				continue
			}
			h.Set(r, t, payoff.Intrinsic(c.Kind, c.Side, l.Price(r, t), strikes[t]))
		}
	}
	return h, nil
}

// EnvelopeTree runs the usual backward induction and zeroes knocked-out
// nodes of each column once that column has been computed.
func (l *Lattice) EnvelopeTree(h mat.Matrix) *mat.Dense {
	u := mat.DenseCopyOf(h)
	T := l.Periods()
	l.knockOut(u, T)
	for t := T - 1; t >= 0; t-- {
		q := l.Probability(t)
		for r := 0; r <= t; r++ {
			cont := lattice.Continuation(q, u.At(r, t+1), u.At(r+1, t+1))
			u.Set(r, t, math.Max(cont, h.At(r, t)))
		}
		l.knockOut(u, t)
	}
	return u
}

func (l *Lattice) knockOut(u *mat.Dense, t int) {
	for r := l.knockRows[t]; r <= t; r++ {
		u.Set(r, t, 0)
	}
}

// Expectation is zero wherever the path sits on a knocked-out node, since
// nothing is left to expect from an absorbed state.
func (l *Lattice) Expectation(p paths.Path, tree mat.Matrix) ([]float64, error) {
	e, err := l.Lattice.Expectation(p, tree)
	if err != nil {
		return nil, err
	}
	for t := range e {
		if l.KnockedOut(p.Rows[t], p.Cols[t]) {
			e[t] = 0
		}
	}
	return e, nil
}
