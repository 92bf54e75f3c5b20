// Package mc samples move sequences on a binomial lattice and cross-checks
// lattice prices by Monte Carlo.
package mc

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/banachtech/binotree/paths"
)

// Sampler interface to be satisfied by move generators. Moves are +1 for
// up and -1 for down.
type Sampler interface {
	Moves(n int) []int
}

// Uniform draws up and down moves with equal probability.
type Uniform struct {
	d distuv.Bernoulli
}

func NewUniform(src rand.Source) *Uniform {
	return &Uniform{d: distuv.Bernoulli{P: 0.5, Src: src}}
}

func (u *Uniform) Moves(n int) []int {
	m := make([]int, n)
	for i := range m {
		m[i] = move(u.d.Rand())
	}
	return m
}

// RiskNeutral draws the move out of period t as up with probability q[t].
// Requesting more moves than there are probabilities panics.
type RiskNeutral struct {
	q   []float64
	src rand.Source
}

func NewRiskNeutral(q []float64, src rand.Source) *RiskNeutral {
	return &RiskNeutral{q: append([]float64(nil), q...), src: src}
}

func (r *RiskNeutral) Moves(n int) []int {
	m := make([]int, n)
	for t := range m {
		d := distuv.Bernoulli{P: r.q[t], Src: r.src}
		m[t] = move(d.Rand())
	}
	return m
}

func move(x float64) int {
	if x == 1 {
		return 1
	}
	return -1
}

// Path samples a path over n periods.
func Path(s Sampler, n int) (paths.Path, error) {
	return paths.FromMoves(s.Moves(n))
}

// RandomPath draws a uniformly random path over n periods.
func RandomPath(n int, seed uint64) (paths.Path, error) {
	return Path(NewUniform(rand.NewSource(seed)), n)
}
