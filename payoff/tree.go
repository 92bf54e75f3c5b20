package payoff

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Strikes holds the strike expressed in numeraire units, one value per
// period. Lattice prices are discounted, so the strike has to be too.
type Strikes []float64

// Discount converts the contract strike into numeraire units for a lattice
// with the given number of periods. European options discount once to
// maturity; American and Bermuda options discount to each period.
func Discount(c Contract, rate float64, periods int) Strikes {
	s := make(Strikes, periods+1)
	if c.Style == European {
		k := c.Strike / math.Exp(rate*float64(periods))
		for t := range s {
			s[t] = k
		}
		return s
	}
	for t := range s {
		s[t] = c.Strike / math.Exp(rate*float64(t))
	}
	return s
}

// ExerciseColumns lists the periods on which the contract may be exercised.
func ExerciseColumns(c Contract, periods int) []int {
	switch c.Style {
	case European:
		return []int{periods}
	case Bermuda:
		var cols []int
		for t := c.Frequency; t <= periods; t += c.Frequency {
			cols = append(cols, t)
		}
		if periods%c.Frequency != 0 {
			cols = append(cols, periods)
		}
		return cols
	default:
		cols := make([]int, periods+1)
		for t := range cols {
			cols[t] = t
		}
		return cols
	}
}

// Evaluate fills the payoff at the valid rows of the given columns.
// Everything else is zero.
func Evaluate(prices mat.Matrix, c Contract, strikes Strikes, cols []int) *mat.Dense {
	n, _ := prices.Dims()
	out := mat.NewDense(n, n, nil)
	for _, t := range cols {
		for r := 0; r <= t; r++ {
			out.Set(r, t, Intrinsic(c.Kind, c.Side, prices.At(r, t), strikes[t]))
		}
	}
	return out
}

// Tree computes the payoff tree of c on a square lattice of discounted
// prices with per-period rate.
func Tree(prices mat.Matrix, rate float64, c Contract) (*mat.Dense, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	n, _ := prices.Dims()
	periods := n - 1
	return Evaluate(prices, c, Discount(c, rate, periods), ExerciseColumns(c, periods)), nil
}
