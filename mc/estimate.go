package mc

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"

	"github.com/banachtech/binotree/lattice"
	"github.com/banachtech/binotree/payoff"
)

var ErrInvalidSamples = errors.New("mc: number of samples must be at least 2")

// Config controls a Monte Carlo run.
type Config struct {
	Samples int
	// Seed of the first sample; sample i uses Seed+i.
	Seed uint64
	// OnSample is called once per finished sample, from the collecting
	// goroutine.
	OnSample func()
}

// Result of a Monte Carlo estimate in numeraire units.
type Result struct {
	Mean    float64
	StdDev  float64
	StdErr  float64
	Samples int
}

// Estimate values the terminal payoff of c by sampling risk-neutral paths
// on l. Only the contract's kind, side and strike are used: the result is
// the European value whatever the style.
func Estimate(ctx context.Context, l *lattice.Lattice, c payoff.Contract, cfg Config) (Result, error) {
	if cfg.Samples < 2 {
		return Result{}, fmt.Errorf("%w: got %d", ErrInvalidSamples, cfg.Samples)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	c.Style = payoff.European
	if err := c.Validate(); err != nil {
		return Result{}, err
	}
	T := l.Periods()
	strike := payoff.Discount(c, l.Rate(), T)[T]
	q := l.Probabilities()

	ch := make(chan float64, cfg.Samples)
	// Compute path payouts concurrently
	for i := 0; i < cfg.Samples; i++ {
		go func(seed uint64) {
			s := NewRiskNeutral(q, rand.NewSource(seed))
			downs := 0
			for _, m := range s.Moves(T) {
				if m < 0 {
					downs++
				}
			}
			ch <- payoff.Intrinsic(c.Kind, c.Side, l.Price(downs, T), strike)
		}(cfg.Seed + uint64(i))
	}

	x := make([]float64, 0, cfg.Samples)
	for len(x) < cfg.Samples {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case v := <-ch:
			x = append(x, v)
			if cfg.OnSample != nil {
				cfg.OnSample()
			}
		}
	}

	mean, sd := stat.MeanStdDev(x, nil)
	r := Result{Mean: mean, StdDev: sd, StdErr: sd / math.Sqrt(float64(len(x))), Samples: len(x)}
	log.Debug().Str("contract", c.String()).Int("samples", r.Samples).
		Float64("mean", r.Mean).Float64("stderr", r.StdErr).Msg("monte carlo estimate")
	return r, nil
}
