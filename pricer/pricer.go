// Package pricer evaluates pricing scenarios end to end: it builds the
// lattice, the payoff and envelope trees, and reports the decomposition of
// the envelope along a chosen path.
package pricer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/banachtech/binotree/barrier"
	"github.com/banachtech/binotree/lattice"
	"github.com/banachtech/binotree/logging"
	"github.com/banachtech/binotree/metrics"
	"github.com/banachtech/binotree/paths"
	"github.com/banachtech/binotree/payoff"
	"github.com/banachtech/binotree/snell"
)

var ErrNoPath = errors.New("pricer: no valid path selected")

// Scenario is one set of model and contract inputs. Barrier is optional;
// when set the contract is evaluated as a down-and-out option on the
// barrier's calendar.
type Scenario struct {
	Lattice  lattice.Params
	Contract payoff.Contract
	Barrier  *barrier.Spec
}

func (s Scenario) model() string {
	if s.Barrier != nil {
		return "barrier"
	}
	return "plain"
}

// Valuation is a built scenario, ready for path queries.
type Valuation struct {
	Scenario Scenario
	Model    snell.Model
	Analyzer *snell.Analyzer
}

func (v *Valuation) Value() float64 { return v.Analyzer.Value() }

// Report is everything known about a scenario along one path.
type Report struct {
	Path          paths.Path
	Prices        []float64
	Payoff        []float64
	Decomposition snell.Decomposition
	Stopping      snell.Stopping
}

// Pricer builds and evaluates scenarios. The zero value is not usable;
// create one with New.
type Pricer struct {
	metrics *metrics.Metrics
	log     zerolog.Logger
	// Limit on concurrent builds in EvaluateAll; zero means unlimited.
	Limit int
}

// New creates a pricer recording into m, which may be nil.
func New(m *metrics.Metrics) *Pricer {
	return &Pricer{metrics: m, log: logging.Component("pricer")}
}

// Build generates the lattice of s and the analyzer of its contract.
func (pr *Pricer) Build(s Scenario) (v *Valuation, err error) {
	start := time.Now()
	defer func() {
		if pr.metrics != nil {
			pr.metrics.RecordEvaluation(s.Contract.Style.String(), err)
			if err == nil {
				pr.metrics.RecordBuild(s.model(), s.Lattice.Periods, time.Since(start))
			}
		}
	}()

	var m snell.Model
	if s.Barrier != nil {
		spec := *s.Barrier
		if spec.Strike == 0 && s.Contract.Side == payoff.Call {
			spec.Strike = s.Contract.Strike
		}
		m, err = barrier.Generate(s.Lattice, spec)
	} else {
		m, err = lattice.Generate(s.Lattice)
	}
	if err != nil {
		return nil, err
	}
	a, err := snell.NewAnalyzer(m, s.Contract)
	if err != nil {
		return nil, err
	}

	pr.log.Debug().
		Str("model", s.model()).
		Str("contract", s.Contract.String()).
		Int("periods", s.Lattice.Periods).
		Float64("value", a.Value()).
		Dur("elapsed", time.Since(start)).
		Msg("scenario built")
	return &Valuation{Scenario: s, Model: m, Analyzer: a}, nil
}

// Along reports prices, payoff and decomposition along p.
func (v *Valuation) Along(p paths.Path) (*Report, error) {
	if p.Len() == 0 {
		return nil, ErrNoPath
	}
	h, err := paths.Extract(v.Analyzer.PayoffTree(), p)
	if err != nil {
		return nil, err
	}
	prices := make([]float64, p.Len())
	for i := range prices {
		prices[i] = v.Model.Price(p.Rows[i], p.Cols[i])
	}
	d, err := v.Analyzer.Decompose(p)
	if err != nil {
		return nil, err
	}
	st, err := v.Analyzer.StoppingTimes(p)
	if err != nil {
		return nil, err
	}
	return &Report{Path: p, Prices: prices, Payoff: h, Decomposition: d, Stopping: st}, nil
}

// AlongEndpoint reports along the canonical path to node (row, col).
func (v *Valuation) AlongEndpoint(row, col int) (*Report, error) {
	p, err := paths.FromEndpoint(row, col, v.Scenario.Lattice.Periods+1)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoPath, err)
	}
	return v.Along(p)
}

// Evaluate builds s and reports along p.
func (pr *Pricer) Evaluate(s Scenario, p paths.Path) (*Report, error) {
	v, err := pr.Build(s)
	if err != nil {
		return nil, err
	}
	r, err := v.Along(p)
	if err != nil {
		pr.log.Warn().Err(err).Msg("path rejected")
		return nil, err
	}
	return r, nil
}

// EvaluateAll builds every scenario concurrently. Results are in input
// order; the first error cancels the remaining builds.
func (pr *Pricer) EvaluateAll(ctx context.Context, scenarios []Scenario) ([]*Valuation, error) {
	out := make([]*Valuation, len(scenarios))
	g, ctx := errgroup.WithContext(ctx)
	if pr.Limit > 0 {
		g.SetLimit(pr.Limit)
	}
	for i, s := range scenarios {
		i, s := i, s
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			v, err := pr.Build(s)
			if err != nil {
				return fmt.Errorf("scenario %d: %w", i, err)
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
