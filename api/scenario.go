package api

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/banachtech/binotree/barrier"
	"github.com/banachtech/binotree/lattice"
	"github.com/banachtech/binotree/paths"
	"github.com/banachtech/binotree/payoff"
	"github.com/banachtech/binotree/pricer"
	"github.com/banachtech/binotree/snell"
	"github.com/banachtech/binotree/util"
)

var errValidation = errors.New("invalid request")

// dividendRequest gives the dividend period directly or as an ex-date,
// which is counted in NYSE business days from the scenario start.
type dividendRequest struct {
	Period int     `json:"period" binding:"omitempty,min=1"`
	ExDate string  `json:"ex_date" binding:"omitempty,datetime=2006-01-02"`
	Yield  float64 `json:"yield"`
}

type optionRequest struct {
	Style     string  `json:"style" binding:"required"`
	Kind      string  `json:"kind"`
	Side      string  `json:"side" binding:"required"`
	Strike    float64 `json:"strike" binding:"required,gt=0"`
	Frequency int     `json:"frequency"`
}

type barrierRequest struct {
	Level    float64 `json:"level" binding:"required,gt=0"`
	Calendar []int   `json:"calendar" binding:"required,min=1"`
}

// scenarioRequest describes the lattice and the option. With a preset the
// annualised drift, volatility, rate and spot come from the store;
// otherwise they are read from the request, annualised when Annualized is
// set and per period otherwise.
type scenarioRequest struct {
	Preset     string            `json:"preset"`
	Periods    int               `json:"periods" binding:"required,min=1"`
	Annualized bool              `json:"annualized"`
	Drift      float64           `json:"drift"`
	Vol        float64           `json:"vol"`
	Rate       float64           `json:"rate"`
	Spot       float64           `json:"spot"`
	Numeraire  float64           `json:"numeraire"`
	Start      string            `json:"start" binding:"omitempty,datetime=2006-01-02"`
	Dividends  []dividendRequest `json:"dividends" binding:"dive"`
	Option     optionRequest     `json:"option" binding:"required"`
	Barrier    *barrierRequest   `json:"barrier"`
}

func (server *Server) scenario(c *gin.Context, req scenarioRequest) (pricer.Scenario, error) {
	if req.Periods > server.config.Lattice.MaxPeriods {
		return pricer.Scenario{}, fmt.Errorf("%w: periods %d above the limit of %d", errValidation, req.Periods, server.config.Lattice.MaxPeriods)
	}

	drift, vol, rate, spot := req.Drift, req.Vol, req.Rate, req.Spot
	annualized := req.Annualized
	if req.Preset != "" {
		p, err := server.store.GetPreset(c, req.Preset)
		if err != nil {
			return pricer.Scenario{}, fmt.Errorf("preset %q: %w", req.Preset, err)
		}
		drift, vol, rate, spot = p.Drift, p.Vol, p.Rate, p.Spot
		annualized = true
	}
	if annualized {
		drift, vol, rate = lattice.Periodize(drift, vol, rate, server.config.Lattice.Scale)
	}
	if !(vol > 0) {
		return pricer.Scenario{}, fmt.Errorf("%w: vol must be positive", errValidation)
	}

	contract, err := payoff.Parse(req.Option.Style, req.Option.Kind, req.Option.Side, req.Option.Strike, req.Option.Frequency)
	if err != nil {
		return pricer.Scenario{}, err
	}

	s := pricer.Scenario{
		Lattice: lattice.Params{
			Periods:   req.Periods,
			Drift:     drift,
			Vol:       vol,
			Rate:      rate,
			Spot:      spot,
			Numeraire: req.Numeraire,
		},
		Contract: contract,
	}
	if s.Lattice.Dividends, err = dividends(req); err != nil {
		return pricer.Scenario{}, err
	}
	if req.Barrier != nil {
		s.Barrier = &barrier.Spec{Level: req.Barrier.Level, Calendar: req.Barrier.Calendar}
	}
	return s, nil
}

func dividends(req scenarioRequest) ([]lattice.Dividend, error) {
	out := make([]lattice.Dividend, len(req.Dividends))
	var exDates []time.Time
	var at []int
	for i, d := range req.Dividends {
		out[i] = lattice.Dividend{Period: d.Period, Yield: d.Yield}
		if d.ExDate == "" {
			if d.Period == 0 {
				return nil, fmt.Errorf("%w: dividend %d needs a period or an ex-date", errValidation, i)
			}
			continue
		}
		ex, err := time.Parse(util.Layout, d.ExDate)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errValidation, err)
		}
		exDates = append(exDates, ex)
		at = append(at, i)
	}
	if len(exDates) == 0 {
		return out, nil
	}
	if req.Start == "" {
		return nil, fmt.Errorf("%w: start is required with dividend ex-dates", errValidation)
	}
	start, err := time.Parse(util.Layout, req.Start)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errValidation, err)
	}
	hols, err := util.Hols(util.NYSE)
	if err != nil {
		return nil, err
	}
	periods, err := util.DividendPeriods(start, exDates, req.Periods, hols)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errValidation, err)
	}
	for j, i := range at {
		out[i].Period = periods[j]
	}
	return out, nil
}

// build turns the request into a valuation, writing the error response
// itself when that fails.
func (server *Server) build(c *gin.Context, req scenarioRequest) (*pricer.Valuation, bool) {
	s, err := server.scenario(c, req)
	if err != nil {
		server.abort(c, err)
		return nil, false
	}
	v, err := server.pricer.Build(s)
	if err != nil {
		server.abort(c, err)
		return nil, false
	}
	return v, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return http.StatusNotFound
	case errors.Is(err, pricer.ErrNoPath),
		errors.Is(err, paths.ErrInvalidPath),
		errors.Is(err, paths.ErrInvalidNode),
		errors.Is(err, paths.ErrInvalidEndpoint),
		errors.Is(err, snell.ErrDegenerate):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errValidation),
		errors.Is(err, lattice.ErrInvalidParams),
		errors.Is(err, payoff.ErrUnsupported),
		errors.Is(err, barrier.ErrInvalidCalendar),
		errors.Is(err, barrier.ErrInvalidLevel):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (server *Server) abort(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		server.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}
	c.AbortWithStatusJSON(status, errorResponse(err))
}
