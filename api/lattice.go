package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/banachtech/binotree/barrier"
	"github.com/banachtech/binotree/paths"
	"github.com/banachtech/binotree/pricer"
)

type nodeResponse struct {
	ID       string  `json:"id"`
	Row      int     `json:"row"`
	Col      int     `json:"col"`
	Label    string  `json:"label"`
	Price    float64 `json:"price"`
	Payoff   float64 `json:"payoff"`
	Envelope float64 `json:"envelope"`
	// Only set for barrier scenarios.
	KnockedOut *bool `json:"knocked_out,omitempty"`
	Relevant   *bool `json:"relevant,omitempty"`
}

type latticeResponse struct {
	Contract      string         `json:"contract"`
	Value         float64        `json:"value"`
	Numeraire     float64        `json:"numeraire"`
	Probabilities []float64      `json:"probabilities"`
	Nodes         []nodeResponse `json:"nodes"`
	FirstCrossing *int           `json:"first_crossing,omitempty"`
}

// label rounds a node price for display.
func label(x float64) string {
	return decimal.NewFromFloat(x).StringFixed(2)
}

func newLatticeResponse(v *pricer.Valuation) latticeResponse {
	n := v.Scenario.Lattice.Periods + 1
	h, u := v.Analyzer.PayoffTree(), v.Analyzer.EnvelopeTree()
	ko, isBarrier := v.Model.(*barrier.Lattice)

	rsp := latticeResponse{
		Contract:      v.Scenario.Contract.String(),
		Value:         v.Value(),
		Numeraire:     v.Scenario.Lattice.Numeraire,
		Probabilities: make([]float64, n-1),
		Nodes:         make([]nodeResponse, 0, n*(n+1)/2),
	}
	if rsp.Numeraire == 0 {
		rsp.Numeraire = 1
	}
	for t := range rsp.Probabilities {
		rsp.Probabilities[t] = v.Model.Probability(t)
	}
	for col := 0; col < n; col++ {
		for row := 0; row <= col; row++ {
			node := nodeResponse{
				ID:       paths.NodeID(row, col),
				Row:      row,
				Col:      col,
				Label:    label(v.Model.Price(row, col)),
				Price:    v.Model.Price(row, col),
				Payoff:   h.At(row, col),
				Envelope: u.At(row, col),
			}
			if isBarrier {
				out, relevant := ko.KnockedOut(row, col), ko.Relevant(row, col)
				node.KnockedOut, node.Relevant = &out, &relevant
			}
			rsp.Nodes = append(rsp.Nodes, node)
		}
	}
	if isBarrier {
		fc := ko.FirstCrossing()
		rsp.FirstCrossing = &fc
	}
	return rsp
}

func (server *Server) lattice(c *gin.Context) {
	var req scenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse(err))
		return
	}
	v, ok := server.build(c, req)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newLatticeResponse(v))
}

type positionResponse struct {
	ID     string  `json:"id"`
	Cash   float64 `json:"cash"`
	Shares float64 `json:"shares"`
}

type strategyResponse struct {
	Contract  string             `json:"contract"`
	Value     float64            `json:"value"`
	Positions []positionResponse `json:"positions"`
}

// strategy returns the replicating portfolio held at every node before
// maturity.
func (server *Server) strategy(c *gin.Context) {
	var req scenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse(err))
		return
	}
	v, ok := server.build(c, req)
	if !ok {
		return
	}
	s, err := v.Analyzer.ReplicatingStrategy()
	if err != nil {
		server.abort(c, err)
		return
	}

	T := v.Scenario.Lattice.Periods
	rsp := strategyResponse{
		Contract:  v.Scenario.Contract.String(),
		Value:     v.Value(),
		Positions: make([]positionResponse, 0, T*(T+1)/2),
	}
	for col := 0; col < T; col++ {
		for row := 0; row <= col; row++ {
			rsp.Positions = append(rsp.Positions, positionResponse{
				ID:     paths.NodeID(row, col),
				Cash:   s.Cash.At(row, col),
				Shares: s.Shares.At(row, col),
			})
		}
	}
	c.JSON(http.StatusOK, rsp)
}
