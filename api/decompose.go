package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/banachtech/binotree/paths"
	"github.com/banachtech/binotree/pricer"
)

// decomposeRequest selects a path in one of three ways, tried in order:
// a sequence of ±1 moves, the ids of every node on the path, or the id of
// a terminal node.
type decomposeRequest struct {
	scenarioRequest
	Moves    []int    `json:"moves"`
	Nodes    []string `json:"nodes"`
	Endpoint string   `json:"endpoint"`
}

type decomposeResponse struct {
	Contract      string    `json:"contract"`
	Value         float64   `json:"value"`
	Nodes         []string  `json:"nodes"`
	Prices        []float64 `json:"prices"`
	Payoff        []float64 `json:"payoff"`
	Envelope      []float64 `json:"envelope"`
	Martingale    []float64 `json:"martingale"`
	Excess        []float64 `json:"excess"`
	StoppingTimes []int     `json:"stopping_times"`
	TauMax        int       `json:"tau_max"`
}

func nodePath(ids []string) (paths.Path, error) {
	rows := make([]int, len(ids))
	cols := make([]int, len(ids))
	for i, id := range ids {
		r, c, err := paths.ParseNodeID(id)
		if err != nil {
			return paths.Path{}, err
		}
		rows[i], cols[i] = r, c
	}
	return paths.New(rows, cols)
}

func along(v *pricer.Valuation, req decomposeRequest) (*pricer.Report, error) {
	switch {
	case len(req.Moves) > 0:
		p, err := paths.FromMoves(req.Moves)
		if err != nil {
			return nil, err
		}
		return v.Along(p)
	case len(req.Nodes) > 0:
		p, err := nodePath(req.Nodes)
		if err != nil {
			return nil, err
		}
		return v.Along(p)
	case req.Endpoint != "":
		row, col, err := paths.ParseNodeID(req.Endpoint)
		if err != nil {
			return nil, err
		}
		return v.AlongEndpoint(row, col)
	}
	return nil, fmt.Errorf("%w: provide moves, nodes or endpoint", pricer.ErrNoPath)
}

func (server *Server) decompose(c *gin.Context) {
	var req decomposeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse(err))
		return
	}
	v, ok := server.build(c, req.scenarioRequest)
	if !ok {
		return
	}
	r, err := along(v, req)
	if err != nil {
		server.abort(c, err)
		return
	}

	ids := make([]string, r.Path.Len())
	for i := range ids {
		ids[i] = paths.NodeID(r.Path.Rows[i], r.Path.Cols[i])
	}
	c.JSON(http.StatusOK, decomposeResponse{
		Contract:      v.Scenario.Contract.String(),
		Value:         v.Value(),
		Nodes:         ids,
		Prices:        r.Prices,
		Payoff:        r.Payoff,
		Envelope:      r.Decomposition.Envelope,
		Martingale:    r.Decomposition.Martingale,
		Excess:        r.Decomposition.Excess,
		StoppingTimes: r.Stopping.Indices,
		TauMax:        r.Stopping.TauMax,
	})
}
