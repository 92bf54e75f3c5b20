package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/banachtech/binotree/pricer"
)

// compareRequest prices one option on several stored presets. The model
// fields of the embedded scenario are taken from each preset in turn.
type compareRequest struct {
	scenarioRequest
	Presets []string `json:"presets" binding:"required,min=1,max=32,dive,required"`
}

type comparison struct {
	Preset string  `json:"preset"`
	Value  float64 `json:"value"`
	Label  string  `json:"label"`
	Spot   float64 `json:"spot"`
}

func (server *Server) compare(c *gin.Context) {
	var req compareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse(err))
		return
	}
	presets, err := server.store.GetPresets(c, req.Presets)
	if err != nil {
		server.abort(c, err)
		return
	}

	scenarios := make([]pricer.Scenario, len(presets))
	for i, p := range presets {
		sr := req.scenarioRequest
		sr.Preset = ""
		sr.Annualized = true
		sr.Drift, sr.Vol, sr.Rate, sr.Spot = p.Drift, p.Vol, p.Rate, p.Spot
		if scenarios[i], err = server.scenario(c, sr); err != nil {
			server.abort(c, err)
			return
		}
	}
	vs, err := server.pricer.EvaluateAll(c.Request.Context(), scenarios)
	if err != nil {
		server.abort(c, err)
		return
	}

	rsp := make([]comparison, len(vs))
	for i, v := range vs {
		rsp[i] = comparison{
			Preset: presets[i].Name,
			Value:  v.Value(),
			Label:  label(v.Value()),
			Spot:   presets[i].Spot,
		}
	}
	c.JSON(http.StatusOK, rsp)
}
