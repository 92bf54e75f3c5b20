package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	db "github.com/banachtech/binotree/db/sqlc"
)

type getPresetRequest struct {
	Name string `uri:"name" binding:"required"`
}

func (server *Server) getPreset(c *gin.Context) {
	var req getPresetRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse(err))
		return
	}
	preset, err := server.store.GetPreset(c, req.Name)
	if err != nil {
		server.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, preset)
}

func (server *Server) listPresets(c *gin.Context) {
	presets, err := server.store.ListPresets(c)
	if err != nil {
		server.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, presets)
}

type upsertPresetRequest struct {
	Drift float64 `json:"drift"`
	Vol   float64 `json:"vol" binding:"required,gt=0"`
	Rate  float64 `json:"rate"`
	Spot  float64 `json:"spot" binding:"required,gt=0"`
}

// upsertPreset stores annualised model inputs under a name, replacing any
// existing preset of that name.
func (server *Server) upsertPreset(c *gin.Context) {
	var uri getPresetRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse(err))
		return
	}
	var req upsertPresetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse(err))
		return
	}
	preset, err := server.store.UpsertPreset(c, db.UpsertPresetParams{
		Name:  uri.Name,
		Drift: req.Drift,
		Vol:   req.Vol,
		Rate:  req.Rate,
		Spot:  req.Spot,
	})
	if err != nil {
		server.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, preset)
}

func (server *Server) deletePreset(c *gin.Context) {
	var req getPresetRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse(err))
		return
	}
	if err := server.store.DeletePreset(c, req.Name); err != nil {
		server.abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
