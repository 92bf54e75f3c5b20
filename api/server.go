package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/banachtech/binotree/config"
	db "github.com/banachtech/binotree/db/sqlc"
	"github.com/banachtech/binotree/logging"
	"github.com/banachtech/binotree/metrics"
	"github.com/banachtech/binotree/pricer"
)

// Server serves HTTP requests for the lattice pricing service.
type Server struct {
	config  config.Config
	store   db.Store
	pricer  *pricer.Pricer
	metrics *metrics.Metrics
	log     zerolog.Logger
	router  *gin.Engine
}

// NewServer creates a new HTTP server and set up routing.
func NewServer(cfg config.Config, store db.Store) *Server {
	m := metrics.NewMetrics()
	server := &Server{
		config:  cfg,
		store:   store,
		pricer:  pricer.New(m),
		metrics: m,
		log:     logging.Component("api"),
	}

	server.setupRouter()
	return server
}

func (server *Server) setupRouter() {
	router := gin.New()
	router.Use(gin.Recovery(), server.observe)

	router.GET("/metrics", gin.WrapH(server.metrics.Handler()))
	router.POST("/users", server.createUser)

	authRoutes := router.Group("/v1").Use(server.authentication)
	authRoutes.POST("/lattice", server.lattice)
	authRoutes.POST("/decompose", server.decompose)
	authRoutes.POST("/strategy", server.strategy)
	authRoutes.GET("/presets", server.listPresets)
	authRoutes.GET("/presets/:name", server.getPreset)
	authRoutes.PUT("/presets/:name", server.upsertPreset)
	authRoutes.DELETE("/presets/:name", server.deletePreset)
	authRoutes.POST("/compare", server.compare)
	authRoutes.DELETE("/users", server.deleteUser)
	server.router = router
}

// observe logs and counts every request.
func (server *Server) observe(c *gin.Context) {
	start := time.Now()
	c.Next()

	endpoint := c.FullPath()
	if endpoint == "" {
		endpoint = "unmatched"
	}
	d := time.Since(start)
	server.metrics.RecordHTTPRequest(c.Request.Method, endpoint, c.Writer.Status(), d)
	server.log.Info().
		Str("method", c.Request.Method).
		Str("path", endpoint).
		Int("status", c.Writer.Status()).
		Dur("elapsed", d).
		Msg("request")
}

// Handler exposes the router, e.g. for an http.Server with timeouts.
func (server *Server) Handler() http.Handler { return server.router }

// Start runs the HTTP server on a specific address.
func (server *Server) Start(address string) error {
	return server.router.Run(address)
}

func errorResponse(err error) gin.H {
	return gin.H{"error": err.Error()}
}
