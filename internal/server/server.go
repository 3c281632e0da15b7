// Package server exposes the dashboard's HTTP API: log queries,
// pattern catalog CRUD, notification history and dispatch, settings,
// and thin proxies to the bridge service.
package server

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/soluify/bridgeboard/internal/catalog"
	"github.com/soluify/bridgeboard/internal/history"
	"github.com/soluify/bridgeboard/internal/hub"
	"github.com/soluify/bridgeboard/internal/model"
	"github.com/soluify/bridgeboard/internal/notify"
	"github.com/soluify/bridgeboard/internal/parser"
	"github.com/soluify/bridgeboard/internal/settings"
	"github.com/soluify/bridgeboard/internal/stats"
	"github.com/soluify/bridgeboard/internal/upstream"
)

// Server holds the Gin engine and the dashboard's collaborators.
type Server struct {
	engine     *gin.Engine
	hub        *hub.Hub
	stats      *stats.Collector
	catalog    *catalog.Catalog
	history    *history.Store
	settings   *settings.Store
	dispatcher *notify.Dispatcher
	bridge     *upstream.Client
	parser     parser.Parser
	logPath    string
	port       string
}

// Config wires the server's collaborators.
type Config struct {
	Hub        *hub.Hub
	Stats      *stats.Collector
	Catalog    *catalog.Catalog
	History    *history.Store
	Settings   *settings.Store
	Dispatcher *notify.Dispatcher
	Bridge     *upstream.Client
	LogPath    string
	Port       string
}

// New creates the dashboard API server.
func New(cfg Config) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	// Disable automatic redirects that cause 301 issues.
	engine.RedirectTrailingSlash = false
	engine.RedirectFixedPath = false

	s := &Server{
		engine:     engine,
		hub:        cfg.Hub,
		stats:      cfg.Stats,
		catalog:    cfg.Catalog,
		history:    cfg.History,
		settings:   cfg.Settings,
		dispatcher: cfg.Dispatcher,
		bridge:     cfg.Bridge,
		parser:     parser.NewAutoParser(),
		logPath:    cfg.LogPath,
		port:       cfg.Port,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.engine.Group("/api")
	{
		api.GET("/logs", s.handleLogs)
		api.GET("/logs/types", s.handleListLogTypes)
		api.POST("/logs/types", s.handleUpsertLogType)
		api.PUT("/logs/types/:id", s.handleUpsertLogType)
		api.DELETE("/logs/types/:id", s.handleDeleteLogType)

		api.GET("/stats", s.handleStats)

		api.GET("/notifications", s.handleListNotifications)
		api.POST("/notifications", s.handleDispatch)
		api.GET("/notifications/unviewed", s.handleUnviewedCount)
		api.POST("/notifications/viewed", s.handleMarkViewed)
		api.GET("/notifications/settings", s.handleGetSettings)
		api.POST("/notifications/settings", s.handleSaveSettings)

		api.GET("/status", s.handleBridgeStatus)
		api.POST("/reload-env", s.handleReloadEnv)
	}

	s.engine.GET("/ws", s.handleWebSocket)
}

// readLogEvents parses the entire bridge log. The log file is the
// durable record; events are recomputed on every read. A missing file
// reads as no events so a fresh install still renders.
func (s *Server) readLogEvents() []model.LogEvent {
	f, err := os.Open(s.logPath)
	if err != nil {
		return nil
	}
	defer f.Close()
	return parser.ParseAll(f, s.logPath, s.parser)
}

// Handler exposes the route tree, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start runs the server. Blocks until the server is stopped.
func (s *Server) Start() error {
	return s.engine.Run(":" + s.port)
}
