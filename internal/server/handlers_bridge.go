package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// handleBridgeStatus proxies the bridge's /status endpoint verbatim.
func (s *Server) handleBridgeStatus(c *gin.Context) {
	raw, err := s.bridge.Status(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}

// handleReloadEnv proxies the bridge's /reload-env endpoint verbatim.
func (s *Server) handleReloadEnv(c *gin.Context) {
	raw, err := s.bridge.ReloadEnv(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}
