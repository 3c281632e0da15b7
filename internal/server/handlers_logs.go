package server

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/soluify/bridgeboard/internal/catalog"
	"github.com/soluify/bridgeboard/internal/logquery"
	"github.com/soluify/bridgeboard/internal/model"
)

// handleLogs serves the dashboard's log query surface.
func (s *Server) handleLogs(c *gin.Context) {
	q := model.LogQuery{
		Search:    c.Query("search"),
		Level:     c.Query("level"),
		LogTypeID: c.Query("logTypeId"),
		Sort:      c.DefaultQuery("sort", "desc"),
		Page:      intQuery(c, "page", 1),
		Limit:     intQuery(c, "limit", logquery.DefaultLimit),
	}

	// An unknown log type or one whose stored pattern does not compile
	// means "no type filter", not a failed query.
	var matcher *regexp.Regexp
	if q.LogTypeID != "" {
		matcher = s.catalog.Matcher(q.LogTypeID)
	}

	page := logquery.Query(s.readLogEvents(), q, matcher)
	c.JSON(http.StatusOK, page)
}

func (s *Server) handleStats(c *gin.Context) {
	snap := s.stats.Current()
	c.JSON(http.StatusOK, gin.H{
		"uptime":         snap.Uptime,
		"total_events":   snap.TotalEvents,
		"eps":            snap.EPS,
		"level_counts":   snap.LevelCounts,
		"dropped_events": snap.DroppedEvents,
		"watched_files":  snap.WatchedFiles,
		"unviewed":       s.history.CountUnviewed(),
	})
}

func (s *Server) handleListLogTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rules": s.catalog.Rules()})
}

func (s *Server) handleUpsertLogType(c *gin.Context) {
	var rule model.PatternRule
	if err := c.ShouldBindJSON(&rule); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rule payload"})
		return
	}
	if id := c.Param("id"); id != "" {
		rule.ID = id
	}

	if err := s.catalog.Upsert(rule); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, catalog.ErrInvalidPattern) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rule": rule})
}

func (s *Server) handleDeleteLogType(c *gin.Context) {
	err := s.catalog.Delete(c.Param("id"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"deleted": true})
	case errors.Is(err, catalog.ErrProtectedDefault):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, catalog.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func intQuery(c *gin.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil || v < 1 {
		return fallback
	}
	return v
}
