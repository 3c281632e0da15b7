package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/soluify/bridgeboard/internal/history"
	"github.com/soluify/bridgeboard/internal/model"
	"github.com/soluify/bridgeboard/internal/notify"
	"github.com/soluify/bridgeboard/internal/settings"
)

// handleListNotifications returns the notification history, newest
// first. Expired records are pruned on access.
func (s *Server) handleListNotifications(c *gin.Context) {
	s.history.PruneOlderThan(history.RetentionWindow)
	c.JSON(http.StatusOK, gin.H{
		"notifications": s.history.List(),
		"unviewed":      s.history.CountUnviewed(),
	})
}

type dispatchRequest struct {
	Type    string            `json:"type"`
	Title   string            `json:"title"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func (s *Server) handleDispatch(c *gin.Context) {
	var req dispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dispatch payload"})
		return
	}

	res, err := s.dispatcher.Dispatch(c.Request.Context(), req.Type, req.Title, req.Message, req.Details)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, res)
	case errors.Is(err, notify.ErrInvalidType):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, notify.ErrNotConfigured):
		c.JSON(http.StatusPreconditionFailed, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (s *Server) handleUnviewedCount(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"unviewed": s.history.CountUnviewed()})
}

type markViewedRequest struct {
	Before time.Time `json:"before"`
}

// handleMarkViewed advances the viewed watermark. An absent cutoff
// acknowledges everything up to now.
func (s *Server) handleMarkViewed(c *gin.Context) {
	var req markViewedRequest
	// An empty or malformed body falls back to "everything up to now".
	_ = c.ShouldBindJSON(&req)
	if req.Before.IsZero() {
		req.Before = time.Now()
	}

	remaining := s.history.MarkViewedBefore(req.Before)
	c.JSON(http.StatusOK, gin.H{"unviewed": remaining})
}

func (s *Server) handleGetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, s.settings.Load())
}

func (s *Server) handleSaveSettings(c *gin.Context) {
	var cfg model.NotificationSettings
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid settings payload"})
		return
	}

	if err := s.settings.Save(cfg); err != nil {
		if errors.Is(err, settings.ErrInvalidWebhook) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cfg)
}
