package server

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleWebSocket upgrades to WebSocket and streams live parsed log
// events to the dashboard.
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	events := s.hub.Subscribe()

	// Read pump — detect client disconnect.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				conn.Close()
				return
			}
		}
	}()

	// Write pump — send events as JSON.
	for event := range events {
		msg := struct {
			Timestamp string `json:"timestamp"`
			Level     string `json:"level"`
			Source    string `json:"source,omitempty"`
			Message   string `json:"message"`
			Raw       string `json:"raw"`
		}{
			Timestamp: event.Timestamp.Format(time.RFC3339),
			Level:     event.Level,
			Source:    event.Source,
			Message:   event.Message,
			Raw:       event.Raw,
		}

		if err := conn.WriteJSON(msg); err != nil {
			log.Printf("websocket write failed: %v", err)
			return
		}
	}
}
