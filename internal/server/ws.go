package server

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/getsiphon/siphonfs/internal/events"
	"github.com/getsiphon/siphonfs/internal/fserr"
	"github.com/getsiphon/siphonfs/internal/jobs"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Embedding clients connect from app-local origins.
		return true
	},
}

// handleDownloadEvents streams begin and progress events for one job over a
// websocket until the client disconnects. This is the second event-delivery
// mechanism next to in-process callbacks; both are fed from the same bus.
func (s *Server) handleDownloadEvents(c *gin.Context) {
	jobID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, fserr.Invalid("invalid job id: %q", c.Param("id")))
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	s.metrics.WSConnections.Inc()
	defer s.metrics.WSConnections.Dec()

	// The bus delivers on the publisher's goroutine; serialize writes.
	var writeMu sync.Mutex
	forward := func(kind jobs.Kind) events.Handler {
		return func(p events.Payload) {
			writeMu.Lock()
			defer writeMu.Unlock()
			conn.WriteJSON(map[string]interface{}{
				"type":   string(kind),
				"job_id": jobID,
				"data":   map[string]interface{}(p),
			})
		}
	}

	beginSub := s.bus.Subscribe(jobs.Channel(jobs.KindBegin, jobID), forward(jobs.KindBegin))
	progressSub := s.bus.Subscribe(jobs.Channel(jobs.KindProgress, jobID), forward(jobs.KindProgress))
	defer beginSub.Unsubscribe()
	defer progressSub.Unsubscribe()

	// Block until the peer closes; incoming frames are ignored.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
