package web

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/minmo-hq/offrampd/internal/core/application"
	log "github.com/sirupsen/logrus"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// the wizard is served from arbitrary origins during development
		return true
	},
}

// streamSwapEvents upgrades to a websocket and pushes lifecycle updates
// for one swap until it reaches a terminal state or the client goes
// away. The tracker is stopped unconditionally when the handler
// returns, nothing fires after the connection closes.
func (s *service) streamSwapEvents(c *gin.Context) {
	swap, err := s.svc.GetSwap(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	tracker := s.svc.TrackSwap(*swap)
	defer tracker.Stop()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	writeUpdate := func(update application.TrackerUpdate) error {
		// nolint:all
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(swapView(update.Swap))
	}

	if err := writeUpdate(tracker.Current()); err != nil {
		return
	}

	for {
		select {
		case <-closed:
			return
		case update, ok := <-tracker.Updates():
			if !ok {
				// terminal state reached, polling has stopped
				// nolint:all
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				// nolint:all
				conn.WriteMessage(
					websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				)
				return
			}
			if err := writeUpdate(update); err != nil {
				return
			}
		}
	}
}
