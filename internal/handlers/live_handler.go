package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/justsurfingit/job-application-tracker/internal/dtos"
	"github.com/justsurfingit/job-application-tracker/internal/lifecycle"
	"github.com/justsurfingit/job-application-tracker/internal/live"
	"github.com/justsurfingit/job-application-tracker/internal/middleware"
	"github.com/justsurfingit/job-application-tracker/internal/services"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	// the session token authenticates the socket, not its origin
	CheckOrigin: func(r *http.Request) bool { return true },
}

// LiveHandler streams the board to a websocket and resends it every time
// the account's applications change.
type LiveHandler struct {
	Hub          *live.Hub
	Applications *services.ApplicationService
}

func NewLiveHandler(hub *live.Hub, apps *services.ApplicationService) *LiveHandler {
	return &LiveHandler{Hub: hub, Applications: apps}
}

type boardMessage struct {
	Type  string             `json:"type"`
	Board dtos.BoardResponse `json:"board"`
	Stats lifecycle.Stats    `json:"stats"`
}

// Watch is GET /ws?sort=&dir=
func (h *LiveHandler) Watch(c *gin.Context) {
	key, dir, err := boardOrder(c)
	if err != nil {
		respondError(c, err)
		return
	}
	owner := middleware.AccountID(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("⚠️ websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	signals, cancel := h.Hub.Subscribe(owner)
	defer cancel()

	// the reader only notices the client going away
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ctx := c.Request.Context()
	if err := h.push(ctx, conn, owner, key, dir); err != nil {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-closed:
			return
		case <-ctx.Done():
			return
		case <-signals:
			if err := h.push(ctx, conn, owner, key, dir); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (h *LiveHandler) push(ctx context.Context, conn *websocket.Conn, owner uint, key lifecycle.SortKey, dir lifecycle.Direction) error {
	board, err := h.Applications.Board(ctx, owner, key, dir)
	if err != nil {
		log.Printf("❌ live board for account %d: %v", owner, err)
		return err
	}
	stats, err := h.Applications.Stats(ctx, owner)
	if err != nil {
		log.Printf("❌ live stats for account %d: %v", owner, err)
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(boardMessage{
		Type:  "board",
		Board: dtos.NewBoardResponse(board, key, dir),
		Stats: stats,
	})
}
