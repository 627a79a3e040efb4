package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/marcotondi/lfg-bot/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WSHandler struct {
	hub *ws.Hub
}

func NewWSHandler(hub *ws.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// HandleTableFeed subscribes a websocket client to one table's event stream.
func (h *WSHandler) HandleTableFeed(c *gin.Context) {
	tableID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid table id"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws: upgrade failed: %v", err)
		return
	}

	clientID := uuid.NewString()
	h.hub.AddConnection(uint(tableID), conn, clientID)

	// read loop only detects disconnects; the feed is one-way
	go func() {
		defer h.hub.RemoveConnection(uint(tableID), conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
