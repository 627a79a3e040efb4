package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub fans table events out to websocket observers. Connections subscribe
// per table id; broadcasts for other tables never reach them.
type Hub struct {
	mu     sync.RWMutex
	tables map[uint]map[*websocket.Conn]string // conn -> client id
}

func NewHub() *Hub {
	return &Hub{
		tables: make(map[uint]map[*websocket.Conn]string),
	}
}

func (h *Hub) AddConnection(tableID uint, conn *websocket.Conn, clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.tables[tableID] == nil {
		h.tables[tableID] = make(map[*websocket.Conn]string)
	}
	h.tables[tableID][conn] = clientID
	log.Printf("ws: client %s connected to table %d (total: %d)", clientID, tableID, len(h.tables[tableID]))
}

func (h *Hub) RemoveConnection(tableID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.tables[tableID]; ok {
		clientID := conns[conn]
		delete(conns, conn)
		conn.Close()
		if len(conns) == 0 {
			delete(h.tables, tableID)
		}
		log.Printf("ws: client %s disconnected from table %d", clientID, tableID)
	}
}

func (h *Hub) Broadcast(tableID uint, message WSMessage) {
	// full lock: failed connections are pruned during the write loop
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.tables[tableID]
	if !ok {
		return
	}

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("ws: marshal error: %v", err)
		return
	}

	for conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("ws: write error: %v", err)
			conn.Close()
			delete(conns, conn)
		}
	}
}

// BroadcastTable satisfies the notification fan-out's event sink.
func (h *Hub) BroadcastTable(tableID uint, event string, data interface{}) {
	h.Broadcast(tableID, WSMessage{Type: event, Data: data})
}
