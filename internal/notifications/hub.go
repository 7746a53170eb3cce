package notifications

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Event is one drained workflow event pushed to connected dashboards.
type Event struct {
	ProjectID string    `json:"project_id"`
	Tag       string    `json:"tag"`
	At        time.Time `json:"at"`
}

// Hub fans drained outbox events out to staff dashboard connections.
type Hub struct {
	mu       sync.RWMutex
	conns    map[*websocket.Conn]bool
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		conns: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// ServeWS upgrades a dashboard connection and keeps it registered until the
// peer goes away.
func (h *Hub) ServeWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	h.mu.Lock()
	h.conns[conn] = true
	h.mu.Unlock()

	// Reads are only used to detect disconnects; the hub is write-only.
	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Broadcast pushes one event to every connection, dropping peers that fail.
func (h *Hub) Broadcast(ev Event) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for conn := range h.conns {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.WriteJSON(ev); err != nil {
			h.logger.Warn("dropping dashboard connection", zap.Error(err))
			h.drop(conn)
		}
	}
}

// ConnectionCount reports active dashboard connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	if h.conns[conn] {
		delete(h.conns, conn)
		conn.Close()
	}
	h.mu.Unlock()
}
