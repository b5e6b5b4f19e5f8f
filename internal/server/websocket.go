package server

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/zot/ui-builder/internal/config"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // local preview only
	},
}

// wsEndpoint tracks live reload connections.
type wsEndpoint struct {
	config *config.Config
	conns  map[*websocket.Conn]struct{}
	mu     sync.Mutex
}

func newWSEndpoint(cfg *config.Config) *wsEndpoint {
	return &wsEndpoint{
		config: cfg,
		conns:  make(map[*websocket.Conn]struct{}),
	}
}

// handle upgrades the request and parks the connection until it drops.
func (ws *wsEndpoint) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		ws.config.Log(0, "websocket upgrade failed: %v", err)
		return
	}
	ws.mu.Lock()
	ws.conns[conn] = struct{}{}
	ws.mu.Unlock()
	ws.config.Log(1, "preview connected: %s", conn.RemoteAddr())

	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		ws.mu.Lock()
		delete(ws.conns, conn)
		ws.mu.Unlock()
		conn.Close()
		ws.config.Log(1, "preview disconnected: %s", conn.RemoteAddr())
	}()
}

// broadcast sends a text message to every connection.
func (ws *wsEndpoint) broadcast(message string) {
	ws.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(ws.conns))
	for conn := range ws.conns {
		conns = append(conns, conn)
	}
	ws.mu.Unlock()
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(message)); err != nil {
			ws.config.Log(2, "websocket write failed: %v", err)
		}
	}
}

// closeAll closes every connection.
func (ws *wsEndpoint) closeAll() {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	for conn := range ws.conns {
		conn.Close()
	}
	ws.conns = make(map[*websocket.Conn]struct{})
}
