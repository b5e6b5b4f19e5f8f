// Package server implements the preview server: it serves an HTML
// shell plus the latest compiled app source and pushes reload messages
// to connected browsers whenever new output is published. The compiler
// core never touches the network; this layer is purely a collaborator.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/zot/ui-builder/internal/config"
)

const indexPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>ui-builder preview</title>
</head>
<body>
<div id="app"></div>
<script type="module">
import { mount } from "/app.js";
let handle = mount(document.getElementById("app"));
const ws = new WebSocket("ws://" + location.host + "/ws");
ws.onmessage = (msg) => {
  if (msg.data === "reload") {
    location.reload();
  }
};
</script>
</body>
</html>
`

// Server is the preview HTTP server.
type Server struct {
	config *config.Config
	http   *http.Server
	ws     *wsEndpoint

	source string
	mu     sync.RWMutex
}

// New creates a preview server.
func New(cfg *config.Config) *Server {
	s := &Server{
		config: cfg,
		ws:     newWSEndpoint(cfg),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/app.js", s.handleAppJS)
	mux.HandleFunc("/ws", s.ws.handle)
	s.http = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: mux,
	}
	return s
}

// Start begins serving in the background.
func (s *Server) Start() error {
	s.config.Log(1, "preview server listening on %s", s.http.Addr)
	go func() {
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.config.Log(0, "preview server error: %v", err)
		}
	}()
	return nil
}

// Stop shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	s.ws.closeAll()
	return s.http.Shutdown(ctx)
}

// Publish swaps the served source and tells connected browsers to
// reload.
func (s *Server) Publish(source string) {
	s.mu.Lock()
	s.source = source
	s.mu.Unlock()
	s.config.Log(2, "preview published (%d bytes)", len(source))
	s.ws.broadcast("reload")
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.http.Addr
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexPage)
}

func (s *Server) handleAppJS(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	source := s.source
	s.mu.RUnlock()
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	fmt.Fprint(w, source)
}
