// Package devserver is the ambient live-training dashboard: it runs a
// Trainer in the background and serves a single page that renders the
// maze, then receives websocket pushes of the greedy value function as
// training progresses. It is the one part of this module with genuine
// concurrency; see atomicfloat and Trainer. Modeled closely on the teacher
// repo's server/server.go and server/root_view/root_view.go, but without
// porting the fastview ViewComponent/EleUpdate machinery those files build:
// this dashboard pushes one JSON Snapshot per update rather than diffed DOM
// element ops, since there is no per-cell templated view tree to diff here.
package devserver

import (
	"context"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	channerics "github.com/niceyeti/channerics/channels"
	"golang.org/x/sync/errgroup"

	"labyrinth/grid"
	"labyrinth/imageview"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	writeWait        = 1 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	closeGracePeriod = 10 * time.Second
	mazeCellPixels   = 12
)

// hub fans a single source of Snapshots out to any number of subscribers.
// This replaces the teacher server's documented single-client limitation: the
// trainer's update channel is drained exactly once, here, and redistributed
// so every connected websocket client sees every snapshot.
type hub struct {
	mu   sync.Mutex
	subs map[chan Snapshot]struct{}
}

func newHub() *hub {
	return &hub{subs: map[chan Snapshot]struct{}{}}
}

func (h *hub) subscribe() chan Snapshot {
	ch := make(chan Snapshot, 4)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *hub) unsubscribe(ch chan Snapshot) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
	close(ch)
}

func (h *hub) broadcast(s Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- s:
		default:
			// Slow subscriber: drop rather than block the broadcaster.
		}
	}
}

// Server serves the dashboard page, a rendered PNG of the current maze, and
// a websocket feed of Trainer snapshots, to any number of clients.
type Server struct {
	addr    string
	maze    *grid.Grid
	trainer *Trainer
	router  *mux.Router
	hub     *hub

	mu       sync.RWMutex
	lastPath []grid.Cell
}

// NewServer builds the router. trainer.Run must be started separately (by
// the caller, typically in its own goroutine) for training to progress and
// for the websocket feed to carry anything.
func NewServer(addr string, maze *grid.Grid, trainer *Trainer) *Server {
	s := &Server{
		addr:    addr,
		maze:    maze,
		trainer: trainer,
		hub:     newHub(),
	}

	r := mux.NewRouter()
	r.HandleFunc("/", s.serveIndex).Methods(http.MethodGet)
	r.HandleFunc("/maze.png", s.serveMazeImage).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.serveWebsocket)
	s.router = r

	return s
}

// Serve runs the HTTP server and a goroutine draining the trainer's
// snapshots exactly once, fanning each out through the hub and keeping
// lastPath current for /maze.png, until ctx is cancelled, then shuts the
// server down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	httpServer := &http.Server{Addr: s.addr, Handler: s.router}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for snap := range channerics.OrDone(gctx.Done(), s.trainer.Updates()) {
			if len(snap.Path) > 0 {
				s.mu.Lock()
				s.lastPath = snap.Path
				s.mu.Unlock()
			}
			s.hub.broadcast(snap)
		}
		return nil
	})

	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("devserver: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), closeGracePeriod)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (s *Server) serveMazeImage(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	path := s.lastPath
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "image/png")
	if err := imageview.Render(w, s.maze, path, mazeCellPixels); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

const indexTemplate = `
{{ define "index" }}
<!DOCTYPE html>
<html>
<head><link rel="icon" href="data:,"></head>
<body>
	<img id="maze" src="/maze.png">
	<pre id="episode">episode: 0</pre>
	<script>
		const ws = new WebSocket("ws://" + window.location.host + "/ws");
		ws.onmessage = function(event) {
			const snap = JSON.parse(event.data);
			document.getElementById("episode").textContent = "episode: " + snap.episode;
			if (snap.done) {
				document.getElementById("maze").src = "/maze.png?t=" + Date.now();
			}
		};
	</script>
</body>
</html>
{{ end }}
`

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	t, err := template.New("index").Parse(indexTemplate)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html")
	if err := t.ExecuteTemplate(w, "index", nil); err != nil {
		log.Println("serveIndex:", err)
	}
}

// serveWebsocket upgrades the connection and publishes Trainer snapshots to
// it until the client disconnects or ctx is cancelled. A read-pump goroutine
// drives the gorilla/websocket ping/pong control-frame handling (required
// even though this connection is otherwise send-only); a write-pump
// publishes snapshots and pings. The two are coordinated with errgroup so
// either's exit tears down both.
func (s *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("upgrade:", err)
		return
	}
	defer closeWebsocket(ws)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	pong := make(chan struct{}, 1)
	ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(pongWait))
		select {
		case pong <- struct{}{}:
		default:
		}
		return nil
	})

	sub := s.hub.subscribe()
	defer s.hub.unsubscribe(sub)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return nil
			}
		}
	})

	g.Go(func() error {
		pinger := channerics.NewTicker(ctx.Done(), pingPeriod)
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-pinger:
				if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					return nil
				}
			case snap, ok := <-sub:
				if !ok {
					return nil
				}
				ws.SetWriteDeadline(time.Now().Add(writeWait))
				if err := ws.WriteJSON(snap); err != nil {
					return nil
				}
			}
		}
	})

	_ = g.Wait()
}

func closeWebsocket(ws *websocket.Conn) {
	_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
	_ = ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	ws.Close()
}
