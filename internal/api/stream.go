package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/snapboard/internal/dashboard"
	"github.com/wonny/snapboard/pkg/logger"
	"github.com/wonny/snapboard/pkg/metrics"
)

const (
	writeWait      = 5 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096 // clients only send control frames
	sendBuffer     = 8
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// streamMessage is the frame pushed to subscribers
type streamMessage struct {
	Type      string               `json:"type"` // "snapshot" on connect, "update" after a refresh
	Dashboard *dashboard.Dashboard `json:"dashboard"`
}

// Hub pushes every rebuilt dashboard to websocket subscribers.
// A single goroutine (Run) owns the client set; slow clients are dropped.
type Hub struct {
	logger  *logger.Logger
	metrics *metrics.Recorder

	register   chan *streamClient
	unregister chan *streamClient
	broadcast  chan *dashboard.Dashboard
	done       chan struct{} // closed when Run returns

	mu     sync.RWMutex
	latest *dashboard.Dashboard

	clients map[*streamClient]struct{}
}

type streamClient struct {
	hub  *Hub
	conn *websocket.Conn
	send chan streamMessage
}

// NewHub creates a hub; call Run to start it
func NewHub(rec *metrics.Recorder, log *logger.Logger) *Hub {
	return &Hub{
		logger:     log.WithComponent("stream"),
		metrics:    rec,
		register:   make(chan *streamClient),
		unregister: make(chan *streamClient),
		broadcast:  make(chan *dashboard.Dashboard, 1),
		done:       make(chan struct{}),
		clients:    make(map[*streamClient]struct{}),
	}
}

// Publish queues a dashboard for broadcast. Only the newest pending one is kept.
func (h *Hub) Publish(d *dashboard.Dashboard) {
	h.mu.Lock()
	h.latest = d
	h.mu.Unlock()

	for {
		select {
		case h.broadcast <- d:
			return
		default:
		}
		// drop the stale pending update
		select {
		case <-h.broadcast:
		default:
		}
	}
}

// Run is the hub loop. It exits and disconnects everyone when ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for c := range h.clients {
			close(c.send)
			delete(h.clients, c)
		}
		h.metrics.SetStreamClients(0)
	}()

	for {
		select {
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.metrics.SetStreamClients(len(h.clients))

			h.mu.RLock()
			latest := h.latest
			h.mu.RUnlock()
			if latest != nil {
				c.send <- streamMessage{Type: "snapshot", Dashboard: latest}
			}

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.metrics.SetStreamClients(len(h.clients))
			}

		case d := <-h.broadcast:
			msg := streamMessage{Type: "update", Dashboard: d}
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					delete(h.clients, c)
					close(c.send)
					h.logger.Warn("Dropped slow stream client")
				}
			}
			h.metrics.SetStreamClients(len(h.clients))

		case <-ctx.Done():
			return
		}
	}
}

// ServeWS upgrades the request and registers the subscriber
// GET /ws/dashboard
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	c := &streamClient{hub: h, conn: conn, send: make(chan streamMessage, sendBuffer)}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	case <-r.Context().Done():
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// readPump only watches the connection: pongs extend the deadline, any error ends it
func (c *streamClient) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.WithError(err).Debug("Stream client closed unexpectedly")
			}
			return
		}
	}
}

func (c *streamClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
