package api

import (
	"encoding/json"
	"net/http"
	"slices"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jfendler/go-chatregistry/internal/registry"
	"github.com/jfendler/go-chatregistry/internal/stats"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = (pongWait * 9) / 10
	sendBuffer   = 256
)

// wsClient relays registry mutation events to one WebSocket connection.
// The registry's observer list is append-only, so a closed client keeps
// its observer registered and simply drops events.
type wsClient struct {
	app    *App
	conn   *websocket.Conn
	send   chan registry.Event
	closed atomic.Bool
}

// observe is registered as a registry observer. Events are dropped when
// the client's buffer is full; a slow subscriber must never block the
// mutating caller.
func (c *wsClient) observe(ev registry.Event) {
	if c.closed.Load() {
		return
	}
	select {
	case c.send <- ev:
	default:
		c.app.log.Println("ws: dropping event, send buffer full")
	}
}

func (c *wsClient) write() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			if !ok {
				return
			}

			bytes, err := json.Marshal(ev)
			if err != nil {
				c.app.log.Println("failed to serialize event:", err)
				continue
			}

			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, bytes); err != nil {
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

// read consumes the connection until the peer goes away. Subscribers
// never send application data; the pump only services control frames.
func (c *wsClient) read() {
	defer func() {
		c.closed.Store(true)
		c.conn.Close()
		c.app.stats.Decr(stats.MetricActiveWsClients)
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.app.log.Printf("ws: read: %v", err)
			}
			return
		}
	}
}

// serveWs subscribes the connection to the registry's mutation events.
// Every event is pushed as one JSON text frame.
func (s *App) serveWs(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}

			return slices.Contains(s.allowedOrigins, origin)
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Println("error upgrading connection:", err)
		return
	}

	client := &wsClient{
		app:  s,
		conn: conn,
		send: make(chan registry.Event, sendBuffer),
	}

	s.stats.Incr(stats.MetricActiveWsClients)
	s.reg.RegisterObserver(client.observe)

	go client.write()
	go client.read()
}
