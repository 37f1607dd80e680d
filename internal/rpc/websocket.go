package rpc

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/LeJamon/marketd/internal/core/market"
	"github.com/LeJamon/marketd/internal/crypto"
)

// StreamAll subscribes a connection to every event stream.
const StreamAll = "all"

// WebSocketServer streams committed marketplace events to subscribers. It
// implements market.EventPublisher; the engine publishes into it after
// each successful operation.
type WebSocketServer struct {
	upgrader websocket.Upgrader
	log      *zap.Logger

	mu          sync.RWMutex
	connections map[string]*wsConnection
}

type wsConnection struct {
	id      string
	conn    *websocket.Conn
	streams map[string]bool
	send    chan []byte
	done    chan struct{}
	mu      sync.RWMutex
}

// wsCommand is a client request on the websocket.
type wsCommand struct {
	Command string      `json:"command"`
	Streams []string    `json:"streams,omitempty"`
	ID      interface{} `json:"id,omitempty"`
}

type wsReply struct {
	Type   string      `json:"type"`
	ID     interface{} `json:"id,omitempty"`
	Status string      `json:"status,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// wsEvent is the frame delivered for a published event.
type wsEvent struct {
	Type string       `json:"type"`
	Data market.Event `json:"data"`
}

// NewWebSocketServer creates the subscription server.
func NewWebSocketServer(log *zap.Logger) *WebSocketServer {
	if log == nil {
		log = zap.NewNop()
	}
	return &WebSocketServer{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		log:         log,
		connections: make(map[string]*wsConnection),
	}
}

// ServeHTTP upgrades the connection and starts the read and write pumps.
func (ws *WebSocketServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		ws.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &wsConnection{
		id:      newConnectionID(),
		conn:    conn,
		streams: make(map[string]bool),
		send:    make(chan []byte, 256),
		done:    make(chan struct{}),
	}

	ws.mu.Lock()
	ws.connections[c.id] = c
	ws.mu.Unlock()

	ws.log.Debug("websocket connected", zap.String("conn", c.id))

	go ws.writePump(c)
	ws.readPump(c)
}

func (ws *WebSocketServer) readPump(c *wsConnection) {
	defer ws.drop(c)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var cmd wsCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			ws.reply(c, wsReply{Type: "response", Status: "error", Error: "malformed command"})
			continue
		}

		switch cmd.Command {
		case "subscribe":
			c.mu.Lock()
			for _, stream := range cmd.Streams {
				c.streams[stream] = true
			}
			c.mu.Unlock()
			ws.reply(c, wsReply{Type: "response", ID: cmd.ID, Status: "success"})
		case "unsubscribe":
			c.mu.Lock()
			for _, stream := range cmd.Streams {
				delete(c.streams, stream)
			}
			c.mu.Unlock()
			ws.reply(c, wsReply{Type: "response", ID: cmd.ID, Status: "success"})
		case "ping":
			ws.reply(c, wsReply{Type: "response", ID: cmd.ID, Status: "success"})
		default:
			ws.reply(c, wsReply{Type: "response", ID: cmd.ID, Status: "error", Error: "unknown command"})
		}
	}
}

func (ws *WebSocketServer) writePump(c *wsConnection) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	defer c.conn.Close()

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

func (ws *WebSocketServer) reply(c *wsConnection, r wsReply) {
	data, err := json.Marshal(r)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (ws *WebSocketServer) drop(c *wsConnection) {
	ws.mu.Lock()
	if _, ok := ws.connections[c.id]; ok {
		delete(ws.connections, c.id)
		close(c.done)
	}
	ws.mu.Unlock()
	c.conn.Close()
	ws.log.Debug("websocket disconnected", zap.String("conn", c.id))
}

// Publish broadcasts a committed event to subscribers of its stream and of
// the "all" stream. Slow consumers are skipped rather than blocking the
// engine.
func (ws *WebSocketServer) Publish(event market.Event) {
	frame, err := json.Marshal(wsEvent{Type: event.Name(), Data: event})
	if err != nil {
		ws.log.Error("failed to marshal event", zap.String("type", event.Name()), zap.Error(err))
		return
	}

	ws.mu.RLock()
	defer ws.mu.RUnlock()
	for _, c := range ws.connections {
		c.mu.RLock()
		subscribed := c.streams[event.Name()] || c.streams[StreamAll]
		c.mu.RUnlock()
		if !subscribed {
			continue
		}
		select {
		case c.send <- frame:
		default:
			ws.log.Warn("dropping event for slow subscriber", zap.String("conn", c.id))
		}
	}
}

// SubscriberCount returns the number of connections subscribed to a
// stream.
func (ws *WebSocketServer) SubscriberCount(stream string) int {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	n := 0
	for _, c := range ws.connections {
		c.mu.RLock()
		if c.streams[stream] || c.streams[StreamAll] {
			n++
		}
		c.mu.RUnlock()
	}
	return n
}

// Shutdown closes all connections.
func (ws *WebSocketServer) Shutdown() {
	ws.mu.Lock()
	conns := make([]*wsConnection, 0, len(ws.connections))
	for _, c := range ws.connections {
		conns = append(conns, c)
	}
	ws.connections = make(map[string]*wsConnection)
	ws.mu.Unlock()

	for _, c := range conns {
		close(c.done)
		c.conn.Close()
	}
}

// ListenAndServe runs the websocket endpoint until ctx is canceled.
func (ws *WebSocketServer) ListenAndServe(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/", ws)

	srv := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	ws.log.Info("websocket server listening", zap.String("addr", addr))

	select {
	case <-ctx.Done():
		ws.Shutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func newConnectionID() string {
	b, err := crypto.RandomBytes(8)
	if err != nil {
		return "conn-unknown"
	}
	return "conn-" + hex.EncodeToString(b)
}
