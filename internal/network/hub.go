// Package network streams scene updates to browser viewers over WebSocket
// and accepts their bookmark commands.
package network

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	ws "github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Faultbox/offshore-diorama/internal/engine/scene"
	"github.com/Faultbox/offshore-diorama/internal/network/packets"
	"github.com/Faultbox/offshore-diorama/pkg/interp"
)

const (
	sendChSize     = 256
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 4096
)

// CommandHandler executes viewer commands. *bookmark.Tour satisfies it.
type CommandHandler interface {
	Select(ctx context.Context, id int) error
	Activate(ctx context.Context, id int, active bool) error
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
}

// Hub fans scene updates out to every connected viewer. The latest message
// per entity, camera and bookmark is kept so late joiners start from the
// current state.
type Hub struct {
	handler  CommandHandler
	log      *zap.Logger
	upgrader ws.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	latest  map[string][]byte
	closed  bool
}

// NewHub creates a hub dispatching viewer commands to handler. handler may
// be nil, in which case commands are rejected.
func NewHub(handler CommandHandler, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		handler: handler,
		log:     log,
		upgrader: ws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
		latest:  make(map[string][]byte),
	}
}

// SetHandler replaces the command handler.
func (h *Hub) SetHandler(handler CommandHandler) {
	h.mu.Lock()
	h.handler = handler
	h.mu.Unlock()
}

// Clients returns the number of connected viewers.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and serves the viewer until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendChSize),
		addr: r.RemoteAddr,
	}
	if !h.register(c) {
		_ = conn.Close()
		return
	}
	h.log.Info("viewer connected", zap.String("addr", c.addr))

	go c.writeLoop()
	c.readLoop(r.Context())
}

// register adds c and queues the cached state for it.
func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}

	keys := make([]string, 0, len(h.latest))
	for k := range h.latest {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		select {
		case c.send <- h.latest[k]:
		default:
		}
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// broadcast caches data under key and queues it for every viewer. Viewers
// whose queue is full are disconnected.
func (h *Hub) broadcast(key string, data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.latest[key] = data
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.log.Warn("viewer too slow, dropping", zap.String("addr", c.addr))
			delete(h.clients, c)
			close(c.send)
		}
	}
}

func (h *Hub) publish(key, msgType string, payload any) {
	data, err := packets.Marshal(msgType, payload)
	if err != nil {
		h.log.Error("encoding update", zap.String("type", msgType), zap.Error(err))
		return
	}
	h.broadcast(key, data)
}

// PublishTransform sends an entity transform to every viewer.
func (h *Hub) PublishTransform(id string, t scene.Transform) {
	h.publish(packets.TypeTransform+"/"+id, packets.TypeTransform, packets.Transform{ID: id, Transform: t})
}

// PublishCamera sends the camera pose to every viewer.
func (h *Hub) PublishCamera(pose interp.CameraPose) {
	h.publish(packets.TypeCamera, packets.TypeCamera, pose)
}

// PublishBookmark sends a bookmark state change to every viewer.
func (h *Hub) PublishBookmark(id int, name string, active bool) {
	h.publish(fmt.Sprintf("%s/%d", packets.TypeBookmark, id), packets.TypeBookmark,
		packets.Bookmark{ID: id, Name: name, Active: active})
}

// Close disconnects every viewer and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

// dispatch runs one viewer command.
func (h *Hub) dispatch(ctx context.Context, env packets.Envelope) error {
	h.mu.Lock()
	handler := h.handler
	h.mu.Unlock()
	if handler == nil {
		return fmt.Errorf("%s: no command handler", env.Type)
	}

	switch env.Type {
	case packets.TypeNext:
		return handler.Next(ctx)
	case packets.TypePrevious:
		return handler.Previous(ctx)
	case packets.TypeSelect:
		var cmd packets.Command
		if err := env.Decode(&cmd); err != nil {
			return err
		}
		return handler.Select(ctx, cmd.ID)
	case packets.TypeActivate:
		var cmd packets.Command
		if err := env.Decode(&cmd); err != nil {
			return err
		}
		return handler.Activate(ctx, cmd.ID, cmd.Active)
	default:
		return fmt.Errorf("unknown command %q", env.Type)
	}
}
