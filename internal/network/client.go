package network

import (
	"context"
	"time"

	ws "github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Faultbox/offshore-diorama/internal/network/packets"
)

// client is one connected viewer with a single write goroutine.
type client struct {
	hub  *Hub
	conn *ws.Conn
	send chan []byte
	addr string
}

// writeLoop drains send and writes messages to the socket. It returns when
// the hub closes send or a write fails.
func (c *client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(ws.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(ws.TextMessage, data); err != nil {
				c.hub.log.Debug("viewer write failed", zap.String("addr", c.addr), zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(ws.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop decodes viewer commands until the connection drops.
func (c *client) readLoop(ctx context.Context) {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
		c.hub.log.Info("viewer disconnected", zap.String("addr", c.addr))
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if ws.IsUnexpectedCloseError(err, ws.CloseGoingAway, ws.CloseNormalClosure) {
				c.hub.log.Warn("viewer read error", zap.String("addr", c.addr), zap.Error(err))
			}
			return
		}

		env, err := packets.Unmarshal(msg)
		if err == nil {
			err = c.hub.dispatch(ctx, env)
		}
		if err != nil {
			c.hub.log.Debug("viewer command rejected", zap.String("addr", c.addr), zap.Error(err))
			c.reply(packets.TypeError, packets.Error{For: env.Type, Message: err.Error()})
		}
	}
}

// reply queues a message for this viewer only.
func (c *client) reply(msgType string, payload any) {
	data, err := packets.Marshal(msgType, payload)
	if err != nil {
		return
	}
	c.hub.mu.Lock()
	defer c.hub.mu.Unlock()
	if _, ok := c.hub.clients[c]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
