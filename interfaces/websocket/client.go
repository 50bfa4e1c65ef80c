package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"flowengine/application/dispatch"
	apperrors "flowengine/pkg/errors"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	defaultPingInterval = 54 * time.Second
	defaultReadLimit    = 4 << 20

	// Send buffer size
	sendBufferSize = 256
)

// Client is one WebSocket connection. Every text frame is a request envelope;
// responses are written as they complete, so they may arrive out of order.
type Client struct {
	id     string
	conn   *websocket.Conn
	pool   Submitter
	config ServerConfig
	send   chan []byte
	logger *zap.Logger

	ctx      context.Context
	cancel   context.CancelFunc
	inflight sync.WaitGroup
}

// NewClient creates a new WebSocket client
func NewClient(conn *websocket.Conn, pool Submitter, config ServerConfig, logger *zap.Logger) *Client {
	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		id:     id,
		conn:   conn,
		pool:   pool,
		config: config,
		send:   make(chan []byte, sendBufferSize),
		logger: logger.With(zap.String("connectionID", id)),
		ctx:    ctx,
		cancel: cancel,
	}
}

// ID returns the client's connection ID
func (c *Client) ID() string {
	return c.id
}

// Run pumps frames until the peer goes away. Requests still waiting in the
// pool when the connection closes are abandoned.
func (c *Client) Run() {
	written := make(chan struct{})
	go func() {
		defer close(written)
		c.writePump()
	}()

	c.readPump()

	c.cancel()
	c.inflight.Wait()
	close(c.send)
	<-written
	c.logger.Info("WebSocket connection closed")
}

func (c *Client) pongWait() time.Duration {
	return c.config.PingInterval * 10 / 9
}

func (c *Client) readPump() {
	defer c.conn.Close()

	c.conn.SetReadLimit(c.config.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.pongWait()))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.pongWait()))
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("WebSocket read error", zap.Error(err))
			}
			return
		}

		if messageType != websocket.TextMessage {
			c.enqueue(dispatch.NewErrorResponse("", apperrors.NewValidationError("binary frames are not supported")))
			continue
		}
		c.handleFrame(message)
	}
}

func (c *Client) handleFrame(message []byte) {
	var req dispatch.Request
	if err := json.Unmarshal(message, &req); err != nil {
		c.enqueue(dispatch.NewErrorResponse("",
			apperrors.NewValidationError(fmt.Sprintf("invalid request envelope: %v", err))))
		return
	}

	replies, err := c.pool.Submit(c.ctx, req)
	if err != nil {
		c.enqueue(dispatch.NewErrorResponse(req.ID, err))
		return
	}

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		select {
		case resp := <-replies:
			c.enqueue(resp)
		case <-c.ctx.Done():
			c.logger.Debug("Dropping response for closed connection", zap.String("id", req.ID))
		}
	}()
}

func (c *Client) enqueue(resp dispatch.Response) {
	data, err := dispatch.Encode(resp)
	if err != nil {
		c.logger.Error("Failed to encode response", zap.String("id", resp.ID), zap.Error(err))
	}

	select {
	case c.send <- data:
	case <-c.ctx.Done():
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Warn("Failed to write message", zap.Error(err))
				c.cancel()
				c.drain()
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug("Failed to send ping", zap.Error(err))
				c.cancel()
				c.drain()
				return
			}
		}
	}
}

// drain discards queued messages until Run closes the send channel
func (c *Client) drain() {
	c.conn.Close()
	for range c.send {
	}
}
