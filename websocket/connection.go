package websocket

import (
	"context"
	"errors"
	"sync"
	"time"

	ws "github.com/gorilla/websocket"

	"github.com/banterhub/banter/logging"
)

// Dispatcher consumes inbound frames and connection teardown. The chat
// router satisfies it.
type Dispatcher interface {
	Dispatch(connID string, raw []byte)
	HandleDisconnect(connID string)
}

type Options struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
}

func DefaultOptions() Options {
	return Options{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  512 * 1024,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
}

// Connection is one live websocket session: a read pump feeding the
// dispatcher and a write pump draining the send queue. It implements
// domain.Client.
type Connection struct {
	id         string
	ctx        context.Context
	cancel     context.CancelFunc
	conn       *ws.Conn
	dispatcher Dispatcher
	logger     *logging.Logger
	options    Options
	sendChan   chan []byte
	mutex      sync.RWMutex
	closed     bool
}

func NewConnection(id string, conn *ws.Conn, dispatcher Dispatcher, logger *logging.Logger, options Options) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	if options.PingInterval <= 0 {
		options.PingInterval = DefaultOptions().PingInterval
	}

	return &Connection{
		id:         id,
		ctx:        ctx,
		cancel:     cancel,
		conn:       conn,
		dispatcher: dispatcher,
		logger:     logger,
		options:    options,
		sendChan:   make(chan []byte, 256),
	}
}

func (c *Connection) ID() string {
	return c.id
}

func (c *Connection) Send(ctx context.Context, message []byte) error {
	// Holding the read lock for the whole send keeps Close from
	// closing sendChan underneath the select.
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if c.closed {
		return errors.New("connection is closed")
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.ctx.Done():
		return errors.New("connection context done")
	case c.sendChan <- message:
		return nil
	default:
		return errors.New("send channel full or blocked")
	}
}

func (c *Connection) Close() error {
	c.mutex.Lock()
	if c.closed {
		c.mutex.Unlock()
		return nil
	}
	c.closed = true
	c.cancel()
	close(c.sendChan)
	c.mutex.Unlock()

	c.logger.Debug("closing websocket connection", "client_id", c.id)

	if err := c.conn.Close(); err != nil {
		c.logger.Error("error closing websocket connection", "client_id", c.id, "error", err)
		return err
	}

	return nil
}

// Start runs both pumps and blocks until the read pump exits, which is
// how the remote endpoint's disconnect surfaces.
func (c *Connection) Start(ctx context.Context) {
	done := make(chan struct{})

	go func() {
		defer close(done)
		c.readPump(ctx)
	}()

	go c.writePump(ctx)

	<-done
	c.logger.Debug("connection closed", "client_id", c.id)
}

func (c *Connection) readPump(ctx context.Context) {
	defer func() {
		c.Close()
	}()

	c.conn.SetReadLimit(c.options.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.options.ReadTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.options.ReadTimeout))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ctx.Done():
			return
		default:
			messageType, message, err := c.conn.ReadMessage()
			if err != nil {
				if ws.IsUnexpectedCloseError(err, ws.CloseGoingAway, ws.CloseAbnormalClosure, ws.CloseNormalClosure) {
					c.logger.Error("websocket unexpected close error", "client_id", c.id, "error", err)
				} else {
					c.logger.Debug("websocket connection closed", "client_id", c.id, "error", err)
				}
				return
			}

			if messageType != ws.TextMessage && messageType != ws.BinaryMessage {
				continue
			}

			c.dispatcher.Dispatch(c.id, message)
		}
	}
}

func (c *Connection) writePump(ctx context.Context) {
	ticker := time.NewTicker(c.options.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ctx.Done():
			return
		case message, ok := <-c.sendChan:
			c.conn.SetWriteDeadline(time.Now().Add(c.options.WriteTimeout))

			if !ok {
				c.conn.WriteMessage(ws.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(ws.TextMessage, message); err != nil {
				c.logger.Error("websocket write error", "client_id", c.id, "error", err)
				return
			}

			// Drain whatever else is queued before blocking again.
			n := len(c.sendChan)
			for range n {
				select {
				case msg := <-c.sendChan:
					if err := c.conn.WriteMessage(ws.TextMessage, msg); err != nil {
						c.logger.Error("websocket write error", "client_id", c.id, "error", err)
						return
					}
				default:
				}
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.options.WriteTimeout))
			if err := c.conn.WriteMessage(ws.PingMessage, nil); err != nil {
				c.logger.Error("websocket ping error", "client_id", c.id, "error", err)
				return
			}
		}
	}
}
