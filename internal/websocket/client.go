package websocket

import (
	"context"
	"errors"
	"time"

	ws "github.com/coder/websocket"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	sendBufferSize = 16
	pingInterval   = 30 * time.Second
	writeTimeout   = 5 * time.Second
)

// Client is one subscriber of the change feed. Incoming frames are ignored.
type Client struct {
	id   string
	hub  *Hub
	conn *ws.Conn
	send chan []byte
	log  *log.Entry
}

func NewClient(hub *Hub, conn *ws.Conn, remote string) *Client {
	id := uuid.NewString()
	return &Client{
		id:   id,
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		log:  log.WithField("ws_client", id).WithField("remote", remote),
	}
}

// Run serves the connection until the peer leaves, ctx is done or the hub
// drops the client.
func (c *Client) Run(ctx context.Context) {
	c.hub.Register(c)
	defer c.hub.Unregister(c)
	c.log.Debugf("websocket client connected, %d online", c.hub.ClientCount())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		defer cancel()
		c.drain(ctx)
	}()

	err := c.deliver(ctx)
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		c.log.Debug("websocket client disconnected")
	default:
		c.log.Warnf("websocket client dropped: %v", err)
	}
}

// drain reads until the connection fails, which is how a close is noticed.
func (c *Client) drain(ctx context.Context) {
	for {
		if _, _, err := c.conn.Read(ctx); err != nil {
			if status := ws.CloseStatus(err); status != ws.StatusNormalClosure && status != ws.StatusGoingAway {
				c.log.Debugf("websocket read stopped: %v", err)
			}
			return
		}
	}
}

// deliver writes queued messages and keeps the connection alive with pings.
// A closed send channel means the hub let the client go.
func (c *Client) deliver(ctx context.Context) error {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return c.conn.Close(ws.StatusNormalClosure, "")
			}
			if err := c.write(ctx, msg); err != nil {
				return err
			}
		case <-ticker.C:
			if err := c.conn.Ping(ctx); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Client) write(ctx context.Context, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return c.conn.Write(ctx, ws.MessageText, msg)
}
