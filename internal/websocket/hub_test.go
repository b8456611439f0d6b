package websocket

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	ws "github.com/coder/websocket"
	"github.com/lomoval/weekcal/internal/app"
	"github.com/lomoval/weekcal/internal/storage"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func mockClient(hub *Hub) *Client {
	return &Client{hub: hub, send: make(chan []byte, sendBufferSize), log: log.WithField("ws_client", "mock")}
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub()
	c1 := mockClient(hub)
	c2 := mockClient(hub)

	hub.Register(c1)
	hub.Register(c2)
	require.Equal(t, 2, hub.ClientCount())

	hub.Unregister(c1)
	require.Equal(t, 1, hub.ClientCount())
	hub.Unregister(c1)
	hub.Unregister(c2)
	require.Equal(t, 0, hub.ClientCount())
}

func TestNotifyBroadcasts(t *testing.T) {
	hub := NewHub()
	c1 := mockClient(hub)
	c2 := mockClient(hub)
	hub.Register(c1)
	hub.Register(c2)

	hub.Notify(context.Background(), app.Change{Action: app.ActionCreated, Event: storage.Event{ID: "42"}})

	for _, c := range []*Client{c1, c2} {
		select {
		case data := <-c.send:
			var msg Message
			require.NoError(t, json.Unmarshal(data, &msg))
			require.Equal(t, Message{Type: "event_created", Entity: "event", Action: "created", ID: "42"}, msg)
		default:
			t.Fatal("message was not delivered")
		}
	}
}

func TestBroadcastDropsWhenFull(t *testing.T) {
	hub := NewHub()
	c := mockClient(hub)
	hub.Register(c)

	for i := 0; i < sendBufferSize+5; i++ {
		hub.Broadcast(NewMessage(entityEvent, "updated", "1"))
	}
	require.Len(t, c.send, sendBufferSize)
}

func TestHandler(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(Handler(hub, nil))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := ws.Dial(ctx, "ws"+srv.URL[len("http"):], nil)
	require.NoError(t, err)
	defer conn.CloseNow() //nolint:errcheck

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Notify(ctx, app.Change{Action: app.ActionDeleted, Event: storage.Event{ID: "abc"}})

	typ, data, err := conn.Read(ctx)
	require.NoError(t, err)
	require.Equal(t, ws.MessageText, typ)
	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	require.Equal(t, "event_deleted", msg.Type)
	require.Equal(t, "abc", msg.ID)

	require.NoError(t, conn.Close(ws.StatusNormalClosure, ""))
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestUnregisterClosesConnection(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(Handler(hub, nil))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := ws.Dial(ctx, "ws"+srv.URL[len("http"):], nil)
	require.NoError(t, err)
	defer conn.CloseNow() //nolint:errcheck

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	var c *Client
	hub.mu.RLock()
	for k := range hub.clients {
		c = k
	}
	hub.mu.RUnlock()
	require.NotEmpty(t, c.id)

	hub.Unregister(c)
	_, _, err = conn.Read(ctx)
	require.Equal(t, ws.StatusNormalClosure, ws.CloseStatus(err))
	require.Equal(t, 0, hub.ClientCount())
}
