package websocket

import (
	"errors"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ordermetrics/internal/config"
)

func TestNewClient_Keepalive(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.WebSocketConfig
		wantPing time.Duration
		wantPong time.Duration
	}{
		{
			name:     "defaults",
			cfg:      config.WebSocketConfig{},
			wantPing: 54 * time.Second,
			wantPong: 60 * time.Second,
		},
		{
			name:     "configured",
			cfg:      config.WebSocketConfig{PingPeriod: 20 * time.Second, PongWait: 30 * time.Second},
			wantPing: 20 * time.Second,
			wantPong: 30 * time.Second,
		},
		{
			name:     "ping not shorter than pong wait",
			cfg:      config.WebSocketConfig{PingPeriod: 90 * time.Second, PongWait: 60 * time.Second},
			wantPing: 54 * time.Second,
			wantPong: 60 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := quietLogger()
			c := NewClient(nil, newMockConnection(), "", tt.cfg, logger)

			assert.Equal(t, tt.wantPing, c.pingPeriod)
			assert.Equal(t, tt.wantPong, c.pongWait)
			assert.Equal(t, "127.0.0.1:50000", c.remoteAddr)
			assert.NotEmpty(t, c.ID())
		})
	}
}

func TestClient_WritePump(t *testing.T) {
	c, conn := newTestClient(nil, "")

	c.send <- []byte(`{"type":"connect"}`)
	c.send <- []byte(`{"type":"upload:completed"}`)
	close(c.send)

	c.WritePump()

	frames := conn.frames()
	require.Len(t, frames, 3)
	assert.Equal(t, websocket.TextMessage, frames[0].Type)
	assert.JSONEq(t, `{"type":"connect"}`, string(frames[0].Data))
	assert.Equal(t, websocket.TextMessage, frames[1].Type)
	assert.Equal(t, websocket.CloseMessage, frames[2].Type)
	assert.True(t, conn.isClosed())
}

func TestClient_WritePumpStopsOnWriteError(t *testing.T) {
	c, conn := newTestClient(nil, "")
	conn.writeErr = errors.New("broken pipe")

	c.send <- []byte(`{}`)

	done := make(chan struct{})
	go func() {
		c.WritePump()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("write pump did not stop")
	}
	assert.True(t, conn.isClosed())
	assert.Empty(t, conn.frames())
}

func TestClient_ReadPumpUnregistersOnClose(t *testing.T) {
	hub := startHub(t, nil)
	c, conn := newTestClient(hub, "req-3")
	require.NoError(t, hub.Register(c))
	receive(t, c)

	done := make(chan struct{})
	go func() {
		c.ReadPump()
		close(done)
	}()

	conn.reads <- heartbeat
	conn.reads <- []byte(`{"type":"subscribe"}`)
	assert.Eventually(t, func() bool { return len(conn.reads) == 0 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, hub.ClientCount())

	require.NoError(t, conn.Close())

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("read pump did not stop")
	}
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)

	conn.mu.Lock()
	assert.Equal(t, int64(maxMessageSize), conn.readLimit)
	conn.mu.Unlock()
}
