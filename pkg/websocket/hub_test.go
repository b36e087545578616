package websocket

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, *quartz.Mock) {
	t.Helper()
	clock := quartz.NewMock(t)
	h := NewHub(log.New(io.Discard), clock)
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = h.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-h.Done()
	})
	return h, clock
}

func recv(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case data, ok := <-c.Send:
		require.True(t, ok, "send channel closed")
		var m Message
		require.NoError(t, json.Unmarshal(data, &m))
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return Message{}
	}
}

func TestHub_BroadcastReachesRoomOnly(t *testing.T) {
	h, clock := startHub(t)

	inGame := NewClient(nil, h, GameRoom("abc"), 1, "alice")
	elsewhere := NewClient(nil, h, GameRoom("xyz"), 2, "bob")
	require.True(t, h.Register(inGame))
	require.True(t, h.Register(elsewhere))

	h.Broadcast(GameRoom("abc"), "game_update", map[string]int{"moves": 3})

	m := recv(t, inGame)
	assert.Equal(t, "game_update", m.Type)
	assert.Equal(t, map[string]any{"moves": float64(3)}, m.Payload)
	ts, err := time.Parse(time.RFC3339Nano, m.Timestamp)
	require.NoError(t, err)
	assert.True(t, clock.Now().Equal(ts))

	h.SendTo(elsewhere, "ping", nil)
	assert.Equal(t, "ping", recv(t, elsewhere).Type)
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	h, _ := startHub(t)

	c := NewClient(nil, h, GameRoom("abc"), 1, "alice")
	require.True(t, h.Register(c))
	h.Unregister(c)

	select {
	case _, ok := <-c.Send:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("send channel not closed")
	}

	// Unregistering twice and messaging a departed client are no-ops.
	h.Unregister(c)
	h.SendTo(c, "ping", nil)
}

func TestHub_StopDisconnectsClients(t *testing.T) {
	h := NewHub(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- h.Run(ctx) }()

	c := NewClient(nil, h, GameRoom("abc"), 1, "alice")
	require.True(t, h.Register(c))
	cancel()

	assert.ErrorIs(t, <-errc, context.Canceled)
	_, ok := <-c.Send
	assert.False(t, ok)

	assert.False(t, h.Register(NewClient(nil, h, GameRoom("abc"), 2, "bob")))
	h.Broadcast(GameRoom("abc"), "game_update", nil)
}

func TestHubRef(t *testing.T) {
	r := NewHubRef(nil)
	_, ok := r.Get()
	assert.False(t, ok)

	h := NewHub(nil, nil)
	r.Set(h)
	got, ok := r.Get()
	assert.True(t, ok)
	assert.Same(t, h, got)
}
