package brackets

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForRoom(t *testing.T, h *Hub, room string, size int) {
	t.Helper()
	require.Eventually(t, func() bool { return h.RoomSize(room) == size }, time.Second, 5*time.Millisecond)
}

func TestHub_BroadcastToRoom(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()

	watcher := &Client{Hub: hub, Send: make(chan []byte, 1), Room: TournamentRoom(7)}
	other := &Client{Hub: hub, Send: make(chan []byte, 1), Room: TournamentRoom(8)}
	hub.Register <- watcher
	hub.Register <- other
	waitForRoom(t, hub, "tournament_7", 1)
	waitForRoom(t, hub, "tournament_8", 1)

	hub.BroadcastToRoom(TournamentRoom(7), WebSocketMessage{Type: MessageMatchUpdated, Payload: map[string]int{"match_id": 3}})

	select {
	case raw := <-watcher.Send:
		var msg WebSocketMessage
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, MessageMatchUpdated, msg.Type)
	case <-time.After(time.Second):
		t.Fatal("watcher did not receive the broadcast")
	}
	assert.Empty(t, other.Send)

	hub.Unregister <- watcher
	waitForRoom(t, hub, "tournament_7", 0)
	_, open := <-watcher.Send
	assert.False(t, open, "send channel is closed on unregister")

	// rooms without clients are ignored
	hub.BroadcastToRoom(TournamentRoom(7), WebSocketMessage{Type: MessageBracketDeleted})
}

func TestHub_SlowClientIsSkipped(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()

	slow := &Client{Hub: hub, Send: make(chan []byte), Room: TournamentRoom(1)}
	hub.Register <- slow
	waitForRoom(t, hub, "tournament_1", 1)

	done := make(chan struct{})
	go func() {
		hub.BroadcastToRoom(TournamentRoom(1), WebSocketMessage{Type: MessageBracketUpdated})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a client that is not reading")
	}
}
