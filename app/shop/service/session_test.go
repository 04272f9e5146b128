package service

import (
	"testing"
	"time"

	"github.com/dfpopp/cardmart/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionOfflineCleansPresence(t *testing.T) {
	bus := newFakeBus()
	presence := NewPresenceService(bus)
	session := NewSessionService(presence)

	presence.Join("conn-1", "Alice")
	bus.reset()

	session.OnConnEvent(websocket.ConnEvent{
		EventType:   websocket.EventConnOffline,
		ConnInfo:    &websocket.ConnInfo{ConnID: "conn-1", ClientIP: "127.0.0.1", CreateAt: time.Now()},
		TriggerTime: time.Now(),
		CloseReason: "客户端断开",
	})

	assert.Equal(t, 0, presence.Count())
	require.Len(t, bus.callsOf("user.left"), 1)
	require.Len(t, bus.callsOf("presence.list"), 1)
}

func TestSessionOfflineWithoutJoinIsSilent(t *testing.T) {
	bus := newFakeBus()
	presence := NewPresenceService(bus)
	session := NewSessionService(presence)

	session.OnConnEvent(websocket.ConnEvent{
		EventType:   websocket.EventConnOffline,
		ConnInfo:    &websocket.ConnInfo{ConnID: "conn-ghost"},
		TriggerTime: time.Now(),
		CloseReason: "读取失败",
	})

	assert.Empty(t, bus.callsOf("user.left"))
	assert.Empty(t, bus.callsOf("presence.list"))
}

func TestSessionOnlineDoesNotBroadcast(t *testing.T) {
	bus := newFakeBus()
	presence := NewPresenceService(bus)
	session := NewSessionService(presence)

	session.OnConnEvent(websocket.ConnEvent{
		EventType:   websocket.EventConnOnline,
		ConnInfo:    &websocket.ConnInfo{ConnID: "conn-1"},
		TriggerTime: time.Now(),
	})

	// 未join的连接对大厅不可见
	assert.Empty(t, bus.calls)
	assert.Equal(t, 0, presence.Count())
}
