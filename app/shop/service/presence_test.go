package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresenceJoinBroadcastsRoster(t *testing.T) {
	bus := newFakeBus()
	presence := NewPresenceService(bus)

	entry := presence.Join("conn-1", "Alice")
	require.NotNil(t, entry)
	assert.Equal(t, "Alice", entry.Username)
	assert.Equal(t, "conn-1", entry.ConnID)

	// 名单广播基于写入后的状态
	rosterCall, ok := bus.lastOf("presence.list")
	require.True(t, ok)
	roster := rosterCall.Data.([]PresenceEntry)
	require.Len(t, roster, 1)
	assert.Equal(t, "Alice", roster[0].Username)

	// 入场通告不发给本人
	joinCall, ok := bus.lastOf("user.joined")
	require.True(t, ok)
	assert.Equal(t, "except", joinCall.Method)
	assert.Equal(t, "conn-1", joinCall.ConnID)
}

func TestPresenceJoinEmptyNameDefaultsAnonymous(t *testing.T) {
	bus := newFakeBus()
	presence := NewPresenceService(bus)

	entry := presence.Join("conn-1", "   ")
	assert.Equal(t, DefaultUsername, entry.Username)
}

func TestPresenceRejoinOverwritesEntry(t *testing.T) {
	bus := newFakeBus()
	presence := NewPresenceService(bus)

	presence.Join("conn-1", "Alice")
	presence.Join("conn-1", "Alice2")

	// 同一连接至多一个条目
	assert.Equal(t, 1, presence.Count())
	entry, ok := presence.GetEntry("conn-1")
	require.True(t, ok)
	assert.Equal(t, "Alice2", entry.Username)
}

func TestPresenceLeaveRemovesAndBroadcasts(t *testing.T) {
	bus := newFakeBus()
	presence := NewPresenceService(bus)
	presence.Join("conn-1", "Alice")
	presence.Join("conn-2", "Bob")
	bus.reset()

	removed := presence.Leave("conn-1")
	require.NotNil(t, removed)
	assert.Equal(t, "Alice", removed.Username)
	assert.Equal(t, 1, presence.Count())

	rosterCall, ok := bus.lastOf("presence.list")
	require.True(t, ok)
	roster := rosterCall.Data.([]PresenceEntry)
	require.Len(t, roster, 1)
	assert.Equal(t, "Bob", roster[0].Username)

	leftCall, ok := bus.lastOf("user.left")
	require.True(t, ok)
	assert.Equal(t, "all", leftCall.Method)
}

func TestPresenceLeaveIdempotent(t *testing.T) {
	bus := newFakeBus()
	presence := NewPresenceService(bus)
	presence.Join("conn-1", "Alice")

	require.NotNil(t, presence.Leave("conn-1"))
	bus.reset()

	// 二次离开：无条目、无广播
	assert.Nil(t, presence.Leave("conn-1"))
	assert.Empty(t, bus.callsOf("presence.list"))
	assert.Empty(t, bus.callsOf("user.left"))

	// 从未进厅的连接同样静默
	assert.Nil(t, presence.Leave("conn-unknown"))
	assert.Empty(t, bus.callsOf("user.left"))
}
