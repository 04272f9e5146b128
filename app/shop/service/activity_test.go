package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityPushBroadcastsSingleEntry(t *testing.T) {
	bus := newFakeBus()
	activity := NewActivityService(bus, nil)

	entry := activity.Push(ActivityProduct, "Alice 上架了 青眼白龙")
	assert.Equal(t, int64(1), entry.ID)
	assert.Equal(t, ActivityProduct, entry.Type)
	assert.NotEmpty(t, entry.CreatedAt)

	calls := bus.callsOf("activity.new")
	require.Len(t, calls, 1)
	pushed := calls[0].Data.(ActivityEntry)
	assert.Equal(t, entry.ID, pushed.ID)
}

func TestActivityCapEvictsOldest(t *testing.T) {
	bus := newFakeBus()
	activity := NewActivityService(bus, nil)

	for i := 1; i <= 25; i++ {
		activity.Push(ActivityCart, fmt.Sprintf("消息%d", i))
	}

	replay := activity.Replay()
	require.Len(t, replay, ActivityCap)

	// 最新在前：25..6
	assert.Equal(t, int64(25), replay[0].ID)
	assert.Equal(t, int64(6), replay[len(replay)-1].ID)
	for i := 1; i < len(replay); i++ {
		assert.Equal(t, replay[i-1].ID-1, replay[i].ID)
	}
}

func TestActivityReplayIsCopy(t *testing.T) {
	bus := newFakeBus()
	activity := NewActivityService(bus, nil)
	activity.Push(ActivityTrade, "一条记录")

	replay := activity.Replay()
	replay[0].Message = "篡改"

	fresh := activity.Replay()
	assert.Equal(t, "一条记录", fresh[0].Message)
}

func TestActivityLenNeverExceedsCap(t *testing.T) {
	bus := newFakeBus()
	activity := NewActivityService(bus, nil)

	for i := 0; i < ActivityCap*3; i++ {
		activity.Push(ActivityStock, "库存变化")
		assert.LessOrEqual(t, activity.Len(), ActivityCap)
	}
}
