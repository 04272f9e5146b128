package service

import (
	"sync"
	"testing"

	"github.com/dfpopp/cardmart/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTradeFixture() (*TradeService, *fakeBus) {
	bus := newFakeBus()
	activity := NewActivityService(bus, nil)
	return NewTradeService(bus, activity, nil), bus
}

func TestTradeCreateValidation(t *testing.T) {
	trade, bus := newTradeFixture()

	_, bizErr := trade.Create("Alice", "", "黑魔导")
	require.NotNil(t, bizErr)
	assert.Equal(t, response.CodeValidation, bizErr.Code)

	_, bizErr = trade.Create("Alice", "青眼白龙", "  ")
	require.NotNil(t, bizErr)
	assert.Equal(t, response.CodeValidation, bizErr.Code)

	// 校验失败不产生任何广播
	assert.Empty(t, bus.callsOf("trade.created"))
}

func TestTradeCreateAndList(t *testing.T) {
	trade, bus := newTradeFixture()

	created, bizErr := trade.Create("Alice", "青眼白龙", "黑魔导")
	require.Nil(t, bizErr)
	assert.Equal(t, TradeStatusPending, created.Status)
	assert.NotEmpty(t, created.ID)

	calls := bus.callsOf("trade.created")
	require.Len(t, calls, 1)

	list := trade.List()
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
}

func TestTradeAcceptMissingIDFails(t *testing.T) {
	trade, bus := newTradeFixture()

	_, bizErr := trade.Accept("Bob", "no-such-id")
	require.NotNil(t, bizErr)
	assert.Equal(t, response.CodeNotFound, bizErr.Code)
	assert.Empty(t, bus.callsOf("trade.updated"))
}

func TestTradeSecondAcceptIsSilent(t *testing.T) {
	trade, bus := newTradeFixture()
	created, _ := trade.Create("Alice", "青眼白龙", "黑魔导")
	bus.reset()

	first, bizErr := trade.Accept("Bob", created.ID)
	require.Nil(t, bizErr)
	assert.Equal(t, TradeStatusAccepted, first.Status)
	assert.Equal(t, "Bob", first.AcceptedBy)
	assert.NotEmpty(t, first.AcceptedAt)
	require.Len(t, bus.callsOf("trade.updated"), 1)

	// 重复接受：返回当前态，不再广播，胜者与成交时间不变
	second, bizErr := trade.Accept("Carol", created.ID)
	require.Nil(t, bizErr)
	assert.Equal(t, "Bob", second.AcceptedBy)
	assert.Equal(t, first.AcceptedAt, second.AcceptedAt)
	assert.Len(t, bus.callsOf("trade.updated"), 1)
}

func TestTradeConcurrentAcceptSingleWinner(t *testing.T) {
	trade, bus := newTradeFixture()
	created, _ := trade.Create("Alice", "青眼白龙", "黑魔导")
	bus.reset()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, _ = trade.Accept("抢单人", created.ID)
		}(i)
	}
	wg.Wait()

	// 并发竞抢至多一次状态迁移广播
	assert.Len(t, bus.callsOf("trade.updated"), 1)
}
