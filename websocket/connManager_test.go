package websocket

import (
	"bytes"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRWC 记录写入字节的假连接
type fakeRWC struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	closed bool
}

func (f *fakeRWC) Read(p []byte) (int, error) { return 0, io.EOF }

func (f *fakeRWC) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return 0, errors.New("write on closed conn")
	}
	return f.buf.Write(p)
}

func (f *fakeRWC) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// textMessages 解析缓冲中所有服务端文本帧的载荷
func (f *fakeRWC) textMessages(t *testing.T) []string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	data := f.buf.Bytes()
	var result []string
	for len(data) >= 2 {
		opCode := data[0] & 0x0f
		payloadLen := int(data[1] & 0x7f)
		headerLen := 2
		switch {
		case payloadLen == 126:
			require.GreaterOrEqual(t, len(data), 4)
			payloadLen = int(data[2])<<8 | int(data[3])
			headerLen = 4
		case payloadLen == 127:
			t.Fatal("测试载荷不应超过64KB")
		}
		require.GreaterOrEqual(t, len(data), headerLen+payloadLen)
		if opCode == opCodeText {
			result = append(result, string(data[headerLen:headerLen+payloadLen]))
		}
		data = data[headerLen+payloadLen:]
	}
	return result
}

// recordingListener 记录收到的连接事件
type recordingListener struct {
	mu     sync.Mutex
	events []ConnEvent
}

func (l *recordingListener) OnConnEvent(event ConnEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

func (l *recordingListener) snapshot() []ConnEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]ConnEvent(nil), l.events...)
}

func addFakeConn(cm *ConnManager) (*fakeRWC, string) {
	rwc := &fakeRWC{}
	info := cm.AddConn(NewConn(rwc), "127.0.0.1")
	return rwc, info.ConnID
}

func TestConnManagerAddAndRemove(t *testing.T) {
	cm := NewConnManager()
	listener := &recordingListener{}
	cm.GetEventBus().Subscribe("test", listener)

	_, connID := addFakeConn(cm)
	assert.Equal(t, 1, cm.GetConnCount())

	events := listener.snapshot()
	require.Len(t, events, 1)
	assert.Equal(t, EventConnOnline, events[0].EventType)
	assert.Equal(t, connID, events[0].ConnInfo.ConnID)

	cm.RemoveConn(connID, "测试关闭")
	assert.Equal(t, 0, cm.GetConnCount())

	// 下线事件在RemoveConn返回前同步派发
	events = listener.snapshot()
	require.Len(t, events, 2)
	assert.Equal(t, EventConnOffline, events[1].EventType)
	assert.Equal(t, "测试关闭", events[1].CloseReason)
}

func TestConnManagerRemoveIdempotent(t *testing.T) {
	cm := NewConnManager()
	listener := &recordingListener{}
	cm.GetEventBus().Subscribe("test", listener)

	_, connID := addFakeConn(cm)
	cm.RemoveConn(connID, "第一次")
	cm.RemoveConn(connID, "第二次")

	// 重复移除不产生第二次下线事件
	var offline int
	for _, event := range listener.snapshot() {
		if event.EventType == EventConnOffline {
			offline++
		}
	}
	assert.Equal(t, 1, offline)
}

func TestBroadcastReachesAllConns(t *testing.T) {
	cm := NewConnManager()
	rwc1, _ := addFakeConn(cm)
	rwc2, _ := addFakeConn(cm)

	cm.Broadcast(`{"action":"chat.message"}`)

	require.Contains(t, rwc1.textMessages(t), `{"action":"chat.message"}`)
	require.Contains(t, rwc2.textMessages(t), `{"action":"chat.message"}`)
}

func TestBroadcastExceptSkipsSender(t *testing.T) {
	cm := NewConnManager()
	rwc1, connID1 := addFakeConn(cm)
	rwc2, _ := addFakeConn(cm)
	rwc3, _ := addFakeConn(cm)

	cm.BroadcastExcept(connID1, `{"action":"user.joined"}`)

	assert.Empty(t, rwc1.textMessages(t))
	assert.Contains(t, rwc2.textMessages(t), `{"action":"user.joined"}`)
	assert.Contains(t, rwc3.textMessages(t), `{"action":"user.joined"}`)
}

func TestSendToConnID(t *testing.T) {
	cm := NewConnManager()
	rwc, connID := addFakeConn(cm)

	require.NoError(t, cm.SendToConnID(connID, "定向消息"))
	assert.Contains(t, rwc.textMessages(t), "定向消息")

	assert.Error(t, cm.SendToConnID("不存在的连接", "消息"))
}

func TestConnAttr(t *testing.T) {
	cm := NewConnManager()
	_, connID := addFakeConn(cm)

	cm.SetConnAttr(connID, "username", "Alice")
	val, ok := cm.GetConnAttr(connID, "username")
	require.True(t, ok)
	assert.Equal(t, "Alice", val)

	_, ok = cm.GetConnAttr("不存在的连接", "username")
	assert.False(t, ok)
}
