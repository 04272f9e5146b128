package websocket

import (
	"sync"
	"time"
)

// 事件类型常量
const (
	EventConnOnline  = "websocket.conn.online"  // 连接上线事件
	EventConnOffline = "websocket.conn.offline" // 连接下线事件
)

// ConnEvent 连接事件结构体（携带完整事件信息）
type ConnEvent struct {
	EventType   string    // 事件类型
	ConnInfo    *ConnInfo // 连接详情
	TriggerTime time.Time // 事件触发时间
	CloseReason string    // 下线原因（仅离线事件有效）
}

// ConnEventListener 应用层事件监听器接口（应用层需实现该接口）
type ConnEventListener interface {
	OnConnEvent(event ConnEvent) // 事件回调方法
}

// ConnEventBus 事件总线（负责订阅、取消订阅、发布事件）
// 发布为同步分发：下线事件的清理（在线名单移除、离线广播）必须在
// RemoveConn返回前完成，后续广播才不会读到陈旧的在线状态
type ConnEventBus struct {
	mu        sync.RWMutex
	listeners map[string]ConnEventListener // key: 监听器唯一ID
}

// NewConnEventBus 创建事件总线实例
func NewConnEventBus() *ConnEventBus {
	return &ConnEventBus{
		listeners: make(map[string]ConnEventListener),
	}
}

// Subscribe 订阅事件（应用层调用）
func (eb *ConnEventBus) Subscribe(listenerID string, listener ConnEventListener) {
	if listener == nil {
		return
	}
	eb.mu.Lock()
	eb.listeners[listenerID] = listener
	eb.mu.Unlock()
}

// Unsubscribe 取消订阅事件（应用层调用）
func (eb *ConnEventBus) Unsubscribe(listenerID string) {
	eb.mu.Lock()
	delete(eb.listeners, listenerID)
	eb.mu.Unlock()
}

// Publish 发布事件（框架内部调用，同步执行所有监听器）
func (eb *ConnEventBus) Publish(event ConnEvent) {
	eb.mu.RLock()
	listeners := make([]ConnEventListener, 0, len(eb.listeners))
	for _, listener := range eb.listeners {
		listeners = append(listeners, listener)
	}
	eb.mu.RUnlock()

	for _, listener := range listeners {
		listener.OnConnEvent(event)
	}
}
