package service

import (
	"github.com/dfpopp/cardmart/base"
	"github.com/dfpopp/cardmart/websocket"
)

// SessionService 连接生命周期监听器
// 订阅连接事件总线：下线即做全部清理（在线名单移除+离线广播），
// 上线不广播——未join的连接对大厅不可见
type SessionService struct {
	base.BaseService
	presence *PresenceService
}

func NewSessionService(presence *PresenceService) *SessionService {
	s := &SessionService{presence: presence}
	s.ServiceName = "session"
	s.Init()
	return s
}

// Attach 订阅连接事件总线
func (s *SessionService) Attach(bus *websocket.ConnEventBus) {
	bus.Subscribe("shop.session", s)
}

// OnConnEvent 实现websocket.ConnEventListener
func (s *SessionService) OnConnEvent(event websocket.ConnEvent) {
	switch event.EventType {
	case websocket.EventConnOnline:
		// 匿名连接未进大厅，不产生广播
		s.LogInfo("连接建立", "connID", event.ConnInfo.ConnID, "clientIP", event.ConnInfo.ClientIP)
	case websocket.EventConnOffline:
		entry := s.presence.Leave(event.ConnInfo.ConnID)
		if entry != nil {
			s.LogInfo("连接断开，已移出大厅", "connID", event.ConnInfo.ConnID, "username", entry.Username, "reason", event.CloseReason)
		} else {
			s.LogInfo("连接断开（未进大厅）", "connID", event.ConnInfo.ConnID, "reason", event.CloseReason)
		}
	}
}
