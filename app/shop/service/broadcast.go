package service

import (
	"encoding/json"

	"github.com/dfpopp/cardmart/logger"
	"github.com/dfpopp/cardmart/websocket"
	"github.com/google/uuid"
)

// Broadcaster 广播总线抽象
// 各业务服务只依赖该接口，不直接触碰连接管理器，测试时注入记录桩
type Broadcaster interface {
	BroadcastAll(action string, data interface{})
	BroadcastExcept(connID string, action string, data interface{})
	SendTo(connID string, action string, data interface{}) error
}

// ConnBroadcaster 基于websocket.ConnManager的广播实现
type ConnBroadcaster struct {
	connMgr *websocket.ConnManager
}

func NewConnBroadcaster(connMgr *websocket.ConnManager) *ConnBroadcaster {
	return &ConnBroadcaster{connMgr: connMgr}
}

// buildPushMsg 组装标准推送消息（服务端主动推送自带新request_id）
func buildPushMsg(action string, data interface{}) string {
	msg := map[string]interface{}{
		"action":     action,
		"request_id": uuid.NewString(),
		"data":       data,
	}
	msgBytes, err := json.Marshal(msg)
	if err != nil {
		logger.Error("推送消息序列化失败", "action", action, "err", err)
		return ""
	}
	return string(msgBytes)
}

// BroadcastAll 全量广播（尽力送达）
func (b *ConnBroadcaster) BroadcastAll(action string, data interface{}) {
	msg := buildPushMsg(action, data)
	if msg == "" {
		return
	}
	b.connMgr.Broadcast(msg)
}

// BroadcastExcept 广播但排除指定连接
func (b *ConnBroadcaster) BroadcastExcept(connID string, action string, data interface{}) {
	msg := buildPushMsg(action, data)
	if msg == "" {
		return
	}
	b.connMgr.BroadcastExcept(connID, msg)
}

// SendTo 定向发送
func (b *ConnBroadcaster) SendTo(connID string, action string, data interface{}) error {
	msg := buildPushMsg(action, data)
	if msg == "" {
		return nil
	}
	return b.connMgr.SendToConnID(connID, msg)
}
