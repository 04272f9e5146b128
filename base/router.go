package base

import (
	"github.com/dfpopp/cardmart/http"
	"github.com/dfpopp/cardmart/websocket"
)

// BaseRouter 框架根路由基类
type BaseRouter interface {
	RegisterHTTPRoutes(server *http.Server)    // 注册HTTP路由
	RegisterWSRoutes(server *websocket.Server) // 注册WebSocket路由
}

// DefaultBaseRouter 默认路由实现（应用层可嵌入复用）
type DefaultBaseRouter struct{}

// RegisterHTTPRoutes 默认HTTP路由注册（空实现，应用层重写）
func (r *DefaultBaseRouter) RegisterHTTPRoutes(server *http.Server) {}

// RegisterWSRoutes 默认WebSocket路由注册（空实现，应用层重写）
func (r *DefaultBaseRouter) RegisterWSRoutes(server *websocket.Server) {}
