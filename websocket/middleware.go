package websocket

import (
	"github.com/dfpopp/cardmart/logger"
	"github.com/dfpopp/cardmart/response"
)

// HandlerFunc WS处理器函数（与http.HandlerFunc对齐）
type HandlerFunc func(*Context)

// MiddlewareFunc WS中间件函数（与http.MiddlewareFunc对齐）
type MiddlewareFunc func(HandlerFunc) HandlerFunc

// Recovery 异常恢复中间件：单条坏消息不能拖垮进程，统一回包通用失败
func Recovery() MiddlewareFunc {
	return func(next HandlerFunc) HandlerFunc {
		return func(c *Context) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("WS请求异常：", err, "action：", c.Action, "连接ID：", c.ConnID)
					c.JSON(200, map[string]interface{}{
						"code": response.CodeInternal,
						"msg":  "服务器内部错误",
						"data": nil,
					})
				}
			}()
			next(c)
		}
	}
}
