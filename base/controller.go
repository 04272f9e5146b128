package base

import (
	"errors"

	"github.com/dfpopp/cardmart/http"
	"github.com/dfpopp/cardmart/logger"
	"github.com/dfpopp/cardmart/netContext"
	"github.com/dfpopp/cardmart/response"
	"github.com/dfpopp/cardmart/websocket"
)

// BaseController 框架根控制器基类
type BaseController struct {
	Ctx          netContext.Context // 注入HTTP/WS上下文
	cachedConnID string             // 缓存当前连接ID，避免重复断言
	Log          logger.Logger      // 日志实例
}

// Init 初始化控制器（框架自动调用，注入上下文）
func (c *BaseController) Init(ctx netContext.Context) {
	if c == nil {
		logger.Error("BaseController 未初始化（指针为nil），无法执行初始化")
		return
	}
	c.Ctx = ctx
	c.Log = logger.GetLogger()
	// 兼容WS和HTTP的路径/action打印
	if c.Log.GetEnv() != "prod" {
		if httpCtx, ok := ctx.(*http.Context); ok {
			c.Log.Info("控制器初始化：", httpCtx.Req.URL.Path)
		} else if wsCtx, ok := ctx.(*websocket.Context); ok {
			c.Log.Info("控制器初始化：", wsCtx.Action)
		}
	}
}

// WsInit WS专属初始化控制器（框架自动调用，注入上下文）
func (c *BaseController) WsInit(ctx netContext.Context) {
	if c == nil {
		logger.Error("BaseController 未初始化（指针为nil），无法执行初始化")
		return
	}
	c.Ctx = ctx
	c.Log = logger.GetLogger()
	c.initCachedConnID()
	if c.Log.GetEnv() != "prod" {
		if wsCtx, ok := ctx.(*websocket.Context); ok {
			c.Log.Info("控制器初始化：", wsCtx.Action)
		}
	}
}

// initCachedConnID 初始化并缓存当前连接ID（内部方法，避免重复类型断言）
func (c *BaseController) initCachedConnID() {
	if c.Ctx == nil {
		c.cachedConnID = ""
		logger.Warn("BaseController 上下文未注入，无法获取ConnID")
		return
	}
	if wsCtx, ok := c.Ctx.(*websocket.Context); ok {
		c.cachedConnID = wsCtx.GetConnID()
	} else {
		// 非WS上下文（HTTP），ConnID置空
		c.cachedConnID = ""
	}
}

// GetConnID 获取当前连接ID（应用层直接调用）
func (c *BaseController) GetConnID() string {
	if c == nil {
		logger.Error("BaseController 未初始化（指针为nil），无法获取ConnID")
		return ""
	}
	if c.cachedConnID == "" {
		c.initCachedConnID()
	}
	return c.cachedConnID
}

// Success 统一成功响应（JSON格式）
func (c *BaseController) Success(data interface{}, msg ...string) {
	if c == nil {
		logger.Error("BaseController 未初始化（指针为nil），无法执行Success响应")
		return
	}
	if c.Ctx == nil {
		logger.Error("调用框架BaseController.Success 之前未设置上下文")
		return
	}
	message := "操作成功"
	if len(msg) > 0 && msg[0] != "" {
		message = msg[0]
	}
	c.Ctx.JSON(200, map[string]interface{}{
		"code": response.CodeSuccess,
		"msg":  message,
		"data": data,
	})
}

// DataSuccess 统一成功响应（JSON格式，带总数）
func (c *BaseController) DataSuccess(data interface{}, count int64) {
	if c == nil {
		logger.Error("BaseController 未初始化（指针为nil），无法执行DataSuccess响应")
		return
	}
	if c.Ctx == nil {
		logger.Error("调用框架BaseController.DataSuccess 之前未设置上下文")
		return
	}
	c.Ctx.JSON(200, map[string]interface{}{
		"code":  response.CodeSuccess,
		"msg":   "操作成功",
		"data":  data,
		"count": count,
	})
}

// Error 统一失败响应（JSON格式）
func (c *BaseController) Error(code int, msg string) {
	if c == nil {
		logger.Error("BaseController 未初始化（指针为nil），无法执行Error响应")
		return
	}
	if c.Ctx == nil {
		logger.Error("调用框架BaseController.Error 之前未设置上下文")
		return
	}
	c.Ctx.JSON(200, map[string]interface{}{
		"code": code,
		"msg":  msg,
		"data": nil,
	})
	reqInfo := c.Ctx.GetRequestInfo()
	if c.Log.GetEnv() != "prod" {
		c.Log.Error("接口响应失败：", "code=", code, "msg=", msg, "path=", reqInfo.GetPath())
	}
}

// RespText 统一响应（字符串格式）
func (c *BaseController) RespText(msg string) {
	if c == nil {
		logger.Error("BaseController 未初始化（指针为nil），无法执行RespText响应")
		return
	}
	if c.Ctx == nil {
		logger.Error("调用框架BaseController.RespText 之前未设置上下文")
		return
	}
	c.Ctx.String(200, msg)
}

// InternalError 服务器内部错误响应
func (c *BaseController) InternalError() {
	if c == nil {
		logger.Error("BaseController 未初始化（指针为nil），无法执行InternalError响应")
		return
	}
	c.Error(response.CodeInternal, "服务器内部错误")
}

// GetQuery 获取URL查询参数
func (c *BaseController) GetQuery(key string) string {
	if c == nil {
		logger.Error("BaseController 未初始化（指针为nil），无法执行GetQuery")
		return ""
	}
	if c.Ctx == nil {
		logger.Error("调用框架BaseController.GetQuery 之前未设置上下文")
		return ""
	}
	return c.Ctx.Query(key)
}

// GetPostForm 获取POST表单参数
func (c *BaseController) GetPostForm(key string) string {
	if c == nil {
		logger.Error("BaseController 未初始化（指针为nil），无法执行GetPostForm")
		return ""
	}
	if c.Ctx == nil {
		logger.Error("调用框架BaseController.GetPostForm 之前未设置上下文")
		return ""
	}
	return c.Ctx.PostForm(key)
}

func (c *BaseController) GetBody() ([]byte, error) {
	if c == nil {
		return nil, errors.New("BaseController 未初始化（指针为nil），无法读取请求体")
	}
	if c.Ctx == nil {
		return nil, errors.New("调用框架BaseController.GetBody 之前未设置上下文")
	}
	return c.Ctx.GetBody()
}

// BindJSON 绑定JSON请求体到结构体
func (c *BaseController) BindJSON(v interface{}) error {
	if c == nil {
		return errors.New("BaseController 未初始化（指针为nil），无法绑定JSON")
	}
	if c.Ctx == nil {
		return errors.New("调用框架BaseController.BindJSON 之前未设置上下文")
	}
	return c.Ctx.BindJSON(v)
}
