package websocket

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/dfpopp/cardmart/logger"
	"github.com/dfpopp/cardmart/netContext"
)

// Context WebSocket上下文（与http.Context方法签名对齐）
type Context struct {
	Conn      *Conn             // WS连接实例
	Req       *http.Request     // 握手阶段的HTTP请求
	Action    string            // WS消息action（对应HTTP的URL.Path）
	RequestId string            // 请求唯一标识（回包时原样带回，作为应答通道）
	ConnID    string            // 当前连接的唯一ID
	params    map[string]string // 中间件传递的自定义参数
	rawData   []byte            // 原始消息数据（对应HTTP请求体）
}

// NewContext 创建WS上下文
func NewContext(conn *Conn, req *http.Request, action, requestId, connID string, rawData []byte) *Context {
	return &Context{
		Conn:      conn,
		Req:       req,
		Action:    action,
		RequestId: requestId,
		rawData:   rawData,
		params:    make(map[string]string),
		ConnID:    connID,
	}
}

// -------------------------- 编译期校验 --------------------------
var (
	_ netContext.Context     = (*Context)(nil)
	_ netContext.RequestInfo = (*Context)(nil)
)

// GetConnID 获取当前连接的唯一ID（应用层控制器可调用）
func (c *Context) GetConnID() string {
	return c.ConnID
}

// -------------------------- 实现通用netContext.RequestInfo接口 --------------------------

func (c *Context) GetMethod() string {
	return c.Action // WS场景：用action作为请求方法标识
}

func (c *Context) GetPath() string {
	return c.Action
}

func (c *Context) GetClientIP() string {
	ip := c.Req.Header.Get("X-Real-IP")
	if ip == "" {
		ip = c.Req.Header.Get("X-Forwarded-For")
		if ip != "" {
			ip = strings.Split(ip, ",")[0]
		}
	}
	if ip == "" {
		remoteAddr := c.Req.RemoteAddr
		host, _, err := net.SplitHostPort(remoteAddr)
		if err == nil {
			ip = host
		} else {
			ip = remoteAddr
		}
	}
	return ip
}

func (c *Context) GetHeader(key string) string {
	return c.Req.Header.Get(key) // WS场景：从握手请求获取头信息
}

func (c *Context) GetQuery(key string) string {
	return c.Req.URL.Query().Get(key)
}

// -------------------------- 实现通用netContext.Context接口 --------------------------

func (c *Context) GetRequestInfo() netContext.RequestInfo {
	return c
}

// JSON 统一JSON回包（自动带回action与request_id，保证请求方可做应答关联）
func (c *Context) JSON(code int, data map[string]interface{}) {
	resp := make(map[string]interface{}, len(data)+2)
	for k, v := range data {
		resp[k] = v
	}
	if _, ok := resp["action"]; !ok {
		resp["action"] = c.Action
	}
	if _, ok := resp["request_id"]; !ok {
		resp["request_id"] = c.RequestId
	}
	respBytes, err := json.Marshal(resp)
	if err != nil {
		logger.Error("WS上下文JSON序列化失败：", err)
		return
	}
	_ = c.Conn.WriteMessage(string(respBytes))
}

func (c *Context) String(code int, s string) {
	_ = c.Conn.WriteMessage(s)
}

// Query 获取查询参数（从握手请求中获取）
func (c *Context) Query(key string) string {
	if c.params[key] != "" {
		return c.params[key]
	}
	return c.Req.URL.Query().Get(key)
}

// PostForm 获取参数（WS场景：从消息数据的JSON对象中取顶层字符串字段）
func (c *Context) PostForm(key string) string {
	if c.params[key] != "" {
		return c.params[key]
	}
	if len(c.rawData) > 0 {
		var data map[string]interface{}
		if err := json.Unmarshal(c.rawData, &data); err == nil {
			if v, ok := data[key].(string); ok {
				c.params[key] = v
				return v
			}
		}
	}
	return ""
}

func (c *Context) GetBody() ([]byte, error) {
	if len(c.rawData) > 0 {
		return c.rawData, nil
	}
	return []byte{}, nil
}

// BindJSON 绑定消息数据到结构体（与HTTP上下文BindJSON方法一致）
func (c *Context) BindJSON(v interface{}) error {
	if len(c.rawData) == 0 {
		return json.Unmarshal([]byte("{}"), v)
	}
	return json.Unmarshal(c.rawData, v)
}

// SetParam 手动设置参数（供中间件使用）
func (c *Context) SetParam(key, value string) {
	c.params[key] = value
}

// GetParam 获取自定义参数
func (c *Context) GetParam(key string) string {
	return c.params[key]
}

// GetRequest 返回握手阶段的HTTP请求
func (c *Context) GetRequest() *http.Request {
	return c.Req
}
