package http

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/dfpopp/cardmart/netContext"
)

// Context 自定义请求上下文
type Context struct {
	Writer http.ResponseWriter
	Req    *http.Request
	Params map[string]string
}

// NewContext 创建上下文
func NewContext(w http.ResponseWriter, r *http.Request) *Context {
	return &Context{
		Writer: w,
		Req:    r,
		Params: make(map[string]string),
	}
}

// -------------------------- 编译期校验 --------------------------
var (
	_ netContext.Context     = (*Context)(nil)
	_ netContext.RequestInfo = (*Context)(nil)
)

// JSON 返回JSON响应
func (c *Context) JSON(code int, data map[string]interface{}) {
	c.Writer.Header().Set("Content-Type", "application/json;charset=utf-8")
	c.Writer.WriteHeader(code)
	_ = json.NewEncoder(c.Writer).Encode(data)
}

// String 返回字符串响应
func (c *Context) String(code int, s string) {
	c.Writer.Header().Set("Content-Type", "application/json;charset=utf-8")
	c.Writer.WriteHeader(code)
	_, _ = c.Writer.Write([]byte(s))
}

// Query 获取URL参数
func (c *Context) Query(key string) string {
	if c.Params[key] != "" {
		return c.Params[key]
	}
	return c.Req.URL.Query().Get(key)
}

// PostForm 获取POST表单参数
func (c *Context) PostForm(key string) string {
	return c.Req.PostFormValue(key)
}

// GetBody 读取请求体
func (c *Context) GetBody() ([]byte, error) {
	return io.ReadAll(c.Req.Body)
}

// BindJSON 绑定JSON请求体到结构体
func (c *Context) BindJSON(v interface{}) error {
	return json.NewDecoder(c.Req.Body).Decode(v)
}

// SetParam 手动设置参数（供中间件使用）
func (c *Context) SetParam(key, value string) {
	c.Params[key] = value
}

// GetParam 获取自定义参数
func (c *Context) GetParam(key string) string {
	return c.Params[key]
}

// -------------------------- 实现通用netContext.RequestInfo接口 --------------------------

func (c *Context) GetRequestInfo() netContext.RequestInfo {
	return c
}

func (c *Context) GetMethod() string {
	return c.Req.Method
}

func (c *Context) GetPath() string {
	return c.Req.URL.Path
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
		host, _, err := net.SplitHostPort(c.Req.RemoteAddr)
		if err == nil {
			ip = host
		} else {
			ip = c.Req.RemoteAddr
		}
	}
	return ip
}

func (c *Context) GetHeader(key string) string {
	return c.Req.Header.Get(key)
}

func (c *Context) GetQuery(key string) string {
	return c.Req.URL.Query().Get(key)
}
