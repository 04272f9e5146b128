package http

import (
	"net/http"
)

// Router HTTP路由器（负责路由注册、映射存储与中间件链构建）
type Router struct {
	mux               *http.ServeMux                    // 系统ServeMux，负责HTTP请求分发
	handlers          map[string]map[string]HandlerFunc // path -> method -> 处理器
	globalMiddlewares []MiddlewareFunc                  // 全局中间件
}

// NewRouter 创建HTTP路由器实例
func NewRouter() *Router {
	return &Router{
		mux:               http.NewServeMux(),
		handlers:          make(map[string]map[string]HandlerFunc),
		globalMiddlewares: make([]MiddlewareFunc, 0),
	}
}

// ServeHTTP 实现http.Handler接口，兼容系统HTTP服务
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Use 注册全局中间件
func (r *Router) Use(middlewares ...MiddlewareFunc) {
	r.globalMiddlewares = append(r.globalMiddlewares, middlewares...)
}

// buildChain 构建中间件链（内部方法）
func (r *Router) buildChain(handler HandlerFunc, localMiddlewares []MiddlewareFunc) HandlerFunc {
	allMiddlewares := append(r.globalMiddlewares, localMiddlewares...)
	finalHandler := handler

	// 倒序构建中间件链
	for i := len(allMiddlewares) - 1; i >= 0; i-- {
		currentMid := allMiddlewares[i]
		currentNext := finalHandler
		finalHandler = currentMid(currentNext)
	}
	return finalHandler
}

// Handle 注册通用路由（同一path可挂不同method，ServeMux只注册一次）
func (r *Router) Handle(method, path string, handler HandlerFunc, localMiddlewares ...MiddlewareFunc) {
	chainHandler := r.buildChain(handler, localMiddlewares)
	methodMap, exists := r.handlers[path]
	if !exists {
		methodMap = make(map[string]HandlerFunc)
		r.handlers[path] = methodMap
		r.mux.HandleFunc(path, func(w http.ResponseWriter, req *http.Request) {
			ctx := NewContext(w, req)
			h, ok := r.handlers[path][req.Method]
			if !ok {
				// OPTIONS由CORS中间件处理，其余未注册方法统一405
				if req.Method == http.MethodOptions {
					if anyH := firstHandler(r.handlers[path]); anyH != nil {
						anyH(ctx)
						return
					}
				}
				ctx.JSON(http.StatusMethodNotAllowed, map[string]interface{}{
					"code": 405,
					"msg":  "请求方法不支持",
					"data": nil,
				})
				return
			}
			h(ctx)
		})
	}
	methodMap[method] = chainHandler
}

func firstHandler(methodMap map[string]HandlerFunc) HandlerFunc {
	for _, h := range methodMap {
		return h
	}
	return nil
}

// GET 快捷注册GET请求路由
func (r *Router) GET(path string, handler HandlerFunc, localMiddlewares ...MiddlewareFunc) {
	r.Handle("GET", path, handler, localMiddlewares...)
}

// POST 快捷注册POST请求路由
func (r *Router) POST(path string, handler HandlerFunc, localMiddlewares ...MiddlewareFunc) {
	r.Handle("POST", path, handler, localMiddlewares...)
}

// PUT 快捷注册PUT请求路由
func (r *Router) PUT(path string, handler HandlerFunc, localMiddlewares ...MiddlewareFunc) {
	r.Handle("PUT", path, handler, localMiddlewares...)
}

// DELETE 快捷注册DELETE请求路由
func (r *Router) DELETE(path string, handler HandlerFunc, localMiddlewares ...MiddlewareFunc) {
	r.Handle("DELETE", path, handler, localMiddlewares...)
}
