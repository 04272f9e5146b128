package websocket

import (
	"context"
	"crypto/sha1"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dfpopp/cardmart/config"
	"github.com/dfpopp/cardmart/logger"
)

var ErrServerClosed = http.ErrServerClosed

// 帧操作码定义
const (
	opCodeContinuation = 0x0
	opCodeText         = 0x1
	opCodeBinary       = 0x2
	opCodeClose        = 0x8
	opCodePing         = 0x9
	opCodePong         = 0xA
)

// ServerConfig WS服务器配置
type ServerConfig struct {
	Addr             string        // 监听地址（ip:port）
	ReadTimeout      time.Duration // 读超时
	WriteTimeout     time.Duration // 写超时
	Path             string        // WebSocket监听路径（如：/ws）
	Origin           string        // 允许的来源（* 表示允许所有）
	HandshakeTimeout time.Duration // 握手超时（默认3秒）
	MaxMessageSize   int64         // 最大消息大小（默认1MB）
	MaxConnections   int32         // 最大连接数（默认1000）
	SSL              bool          // 是否启用SSL/TLS（启用后为WSS，禁用为WS）
	SSLCertFile      string        // SSL证书路径
	SSLKeyFile       string        // SSL密钥路径
}

// Conn WS连接封装
// writeMu串行化同一连接上的写帧：多个goroutine并发广播时帧不会交错
type Conn struct {
	conn         io.ReadWriteCloser
	readBuf      []byte
	writeMu      sync.Mutex
	maxMsgSize   int64
	readTimeout  time.Duration
	writeTimeout time.Duration
}

// Server WS服务器
type Server struct {
	config          *ServerConfig
	server          *http.Server
	router          *Router      // 框架WS Router（内部持有）
	connMgr         *ConnManager // 连接管理器（随Server创建，注入应用层）
	connectionCount int32        // 连接计数器
	middlewares     []MiddlewareFunc
}

// NewServer 创建WS服务器实例
func NewServer(appName string) *Server {
	cfg := loadServerConfig(appName)
	setDefaultConfig(cfg)
	router := NewRouter()
	return &Server{
		config: cfg,
		server: &http.Server{
			Addr:         cfg.Addr,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		router:      router,
		connMgr:     NewConnManager(),
		middlewares: make([]MiddlewareFunc, 0),
	}
}

// Config 暴露配置
func (s *Server) Config() *ServerConfig {
	return s.config
}

// ConnManager 暴露连接管理器（应用层在注册路由时取走引用）
func (s *Server) ConnManager() *ConnManager {
	return s.connMgr
}

// Use 注册全局中间件
func (s *Server) Use(middlewares ...MiddlewareFunc) {
	s.middlewares = append(s.middlewares, middlewares...)
	s.router.Use(middlewares...)
}

// Register 注册WS路由
func (s *Server) Register(action string, handler HandlerFunc, middlewares ...MiddlewareFunc) {
	// 构建完整中间件链：全局中间件 + 局部中间件
	chain := append(s.middlewares, middlewares...)
	s.router.Register(action, handler, chain)
}

// Run 启动WS/WSS服务器
func (s *Server) Run() error {
	// 注册WS握手处理器（独立mux，避免与HTTP服务共用DefaultServeMux）
	mux := http.NewServeMux()
	mux.HandleFunc(s.config.Path, s.handleRequest)
	s.server.Handler = mux

	if s.config.SSL {
		// 启用WSS：加载证书并创建TLS监听器
		if s.config.SSLCertFile == "" || s.config.SSLKeyFile == "" {
			return fmt.Errorf("SSL enabled but cert/key file path is empty")
		}
		cert, err := tls.LoadX509KeyPair(s.config.SSLCertFile, s.config.SSLKeyFile)
		if err != nil {
			return fmt.Errorf("failed to load SSL cert/key: %w", err)
		}
		tlsConfig := &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		}
		lis, err := tls.Listen("tcp", s.config.Addr, tlsConfig)
		if err != nil {
			return fmt.Errorf("failed to create WSS listener: %w", err)
		}
		logger.Info("WSS服务器启动成功，监听地址：", s.config.Addr, "路径：", s.config.Path)
		defer func(lis net.Listener) {
			if err := lis.Close(); err != nil {
				logger.Error("WSS服务器关闭后释放lis失败，监听地址：", s.config.Addr)
			}
		}(lis)
		return s.server.Serve(lis)
	}
	logger.Info("WS服务器启动成功，监听地址：", s.config.Addr, "路径：", s.config.Path)
	return s.server.ListenAndServe()
}

// Stop 停止WS服务器
func (s *Server) Stop() error {
	logger.Info("WebSocket服务器正在停止...当前连接数：", atomic.LoadInt32(&s.connectionCount))
	if s.server != nil {
		return s.server.Shutdown(context.Background())
	}
	return nil
}

// handleRequest 处理WS请求
func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	// 1. 连接限流
	currentConn := atomic.AddInt32(&s.connectionCount, 1)
	defer atomic.AddInt32(&s.connectionCount, -1)

	if currentConn > s.config.MaxConnections {
		http.Error(w, "too many connections", http.StatusServiceUnavailable)
		return
	}

	// 2. 执行握手（在请求goroutine内同步完成，超时由底层连接deadline控制）
	wsConn, err := s.upgrade(w, r)
	if err != nil {
		http.Error(w, fmt.Sprintf("handshake failed: %v", err), http.StatusBadRequest)
		return
	}

	clientIP := getClientIPFromRequest(r)
	connInfo := s.connMgr.AddConn(wsConn, clientIP)
	connID := connInfo.ConnID

	// 延迟移除连接：断线是常态路径（网络丢失、浏览器直接关闭），
	// 所有清理必须仅凭该出口就能完成
	closeReason := "normal closure"
	defer func() {
		s.connMgr.RemoveConn(connID, closeReason)
		_ = wsConn.Close()
	}()

	// 4. 消息循环
	s.messageLoop(wsConn, r, connID, &closeReason)
}

// messageLoop 消息处理循环
func (s *Server) messageLoop(wsConn *Conn, r *http.Request, connID string, closeReason *string) {
	if s.router == nil {
		logger.Error("WS路由器未初始化")
		return
	}

	wsConn.maxMsgSize = s.config.MaxMessageSize
	wsConn.readTimeout = s.config.ReadTimeout
	wsConn.writeTimeout = s.config.WriteTimeout

	for {
		rawMsg, err := wsConn.ReadMessage()
		if err != nil {
			*closeReason = err.Error() // 更新下线原因
			logger.Error("WS读取消息失败：", err, "连接ID：", connID, "客户端：", wsConn.RemoteAddr())
			break
		}

		action, requestId, data, err := s.router.ParseMessage(rawMsg)
		if err != nil {
			logger.Warn("WS解析消息失败：", err, "连接ID：", connID, "客户端：", wsConn.RemoteAddr())
			_ = wsConn.WriteMessage(`{"code":400,"msg":"消息格式错误","data":null}`)
			continue
		}

		ctx := NewContext(wsConn, r, action, requestId, connID, data)

		if err := s.router.Dispatch(ctx); err != nil {
			logger.Error("WS路由分发失败：", err, "action：", action, "连接ID：", connID)
		}
	}
}

// upgrade 升级为WS连接
func (s *Server) upgrade(w http.ResponseWriter, r *http.Request) (*Conn, error) {
	if r.Header.Get("Upgrade") != "websocket" {
		return nil, errors.New("invalid upgrade header (expected 'websocket')")
	}
	if r.Header.Get("Connection") != "Upgrade" && r.Header.Get("Connection") != "upgrade" {
		return nil, errors.New("invalid connection header (expected 'Upgrade')")
	}
	if r.Header.Get("Sec-WebSocket-Version") != "13" {
		return nil, errors.New("unsupported websocket version (only RFC 6455/13 is supported)")
	}

	// 跨域校验
	origin := r.Header.Get("Origin")
	if s.config.Origin != "*" && origin != "" && origin != s.config.Origin {
		return nil, fmt.Errorf("origin '%s' not allowed", origin)
	}

	// 握手密钥校验
	clientKey := r.Header.Get("Sec-WebSocket-Key")
	if clientKey == "" {
		return nil, errors.New("missing 'Sec-WebSocket-Key' header")
	}
	serverKey := generateServerKey(clientKey)

	// 获取底层TCP连接
	hijacker, ok := w.(http.Hijacker)
	if !ok {
		return nil, errors.New("response writer does not support hijack (required for websocket)")
	}
	conn, _, err := hijacker.Hijack()
	if err != nil {
		return nil, fmt.Errorf("hijack failed: %v", err)
	}

	// 写入握手响应（deadline约束慢客户端，写完后清除，进入消息循环的超时另行设置）
	if s.config.HandshakeTimeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(s.config.HandshakeTimeout))
	}
	responseStr := fmt.Sprintf(
		"HTTP/1.1 101 Switching Protocols\r\n"+
			"Upgrade: websocket\r\n"+
			"Connection: Upgrade\r\n"+
			"Sec-WebSocket-Accept: %s\r\n\r\n",
		serverKey,
	)
	_, err = conn.Write([]byte(responseStr))
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("write handshake response failed: %v", err)
	}
	_ = conn.SetDeadline(time.Time{})

	return NewConn(conn), nil
}

// NewConn 包装底层连接（测试时可传入net.Pipe等实现）
func NewConn(rwc io.ReadWriteCloser) *Conn {
	return &Conn{
		conn:       rwc,
		readBuf:    make([]byte, 4096),
		maxMsgSize: 1024 * 1024,
	}
}

func generateServerKey(clientKey string) string {
	hash := sha1.New()
	hash.Write([]byte(clientKey + "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"))
	return base64.StdEncoding.EncodeToString(hash.Sum(nil))
}

func (c *Conn) ReadMessage() (message []byte, err error) {
	if c.readTimeout > 0 {
		if conn, ok := c.conn.(interface{ SetReadDeadline(time.Time) error }); ok {
			_ = conn.SetReadDeadline(time.Now().Add(c.readTimeout))
		}
	}

	for {
		fin, opCode, payload, err := c.readFrame()
		if err != nil {
			return nil, err
		}

		switch opCode {
		case opCodeClose:
			return nil, errors.New("client closed connection")
		case opCodePing:
			_ = c.writeFrame(true, opCodePong, payload)
			continue
		case opCodePong:
			continue
		}

		if int64(len(message)+len(payload)) > c.maxMsgSize {
			_ = c.WriteCloseMessage(1009, "message size exceeds limit")
			return nil, errors.New("message size exceeds limit")
		}

		message = append(message, payload...)

		if fin {
			return message, nil
		}
	}
}

func (c *Conn) WriteMessage(message string) error {
	return c.writeFrame(true, opCodeText, []byte(message))
}

func (c *Conn) WriteCloseMessage(code int, reason string) error {
	payload := make([]byte, 2+len(reason))
	payload[0] = byte(code >> 8)
	payload[1] = byte(code & 0xff)
	copy(payload[2:], []byte(reason))
	return c.writeFrame(true, opCodeClose, payload)
}

func (c *Conn) Close() error {
	_ = c.WriteCloseMessage(1000, "normal closure")
	return c.conn.Close()
}

func (c *Conn) RemoteAddr() string {
	if conn, ok := c.conn.(interface{ RemoteAddr() string }); ok {
		return conn.RemoteAddr()
	}
	return "unknown"
}

func (c *Conn) readFrame() (fin bool, opCode byte, payload []byte, err error) {
	_, err = io.ReadFull(c.conn, c.readBuf[:1])
	if err != nil {
		return false, 0, nil, err
	}
	fin = (c.readBuf[0] & 0x80) != 0
	opCode = c.readBuf[0] & 0x0f

	_, err = io.ReadFull(c.conn, c.readBuf[:1])
	if err != nil {
		return false, 0, nil, err
	}
	masked := (c.readBuf[0] & 0x80) != 0
	payloadLen := uint64(c.readBuf[0] & 0x7f)

	switch payloadLen {
	case 126:
		_, err = io.ReadFull(c.conn, c.readBuf[:2])
		if err != nil {
			return false, 0, nil, err
		}
		payloadLen = uint64(c.readBuf[0])<<8 | uint64(c.readBuf[1])
	case 127:
		_, err = io.ReadFull(c.conn, c.readBuf[:8])
		if err != nil {
			return false, 0, nil, err
		}
		payloadLen = 0
		for i := 0; i < 8; i++ {
			payloadLen = payloadLen<<8 | uint64(c.readBuf[i])
		}
	}

	if payloadLen > uint64(c.maxMsgSize) {
		return false, 0, nil, errors.New("payload too large")
	}

	mask := make([]byte, 4)
	if masked {
		_, err = io.ReadFull(c.conn, mask)
		if err != nil {
			return false, 0, nil, err
		}
	}

	payload = make([]byte, payloadLen)
	if payloadLen > 0 {
		_, err = io.ReadFull(c.conn, payload)
		if err != nil {
			return false, 0, nil, err
		}
	}

	if masked {
		for i := range payload {
			payload[i] ^= mask[i%4]
		}
	}

	return fin, opCode, payload, nil
}

func (c *Conn) writeFrame(fin bool, opCode byte, payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.writeTimeout > 0 {
		if conn, ok := c.conn.(interface{ SetWriteDeadline(time.Time) error }); ok {
			_ = conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
		}
	}

	frameHeader := make([]byte, 0, 10)
	firstByte := byte(opCode)
	if fin {
		firstByte |= 0x80
	}
	frameHeader = append(frameHeader, firstByte)

	payloadLen := len(payload)
	secondByte := byte(0x00)
	switch {
	case payloadLen < 126:
		secondByte |= byte(payloadLen)
	case payloadLen < 65536:
		secondByte |= 126
	default:
		secondByte |= 127
	}
	frameHeader = append(frameHeader, secondByte)

	switch {
	case payloadLen >= 65536:
		frameHeader = append(frameHeader,
			byte(payloadLen>>56),
			byte(payloadLen>>48),
			byte(payloadLen>>40),
			byte(payloadLen>>32),
			byte(payloadLen>>24),
			byte(payloadLen>>16),
			byte(payloadLen>>8),
			byte(payloadLen),
		)
	case payloadLen >= 126:
		frameHeader = append(frameHeader, byte(payloadLen>>8), byte(payloadLen))
	}

	_, err := c.conn.Write(frameHeader)
	if err != nil {
		return err
	}
	if payloadLen > 0 {
		_, err = c.conn.Write(payload)
	}
	return err
}

func loadServerConfig(appName string) *ServerConfig {
	appCfg := config.GetAppConfig(appName)
	wsCfg := appCfg.WebSocket
	return &ServerConfig{
		Addr:             wsCfg.Addr,
		ReadTimeout:      time.Duration(wsCfg.ReadTimeout) * time.Second,
		WriteTimeout:     time.Duration(wsCfg.WriteTimeout) * time.Second,
		Path:             wsCfg.Path,
		Origin:           wsCfg.Origin,
		HandshakeTimeout: time.Duration(wsCfg.HandshakeTimeout) * time.Second,
		MaxMessageSize:   wsCfg.MaxMessageSize,
		MaxConnections:   wsCfg.MaxConnections,
		SSL:              wsCfg.SSL,
		SSLCertFile:      wsCfg.SSLCertFile,
		SSLKeyFile:       wsCfg.SSLKeyFile,
	}
}

func setDefaultConfig(cfg *ServerConfig) {
	if cfg.HandshakeTimeout == 0 {
		cfg.HandshakeTimeout = 3 * time.Second
	}
	if cfg.MaxMessageSize == 0 {
		cfg.MaxMessageSize = 1024 * 1024
	}
	if cfg.MaxConnections == 0 {
		cfg.MaxConnections = 1000
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 60 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 60 * time.Second
	}
	if cfg.Path == "" {
		cfg.Path = "/ws"
	}
	if cfg.Origin == "" {
		cfg.Origin = "*"
	}
}

// getClientIPFromRequest 提取客户端IP（复用Context逻辑）
func getClientIPFromRequest(r *http.Request) string {
	ip := r.Header.Get("X-Real-IP")
	if ip == "" {
		ip = r.Header.Get("X-Forwarded-For")
		if ip != "" {
			ip = strings.Split(ip, ",")[0]
		}
	}
	if ip == "" {
		remoteAddr := r.RemoteAddr
		host, _, err := net.SplitHostPort(remoteAddr)
		if err == nil {
			ip = host
		} else {
			ip = remoteAddr
		}
	}
	return ip
}
