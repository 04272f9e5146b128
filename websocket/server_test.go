package websocket

import (
	"bufio"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// hijackRecorder 支持Hijack的响应记录器（交出net.Pipe的服务端）
type hijackRecorder struct {
	*httptest.ResponseRecorder
	conn net.Conn
}

func (h *hijackRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return h.conn, bufio.NewReadWriter(bufio.NewReader(h.conn), bufio.NewWriter(h.conn)), nil
}

func newUpgradeRequest() *http.Request {
	req := httptest.NewRequest("GET", "/ws", nil)
	req.Header.Set("Upgrade", "websocket")
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Sec-WebSocket-Version", "13")
	req.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")
	return req
}

func newHandshakeServer(handshakeTimeout time.Duration) *Server {
	return &Server{
		config: &ServerConfig{
			HandshakeTimeout: handshakeTimeout,
			MaxMessageSize:   1024 * 1024,
			MaxConnections:   10,
			Origin:           "*",
		},
		router:  NewRouter(),
		connMgr: NewConnManager(),
	}
}

// 握手响应写不出去（客户端不读）时必须在请求goroutine内失败返回，不得让进程崩溃
func TestHandshakeSlowClientFailsWithoutCrash(t *testing.T) {
	serverEnd, clientEnd := net.Pipe()
	defer clientEnd.Close()

	rec := &hijackRecorder{httptest.NewRecorder(), serverEnd}
	srv := newHandshakeServer(5 * time.Millisecond)

	srv.handleRequest(rec, newUpgradeRequest())

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, srv.connMgr.GetConnCount())
}

func TestHandshakeUpgradeSuccess(t *testing.T) {
	serverEnd, clientEnd := net.Pipe()

	rec := &hijackRecorder{httptest.NewRecorder(), serverEnd}
	srv := newHandshakeServer(time.Second)

	responseCh := make(chan string, 1)
	go func() {
		buf := make([]byte, 512)
		n, _ := clientEnd.Read(buf)
		responseCh <- string(buf[:n])
		clientEnd.Close()
	}()

	// 客户端读完握手响应即断开，handleRequest随消息循环退出
	srv.handleRequest(rec, newUpgradeRequest())

	response := <-responseCh
	assert.Contains(t, response, "101 Switching Protocols")
	// RFC 6455 §1.3 示例密钥对应的Accept值
	assert.Contains(t, response, "Sec-WebSocket-Accept: s3pPLMBiTxaQ9kYGzzhZRbK+xOo=")
	// 断开后连接已被清理
	assert.Equal(t, 0, srv.connMgr.GetConnCount())
}

func TestHandshakeRejectsNonWebsocketRequest(t *testing.T) {
	serverEnd, clientEnd := net.Pipe()
	defer clientEnd.Close()
	defer serverEnd.Close()

	rec := &hijackRecorder{httptest.NewRecorder(), serverEnd}
	srv := newHandshakeServer(time.Second)

	req := httptest.NewRequest("GET", "/ws", nil)
	srv.handleRequest(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, srv.connMgr.GetConnCount())
}
