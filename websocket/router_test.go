package websocket

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T, rwc *fakeRWC, action string) *Context {
	t.Helper()
	req := httptest.NewRequest("GET", "/ws", nil)
	return NewContext(NewConn(rwc), req, action, "req-1", "conn-1", []byte(`{"key":"val"}`))
}

func decodeReply(t *testing.T, rwc *fakeRWC) map[string]interface{} {
	t.Helper()
	msgs := rwc.textMessages(t)
	require.NotEmpty(t, msgs)
	var reply map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(msgs[len(msgs)-1]), &reply))
	return reply
}

func TestDispatchUnknownActionReplies(t *testing.T) {
	router := NewRouter()
	rwc := &fakeRWC{}
	ctx := newTestContext(t, rwc, "no.such.action")

	err := router.Dispatch(ctx)
	require.Error(t, err)

	reply := decodeReply(t, rwc)
	assert.Equal(t, float64(404), reply["code"])
	// 回包自动带回action与request_id
	assert.Equal(t, "no.such.action", reply["action"])
	assert.Equal(t, "req-1", reply["request_id"])
}

func TestDispatchInvokesHandler(t *testing.T) {
	router := NewRouter()
	router.Register("hall.join", func(ctx *Context) {
		ctx.JSON(200, map[string]interface{}{"code": 200, "msg": "ok", "data": nil})
	}, nil)

	rwc := &fakeRWC{}
	require.NoError(t, router.Dispatch(newTestContext(t, rwc, "hall.join")))

	reply := decodeReply(t, rwc)
	assert.Equal(t, float64(200), reply["code"])
	assert.Equal(t, "hall.join", reply["action"])
}

func TestRecoveryMiddlewareRepliesInternalError(t *testing.T) {
	router := NewRouter()
	router.Register("boom", func(ctx *Context) {
		panic("handler exploded")
	}, []MiddlewareFunc{Recovery()})

	rwc := &fakeRWC{}
	require.NoError(t, router.Dispatch(newTestContext(t, rwc, "boom")))

	reply := decodeReply(t, rwc)
	assert.Equal(t, float64(500), reply["code"])
}

func TestParseMessage(t *testing.T) {
	router := NewRouter()

	action, requestId, data, err := router.ParseMessage([]byte(`{"action":"chat.send","request_id":"r-9","data":{"message":"hi"}}`))
	require.NoError(t, err)
	assert.Equal(t, "chat.send", action)
	assert.Equal(t, "r-9", requestId)
	assert.JSONEq(t, `{"message":"hi"}`, string(data))

	_, _, _, err = router.ParseMessage([]byte(`not json`))
	assert.Error(t, err)
}

func TestMiddlewareChainOrder(t *testing.T) {
	router := NewRouter()
	var order []string
	mid := func(name string) MiddlewareFunc {
		return func(next HandlerFunc) HandlerFunc {
			return func(ctx *Context) {
				order = append(order, name)
				next(ctx)
			}
		}
	}
	router.Register("ordered", func(ctx *Context) {
		order = append(order, "handler")
	}, []MiddlewareFunc{mid("first"), mid("second")})

	rwc := &fakeRWC{}
	require.NoError(t, router.Dispatch(newTestContext(t, rwc, "ordered")))
	assert.Equal(t, []string{"first", "second", "handler"}, order)
}
