package controller

import (
	"strings"
	"time"

	"github.com/dfpopp/cardmart/app/shop/model"
	"github.com/dfpopp/cardmart/app/shop/service"
	"github.com/dfpopp/cardmart/base"
	"github.com/dfpopp/cardmart/response"
	"github.com/dfpopp/cardmart/websocket"
	"github.com/google/uuid"
)

// HallController 大厅控制器（进厅/聊天/动态回放）
type HallController struct {
	presence *service.PresenceService
	activity *service.ActivityService
	bus      service.Broadcaster
	cache    *model.CacheModel
}

func NewHallController(presence *service.PresenceService, activity *service.ActivityService, bus service.Broadcaster, cache *model.CacheModel) *HallController {
	return &HallController{
		presence: presence,
		activity: activity,
		bus:      bus,
		cache:    cache,
	}
}

// resolveUsername 请求人展示名：优先在线名单，其次消息体，最后匿名兜底
func (c *HallController) resolveUsername(ctx *websocket.Context, fallback string) string {
	if entry, ok := c.presence.GetEntry(ctx.GetConnID()); ok {
		return entry.Username
	}
	fallback = strings.TrimSpace(fallback)
	if fallback != "" {
		return fallback
	}
	return service.DefaultUsername
}

// Join 进入大厅
func (c *HallController) Join(ctx *websocket.Context) {
	bc := &base.BaseController{}
	bc.WsInit(ctx)

	var req struct {
		Username string `json:"username"`
	}
	if err := bc.BindJSON(&req); err != nil {
		bc.Error(response.CodeValidation, "消息格式错误")
		return
	}
	entry := c.presence.Join(ctx.GetConnID(), req.Username)
	bc.Success(map[string]interface{}{
		"user":   entry,
		"roster": c.presence.Snapshot(),
	})
}

// Chat 大厅聊天
func (c *HallController) Chat(ctx *websocket.Context) {
	bc := &base.BaseController{}
	bc.WsInit(ctx)

	var req struct {
		Message  string `json:"message"`
		Username string `json:"username"`
	}
	if err := bc.BindJSON(&req); err != nil {
		bc.Error(response.CodeValidation, "消息格式错误")
		return
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		bc.Error(response.CodeValidation, "聊天内容不能为空")
		return
	}

	chatMsg := map[string]interface{}{
		"id":        uuid.NewString(),
		"username":  c.resolveUsername(ctx, req.Username),
		"message":   message,
		"timestamp": time.Now().Format(time.RFC3339),
	}
	// 聊天广播包含发送方本人，发送方以广播为准渲染
	c.bus.BroadcastAll("chat.message", chatMsg)
	if c.cache != nil {
		c.cache.IncrCounter("chat")
	}
	bc.Success(chatMsg)
}

// History 动态日志回放（仅回给请求方）
func (c *HallController) History(ctx *websocket.Context) {
	bc := &base.BaseController{}
	bc.WsInit(ctx)
	bc.Success(c.activity.Replay())
}
