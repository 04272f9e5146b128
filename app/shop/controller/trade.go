package controller

import (
	"strings"

	"github.com/dfpopp/cardmart/app/shop/service"
	"github.com/dfpopp/cardmart/base"
	"github.com/dfpopp/cardmart/response"
	"github.com/dfpopp/cardmart/websocket"
)

// TradeController 交易挂单控制器
type TradeController struct {
	trade    *service.TradeService
	presence *service.PresenceService
}

func NewTradeController(trade *service.TradeService, presence *service.PresenceService) *TradeController {
	return &TradeController{trade: trade, presence: presence}
}

func (c *TradeController) requester(ctx *websocket.Context, fallback string) string {
	if entry, ok := c.presence.GetEntry(ctx.GetConnID()); ok {
		return entry.Username
	}
	fallback = strings.TrimSpace(fallback)
	if fallback != "" {
		return fallback
	}
	return service.DefaultUsername
}

// Create 创建挂单
func (c *TradeController) Create(ctx *websocket.Context) {
	bc := &base.BaseController{}
	bc.WsInit(ctx)

	var req struct {
		Want     string `json:"want"`
		Offer    string `json:"offer"`
		Username string `json:"username"`
	}
	if err := bc.BindJSON(&req); err != nil {
		bc.Error(response.CodeValidation, "消息格式错误")
		return
	}
	trade, bizErr := c.trade.Create(c.requester(ctx, req.Username), req.Want, req.Offer)
	if bizErr != nil {
		bc.Error(bizErr.Code, bizErr.Msg)
		return
	}
	bc.Success(trade)
}

// Accept 接受挂单
func (c *TradeController) Accept(ctx *websocket.Context) {
	bc := &base.BaseController{}
	bc.WsInit(ctx)

	var req struct {
		TradeID  string `json:"trade_id"`
		Username string `json:"username"`
	}
	if err := bc.BindJSON(&req); err != nil {
		bc.Error(response.CodeValidation, "消息格式错误")
		return
	}
	trade, bizErr := c.trade.Accept(c.requester(ctx, req.Username), req.TradeID)
	if bizErr != nil {
		bc.Error(bizErr.Code, bizErr.Msg)
		return
	}
	bc.Success(trade)
}

// List 挂单列表（仅回给请求方）
func (c *TradeController) List(ctx *websocket.Context) {
	bc := &base.BaseController{}
	bc.WsInit(ctx)
	bc.Success(c.trade.List())
}
