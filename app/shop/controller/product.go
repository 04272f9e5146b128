package controller

import (
	"context"
	"strings"
	"time"

	"github.com/dfpopp/cardmart/app/shop/service"
	"github.com/dfpopp/cardmart/base"
	"github.com/dfpopp/cardmart/response"
	"github.com/dfpopp/cardmart/websocket"
	"github.com/google/uuid"
)

// ProductController 商品控制器（WS侧：上架/修改/下架/调价/调库存 + 旧版演示动作）
type ProductController struct {
	product  *service.ProductService
	activity *service.ActivityService
	presence *service.PresenceService
	bus      service.Broadcaster
}

func NewProductController(product *service.ProductService, activity *service.ActivityService, presence *service.PresenceService, bus service.Broadcaster) *ProductController {
	return &ProductController{
		product:  product,
		activity: activity,
		presence: presence,
		bus:      bus,
	}
}

func (c *ProductController) requester(ctx *websocket.Context, fallback string) string {
	if entry, ok := c.presence.GetEntry(ctx.GetConnID()); ok {
		return entry.Username
	}
	return strings.TrimSpace(fallback)
}

// New 旧版演示动作：不落库，仅广播+记动态
func (c *ProductController) New(ctx *websocket.Context) {
	bc := &base.BaseController{}
	bc.WsInit(ctx)

	var req struct {
		Name     string  `json:"name"`
		Price    float64 `json:"price"`
		Username string  `json:"username"`
	}
	if err := bc.BindJSON(&req); err != nil {
		bc.Error(response.CodeValidation, "消息格式错误")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		bc.Error(response.CodeValidation, "商品名称不能为空")
		return
	}
	username := c.requester(ctx, req.Username)
	if username == "" {
		username = service.DefaultUsername
	}
	item := map[string]interface{}{
		"id":         uuid.NewString(),
		"name":       name,
		"price":      req.Price,
		"owner":      username,
		"created_at": time.Now().Format(time.RFC3339),
	}
	c.bus.BroadcastAll("product.added", item)
	c.activity.Push(service.ActivityProduct, username+" 上架了 "+name)
	bc.Success(item)
}

// CartAdd 加入购物车（只记动态）
func (c *ProductController) CartAdd(ctx *websocket.Context) {
	bc := &base.BaseController{}
	bc.WsInit(ctx)

	var req struct {
		ProductName string `json:"product_name"`
		Username    string `json:"username"`
	}
	if err := bc.BindJSON(&req); err != nil {
		bc.Error(response.CodeValidation, "消息格式错误")
		return
	}
	name := strings.TrimSpace(req.ProductName)
	if name == "" {
		bc.Error(response.CodeValidation, "商品名称不能为空")
		return
	}
	username := c.requester(ctx, req.Username)
	if username == "" {
		username = service.DefaultUsername
	}
	entry := c.activity.Push(service.ActivityCart, username+" 将 "+name+" 加入了购物车")
	bc.Success(entry)
}

// Create 上架商品（持久化）
func (c *ProductController) Create(ctx *websocket.Context) {
	bc := &base.BaseController{}
	bc.WsInit(ctx)

	var req struct {
		Name     string  `json:"name"`
		Price    float64 `json:"price"`
		Stock    int64   `json:"stock"`
		Username string  `json:"username"`
	}
	if err := bc.BindJSON(&req); err != nil {
		bc.Error(response.CodeValidation, "消息格式错误")
		return
	}
	created, bizErr := c.product.Create(context.Background(), c.requester(ctx, req.Username), req.Name, req.Price, req.Stock)
	if bizErr != nil {
		bc.Error(bizErr.Code, bizErr.Msg)
		return
	}
	bc.Success(created)
}

// Update 修改商品
func (c *ProductController) Update(ctx *websocket.Context) {
	bc := &base.BaseController{}
	bc.WsInit(ctx)

	var req struct {
		ID       int64    `json:"id"`
		Name     *string  `json:"name"`
		Price    *float64 `json:"price"`
		Stock    *int64   `json:"stock"`
		Username string   `json:"username"`
	}
	if err := bc.BindJSON(&req); err != nil {
		bc.Error(response.CodeValidation, "消息格式错误")
		return
	}
	fields := make(map[string]interface{})
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Price != nil {
		fields["price"] = *req.Price
	}
	if req.Stock != nil {
		fields["stock"] = *req.Stock
	}
	updated, bizErr := c.product.Update(context.Background(), c.requester(ctx, req.Username), req.ID, fields)
	if bizErr != nil {
		bc.Error(bizErr.Code, bizErr.Msg)
		return
	}
	bc.Success(updated)
}

// Delete 下架商品
func (c *ProductController) Delete(ctx *websocket.Context) {
	bc := &base.BaseController{}
	bc.WsInit(ctx)

	var req struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
	}
	if err := bc.BindJSON(&req); err != nil {
		bc.Error(response.CodeValidation, "消息格式错误")
		return
	}
	if bizErr := c.product.Delete(context.Background(), c.requester(ctx, req.Username), req.ID); bizErr != nil {
		bc.Error(bizErr.Code, bizErr.Msg)
		return
	}
	bc.Success(map[string]interface{}{"id": req.ID})
}

// SetPrice 调价
func (c *ProductController) SetPrice(ctx *websocket.Context) {
	bc := &base.BaseController{}
	bc.WsInit(ctx)

	var req struct {
		ID       int64   `json:"id"`
		Price    float64 `json:"price"`
		Username string  `json:"username"`
	}
	if err := bc.BindJSON(&req); err != nil {
		bc.Error(response.CodeValidation, "消息格式错误")
		return
	}
	updated, bizErr := c.product.SetPrice(context.Background(), c.requester(ctx, req.Username), req.ID, req.Price)
	if bizErr != nil {
		bc.Error(bizErr.Code, bizErr.Msg)
		return
	}
	bc.Success(updated)
}

// SetStock 调库存
func (c *ProductController) SetStock(ctx *websocket.Context) {
	bc := &base.BaseController{}
	bc.WsInit(ctx)

	var req struct {
		ID       int64  `json:"id"`
		Stock    int64  `json:"stock"`
		Username string `json:"username"`
	}
	if err := bc.BindJSON(&req); err != nil {
		bc.Error(response.CodeValidation, "消息格式错误")
		return
	}
	updated, bizErr := c.product.SetStock(context.Background(), c.requester(ctx, req.Username), req.ID, req.Stock)
	if bizErr != nil {
		bc.Error(bizErr.Code, bizErr.Msg)
		return
	}
	bc.Success(updated)
}
