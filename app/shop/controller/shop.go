package controller

import (
	"context"
	"strconv"

	"github.com/dfpopp/cardmart/app/shop/service"
	"github.com/dfpopp/cardmart/base"
	"github.com/dfpopp/cardmart/http"
	"github.com/dfpopp/cardmart/response"
)

// ShopController 店面查询接口（HTTP侧）
type ShopController struct {
	product *service.ProductService
	news    *service.NewsService
}

func NewShopController(product *service.ProductService, news *service.NewsService) *ShopController {
	return &ShopController{product: product, news: news}
}

// Products 商品列表
func (c *ShopController) Products(ctx *http.Context) {
	bc := &base.BaseController{}
	bc.Init(ctx)
	list, bizErr := c.product.List(context.Background())
	if bizErr != nil {
		bc.Error(bizErr.Code, bizErr.Msg)
		return
	}
	bc.DataSuccess(list, int64(len(list)))
}

// NewsList 资讯列表
func (c *ShopController) NewsList(ctx *http.Context) {
	bc := &base.BaseController{}
	bc.Init(ctx)
	limit, _ := strconv.ParseInt(ctx.Query("limit"), 10, 64)
	list, bizErr := c.news.List(context.Background(), limit)
	if bizErr != nil {
		bc.Error(bizErr.Code, bizErr.Msg)
		return
	}
	bc.DataSuccess(list, int64(len(list)))
}

// NewsCreate 发布资讯
func (c *ShopController) NewsCreate(ctx *http.Context) {
	bc := &base.BaseController{}
	bc.Init(ctx)
	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
		Author  string `json:"author"`
	}
	if err := bc.BindJSON(&req); err != nil {
		bc.Error(response.CodeValidation, "请求体格式错误")
		return
	}
	id, bizErr := c.news.Create(context.Background(), req.Title, req.Content, req.Author)
	if bizErr != nil {
		bc.Error(bizErr.Code, bizErr.Msg)
		return
	}
	bc.Success(map[string]interface{}{"id": id})
}
