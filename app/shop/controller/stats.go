package controller

import (
	"github.com/dfpopp/cardmart/app/shop/service"
	"github.com/dfpopp/cardmart/base"
	"github.com/dfpopp/cardmart/http"
)

// StatsController 运行状态探针（HTTP侧）
type StatsController struct {
	stats *service.StatsService
}

func NewStatsController(stats *service.StatsService) *StatsController {
	return &StatsController{stats: stats}
}

// Health 健康检查
func (c *StatsController) Health(ctx *http.Context) {
	bc := &base.BaseController{}
	bc.Init(ctx)
	bc.Success(map[string]interface{}{"status": "ok"})
}

// Stats 运行指标
func (c *StatsController) Stats(ctx *http.Context) {
	bc := &base.BaseController{}
	bc.Init(ctx)
	bc.Success(c.stats.Stats())
}
