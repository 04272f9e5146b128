package service

import (
	"time"

	"github.com/dfpopp/cardmart/app/shop/model"
	"github.com/dfpopp/cardmart/base"
	"github.com/dfpopp/cardmart/websocket"
)

// StatsService 运行状态探针数据
type StatsService struct {
	base.BaseService
	startAt  time.Time
	connMgr  *websocket.ConnManager
	presence *PresenceService
	activity *ActivityService
	trade    *TradeService
	cache    *model.CacheModel
}

func NewStatsService(connMgr *websocket.ConnManager, presence *PresenceService, activity *ActivityService, trade *TradeService, cache *model.CacheModel) *StatsService {
	s := &StatsService{
		startAt:  time.Now(),
		connMgr:  connMgr,
		presence: presence,
		activity: activity,
		trade:    trade,
		cache:    cache,
	}
	s.ServiceName = "stats"
	s.Init()
	return s
}

// Stats 汇总当前运行指标
func (s *StatsService) Stats() map[string]interface{} {
	result := map[string]interface{}{
		"uptime_seconds": int64(time.Since(s.startAt).Seconds()),
		"conn_count":     s.connMgr.GetConnCount(),
		"online_users":   s.presence.Snapshot(),
		"activity_len":   s.activity.Len(),
		"trade_count":    s.trade.Count(),
	}
	if s.cache != nil && s.cache.Enabled() {
		result["counters"] = s.cache.GetCounters("chat", "trade", "activity")
	}
	return result
}
