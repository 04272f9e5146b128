package service

import (
	"strings"
	"sync"
	"time"

	"github.com/dfpopp/cardmart/app/shop/model"
	"github.com/dfpopp/cardmart/base"
	"github.com/google/uuid"
)

// 交易状态
const (
	TradeStatusPending  = "pending"
	TradeStatusAccepted = "accepted"
)

// Trade 卡牌交易挂单
type Trade struct {
	ID         string `json:"id"`
	Want       string `json:"want"`
	Offer      string `json:"offer"`
	Proposer   string `json:"proposer"`
	Status     string `json:"status"`
	AcceptedBy string `json:"accepted_by,omitempty"`
	AcceptedAt string `json:"accepted_at,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// TradeService 交易挂单服务（进程内存储）
// accept在持锁状态下复查status后才落子，并发竞抢至多一人成功
type TradeService struct {
	base.BaseService
	mu       sync.Mutex
	trades   map[string]*Trade
	order    []string // 挂单ID按创建顺序
	bus      Broadcaster
	activity *ActivityService
	cache    *model.CacheModel
}

func NewTradeService(bus Broadcaster, activity *ActivityService, cache *model.CacheModel) *TradeService {
	s := &TradeService{
		trades:   make(map[string]*Trade),
		bus:      bus,
		activity: activity,
		cache:    cache,
	}
	s.ServiceName = "trade"
	s.Init()
	return s
}

// Create 创建挂单
func (s *TradeService) Create(proposer, want, offer string) (*Trade, *BizError) {
	want = strings.TrimSpace(want)
	offer = strings.TrimSpace(offer)
	if want == "" || offer == "" {
		return nil, ValidationErr("求购和出让内容不能为空")
	}
	if strings.TrimSpace(proposer) == "" {
		proposer = DefaultUsername
	}
	trade := &Trade{
		ID:        uuid.NewString(),
		Want:      want,
		Offer:     offer,
		Proposer:  proposer,
		Status:    TradeStatusPending,
		CreatedAt: time.Now().Format(time.RFC3339),
	}

	s.mu.Lock()
	s.trades[trade.ID] = trade
	s.order = append(s.order, trade.ID)
	cp := *trade
	s.mu.Unlock()

	s.bus.BroadcastAll("trade.created", cp)
	s.activity.Push(ActivityTrade, proposer+" 发起交易：以 "+offer+" 换 "+want)
	if s.cache != nil {
		s.cache.IncrCounter("trade")
	}
	return &cp, nil
}

// Accept 接受挂单
// 挂单ID不存在是明确失败；重复接受返回当前态、不再广播
func (s *TradeService) Accept(acceptor, tradeID string) (*Trade, *BizError) {
	if strings.TrimSpace(tradeID) == "" {
		return nil, ValidationErr("交易ID不能为空")
	}
	if strings.TrimSpace(acceptor) == "" {
		acceptor = DefaultUsername
	}

	s.mu.Lock()
	trade, ok := s.trades[tradeID]
	if !ok {
		s.mu.Unlock()
		return nil, NotFoundErr("交易不存在")
	}
	if trade.Status != TradeStatusPending {
		cp := *trade
		s.mu.Unlock()
		return &cp, nil
	}
	trade.Status = TradeStatusAccepted
	trade.AcceptedBy = acceptor
	trade.AcceptedAt = time.Now().Format(time.RFC3339)
	cp := *trade
	s.mu.Unlock()

	s.bus.BroadcastAll("trade.updated", cp)
	s.activity.Push(ActivityTrade, acceptor+" 接受了 "+cp.Proposer+" 的交易")
	return &cp, nil
}

// List 挂单列表（按创建顺序）
func (s *TradeService) List() []Trade {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]Trade, 0, len(s.order))
	for _, id := range s.order {
		if trade, ok := s.trades[id]; ok {
			result = append(result, *trade)
		}
	}
	return result
}

// Count 挂单总数
func (s *TradeService) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.trades)
}
