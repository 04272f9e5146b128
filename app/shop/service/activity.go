package service

import (
	"sync"
	"time"

	"github.com/dfpopp/cardmart/app/shop/model"
	"github.com/dfpopp/cardmart/base"
)

// ActivityCap 动态日志上限：超过后按最老一条淘汰
const ActivityCap = 20

// 动态类型
const (
	ActivityProduct   = "product"
	ActivityCart      = "cart"
	ActivityTrade     = "trade"
	ActivityStock     = "stock"
	ActivityPrice     = "price"
	ActivityAccount   = "account"
	ActivityInventory = "inventory"
	ActivityNews      = "news"
)

// ActivityEntry 动态日志条目
type ActivityEntry struct {
	ID        int64  `json:"id"`
	Type      string `json:"type"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
}

// ActivityService 店面动态日志（定长环，最新在前）
type ActivityService struct {
	base.BaseService
	mu      sync.Mutex
	entries []ActivityEntry // 最新在下标0
	nextID  int64
	bus     Broadcaster
	cache   *model.CacheModel
}

func NewActivityService(bus Broadcaster, cache *model.CacheModel) *ActivityService {
	s := &ActivityService{
		entries: make([]ActivityEntry, 0, ActivityCap),
		nextID:  1,
		bus:     bus,
		cache:   cache,
	}
	s.ServiceName = "activity"
	s.Init()
	return s
}

// Push 记录一条动态并广播
// 淘汰一次只发生一条：条目数永不越过上限
func (s *ActivityService) Push(activityType string, message string) ActivityEntry {
	s.mu.Lock()
	entry := ActivityEntry{
		ID:        s.nextID,
		Type:      activityType,
		Message:   message,
		CreatedAt: time.Now().Format(time.RFC3339),
	}
	s.nextID++
	s.entries = append([]ActivityEntry{entry}, s.entries...)
	if len(s.entries) > ActivityCap {
		s.entries = s.entries[:ActivityCap]
	}
	s.mu.Unlock()

	s.bus.BroadcastAll("activity.new", entry)
	if s.cache != nil {
		s.cache.IncrCounter("activity")
	}
	return entry
}

// Replay 当前日志副本（最新在前，至多ActivityCap条）
func (s *ActivityService) Replay() []ActivityEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]ActivityEntry, len(s.entries))
	copy(result, s.entries)
	return result
}

// Len 当前日志条数
func (s *ActivityService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
