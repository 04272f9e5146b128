package service

import (
	"strings"
	"sync"

	"github.com/dfpopp/cardmart/base"
)

// DefaultUsername 空展示名统一兜底
const DefaultUsername = "Anonymous"

// PresenceEntry 大厅在线名单条目
type PresenceEntry struct {
	Username string `json:"username"`
	ConnID   string `json:"conn_id"`
}

// PresenceService 在线名单服务
// 名单以connID为键，一条连接至多一个条目；广播一律在写入完成后基于新状态计算
type PresenceService struct {
	base.BaseService
	mu      sync.Mutex
	entries map[string]*PresenceEntry
	bus     Broadcaster
}

func NewPresenceService(bus Broadcaster) *PresenceService {
	s := &PresenceService{
		entries: make(map[string]*PresenceEntry),
		bus:     bus,
	}
	s.ServiceName = "presence"
	s.Init()
	return s
}

// Join 进入大厅（重复join同一连接仅覆盖展示名）
func (s *PresenceService) Join(connID string, rawName string) *PresenceEntry {
	name := strings.TrimSpace(rawName)
	if name == "" {
		name = DefaultUsername
	}
	entry := &PresenceEntry{Username: name, ConnID: connID}

	s.mu.Lock()
	s.entries[connID] = entry
	roster := s.snapshotLocked()
	s.mu.Unlock()

	s.bus.BroadcastAll("presence.list", roster)
	s.bus.BroadcastExcept(connID, "user.joined", entry)
	s.LogInfo("用户进入大厅", "connID", connID, "username", name, "online", len(roster))
	return entry
}

// Leave 离开大厅（幂等：无条目时静默返回nil，不产生任何广播）
func (s *PresenceService) Leave(connID string) *PresenceEntry {
	s.mu.Lock()
	entry, exists := s.entries[connID]
	if exists {
		delete(s.entries, connID)
	}
	roster := s.snapshotLocked()
	s.mu.Unlock()

	if !exists {
		return nil
	}
	s.bus.BroadcastAll("presence.list", roster)
	s.bus.BroadcastAll("user.left", entry)
	s.LogInfo("用户离开大厅", "connID", connID, "username", entry.Username, "online", len(roster))
	return entry
}

// GetEntry 查询连接对应的名单条目
func (s *PresenceService) GetEntry(connID string) (*PresenceEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[connID]
	if !ok {
		return nil, false
	}
	cp := *entry
	return &cp, true
}

// Snapshot 当前在线名单副本
func (s *PresenceService) Snapshot() []PresenceEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Count 在线人数
func (s *PresenceService) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *PresenceService) snapshotLocked() []PresenceEntry {
	roster := make([]PresenceEntry, 0, len(s.entries))
	for _, entry := range s.entries {
		roster = append(roster, *entry)
	}
	return roster
}
