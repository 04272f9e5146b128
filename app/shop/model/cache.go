package model

import (
	"time"

	"github.com/dfpopp/cardmart/base"
)

// CacheModel 店面缓存模型（商品列表热缓存 + 业务计数器）
// redis不可用时所有方法静默降级为miss/no-op，不阻塞主流程
type CacheModel struct {
	base.BaseModel
	DbTag string // redis连接标识（空表示禁用缓存）
}

const productListKey = "products"

func NewCacheModel(dbTag string) *CacheModel {
	m := &CacheModel{DbTag: dbTag}
	m.Init()
	return m
}

// Enabled 缓存是否可用
func (m *CacheModel) Enabled() bool {
	if m.DbTag == "" {
		return false
	}
	_, err := m.GetRedis(m.DbTag)
	return err == nil
}

// GetProductList 读取商品列表缓存，miss返回("", false)
func (m *CacheModel) GetProductList() (string, bool) {
	if m.DbTag == "" {
		return "", false
	}
	rdb, err := m.GetRedis(m.DbTag)
	if err != nil {
		return "", false
	}
	val, err := rdb.Db.Get(rdb.Key(productListKey)).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

// SetProductList 写商品列表缓存（60秒过期，商品变更会主动失效）
func (m *CacheModel) SetProductList(listJson string) {
	if m.DbTag == "" {
		return
	}
	rdb, err := m.GetRedis(m.DbTag)
	if err != nil {
		return
	}
	if err := rdb.Db.Set(rdb.Key(productListKey), listJson, 60*time.Second).Err(); err != nil {
		m.Log.Warn("写商品列表缓存失败：", err)
	}
}

// InvalidateProducts 商品变更后失效列表缓存
func (m *CacheModel) InvalidateProducts() {
	if m.DbTag == "" {
		return
	}
	rdb, err := m.GetRedis(m.DbTag)
	if err != nil {
		return
	}
	if err := rdb.Db.Del(rdb.Key(productListKey)).Err(); err != nil {
		m.Log.Warn("失效商品列表缓存失败：", err)
	}
}

// IncrCounter 业务计数器自增（chat/trade/activity等）
func (m *CacheModel) IncrCounter(name string) {
	if m.DbTag == "" {
		return
	}
	rdb, err := m.GetRedis(m.DbTag)
	if err != nil {
		return
	}
	if err := rdb.Db.Incr(rdb.Key("counter", name)).Err(); err != nil {
		m.Log.Warn("计数器自增失败：", "name", name, "err", err)
	}
}

// GetCounters 批量读取业务计数器（读不到的按0返回）
func (m *CacheModel) GetCounters(names ...string) map[string]int64 {
	result := make(map[string]int64, len(names))
	for _, name := range names {
		result[name] = 0
	}
	if m.DbTag == "" {
		return result
	}
	rdb, err := m.GetRedis(m.DbTag)
	if err != nil {
		return result
	}
	for _, name := range names {
		val, err := rdb.Db.Get(rdb.Key("counter", name)).Int64()
		if err != nil {
			continue
		}
		result[name] = val
	}
	return result
}
