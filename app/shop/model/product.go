package model

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dfpopp/cardmart/base"
	"github.com/dfpopp/cardmart/function"
)

// 存储层统一错误（服务层据此映射业务状态码）
var (
	ErrNotFound  = errors.New("记录不存在")
	ErrDuplicate = errors.New("唯一键冲突")
)

// Product 商品模型
type Product struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Stock     int64   `json:"stock"`
	Owner     string  `json:"owner"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

// ProductStore 商品存储接口（memory/mysql两种后端，store_driver配置切换）
type ProductStore interface {
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id int64) (*Product, error)
	Create(ctx context.Context, p *Product) (int64, error)
	Update(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
}

// -------------------------- 内存后端 --------------------------

// MemoryProductStore 内存商品存储（演示/测试环境）
type MemoryProductStore struct {
	mu     sync.Mutex
	items  map[int64]*Product
	names  map[string]int64
	nextID int64
}

func NewMemoryProductStore() *MemoryProductStore {
	return &MemoryProductStore{
		items:  make(map[int64]*Product),
		names:  make(map[string]int64),
		nextID: 1,
	}
}

func (s *MemoryProductStore) List(ctx context.Context) ([]Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]Product, 0, len(s.items))
	for id := int64(1); id < s.nextID; id++ {
		if p, ok := s.items[id]; ok {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (s *MemoryProductStore) Get(ctx context.Context, id int64) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryProductStore) Create(ctx context.Context, p *Product) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.names[p.Name]; exists {
		return 0, ErrDuplicate
	}
	now := time.Now().Format(time.RFC3339)
	cp := *p
	cp.ID = s.nextID
	cp.CreatedAt = now
	cp.UpdatedAt = now
	s.items[cp.ID] = &cp
	s.names[cp.Name] = cp.ID
	s.nextID++
	return cp.ID, nil
}

func (s *MemoryProductStore) Update(ctx context.Context, id int64, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.items[id]
	if !ok {
		return ErrNotFound
	}
	if v, ok := fields["name"]; ok {
		newName, _ := v.(string)
		if newName != "" && newName != p.Name {
			if _, exists := s.names[newName]; exists {
				return ErrDuplicate
			}
			delete(s.names, p.Name)
			s.names[newName] = id
			p.Name = newName
		}
	}
	if v, ok := fields["price"]; ok {
		p.Price = toFloat64(v)
	}
	if v, ok := fields["stock"]; ok {
		p.Stock = toInt64(v)
	}
	p.UpdatedAt = time.Now().Format(time.RFC3339)
	return nil
}

func (s *MemoryProductStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.items[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.names, p.Name)
	delete(s.items, id)
	return nil
}

// -------------------------- MySQL后端 --------------------------

// MysqlProductStore 基于mysql链式操作类的商品存储
// 创建商品/调整库存会同时写库存流水表，两步在同一事务内
type MysqlProductStore struct {
	base.BaseModel
	DbTag string // 数据库连接标识（database.json中的key）
}

func NewMysqlProductStore(dbTag string) *MysqlProductStore {
	s := &MysqlProductStore{DbTag: dbTag}
	s.Init()
	return s
}

func (s *MysqlProductStore) List(ctx context.Context) ([]Product, error) {
	db, err := s.GetMysqlDb(s.DbTag)
	if err != nil {
		return nil, err
	}
	str, err := db.SetTable("product").SetOrder("id ASC").SetLimit(0, 1000).FindAll(ctx).ToString()
	if err != nil {
		return nil, err
	}
	if str == "" {
		return []Product{}, nil
	}
	var rows []map[string]interface{}
	if err := function.Json_decode(str, &rows); err != nil {
		return nil, err
	}
	result := make([]Product, 0, len(rows))
	for _, row := range rows {
		result = append(result, rowToProduct(row))
	}
	return result, nil
}

func (s *MysqlProductStore) Get(ctx context.Context, id int64) (*Product, error) {
	db, err := s.GetMysqlDb(s.DbTag)
	if err != nil {
		return nil, err
	}
	str, err := db.SetTable("product").SetWhere("id = ?", id).Find(ctx)
	if err != nil {
		return nil, err
	}
	if str == "" {
		return nil, ErrNotFound
	}
	var row map[string]interface{}
	if err := function.Json_decode(str, &row); err != nil {
		return nil, err
	}
	p := rowToProduct(row)
	return &p, nil
}

func (s *MysqlProductStore) Create(ctx context.Context, p *Product) (int64, error) {
	db, err := s.GetMysqlDb(s.DbTag)
	if err != nil {
		return 0, err
	}
	now := function.TimeToStr(time.Now(), "")
	if err := db.ToBegin(); err != nil {
		return 0, err
	}
	id, err := db.SetTable("product").Insert(map[string]interface{}{
		"name":       p.Name,
		"price":      p.Price,
		"stock":      p.Stock,
		"owner":      p.Owner,
		"created_at": now,
		"updated_at": now,
	})
	if err != nil {
		_ = db.Rollback()
		return 0, mapMysqlErr(err)
	}
	// 库存流水与商品行同事务落库，保证两步整体成功或整体回滚
	_, err = db.SetTable("stock_ledger").Insert(map[string]interface{}{
		"product_id": id,
		"change_num": p.Stock,
		"reason":     "init",
		"created_at": now,
	})
	if err != nil {
		_ = db.Rollback()
		return 0, mapMysqlErr(err)
	}
	if err := db.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *MysqlProductStore) Update(ctx context.Context, id int64, fields map[string]interface{}) error {
	db, err := s.GetMysqlDb(s.DbTag)
	if err != nil {
		return err
	}
	data := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		data[k] = v
	}
	data["updated_at"] = function.TimeToStr(time.Now(), "")

	// 库存调整同时写流水，和商品行更新放进同一事务
	if stockVal, hasStock := fields["stock"]; hasStock {
		if err := db.ToBegin(); err != nil {
			return err
		}
		num, err := db.SetTable("product").SetWhere("id = ?", id).Update(data)
		if err != nil {
			_ = db.Rollback()
			return mapMysqlErr(err)
		}
		if num == 0 {
			_ = db.Rollback()
			return ErrNotFound
		}
		_, err = db.SetTable("stock_ledger").Insert(map[string]interface{}{
			"product_id": id,
			"change_num": toInt64(stockVal),
			"reason":     "set",
			"created_at": function.TimeToStr(time.Now(), ""),
		})
		if err != nil {
			_ = db.Rollback()
			return mapMysqlErr(err)
		}
		return db.Commit()
	}

	num, err := db.SetTable("product").SetWhere("id = ?", id).Update(data)
	if err != nil {
		return mapMysqlErr(err)
	}
	if num == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MysqlProductStore) Delete(ctx context.Context, id int64) error {
	db, err := s.GetMysqlDb(s.DbTag)
	if err != nil {
		return err
	}
	num, err := db.SetTable("product").SetWhere("id = ?", id).Delete()
	if err != nil {
		return err
	}
	if num == 0 {
		return ErrNotFound
	}
	return nil
}

// mapMysqlErr 把驱动错误归一化为存储层错误
func mapMysqlErr(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "Duplicate entry") {
		return ErrDuplicate
	}
	return err
}

// rowToProduct 行数据转商品模型（mysql查询结果字符串字段较多，逐个宽松转换）
func rowToProduct(row map[string]interface{}) Product {
	return Product{
		ID:        toInt64(row["id"]),
		Name:      toString(row["name"]),
		Price:     toFloat64(row["price"]),
		Stock:     toInt64(row["stock"]),
		Owner:     toString(row["owner"]),
		CreatedAt: toString(row["created_at"]),
		UpdatedAt: toString(row["updated_at"]),
	}
}

func toString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func toInt64(v interface{}) int64 {
	switch val := v.(type) {
	case int64:
		return val
	case int:
		return int64(val)
	case float64:
		return int64(val)
	case string:
		n, _ := strconv.ParseInt(val, 10, 64)
		return n
	default:
		return 0
	}
}

func toFloat64(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int64:
		return float64(val)
	case int:
		return float64(val)
	case string:
		f, _ := strconv.ParseFloat(val, 64)
		return f
	default:
		return 0
	}
}
