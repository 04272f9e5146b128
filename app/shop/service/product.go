package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/dfpopp/cardmart/app/shop/model"
	"github.com/dfpopp/cardmart/base"
	"github.com/dfpopp/cardmart/function"
)

// ProductService 商品服务
// 所有变更遵守同一顺序：校验→归属检查→落库→缓存失效→广播→记动态，
// 任何一步失败即终止，失败只回给请求方，绝不广播
type ProductService struct {
	base.BaseService
	store    model.ProductStore
	cache    *model.CacheModel
	bus      Broadcaster
	activity *ActivityService
}

func NewProductService(store model.ProductStore, cache *model.CacheModel, bus Broadcaster, activity *ActivityService) *ProductService {
	s := &ProductService{
		store:    store,
		cache:    cache,
		bus:      bus,
		activity: activity,
	}
	s.ServiceName = "product"
	s.Init()
	return s
}

// withRetry 瞬时存储错误自动重试一次，仍失败按内部错误处理
func (s *ProductService) withRetry(op string, fn func() error) error {
	err := fn()
	if err == nil || !isTransientErr(err) {
		return err
	}
	s.LogError("存储操作失败，重试一次", "op", op, "err", err)
	return fn()
}

// List 商品列表（优先走redis热缓存）
func (s *ProductService) List(ctx context.Context) ([]model.Product, *BizError) {
	if s.cache != nil {
		if cached, hit := s.cache.GetProductList(); hit {
			var list []model.Product
			if err := function.Json_decode(cached, &list); err == nil {
				return list, nil
			}
		}
	}
	var list []model.Product
	err := s.withRetry("list", func() error {
		var e error
		list, e = s.store.List(ctx)
		return e
	})
	if err != nil {
		s.LogError("查询商品列表失败：", err)
		return nil, InternalErr()
	}
	if s.cache != nil {
		s.cache.SetProductList(function.Json_encode(list))
	}
	return list, nil
}

// Get 查询单个商品
func (s *ProductService) Get(ctx context.Context, id int64) (*model.Product, *BizError) {
	if id <= 0 {
		return nil, ValidationErr("商品ID非法")
	}
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return p, nil
}

// Create 上架商品
func (s *ProductService) Create(ctx context.Context, owner, name string, price float64, stock int64) (*model.Product, *BizError) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ValidationErr("商品名称不能为空")
	}
	if price < 0 {
		return nil, ValidationErr("商品价格不能为负")
	}
	if stock < 0 {
		return nil, ValidationErr("商品库存不能为负")
	}
	if strings.TrimSpace(owner) == "" {
		return nil, ValidationErr("缺少上架人")
	}

	p := &model.Product{Name: name, Price: price, Stock: stock, Owner: owner}
	var id int64
	err := s.withRetry("create", func() error {
		var e error
		id, e = s.store.Create(ctx, p)
		return e
	})
	if err != nil {
		return nil, mapStoreErr(err)
	}
	created, getErr := s.store.Get(ctx, id)
	if getErr != nil {
		// 写入已成功，回读失败不影响结果，用入参补齐
		cp := *p
		cp.ID = id
		created = &cp
	}

	if s.cache != nil {
		s.cache.InvalidateProducts()
	}
	s.bus.BroadcastAll("product.added", created)
	s.activity.Push(ActivityProduct, owner+" 上架了 "+name)
	return created, nil
}

// Update 修改商品（仅归属人可改）
func (s *ProductService) Update(ctx context.Context, requester string, id int64, fields map[string]interface{}) (*model.Product, *BizError) {
	if bizErr := s.checkOwnership(ctx, requester, id); bizErr != nil {
		return nil, bizErr
	}
	data := make(map[string]interface{})
	if v, ok := fields["name"]; ok {
		name, _ := v.(string)
		if strings.TrimSpace(name) == "" {
			return nil, ValidationErr("商品名称不能为空")
		}
		data["name"] = strings.TrimSpace(name)
	}
	if v, ok := fields["price"]; ok {
		price, valid := toNonNegFloat(v)
		if !valid {
			return nil, ValidationErr("商品价格不能为负")
		}
		data["price"] = price
	}
	if v, ok := fields["stock"]; ok {
		stock, valid := toNonNegInt(v)
		if !valid {
			return nil, ValidationErr("商品库存不能为负")
		}
		data["stock"] = stock
	}
	if len(data) == 0 {
		return nil, ValidationErr("没有可更新的字段")
	}

	err := s.withRetry("update", func() error {
		return s.store.Update(ctx, id, data)
	})
	if err != nil {
		return nil, mapStoreErr(err)
	}
	updated, getErr := s.store.Get(ctx, id)
	if getErr != nil {
		return nil, mapStoreErr(getErr)
	}

	if s.cache != nil {
		s.cache.InvalidateProducts()
	}
	s.bus.BroadcastAll("product.updated", updated)
	s.activity.Push(ActivityProduct, requester+" 修改了商品 "+updated.Name)
	return updated, nil
}

// Delete 下架商品（仅归属人可删）
func (s *ProductService) Delete(ctx context.Context, requester string, id int64) *BizError {
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return mapStoreErr(err)
	}
	if current.Owner != requester {
		return ForbiddenErr("仅商品归属人可操作")
	}
	err = s.withRetry("delete", func() error {
		return s.store.Delete(ctx, id)
	})
	if err != nil {
		return mapStoreErr(err)
	}

	if s.cache != nil {
		s.cache.InvalidateProducts()
	}
	s.bus.BroadcastAll("product.removed", map[string]interface{}{"id": id, "name": current.Name})
	s.activity.Push(ActivityProduct, requester+" 下架了 "+current.Name)
	return nil
}

// SetPrice 调价（仅归属人）
func (s *ProductService) SetPrice(ctx context.Context, requester string, id int64, price float64) (*model.Product, *BizError) {
	if price < 0 {
		return nil, ValidationErr("商品价格不能为负")
	}
	if bizErr := s.checkOwnership(ctx, requester, id); bizErr != nil {
		return nil, bizErr
	}
	err := s.withRetry("set_price", func() error {
		return s.store.Update(ctx, id, map[string]interface{}{"price": price})
	})
	if err != nil {
		return nil, mapStoreErr(err)
	}
	updated, getErr := s.store.Get(ctx, id)
	if getErr != nil {
		return nil, mapStoreErr(getErr)
	}

	if s.cache != nil {
		s.cache.InvalidateProducts()
	}
	s.bus.BroadcastAll("price.changed", updated)
	s.activity.Push(ActivityPrice, fmt.Sprintf("%s 将 %s 调价为 %.2f", requester, updated.Name, price))
	return updated, nil
}

// SetStock 调库存（仅归属人，mysql后端同事务写流水）
func (s *ProductService) SetStock(ctx context.Context, requester string, id int64, stock int64) (*model.Product, *BizError) {
	if stock < 0 {
		return nil, ValidationErr("商品库存不能为负")
	}
	if bizErr := s.checkOwnership(ctx, requester, id); bizErr != nil {
		return nil, bizErr
	}
	err := s.withRetry("set_stock", func() error {
		return s.store.Update(ctx, id, map[string]interface{}{"stock": stock})
	})
	if err != nil {
		return nil, mapStoreErr(err)
	}
	updated, getErr := s.store.Get(ctx, id)
	if getErr != nil {
		return nil, mapStoreErr(getErr)
	}

	if s.cache != nil {
		s.cache.InvalidateProducts()
	}
	s.bus.BroadcastAll("stock.changed", updated)
	s.activity.Push(ActivityStock, fmt.Sprintf("%s 将 %s 库存调整为 %d", requester, updated.Name, stock))
	return updated, nil
}

// checkOwnership 归属检查：任何副作用（落库/广播/动态）之前执行
func (s *ProductService) checkOwnership(ctx context.Context, requester string, id int64) *BizError {
	if id <= 0 {
		return ValidationErr("商品ID非法")
	}
	if strings.TrimSpace(requester) == "" {
		return ForbiddenErr("缺少请求人身份")
	}
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return mapStoreErr(err)
	}
	if current.Owner != requester {
		return ForbiddenErr("仅商品归属人可操作")
	}
	return nil
}

func toNonNegFloat(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, val >= 0
	case int64:
		return float64(val), val >= 0
	case int:
		return float64(val), val >= 0
	default:
		return 0, false
	}
}

func toNonNegInt(v interface{}) (int64, bool) {
	switch val := v.(type) {
	case float64:
		return int64(val), val >= 0
	case int64:
		return val, val >= 0
	case int:
		return int64(val), val >= 0
	default:
		return 0, false
	}
}
