package service

import (
	"context"
	"errors"
	"testing"

	"github.com/dfpopp/cardmart/app/shop/model"
	"github.com/dfpopp/cardmart/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProductFixture() (*ProductService, *model.MemoryProductStore, *fakeBus) {
	bus := newFakeBus()
	store := model.NewMemoryProductStore()
	activity := NewActivityService(bus, nil)
	return NewProductService(store, nil, bus, activity), store, bus
}

func TestProductCreateBroadcastsAndLogs(t *testing.T) {
	product, _, bus := newProductFixture()

	created, bizErr := product.Create(context.Background(), "Alice", "青眼白龙", 99.5, 3)
	require.Nil(t, bizErr)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "Alice", created.Owner)

	require.Len(t, bus.callsOf("product.added"), 1)
	require.Len(t, bus.callsOf("activity.new"), 1)
}

func TestProductCreateValidation(t *testing.T) {
	product, _, bus := newProductFixture()
	ctx := context.Background()

	cases := []struct {
		name  string
		owner string
		pname string
		price float64
		stock int64
	}{
		{"空名称", "Alice", "   ", 1, 1},
		{"负价格", "Alice", "卡牌", -1, 1},
		{"负库存", "Alice", "卡牌", 1, -1},
		{"缺上架人", "", "卡牌", 1, 1},
	}
	for _, tc := range cases {
		_, bizErr := product.Create(ctx, tc.owner, tc.pname, tc.price, tc.stock)
		require.NotNil(t, bizErr, tc.name)
		assert.Equal(t, response.CodeValidation, bizErr.Code, tc.name)
	}
	// 校验失败无任何副作用
	assert.Empty(t, bus.callsOf("product.added"))
}

func TestProductCreateDuplicateName(t *testing.T) {
	product, _, bus := newProductFixture()
	ctx := context.Background()

	_, bizErr := product.Create(ctx, "Alice", "青眼白龙", 10, 1)
	require.Nil(t, bizErr)

	_, bizErr = product.Create(ctx, "Bob", "青眼白龙", 20, 1)
	require.NotNil(t, bizErr)
	assert.Equal(t, response.CodeConflict, bizErr.Code)
	assert.Len(t, bus.callsOf("product.added"), 1)
}

func TestProductUpdateOwnershipChecked(t *testing.T) {
	product, store, bus := newProductFixture()
	ctx := context.Background()

	created, _ := product.Create(ctx, "Alice", "青眼白龙", 10, 1)
	bus.reset()

	// 非归属人：403，且库里数据不变、无广播
	_, bizErr := product.Update(ctx, "Bob", created.ID, map[string]interface{}{"price": 999.0})
	require.NotNil(t, bizErr)
	assert.Equal(t, response.CodeForbidden, bizErr.Code)
	assert.Empty(t, bus.callsOf("product.updated"))

	current, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 10.0, current.Price)
}

func TestProductUpdateMissingID(t *testing.T) {
	product, _, _ := newProductFixture()

	_, bizErr := product.Update(context.Background(), "Alice", 42, map[string]interface{}{"price": 1.0})
	require.NotNil(t, bizErr)
	assert.Equal(t, response.CodeNotFound, bizErr.Code)
}

func TestProductSetPriceAndStock(t *testing.T) {
	product, _, bus := newProductFixture()
	ctx := context.Background()

	created, _ := product.Create(ctx, "Alice", "青眼白龙", 10, 1)
	bus.reset()

	_, bizErr := product.SetPrice(ctx, "Alice", created.ID, -5)
	require.NotNil(t, bizErr)
	assert.Equal(t, response.CodeValidation, bizErr.Code)

	updated, bizErr := product.SetPrice(ctx, "Alice", created.ID, 88)
	require.Nil(t, bizErr)
	assert.Equal(t, 88.0, updated.Price)
	require.Len(t, bus.callsOf("price.changed"), 1)

	updated, bizErr = product.SetStock(ctx, "Alice", created.ID, 7)
	require.Nil(t, bizErr)
	assert.Equal(t, int64(7), updated.Stock)
	require.Len(t, bus.callsOf("stock.changed"), 1)
}

func TestProductDelete(t *testing.T) {
	product, store, bus := newProductFixture()
	ctx := context.Background()

	created, _ := product.Create(ctx, "Alice", "青眼白龙", 10, 1)
	bus.reset()

	bizErr := product.Delete(ctx, "Bob", created.ID)
	require.NotNil(t, bizErr)
	assert.Equal(t, response.CodeForbidden, bizErr.Code)

	bizErr = product.Delete(ctx, "Alice", created.ID)
	require.Nil(t, bizErr)
	require.Len(t, bus.callsOf("product.removed"), 1)

	_, err := store.Get(ctx, created.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

// flakyStore 前N次写操作返回瞬时错误
type flakyStore struct {
	model.ProductStore
	failures int
}

func (s *flakyStore) Create(ctx context.Context, p *model.Product) (int64, error) {
	if s.failures > 0 {
		s.failures--
		return 0, errors.New("connection reset by peer")
	}
	return s.ProductStore.Create(ctx, p)
}

func TestProductTransientErrorRetriedOnce(t *testing.T) {
	bus := newFakeBus()
	store := &flakyStore{ProductStore: model.NewMemoryProductStore(), failures: 1}
	activity := NewActivityService(bus, nil)
	product := NewProductService(store, nil, bus, activity)

	// 首次失败，重试一次成功
	created, bizErr := product.Create(context.Background(), "Alice", "青眼白龙", 10, 1)
	require.Nil(t, bizErr)
	assert.Equal(t, int64(1), created.ID)
}

func TestProductTransientErrorFailsAfterRetry(t *testing.T) {
	bus := newFakeBus()
	store := &flakyStore{ProductStore: model.NewMemoryProductStore(), failures: 2}
	activity := NewActivityService(bus, nil)
	product := NewProductService(store, nil, bus, activity)

	_, bizErr := product.Create(context.Background(), "Alice", "青眼白龙", 10, 1)
	require.NotNil(t, bizErr)
	assert.Equal(t, response.CodeInternal, bizErr.Code)
	assert.Empty(t, bus.callsOf("product.added"))
}
