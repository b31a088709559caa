package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/domain"
	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/repository/mocks"
	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/service"
)

func TestProductService_ListProducts(t *testing.T) {
	store := mocks.NewStore()
	ctx := context.Background()
	seeded := []domain.Product{
		{ID: "p1", Name: "Milk", Price: 65, Category: "Dairy", Stock: 10},
		{ID: "p2", Name: "Bread", Price: 60, Category: "Bakery", Stock: 15},
	}
	store.ProductRepo.On("FindAll", ctx).Return(seeded, nil).Once()

	products, err := service.NewProductService(store, 0).ListProducts(ctx)

	require.NoError(t, err)
	assert.ElementsMatch(t, seeded, products)
}

func TestProductService_ListProducts_EmptyIsNotNil(t *testing.T) {
	store := mocks.NewStore()
	ctx := context.Background()
	store.ProductRepo.On("FindAll", ctx).Return(nil, nil).Once()

	products, err := service.NewProductService(store, 0).ListProducts(ctx)

	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestProductService_ListProducts_StoreError(t *testing.T) {
	store := mocks.NewStore()
	ctx := context.Background()
	store.ProductRepo.On("FindAll", ctx).Return(nil, errors.New("connection reset")).Once()

	_, err := service.NewProductService(store, 0).ListProducts(ctx)

	assert.ErrorIs(t, err, service.ErrInternalServer)
}

func TestProductService_ListProducts_Cached(t *testing.T) {
	store := mocks.NewStore()
	ctx := context.Background()
	store.ProductRepo.On("FindAll", ctx).Return([]domain.Product{{ID: "p1", Name: "Milk", Stock: 10}}, nil).Twice()
	svc := service.NewProductService(store, time.Minute)

	first, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	first[0].Stock = 0 // 调用方修改返回值不影响缓存

	second, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, second[0].Stock)
	store.ProductRepo.AssertNumberOfCalls(t, "FindAll", 1)

	svc.InvalidateProducts()
	_, err = svc.ListProducts(ctx)
	require.NoError(t, err)
	store.ProductRepo.AssertNumberOfCalls(t, "FindAll", 2)
}
