package service

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/domain"
	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/repository"
)

const productsCacheKey = "products:all"

// ProductService 提供商品目录的只读访问。
// cacheTTL > 0 时商品列表在进程内缓存，库存数字最多滞后一个 TTL。
type ProductService struct {
	store repository.Store
	cache *cache.Cache
}

func NewProductService(store repository.Store, cacheTTL time.Duration) *ProductService {
	if store == nil {
		panic("Store cannot be nil for ProductService")
	}
	s := &ProductService{store: store}
	if cacheTTL > 0 {
		s.cache = cache.New(cacheTTL, 2*cacheTTL)
	}
	return s
}

// ListProducts 返回全部商品，没有商品时返回空切片而不是 nil。
func (s *ProductService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	if s.cache != nil {
		if cached, found := s.cache.Get(productsCacheKey); found {
			if products, ok := cached.([]domain.Product); ok {
				return append([]domain.Product{}, products...), nil
			}
		}
	}

	products, err := s.store.Products().FindAll(ctx)
	if err != nil {
		logrus.WithField("operation", "ListProducts").WithError(err).Error("Failed to load products")
		return nil, ErrInternalServer
	}
	if products == nil {
		products = []domain.Product{}
	}

	if s.cache != nil {
		s.cache.Set(productsCacheKey, append([]domain.Product{}, products...), cache.DefaultExpiration)
	}
	return products, nil
}

// InvalidateProducts 清除商品列表缓存 (库存变化后调用)
func (s *ProductService) InvalidateProducts() {
	if s.cache != nil {
		s.cache.Delete(productsCacheKey)
	}
}
