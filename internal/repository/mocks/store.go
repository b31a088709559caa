package mocks

import (
	"context"

	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/repository"
	"github.com/stretchr/testify/mock"
)

// Store 是 repository.Store 的 mock。仓库字段直接暴露，方便在测试中设置预期。
// WithinTransaction 用同一个 ctx 和 Store 直接调用 fn，fn 的错误原样返回。
type Store struct {
	mock.Mock

	UserRepo         *UserRepository
	ProductRepo      *ProductRepository
	OrderRepo        *OrderRepository
	NotificationRepo *NotificationRepository

	// NoRollback 模拟不支持事务的存储 (Transactional 返回 false)
	NoRollback bool
}

// NewStore 创建一个带有全新仓库 mock 的 Store。
func NewStore() *Store {
	return &Store{
		UserRepo:         new(UserRepository),
		ProductRepo:      new(ProductRepository),
		OrderRepo:        new(OrderRepository),
		NotificationRepo: new(NotificationRepository),
	}
}

func (s *Store) Users() repository.UserRepository                 { return s.UserRepo }
func (s *Store) Products() repository.ProductRepository           { return s.ProductRepo }
func (s *Store) Orders() repository.OrderRepository               { return s.OrderRepo }
func (s *Store) Notifications() repository.NotificationRepository { return s.NotificationRepo }

// WithinTransaction records the call and runs fn against the same mock store.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	s.Called(ctx)
	return fn(ctx, s)
}

func (s *Store) Transactional() bool { return !s.NoRollback }

// Ping provides a mock function with given fields: ctx
func (s *Store) Ping(ctx context.Context) error {
	ret := s.Called(ctx)
	return ret.Error(0)
}

// Close provides a mock function with given fields: ctx
func (s *Store) Close(ctx context.Context) error {
	ret := s.Called(ctx)
	return ret.Error(0)
}

// AssertAllExpectations 检查 Store 本身和所有仓库 mock 的预期。
func (s *Store) AssertAllExpectations(t mock.TestingT) {
	s.Mock.AssertExpectations(t)
	s.UserRepo.AssertExpectations(t)
	s.ProductRepo.AssertExpectations(t)
	s.OrderRepo.AssertExpectations(t)
	s.NotificationRepo.AssertExpectations(t)
}
