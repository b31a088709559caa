package gormpersistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/repository"
)

// GormStore 把所有 GORM 仓库绑定到同一个 *gorm.DB (或事务)。
type GormStore struct {
	db            *gorm.DB
	users         *GormUserRepository
	products      *GormProductRepository
	orders        *GormOrderRepository
	notifications *GormNotificationRepository
}

// NewGormStore 创建 GormStore 实例
func NewGormStore(db *gorm.DB) *GormStore {
	if db == nil {
		panic("database connection cannot be nil for GormStore")
	}
	return &GormStore{
		db:            db,
		users:         NewGormUserRepository(db),
		products:      NewGormProductRepository(db),
		orders:        NewGormOrderRepository(db),
		notifications: NewGormNotificationRepository(db),
	}
}

func (s *GormStore) Users() repository.UserRepository                 { return s.users }
func (s *GormStore) Products() repository.ProductRepository           { return s.products }
func (s *GormStore) Orders() repository.OrderRepository               { return s.orders }
func (s *GormStore) Notifications() repository.NotificationRepository { return s.notifications }

// WithinTransaction 在 GORM 事务中执行 fn，fn 拿到的是绑定到 tx 的 Store。
func (s *GormStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, NewGormStore(tx))
	})
}

func (s *GormStore) Transactional() bool { return true }

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("gorm: get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) Close(_ context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("gorm: get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}
