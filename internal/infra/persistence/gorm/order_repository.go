package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/domain"
	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/repository"
)

// GormOrderRepository 是 OrderRepository 接口的 GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository 创建 GormOrderRepository 实例
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	if db == nil {
		panic("database connection cannot be nil for GormOrderRepository")
	}
	return &GormOrderRepository{db: db}
}

// Create 插入订单，GORM 会在同一语句链中写入 Items 关联。
func (r *GormOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		if isDuplicateEntryError(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: create order for user '%s': %w", order.UserID, err)
	}
	return nil
}

// FindByID 根据 ID 查找订单 (包含行项目)
func (r *GormOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var order domain.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrOrderNotFound
		}
		return nil, fmt.Errorf("gorm: find order by id '%s': %w", id, err)
	}
	return &order, nil
}

// FindByUser 返回用户的全部订单，最新的在前
func (r *GormOrderRepository) FindByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	orders := make([]domain.Order, 0)
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: find orders of user '%s': %w", userID, err)
	}
	return orders, nil
}
