package repository

import (
	"context"

	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/domain"
)

// OrderRepository 定义了订单的存储操作。
type OrderRepository interface {
	// Create 插入订单及其行项目，填充 ID。每次调用都会产生新记录 (没有去重键)。
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	FindByUser(ctx context.Context, userID string) ([]domain.Order, error)
}
