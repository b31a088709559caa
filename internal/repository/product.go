package repository

import (
	"context"

	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/domain"
)

// ProductRepository 定义了商品目录的操作。
type ProductRepository interface {
	FindAll(ctx context.Context) ([]domain.Product, error)
	FindByID(ctx context.Context, id string) (*domain.Product, error)

	// DecrementStock 原子地扣减库存，仅当 stock >= quantity 时成功。
	// 商品不存在返回 ErrProductNotFound，库存不足返回 ErrInsufficientStock。
	DecrementStock(ctx context.Context, id string, quantity int) error

	// RestoreStock 把库存加回 quantity，用于没有事务回滚时撤销 DecrementStock。
	RestoreStock(ctx context.Context, id string, quantity int) error

	// Create 只被 seed 命令使用，HTTP 层没有商品写入路径。
	Create(ctx context.Context, product *domain.Product) error
}
