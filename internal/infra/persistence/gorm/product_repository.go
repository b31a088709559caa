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

// GormProductRepository 是 ProductRepository 接口的 GORM 实现
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository 创建 GormProductRepository 实例
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	if db == nil {
		panic("database connection cannot be nil for GormProductRepository")
	}
	return &GormProductRepository{db: db}
}

// FindAll 返回全部商品
func (r *GormProductRepository) FindAll(ctx context.Context) ([]domain.Product, error) {
	products := make([]domain.Product, 0)
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("gorm: find all products: %w", err)
	}
	return products, nil
}

// FindByID 根据 ID 查找商品
func (r *GormProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrProductNotFound
		}
		return nil, fmt.Errorf("gorm: find product by id '%s': %w", id, err)
	}
	return &product, nil
}

// DecrementStock 使用条件 UPDATE 扣减库存，不需要行锁。
func (r *GormProductRepository) DecrementStock(ctx context.Context, id string, quantity int) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("id = ? AND stock >= ?", id, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		return fmt.Errorf("gorm: decrement stock of product '%s' by %d: %w", id, quantity, result.Error)
	}
	if result.RowsAffected == 1 {
		return nil
	}

	// 没有行受影响: 区分商品不存在和库存不足
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("gorm: check product '%s' existence: %w", id, err)
	}
	if count == 0 {
		return repository.ErrProductNotFound
	}
	return repository.ErrInsufficientStock
}

// RestoreStock 把库存加回去
func (r *GormProductRepository) RestoreStock(ctx context.Context, id string, quantity int) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("id = ?", id).
		Update("stock", gorm.Expr("stock + ?", quantity))
	if result.Error != nil {
		return fmt.Errorf("gorm: restore stock of product '%s' by %d: %w", id, quantity, result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrProductNotFound
	}
	return nil
}

// Create 插入商品
func (r *GormProductRepository) Create(ctx context.Context, product *domain.Product) error {
	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		if isDuplicateEntryError(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: create product '%s': %w", product.Name, err)
	}
	return nil
}
