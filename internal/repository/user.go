package repository

import (
	"context"

	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/domain"
)

// UserRepository 定义了用户数据的存储和检索操作。
type UserRepository interface {
	// FindByEmail 根据邮箱查找用户。不存在时返回 ErrUserNotFound。
	FindByEmail(ctx context.Context, email string) (*domain.User, error)

	// Create 插入新用户并填充 ID。邮箱重复时返回 ErrDuplicateEntry。
	Create(ctx context.Context, user *domain.User) error
}
