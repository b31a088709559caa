package repository

import "errors"

// 通用的存储库错误
var (
	// ErrNotFound 表示请求的记录未找到
	ErrNotFound = errors.New("repository: record not found")
	// ErrDuplicateEntry 表示插入的数据违反了唯一约束 (例如 users.email)
	ErrDuplicateEntry = errors.New("repository: duplicate entry")
	// ErrInsufficientStock 表示条件扣减库存时库存不足
	ErrInsufficientStock = errors.New("repository: insufficient stock")
)

// 特定资源的错误
var (
	ErrUserNotFound         = ErrNotFound
	ErrProductNotFound      = ErrNotFound
	ErrOrderNotFound        = ErrNotFound
	ErrNotificationNotFound = ErrNotFound
)
