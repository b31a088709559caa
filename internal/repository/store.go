package repository

import "context"

// Store 聚合所有仓库，并提供跨集合/表的事务。
// 它在启动时构造一次，然后注入到各个 Service 中。
type Store interface {
	Users() UserRepository
	Products() ProductRepository
	Orders() OrderRepository
	Notifications() NotificationRepository

	// WithinTransaction 在一个事务中执行 fn。fn 必须只使用传入的 ctx 和 tx，
	// fn 返回错误时事务回滚。
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error

	// Transactional 报告 WithinTransaction 是否真的会回滚。
	// 为 false 时 fn 中已完成的写入在出错后依然保留，调用方需要自行补偿。
	Transactional() bool

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
