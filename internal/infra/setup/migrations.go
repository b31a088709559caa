package setup

import (
	"context"
	"fmt"
	"net/url"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/domain"
	mongopersistence "github.com/Kenneth-Mwenda/e-commerce-website-project/internal/infra/persistence/mongo"
)

// MigrateDB 自动迁移关系型数据库的表结构，返回错误以便调用者知道迁移是否成功。
func MigrateDB(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("cannot migrate database with nil DB connection")
	}
	err := db.AutoMigrate(
		&domain.User{},
		&domain.Product{},
		&domain.Order{},
		&domain.OrderItem{},
		&domain.Notification{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto-migrate tables: %w", err)
	}
	logrus.Info("Database migration completed successfully")
	return nil
}

// MigrateMongo 创建 MongoDB 索引。失败只记录日志 (与启动时连接失败的处理一致)。
func MigrateMongo(ctx context.Context, store *mongopersistence.MongoStore) {
	if err := store.EnsureIndexes(ctx); err != nil {
		logrus.WithError(err).Error("Failed to ensure MongoDB indexes")
		return
	}
	logrus.Info("MongoDB indexes ensured")
}

// redactURI 去掉连接串中的密码，用于日志。
func redactURI(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<unparseable uri>"
	}
	return u.Redacted()
}
