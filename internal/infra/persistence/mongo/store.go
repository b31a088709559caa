package mongopersistence

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/repository"
)

// MongoStore 把所有 MongoDB 仓库绑定到同一个数据库。
// 事务通过 session 实现: 仓库方法使用传入的 ctx，在事务中它就是 mongo.SessionContext。
type MongoStore struct {
	client          *mongo.Client
	db              *mongo.Database
	useTransactions bool

	users         *MongoUserRepository
	products      *MongoProductRepository
	orders        *MongoOrderRepository
	notifications *MongoNotificationRepository
}

// NewMongoStore 创建 MongoStore 实例。
// useTransactions 为 false 时 WithinTransaction 直接执行 fn (单机 mongod 不支持事务)。
func NewMongoStore(client *mongo.Client, dbName string, useTransactions bool) *MongoStore {
	if client == nil {
		panic("mongo client cannot be nil for MongoStore")
	}
	db := client.Database(dbName)
	return &MongoStore{
		client:          client,
		db:              db,
		useTransactions: useTransactions,
		users:           NewMongoUserRepository(db),
		products:        NewMongoProductRepository(db),
		orders:          NewMongoOrderRepository(db),
		notifications:   NewMongoNotificationRepository(db),
	}
}

func (s *MongoStore) Users() repository.UserRepository                 { return s.users }
func (s *MongoStore) Products() repository.ProductRepository           { return s.products }
func (s *MongoStore) Orders() repository.OrderRepository               { return s.orders }
func (s *MongoStore) Notifications() repository.NotificationRepository { return s.notifications }

func (s *MongoStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	if !s.useTransactions {
		return fn(ctx, s)
	}
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("mongo: start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, s)
	})
	return err
}

func (s *MongoStore) Transactional() bool { return s.useTransactions }

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// SupportsTransactions 通过 hello 命令判断部署拓扑:
// 只有副本集成员 (有 setName) 和 mongos (msg 为 isdbgrid) 支持多文档事务。
func SupportsTransactions(ctx context.Context, client *mongo.Client) (bool, error) {
	var reply struct {
		SetName string `bson:"setName"`
		Msg     string `bson:"msg"`
	}
	if err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).Decode(&reply); err != nil {
		return false, fmt.Errorf("mongo: hello: %w", err)
	}
	return reply.SetName != "" || reply.Msg == "isdbgrid", nil
}

// EnsureIndexes 创建 email 和商品名称的唯一索引，以及 outbox 和订单查询所需的索引。
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("idx_users_email")},
		},
		productsCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true).SetName("idx_products_name")},
		},
		ordersCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetName("idx_orders_user")},
			{Keys: bson.D{{Key: "reference", Value: 1}}, Options: options.Index().SetUnique(true).SetName("idx_orders_reference")},
		},
		notificationsCollection: {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: 1}}, Options: options.Index().SetName("idx_notifications_status_created")},
		},
	}
	for coll, models := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("mongo: create indexes on %s: %w", coll, err)
		}
	}
	return nil
}
