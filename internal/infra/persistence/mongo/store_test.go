package mongopersistence

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/domain"
	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/repository"
	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/service"
)

// startedCommands 取出所有已发送命令的名称
func startedCommands(mt *mtest.T) []string {
	var names []string
	for evt := mt.GetStartedEvent(); evt != nil; evt = mt.GetStartedEvent() {
		names = append(names, evt.CommandName)
	}
	return names
}

func productDoc(oid primitive.ObjectID, name string, price float64, stock int) bson.D {
	return bson.D{
		{Key: "_id", Value: oid},
		{Key: "name", Value: name},
		{Key: "price", Value: price},
		{Key: "stock", Value: stock},
	}
}

func TestMongoStore_WithinTransaction(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("without transactions runs fn directly", func(mt *mtest.T) {
		store := NewMongoStore(mt.Client, "supermarket", false)
		assert.False(mt, store.Transactional())

		var got repository.Store
		err := store.WithinTransaction(ctx, func(txCtx context.Context, tx repository.Store) error {
			got = tx
			assert.Nil(mt, mongo.SessionFromContext(txCtx))
			return nil
		})

		require.NoError(mt, err)
		assert.Same(mt, store, got)
		assert.Empty(mt, startedCommands(mt))
	})

	mt.Run("with transactions fn runs in a session", func(mt *mtest.T) {
		store := NewMongoStore(mt.Client, "supermarket", true)
		assert.True(mt, store.Transactional())
		boom := errors.New("boom")

		err := store.WithinTransaction(ctx, func(txCtx context.Context, tx repository.Store) error {
			assert.NotNil(mt, mongo.SessionFromContext(txCtx))
			return boom
		})

		assert.ErrorIs(mt, err, boom)
	})
}

func TestSupportsTransactions(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	tests := []struct {
		name  string
		reply bson.D
		want  bool
	}{
		{"replica set member", bson.D{{Key: "isWritablePrimary", Value: true}, {Key: "setName", Value: "rs0"}}, true},
		{"mongos", bson.D{{Key: "isWritablePrimary", Value: true}, {Key: "msg", Value: "isdbgrid"}}, true},
		{"standalone", bson.D{{Key: "isWritablePrimary", Value: true}}, false},
	}
	for _, tt := range tests {
		mt.Run(tt.name, func(mt *mtest.T) {
			mt.AddMockResponses(mtest.CreateSuccessResponse(tt.reply...))

			ok, err := SupportsTransactions(ctx, mt.Client)

			require.NoError(mt, err)
			assert.Equal(mt, tt.want, ok)
			evt := mt.GetStartedEvent()
			require.NotNil(mt, evt)
			assert.Equal(mt, "hello", evt.CommandName)
		})
	}

	mt.Run("command error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    13,
			Name:    "Unauthorized",
			Message: "not authorized on admin",
		}))

		ok, err := SupportsTransactions(ctx, mt.Client)

		assert.Error(mt, err)
		assert.False(mt, ok)
	})
}

func TestMongoStore_EnsureIndexes(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("product names are unique", func(mt *mtest.T) {
		for i := 0; i < 4; i++ {
			mt.AddMockResponses(mtest.CreateSuccessResponse())
		}
		store := NewMongoStore(mt.Client, "supermarket", false)

		require.NoError(mt, store.EnsureIndexes(context.Background()))

		type index struct {
			Name   string `bson:"name"`
			Unique bool   `bson:"unique"`
		}
		indexes := map[string][]index{}
		for evt := mt.GetStartedEvent(); evt != nil; evt = mt.GetStartedEvent() {
			var cmd struct {
				Collection string  `bson:"createIndexes"`
				Indexes    []index `bson:"indexes"`
			}
			require.NoError(mt, bson.Unmarshal(evt.Command, &cmd))
			indexes[cmd.Collection] = cmd.Indexes
		}
		assert.Equal(mt, []index{{Name: "idx_products_name", Unique: true}}, indexes[productsCollection])
		assert.Equal(mt, []index{{Name: "idx_users_email", Unique: true}}, indexes[usersCollection])
		assert.Len(mt, indexes[ordersCollection], 2)
		assert.Len(mt, indexes[notificationsCollection], 1)
	})
}

// 不支持事务时，被拒绝的订单不能留下库存变化
func TestPlaceOrder_WithoutTransactions(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	sugar := primitive.NewObjectID()
	milk := primitive.NewObjectID()

	mt.Run("total mismatch writes nothing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "supermarket.products", mtest.FirstBatch,
			productDoc(sugar, "Sugar 2kg", 250, 5)))
		orders := service.NewOrderService(NewMongoStore(mt.Client, "supermarket", false), nil, service.PricingCatalog, "KES")

		_, err := orders.PlaceOrder(ctx, service.PlaceOrderInput{
			UserID: "u1",
			Items:  []domain.OrderItem{{ProductID: sugar.Hex(), Quantity: 1}},
			Total:  400,
			Email:  "a@b.com",
		})

		assert.ErrorIs(mt, err, service.ErrTotalMismatch)
		assert.Equal(mt, []string{"find"}, startedCommands(mt))
	})

	mt.Run("stock taken for earlier items is restored", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "supermarket.products", mtest.FirstBatch, productDoc(sugar, "Sugar 2kg", 250, 5)),
			mtest.CreateCursorResponse(0, "supermarket.products", mtest.FirstBatch, productDoc(milk, "Milk 500ml", 65, 1)),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			// 另一个订单抢先买走了最后一盒牛奶
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
			mtest.CreateCursorResponse(0, "supermarket.products", mtest.FirstBatch, bson.D{{Key: "n", Value: 1}}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
		)
		orders := service.NewOrderService(NewMongoStore(mt.Client, "supermarket", false), nil, service.PricingCatalog, "KES")

		_, err := orders.PlaceOrder(ctx, service.PlaceOrderInput{
			UserID: "u1",
			Items: []domain.OrderItem{
				{ProductID: sugar.Hex(), Quantity: 2},
				{ProductID: milk.Hex(), Quantity: 1},
			},
			Total: 565,
			Email: "a@b.com",
		})

		assert.ErrorIs(mt, err, service.ErrInsufficientStock)
		var names []string
		var last bson.Raw
		for evt := mt.GetStartedEvent(); evt != nil; evt = mt.GetStartedEvent() {
			names = append(names, evt.CommandName)
			last = evt.Command
		}
		assert.Equal(mt, []string{"find", "find", "update", "update", "aggregate", "update"}, names)

		q, u := firstUpdate(mt, last)
		var filter struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		require.NoError(mt, bson.Unmarshal(q, &filter))
		assert.Equal(mt, sugar, filter.ID)
		var inc struct {
			Inc struct {
				Stock int `bson:"stock"`
			} `bson:"$inc"`
		}
		require.NoError(mt, bson.Unmarshal(u, &inc))
		assert.Equal(mt, 2, inc.Inc.Stock)
	})
}
