package mongopersistence

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/domain"
	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/repository"
)

// MongoProductRepository 是 ProductRepository 接口的 MongoDB 实现
type MongoProductRepository struct {
	coll *mongo.Collection
}

// NewMongoProductRepository 创建 MongoProductRepository 实例
func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{coll: db.Collection(productsCollection)}
}

func (r *MongoProductRepository) FindAll(ctx context.Context) ([]domain.Product, error) {
	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("mongo: find all products: %w", err)
	}
	defer cursor.Close(ctx)

	products := make([]domain.Product, 0)
	for cursor.Next(ctx) {
		var doc productDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("mongo: decode product: %w", err)
		}
		products = append(products, doc.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("mongo: iterate products: %w", err)
	}
	return products, nil
}

// FindByID 根据 ID 查找商品。无法解析为 ObjectID 的 ID 视为不存在。
func (r *MongoProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrProductNotFound
	}
	var doc productDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrProductNotFound
		}
		return nil, fmt.Errorf("mongo: find product by id '%s': %w", id, err)
	}
	product := doc.toDomain()
	return &product, nil
}

// DecrementStock 使用带条件的 $inc，单文档更新在 MongoDB 中是原子的。
func (r *MongoProductRepository) DecrementStock(ctx context.Context, id string, quantity int) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrProductNotFound
	}
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "stock": bson.M{"$gte": quantity}},
		bson.M{"$inc": bson.M{"stock": -quantity}},
	)
	if err != nil {
		return fmt.Errorf("mongo: decrement stock of product '%s' by %d: %w", id, quantity, err)
	}
	if res.MatchedCount == 1 {
		return nil
	}

	count, err := r.coll.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("mongo: check product '%s' existence: %w", id, err)
	}
	if count == 0 {
		return repository.ErrProductNotFound
	}
	return repository.ErrInsufficientStock
}

func (r *MongoProductRepository) RestoreStock(ctx context.Context, id string, quantity int) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrProductNotFound
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$inc": bson.M{"stock": quantity}})
	if err != nil {
		return fmt.Errorf("mongo: restore stock of product '%s' by %d: %w", id, quantity, err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrProductNotFound
	}
	return nil
}

func (r *MongoProductRepository) Create(ctx context.Context, product *domain.Product) error {
	doc := productDocument{
		ID:       primitive.NewObjectID(),
		Name:     product.Name,
		Price:    product.Price,
		Category: product.Category,
		Image:    product.Image,
		Stock:    product.Stock,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("mongo: insert product '%s': %w", product.Name, err)
	}
	product.ID = doc.ID.Hex()
	return nil
}
