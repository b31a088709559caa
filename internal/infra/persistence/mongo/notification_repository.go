package mongopersistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/domain"
	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/repository"
)

// MongoNotificationRepository 是 outbox 的 MongoDB 实现
type MongoNotificationRepository struct {
	coll *mongo.Collection
}

// NewMongoNotificationRepository 创建 MongoNotificationRepository 实例
func NewMongoNotificationRepository(db *mongo.Database) *MongoNotificationRepository {
	return &MongoNotificationRepository{coll: db.Collection(notificationsCollection)}
}

func (r *MongoNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	doc := newNotificationDocument(n)
	doc.ID = primitive.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("mongo: insert notification (%s to %s): %w", n.Kind, n.Recipient, err)
	}
	n.ID = doc.ID.Hex()
	return nil
}

func (r *MongoNotificationRepository) FindByID(ctx context.Context, id string) (*domain.Notification, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotificationNotFound
	}
	var doc notificationDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotificationNotFound
		}
		return nil, fmt.Errorf("mongo: find notification by id '%s': %w", id, err)
	}
	n := doc.toDomain()
	return &n, nil
}

func (r *MongoNotificationRepository) FindPending(ctx context.Context, createdBefore time.Time, limit int) ([]domain.Notification, error) {
	filter := bson.M{
		"status":    string(domain.NotificationStatusPending),
		"createdAt": bson.M{"$lt": createdBefore},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetLimit(int64(limit))
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: find pending notifications: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []notificationDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo: decode pending notifications: %w", err)
	}
	pending := make([]domain.Notification, 0, len(docs))
	for i := range docs {
		pending = append(pending, docs[i].toDomain())
	}
	return pending, nil
}

func (r *MongoNotificationRepository) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	return r.update(ctx, id, bson.M{
		"$set": bson.M{
			"status":    string(domain.NotificationStatusSent),
			"sentAt":    sentAt,
			"updatedAt": sentAt,
		},
		"$unset": bson.M{"lastError": ""},
	})
}

func (r *MongoNotificationRepository) RecordFailure(ctx context.Context, id string, errMsg string, final bool) error {
	set := bson.M{"lastError": errMsg, "updatedAt": time.Now().UTC()}
	if final {
		set["status"] = string(domain.NotificationStatusFailed)
	}
	return r.update(ctx, id, bson.M{"$set": set, "$inc": bson.M{"attempts": 1}})
}

func (r *MongoNotificationRepository) update(ctx context.Context, id string, update bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrNotificationNotFound
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("mongo: update notification '%s': %w", id, err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotificationNotFound
	}
	return nil
}
