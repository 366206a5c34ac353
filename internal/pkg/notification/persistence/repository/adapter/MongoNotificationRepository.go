package adapter

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	notification "go-courier/internal/pkg/notification/application/domain"
	repository "go-courier/internal/pkg/notification/persistence/repository/port"
)

// MongoNotificationRepository stores notification records in the
// notifications collection.
type MongoNotificationRepository struct {
	notifications *mongo.Collection
}

func NewMongoNotificationRepository(db *mongo.Database) *MongoNotificationRepository {
	return &MongoNotificationRepository{notifications: db.Collection("notifications")}
}

var _ repository.NotificationRepository = (*MongoNotificationRepository)(nil)

func (r *MongoNotificationRepository) Insert(ctx context.Context, n notification.Notification) (string, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Status == "" {
		n.Status = notification.StatusUnread
	}
	if _, err := r.notifications.InsertOne(ctx, n); err != nil {
		return "", fmt.Errorf("mongo: insert notification: %w", err)
	}
	return n.ID, nil
}

func (r *MongoNotificationRepository) List(ctx context.Context, userID string, page, limit int) ([]notification.Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	if page < 1 {
		page = 1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cur, err := r.notifications.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: list notifications: %w", err)
	}
	defer cur.Close(ctx)

	var out []notification.Notification
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("mongo: decode notifications: %w", err)
	}
	return out, nil
}

func (r *MongoNotificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	n, err := r.notifications.CountDocuments(ctx, bson.M{"userId": userID, "status": notification.StatusUnread})
	if err != nil {
		return 0, fmt.Errorf("mongo: count unread: %w", err)
	}
	return n, nil
}

func (r *MongoNotificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	res, err := r.notifications.UpdateOne(ctx,
		bson.M{"_id": id, "userId": userID},
		bson.M{"$set": bson.M{"status": notification.StatusRead}},
	)
	if err != nil {
		return fmt.Errorf("mongo: mark read: %w", err)
	}
	if res.MatchedCount == 0 {
		return notification.ErrNotFound
	}
	return nil
}

func (r *MongoNotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	_, err := r.notifications.UpdateMany(ctx,
		bson.M{"userId": userID, "status": notification.StatusUnread},
		bson.M{"$set": bson.M{"status": notification.StatusRead}},
	)
	if err != nil {
		return fmt.Errorf("mongo: mark all read: %w", err)
	}
	return nil
}
