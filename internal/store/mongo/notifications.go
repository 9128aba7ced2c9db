package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"realty_notify/internal/domain"
	"realty_notify/internal/model"
)

type notificationDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	RecipientKind string             `bson:"recipient_kind"`
	Recipient     string             `bson:"recipient"`
	Broker        string             `bson:"broker,omitempty"`
	Category      string             `bson:"category"`
	Channel       string             `bson:"channel"`
	Message       string             `bson:"message"`
	DeliveryTime  time.Time          `bson:"delivery_time"`
	IsRead        bool               `bson:"is_read"`
	CreatedAt     time.Time          `bson:"created_at"`
}

func (s *Store) CreateNotification(ctx context.Context, notification model.Notification) (model.Notification, error) {
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now().UTC().Truncate(domain.TimePrecision)
	}
	doc := notificationDoc{
		ID:            primitive.NewObjectID(),
		RecipientKind: notification.RecipientKind,
		Recipient:     notification.Recipient,
		Broker:        notification.Broker,
		Category:      notification.Category,
		Channel:       notification.Channel,
		Message:       notification.Message,
		DeliveryTime:  notification.DeliveryTime,
		IsRead:        notification.Read,
		CreatedAt:     notification.CreatedAt,
	}
	if _, err := s.notifications.InsertOne(ctx, doc); err != nil {
		s.log.Error("mongo insert notification failed",
			zap.String("recipient", notification.Recipient),
			zap.String("category", notification.Category),
			zap.Error(err),
		)
		return model.Notification{}, err
	}
	return doc.toModel(), nil
}

func (s *Store) ListInbox(ctx context.Context, broker string, subscribed bool, limit int) ([]model.Notification, error) {
	kinds := bson.A{string(domain.RecipientAllBrokers)}
	if subscribed {
		kinds = append(kinds, string(domain.RecipientAllSubscribedBrokers))
	}
	filter := bson.M{"$or": bson.A{
		bson.M{"broker": broker},
		bson.M{"recipient_kind": bson.M{"$in": kinds}},
	}}
	opts := options.Find().SetSort(bson.D{
		{Key: "delivery_time", Value: -1},
		{Key: "created_at", Value: -1},
		{Key: "_id", Value: -1},
	})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := s.notifications.Find(ctx, filter, opts)
	if err != nil {
		s.log.Error("mongo list inbox failed", zap.String("broker", broker), zap.Error(err))
		return nil, err
	}
	var docs []notificationDoc
	if err := cursor.All(ctx, &docs); err != nil {
		s.log.Error("mongo decode inbox failed", zap.String("broker", broker), zap.Error(err))
		return nil, err
	}

	result := make([]model.Notification, 0, len(docs))
	for _, doc := range docs {
		result = append(result, doc.toModel())
	}
	return result, nil
}

func (s *Store) MarkRead(ctx context.Context, id string) (model.Notification, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.Notification{}, domain.ErrNotificationNotFound
	}
	var doc notificationDoc
	err = s.notifications.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"is_read": true}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Notification{}, domain.ErrNotificationNotFound
	}
	if err != nil {
		s.log.Error("mongo mark read failed", zap.String("id", id), zap.Error(err))
		return model.Notification{}, err
	}
	return doc.toModel(), nil
}

func (s *Store) MarkInboxRead(ctx context.Context, broker string) (int64, error) {
	result, err := s.notifications.UpdateMany(ctx,
		bson.M{"broker": broker, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true}},
	)
	if err != nil {
		s.log.Error("mongo mark inbox read failed", zap.String("broker", broker), zap.Error(err))
		return 0, err
	}
	return result.ModifiedCount, nil
}

func (d notificationDoc) toModel() model.Notification {
	return model.Notification{
		ID:            d.ID.Hex(),
		RecipientKind: d.RecipientKind,
		Recipient:     d.Recipient,
		Broker:        d.Broker,
		Category:      d.Category,
		Channel:       d.Channel,
		Message:       d.Message,
		DeliveryTime:  d.DeliveryTime.UTC(),
		Read:          d.IsRead,
		CreatedAt:     d.CreatedAt.UTC(),
	}
}
