package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	notificationsCollection = "notifications"
	brokersCollection       = "brokers"
)

type Store struct {
	notifications *mongo.Collection
	brokers       *mongo.Collection
	log           *zap.Logger
}

func New(database *mongo.Database, logger *zap.Logger) *Store {
	return &Store{
		notifications: database.Collection(notificationsCollection),
		brokers:       database.Collection(brokersCollection),
		log:           logger,
	}
}

// EnsureIndexes creates the personal-inbox, broadcast and broker identity
// indexes. It is safe to call on every start.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.notifications.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "broker", Value: 1}, {Key: "delivery_time", Value: -1}}},
		{Keys: bson.D{{Key: "recipient_kind", Value: 1}, {Key: "delivery_time", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("mongo notification indexes: %w", err)
	}
	_, err = s.brokers.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("mongo broker index: %w", err)
	}
	return nil
}

// Open connects to uri, verifies the connection and prepares indexes on the
// named database.
func Open(ctx context.Context, uri, database string, logger *zap.Logger) (*Store, func(), error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		logger.Error("mongo connect failed", zap.Error(err))
		return nil, nil, err
	}
	cleanup := func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}
	if err := client.Ping(ctx, nil); err != nil {
		logger.Error("mongo ping failed", zap.Error(err))
		cleanup()
		return nil, nil, err
	}
	s := New(client.Database(database), logger)
	if err := s.EnsureIndexes(ctx); err != nil {
		logger.Error("mongo ensure indexes failed", zap.Error(err))
		cleanup()
		return nil, nil, err
	}
	return s, cleanup, nil
}
