package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"realty_notify/internal/domain"
	"realty_notify/internal/model"
)

type brokerDoc struct {
	Email      string    `bson:"email"`
	Name       string    `bson:"name"`
	Subscribed bool      `bson:"subscribed"`
	CreatedAt  time.Time `bson:"created_at"`
}

func (s *Store) UpsertBroker(ctx context.Context, broker model.Broker) (model.Broker, error) {
	if broker.CreatedAt.IsZero() {
		broker.CreatedAt = time.Now().UTC().Truncate(domain.TimePrecision)
	}
	var doc brokerDoc
	err := s.brokers.FindOneAndUpdate(ctx,
		bson.M{"email": broker.Email},
		bson.M{
			"$set":         bson.M{"name": broker.Name, "subscribed": broker.Subscribed},
			"$setOnInsert": bson.M{"created_at": broker.CreatedAt},
		},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		s.log.Error("mongo upsert broker failed", zap.String("email", broker.Email), zap.Error(err))
		return model.Broker{}, err
	}
	return doc.toModel(), nil
}

func (s *Store) GetBroker(ctx context.Context, email string) (model.Broker, error) {
	var doc brokerDoc
	err := s.brokers.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Broker{}, domain.ErrBrokerNotFound
	}
	if err != nil {
		s.log.Error("mongo get broker failed", zap.String("email", email), zap.Error(err))
		return model.Broker{}, err
	}
	return doc.toModel(), nil
}

func (s *Store) ListBrokers(ctx context.Context) ([]model.Broker, error) {
	cursor, err := s.brokers.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "email", Value: 1}}))
	if err != nil {
		s.log.Error("mongo list brokers failed", zap.Error(err))
		return nil, err
	}
	var docs []brokerDoc
	if err := cursor.All(ctx, &docs); err != nil {
		s.log.Error("mongo decode brokers failed", zap.Error(err))
		return nil, err
	}
	result := make([]model.Broker, 0, len(docs))
	for _, doc := range docs {
		result = append(result, doc.toModel())
	}
	return result, nil
}

func (d brokerDoc) toModel() model.Broker {
	return model.Broker{
		Email:      d.Email,
		Name:       d.Name,
		Subscribed: d.Subscribed,
		CreatedAt:  d.CreatedAt.UTC(),
	}
}
