package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"
	"realty_notify/internal/db"
	"realty_notify/internal/domain"
	"realty_notify/internal/model"
)

func (s *Store) UpsertBroker(ctx context.Context, broker model.Broker) (model.Broker, error) {
	if broker.CreatedAt.IsZero() {
		broker.CreatedAt = time.Now().UTC().Truncate(domain.TimePrecision)
	}
	if err := s.queries.UpsertBroker(ctx, db.UpsertBrokerParams{
		Email:      broker.Email,
		Name:       broker.Name,
		Subscribed: broker.Subscribed,
		CreatedAt:  broker.CreatedAt,
	}); err != nil {
		s.log.Error("sql upsert broker failed", zap.String("email", broker.Email), zap.Error(err))
		return model.Broker{}, err
	}
	return s.GetBroker(ctx, broker.Email)
}

func (s *Store) GetBroker(ctx context.Context, email string) (model.Broker, error) {
	row, err := s.queries.GetBroker(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Broker{}, domain.ErrBrokerNotFound
	}
	if err != nil {
		s.log.Error("sql get broker failed", zap.String("email", email), zap.Error(err))
		return model.Broker{}, err
	}
	return brokerModel(row), nil
}

func (s *Store) ListBrokers(ctx context.Context) ([]model.Broker, error) {
	rows, err := s.queries.ListBrokers(ctx)
	if err != nil {
		s.log.Error("sql list brokers failed", zap.Error(err))
		return nil, err
	}
	result := make([]model.Broker, 0, len(rows))
	for _, row := range rows {
		result = append(result, brokerModel(row))
	}
	return result, nil
}

func brokerModel(row db.Broker) model.Broker {
	return model.Broker{
		Email:      row.Email,
		Name:       row.Name,
		Subscribed: row.Subscribed,
		CreatedAt:  row.CreatedAt.UTC(),
	}
}
