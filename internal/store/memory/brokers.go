package memory

import (
	"context"
	"sort"
	"time"

	"realty_notify/internal/domain"
	"realty_notify/internal/model"
)

func (s *Store) UpsertBroker(_ context.Context, broker model.Broker) (model.Broker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.brokers[broker.Email]; ok {
		broker.CreatedAt = existing.CreatedAt
	} else if broker.CreatedAt.IsZero() {
		broker.CreatedAt = time.Now().UTC().Truncate(domain.TimePrecision)
	}
	s.brokers[broker.Email] = broker
	return broker, nil
}

func (s *Store) GetBroker(_ context.Context, email string) (model.Broker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.brokers[email]
	if !ok {
		return model.Broker{}, domain.ErrBrokerNotFound
	}
	return b, nil
}

func (s *Store) ListBrokers(_ context.Context) ([]model.Broker, error) {
	s.mu.Lock()
	out := make([]model.Broker, 0, len(s.brokers))
	for _, b := range s.brokers {
		out = append(out, b)
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}
