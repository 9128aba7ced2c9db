package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"realty_notify/internal/domain"
	"realty_notify/internal/model"
)

func (s *Store) CreateNotification(_ context.Context, notification model.Notification) (model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	notification.ID = uuid.NewString()
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now().UTC().Truncate(domain.TimePrecision)
	}
	s.records = append(s.records, record{seq: s.seq, notification: notification})
	return notification, nil
}

func (s *Store) ListInbox(_ context.Context, broker string, subscribed bool, limit int) ([]model.Notification, error) {
	s.mu.Lock()
	var matched []record
	for _, r := range s.records {
		if inInbox(r.notification, broker, subscribed) {
			matched = append(matched, r)
		}
	}
	s.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.notification.DeliveryTime.Equal(b.notification.DeliveryTime) {
			return a.notification.DeliveryTime.After(b.notification.DeliveryTime)
		}
		return a.seq > b.seq
	})
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	result := make([]model.Notification, 0, len(matched))
	for _, r := range matched {
		result = append(result, r.notification)
	}
	return result, nil
}

func (s *Store) MarkRead(_ context.Context, id string) (model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].notification.ID == id {
			s.records[i].notification.Read = true
			return s.records[i].notification, nil
		}
	}
	return model.Notification{}, domain.ErrNotificationNotFound
}

func (s *Store) MarkInboxRead(_ context.Context, broker string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for i := range s.records {
		rec := &s.records[i].notification
		if rec.Broker == broker && !rec.Read {
			rec.Read = true
			n++
		}
	}
	return n, nil
}

func inInbox(n model.Notification, broker string, subscribed bool) bool {
	switch domain.RecipientKind(n.RecipientKind) {
	case domain.RecipientBroker:
		return n.Broker == broker
	case domain.RecipientAllBrokers:
		return true
	case domain.RecipientAllSubscribedBrokers:
		return subscribed
	default:
		return false
	}
}
