// Package notify persists notifications and pushes them to brokers that are
// online. Persistence always happens before delivery, and delivery is best
// effort: brokers who miss the push read the record from their inbox.
package notify

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"realty_notify/internal/domain"
	"realty_notify/internal/metrics"
	"realty_notify/internal/model"
	"realty_notify/internal/presence"
	"realty_notify/internal/repository"
	"realty_notify/internal/view"
)

type Submission struct {
	Recipient    domain.Recipient
	Category     string
	Channel      string
	Message      string
	DeliveryTime string
}

type Inbox struct {
	Notifications []model.Notification
	Unread        int
}

type BrokerStatus struct {
	Broker model.Broker
	Online bool
}

type Service struct {
	store    repository.NotificationRepository
	brokers  repository.BrokerRepository
	registry *presence.Registry
	log      *zap.Logger
}

func NewService(store repository.NotificationRepository, brokers repository.BrokerRepository, registry *presence.Registry, logger *zap.Logger) *Service {
	return &Service{store: store, brokers: brokers, registry: registry, log: logger}
}

func (s *Service) Submit(ctx context.Context, sub Submission) (model.Notification, error) {
	ctx, span := otel.Tracer("notify").Start(ctx, "notify.submit")
	defer span.End()

	notification, recipient, err := s.validate(sub)
	if err != nil {
		span.SetStatus(codes.Error, "invalid submission")
		return model.Notification{}, err
	}
	span.SetAttributes(
		attribute.String("notification.recipient_kind", notification.RecipientKind),
		attribute.String("notification.category", notification.Category),
	)

	if notification.Broker != "" {
		if _, err := s.brokers.GetBroker(ctx, notification.Broker); err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				span.RecordError(err)
				s.log.Error("broker lookup failed", zap.String("broker", notification.Broker), zap.Error(err))
			}
			return model.Notification{}, err
		}
	}

	created, err := s.store.CreateNotification(ctx, notification)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
		s.log.Error("store create notification failed",
			zap.String("recipient", notification.Recipient),
			zap.String("category", notification.Category),
			zap.Error(err),
		)
		return model.Notification{}, err
	}
	metrics.NotificationsSubmitted.WithLabelValues(created.Category, created.Channel).Inc()

	s.deliver(ctx, recipient, created)
	return created, nil
}

func (s *Service) validate(sub Submission) (model.Notification, domain.Recipient, error) {
	if err := sub.Recipient.Validate(); err != nil {
		return model.Notification{}, domain.Recipient{}, err
	}
	recipient := sub.Recipient
	recipient.Broker = strings.TrimSpace(recipient.Broker)

	if !domain.IsValidCategory(sub.Category) {
		return model.Notification{}, domain.Recipient{}, &domain.ValidationError{Field: "category", Reason: "must be one of: manual, automated"}
	}
	if !domain.IsValidChannel(sub.Channel) {
		return model.Notification{}, domain.Recipient{}, &domain.ValidationError{Field: "channel", Reason: "must be one of: in-app, email"}
	}
	if strings.TrimSpace(sub.Message) == "" {
		return model.Notification{}, domain.Recipient{}, &domain.ValidationError{Field: "message", Reason: "is required"}
	}
	deliveryTime, err := domain.ParseDeliveryTime(sub.DeliveryTime)
	if err != nil {
		return model.Notification{}, domain.Recipient{}, err
	}

	return model.Notification{
		RecipientKind: string(recipient.Kind),
		Recipient:     recipient.Label(),
		Broker:        recipient.PersonalBroker(),
		Category:      sub.Category,
		Channel:       sub.Channel,
		Message:       sub.Message,
		DeliveryTime:  deliveryTime,
	}, recipient, nil
}

// deliver pushes the stored record to every resolved broker with a live
// handle. Nothing here is allowed to fail the submission.
func (s *Service) deliver(ctx context.Context, recipient domain.Recipient, notification model.Notification) {
	targets, err := s.resolve(ctx, recipient)
	if err != nil {
		s.log.Warn("resolve recipients failed",
			zap.String("notification_id", notification.ID),
			zap.String("recipient", notification.Recipient),
			zap.Error(err),
		)
		return
	}

	payload, err := view.EncodeNotification(notification)
	if err != nil {
		s.log.Warn("encode notification failed", zap.String("notification_id", notification.ID), zap.Error(err))
		return
	}

	for _, broker := range targets {
		handle, ok := s.registry.Lookup(broker)
		if !ok {
			metrics.Deliveries.WithLabelValues(metrics.DeliveryOffline).Inc()
			continue
		}
		if err := handle.Send(payload); err != nil {
			metrics.Deliveries.WithLabelValues(metrics.DeliveryFailed).Inc()
			s.log.Warn("live delivery failed",
				zap.String("notification_id", notification.ID),
				zap.String("broker", broker),
				zap.Error(err),
			)
			continue
		}
		metrics.Deliveries.WithLabelValues(metrics.DeliverySent).Inc()
	}
}

func (s *Service) resolve(ctx context.Context, recipient domain.Recipient) ([]string, error) {
	switch recipient.Kind {
	case domain.RecipientBroker:
		return []string{recipient.PersonalBroker()}, nil
	case domain.RecipientAllBrokers:
		brokers, err := s.brokers.ListBrokers(ctx)
		if err != nil {
			return nil, err
		}
		return presence.Identities(brokers), nil
	case domain.RecipientAllSubscribedBrokers:
		brokers, err := s.brokers.ListBrokers(ctx)
		if err != nil {
			return nil, err
		}
		return presence.SubscribedIdentities(brokers), nil
	default:
		return nil, nil
	}
}

func (s *Service) FetchInbox(ctx context.Context, broker string, limit int) (Inbox, error) {
	known, err := s.brokers.GetBroker(ctx, broker)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.log.Error("broker lookup failed", zap.String("broker", broker), zap.Error(err))
		}
		return Inbox{}, err
	}
	notifications, err := s.store.ListInbox(ctx, broker, known.Subscribed, limit)
	if err != nil {
		s.log.Error("store list inbox failed", zap.String("broker", broker), zap.Int("limit", limit), zap.Error(err))
		return Inbox{}, err
	}
	inbox := Inbox{Notifications: notifications}
	for _, n := range notifications {
		if !n.Read {
			inbox.Unread++
		}
	}
	return inbox, nil
}

func (s *Service) MarkRead(ctx context.Context, id string) (model.Notification, error) {
	updated, err := s.store.MarkRead(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.log.Error("store mark read failed", zap.String("id", id), zap.Error(err))
		}
		return model.Notification{}, err
	}
	return updated, nil
}

func (s *Service) MarkAllRead(ctx context.Context, broker string) (int64, error) {
	if _, err := s.brokers.GetBroker(ctx, broker); err != nil {
		return 0, err
	}
	n, err := s.store.MarkInboxRead(ctx, broker)
	if err != nil {
		s.log.Error("store mark inbox read failed", zap.String("broker", broker), zap.Error(err))
		return 0, err
	}
	return n, nil
}

func (s *Service) UpsertBroker(ctx context.Context, broker model.Broker) (model.Broker, error) {
	broker.Email = strings.TrimSpace(broker.Email)
	if broker.Email == "" {
		return model.Broker{}, &domain.ValidationError{Field: "email", Reason: "is required"}
	}
	saved, err := s.brokers.UpsertBroker(ctx, broker)
	if err != nil {
		s.log.Error("store upsert broker failed", zap.String("email", broker.Email), zap.Error(err))
		return model.Broker{}, err
	}
	return saved, nil
}

// Broker looks up a known broker by email.
func (s *Service) Broker(ctx context.Context, email string) (model.Broker, error) {
	broker, err := s.brokers.GetBroker(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.log.Error("broker lookup failed", zap.String("broker", email), zap.Error(err))
		}
		return model.Broker{}, err
	}
	return broker, nil
}

func (s *Service) ListBrokers(ctx context.Context) ([]BrokerStatus, error) {
	brokers, err := s.brokers.ListBrokers(ctx)
	if err != nil {
		s.log.Error("store list brokers failed", zap.Error(err))
		return nil, err
	}
	out := make([]BrokerStatus, 0, len(brokers))
	for _, b := range brokers {
		_, online := s.registry.Lookup(b.Email)
		out = append(out, BrokerStatus{Broker: b, Online: online})
	}
	return out, nil
}

// Validate runs the submission checks without persisting anything.
func (s *Service) Validate(sub Submission) error {
	_, _, err := s.validate(sub)
	return err
}
