package repository

import (
	"context"

	"realty_notify/internal/model"
)

type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification model.Notification) (model.Notification, error)
	// ListInbox returns records addressed to broker personally, to all
	// brokers, and to subscribed brokers when subscribed is set. Most recent
	// delivery time first; limit <= 0 is unlimited.
	ListInbox(ctx context.Context, broker string, subscribed bool, limit int) ([]model.Notification, error)
	MarkRead(ctx context.Context, id string) (model.Notification, error)
	// MarkInboxRead flips the read flag on records addressed to broker
	// personally. Broadcast records are shared and left untouched.
	MarkInboxRead(ctx context.Context, broker string) (int64, error)
}

type BrokerRepository interface {
	UpsertBroker(ctx context.Context, broker model.Broker) (model.Broker, error)
	GetBroker(ctx context.Context, email string) (model.Broker, error)
	ListBrokers(ctx context.Context) ([]model.Broker, error)
}

type Store interface {
	NotificationRepository
	BrokerRepository
}
