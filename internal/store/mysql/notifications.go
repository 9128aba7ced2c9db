package mysql

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"strconv"
	"time"

	"go.uber.org/zap"
	"realty_notify/internal/db"
	"realty_notify/internal/domain"
	"realty_notify/internal/model"
)

func (s *Store) CreateNotification(ctx context.Context, notification model.Notification) (model.Notification, error) {
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now().UTC().Truncate(domain.TimePrecision)
	}
	result, err := s.queries.CreateNotification(ctx, db.CreateNotificationParams{
		RecipientKind: notification.RecipientKind,
		Recipient:     notification.Recipient,
		Broker:        nullString(notification.Broker),
		Category:      notification.Category,
		Channel:       notification.Channel,
		Message:       notification.Message,
		DeliveryTime:  notification.DeliveryTime,
		CreatedAt:     notification.CreatedAt,
	})
	if err != nil {
		s.log.Error("sql create notification failed",
			zap.String("recipient", notification.Recipient),
			zap.String("category", notification.Category),
			zap.Error(err),
		)
		return model.Notification{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		s.log.Error("sql last insert id failed", zap.Error(err))
		return model.Notification{}, err
	}
	notification.ID = strconv.FormatInt(id, 10)
	return notification, nil
}

func (s *Store) ListInbox(ctx context.Context, broker string, subscribed bool, limit int) ([]model.Notification, error) {
	if limit <= 0 || limit > math.MaxInt32 {
		limit = math.MaxInt32
	}
	rows, err := s.queries.ListInbox(ctx, db.ListInboxParams{
		Broker:     nullString(broker),
		Subscribed: subscribed,
		Limit:      int32(limit),
	})
	if err != nil {
		s.log.Error("sql list inbox failed", zap.String("broker", broker), zap.Int("limit", limit), zap.Error(err))
		return nil, err
	}

	result := make([]model.Notification, 0, len(rows))
	for _, row := range rows {
		result = append(result, toModel(row))
	}
	return result, nil
}

func (s *Store) MarkRead(ctx context.Context, id string) (model.Notification, error) {
	numericID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return model.Notification{}, domain.ErrNotificationNotFound
	}
	// MySQL reports zero affected rows for an already-read record, so
	// existence is decided by the read-back below.
	if _, err := s.queries.MarkNotificationRead(ctx, numericID); err != nil {
		s.log.Error("sql mark read failed", zap.String("id", id), zap.Error(err))
		return model.Notification{}, err
	}
	row, err := s.queries.GetNotification(ctx, numericID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Notification{}, domain.ErrNotificationNotFound
	}
	if err != nil {
		s.log.Error("sql get notification failed", zap.String("id", id), zap.Error(err))
		return model.Notification{}, err
	}
	return toModel(row), nil
}

func (s *Store) MarkInboxRead(ctx context.Context, broker string) (int64, error) {
	result, err := s.queries.MarkInboxRead(ctx, nullString(broker))
	if err != nil {
		s.log.Error("sql mark inbox read failed", zap.String("broker", broker), zap.Error(err))
		return 0, err
	}
	return result.RowsAffected()
}

func toModel(row db.Notification) model.Notification {
	return model.Notification{
		ID:            strconv.FormatInt(row.ID, 10),
		RecipientKind: row.RecipientKind,
		Recipient:     row.Recipient,
		Broker:        row.Broker.String,
		Category:      row.Category,
		Channel:       row.Channel,
		Message:       row.Message,
		DeliveryTime:  row.DeliveryTime.UTC(),
		Read:          row.IsRead,
		CreatedAt:     row.CreatedAt.UTC(),
	}
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
