// Package view is the serialization boundary between stored records and
// everything that leaves the process: HTTP responses and live-channel frames.
package view

import (
	"encoding/json"
	"time"

	"realty_notify/internal/model"
)

type NotificationView struct {
	ID            string `json:"id"`
	RecipientKind string `json:"recipient_kind"`
	Recipient     string `json:"recipient"`
	Broker        string `json:"broker,omitempty"`
	Category      string `json:"category"`
	Channel       string `json:"channel"`
	Message       string `json:"message"`
	DeliveryTime  string `json:"delivery_time"`
	Read          bool   `json:"read"`
	CreatedAt     string `json:"created_at"`
}

type BrokerView struct {
	Email      string `json:"email"`
	Name       string `json:"name,omitempty"`
	Subscribed bool   `json:"subscribed"`
	Online     bool   `json:"online"`
	CreatedAt  string `json:"created_at,omitempty"`
}

func Notification(n model.Notification) NotificationView {
	return NotificationView{
		ID:            n.ID,
		RecipientKind: n.RecipientKind,
		Recipient:     n.Recipient,
		Broker:        n.Broker,
		Category:      n.Category,
		Channel:       n.Channel,
		Message:       n.Message,
		DeliveryTime:  formatTime(n.DeliveryTime),
		Read:          n.Read,
		CreatedAt:     formatTime(n.CreatedAt),
	}
}

func Notifications(ns []model.Notification) []NotificationView {
	out := make([]NotificationView, 0, len(ns))
	for _, n := range ns {
		out = append(out, Notification(n))
	}
	return out
}

func Broker(b model.Broker, online bool) BrokerView {
	return BrokerView{
		Email:      b.Email,
		Name:       b.Name,
		Subscribed: b.Subscribed,
		Online:     online,
		CreatedAt:  formatTime(b.CreatedAt),
	}
}

// EncodeNotification renders the payload pushed over live channels.
func EncodeNotification(n model.Notification) ([]byte, error) {
	return json.Marshal(Notification(n))
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
