package dto

import "realty_notify/internal/view"

type RecipientRequest struct {
	Kind   string `json:"kind"`
	Broker string `json:"broker,omitempty"`
}

type CreateNotificationRequest struct {
	Recipient    *RecipientRequest `json:"recipient"`
	Category     string            `json:"category"`
	Channel      string            `json:"channel"`
	Message      string            `json:"message"`
	DeliveryTime string            `json:"delivery_time"`
}

type UpsertBrokerRequest struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	Subscribed bool   `json:"subscribed"`
}

type InboxResponse struct {
	Broker        string                  `json:"broker"`
	Unread        int                     `json:"unread"`
	Notifications []view.NotificationView `json:"notifications"`
}

type MarkAllReadResponse struct {
	Broker  string `json:"broker"`
	Updated int64  `json:"updated"`
}

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type StatusResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
