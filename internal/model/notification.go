package model

import "time"

type Notification struct {
	ID            string
	RecipientKind string
	Recipient     string
	Broker        string
	Category      string
	Channel       string
	Message       string
	DeliveryTime  time.Time
	Read          bool
	CreatedAt     time.Time
}
