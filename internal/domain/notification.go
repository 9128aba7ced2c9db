package domain

import (
	"strings"
	"time"
)

const (
	CategoryManual    = "manual"
	CategoryAutomated = "automated"
)

const (
	ChannelInApp = "in-app"
	ChannelEmail = "email"
)

func IsValidCategory(value string) bool {
	switch value {
	case CategoryManual, CategoryAutomated:
		return true
	default:
		return false
	}
}

func IsValidChannel(value string) bool {
	switch value {
	case ChannelInApp, ChannelEmail:
		return true
	default:
		return false
	}
}

var deliveryTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// TimePrecision is the finest resolution every store keeps (MySQL DATETIME(3),
// BSON dates). Timestamps are truncated to it before they are persisted.
const TimePrecision = time.Millisecond

// ParseDeliveryTime accepts RFC 3339 and the date-time forms emitted by
// common form pickers. Values without a zone are read as UTC.
func ParseDeliveryTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, &ValidationError{Field: "delivery_time", Reason: "is required"}
	}
	for _, layout := range deliveryTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC().Truncate(TimePrecision), nil
		}
	}
	return time.Time{}, &ValidationError{Field: "delivery_time", Reason: "must be a valid date-time"}
}
