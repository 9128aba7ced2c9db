package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	DeliverySent    = "sent"
	DeliveryOffline = "offline"
	DeliveryFailed  = "failed"
)

var (
	NotificationsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_submitted_total",
		Help: "Notifications persisted, by category and channel.",
	}, []string{"category", "channel"})

	Deliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_deliveries_total",
		Help: "Live delivery attempts per resolved broker, by result.",
	}, []string{"result"})

	OnlineBrokers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "presence_online_brokers",
		Help: "Brokers currently holding a live connection.",
	})

	QueueMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "queue_messages_total",
		Help: "Messages consumed from the notifications queue, by outcome.",
	}, []string{"outcome"})
)
