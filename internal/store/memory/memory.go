package memory

import (
	"sync"

	"go.uber.org/zap"
	"realty_notify/internal/model"
)

type Store struct {
	mu      sync.Mutex
	seq     int64
	records []record
	brokers map[string]model.Broker
	log     *zap.Logger
}

type record struct {
	seq          int64
	notification model.Notification
}

func New(logger *zap.Logger) *Store {
	return &Store{brokers: make(map[string]model.Broker), log: logger}
}
