package store

import (
	"context"
	"time"

	"go.uber.org/zap"
	"realty_notify/internal/config"
	"realty_notify/internal/repository"
	"realty_notify/internal/store/memory"
	mongostore "realty_notify/internal/store/mongo"
	"realty_notify/internal/store/mysql"
)

const connectTimeout = 10 * time.Second

// NewStore picks MongoDB when MONGO_URI is set, then MySQL, then memory.
func NewStore(cfg *config.Config, logger *zap.Logger) (repository.Store, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	s, cleanup, err := open(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	if cfg.SeedBrokersFile != "" {
		if err := SeedBrokers(ctx, s, cfg.SeedBrokersFile, logger); err != nil {
			cleanup()
			return nil, nil, err
		}
	}
	return s, cleanup, nil
}

func open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.Store, func(), error) {
	switch {
	case cfg.MongoURI != "":
		s, cleanup, err := mongostore.Open(ctx, cfg.MongoURI, cfg.MongoDatabase, logger)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using mongo store", zap.String("database", cfg.MongoDatabase))
		return s, cleanup, nil

	case cfg.MySQLDSN != "":
		s, cleanup, err := mysql.Open(ctx, cfg.MySQLDSN, logger)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using mysql store")
		return s, cleanup, nil

	default:
		logger.Info("using in-memory store")
		return memory.New(logger), func() {}, nil
	}
}

func NotificationRepository(s repository.Store) repository.NotificationRepository {
	return s
}

func BrokerRepository(s repository.Store) repository.BrokerRepository {
	return s
}
