package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"realty_notify/internal/model"
	"realty_notify/internal/repository"
)

// SeedBrokers upserts every broker listed in a JSON array fixture.
func SeedBrokers(ctx context.Context, brokers repository.BrokerRepository, path string, logger *zap.Logger) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read broker fixture: %w", err)
	}
	var fixture []model.Broker
	if err := json.Unmarshal(raw, &fixture); err != nil {
		return fmt.Errorf("decode broker fixture %s: %w", path, err)
	}

	seeded := 0
	for _, b := range fixture {
		b.Email = strings.TrimSpace(b.Email)
		if b.Email == "" {
			logger.Warn("skipping broker fixture entry without email", zap.String("name", b.Name))
			continue
		}
		if _, err := brokers.UpsertBroker(ctx, b); err != nil {
			return fmt.Errorf("seed broker %s: %w", b.Email, err)
		}
		seeded++
	}
	logger.Info("brokers seeded", zap.String("file", path), zap.Int("count", seeded))
	return nil
}
