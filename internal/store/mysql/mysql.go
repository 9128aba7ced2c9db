package mysql

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	"realty_notify/internal/db"
)

type Store struct {
	queries *db.Queries
	log     *zap.Logger
}

func New(queries *db.Queries, logger *zap.Logger) *Store {
	return &Store{queries: queries, log: logger}
}

// Open connects to dsn and returns a store with a tuned pool. The DSN must
// carry parseTime=true so DATETIME columns scan into time.Time.
func Open(ctx context.Context, dsn string, logger *zap.Logger) (*Store, func(), error) {
	pool, err := sql.Open("mysql", dsn)
	if err != nil {
		logger.Error("mysql open failed", zap.Error(err))
		return nil, nil, err
	}
	pool.SetMaxOpenConns(20)
	pool.SetMaxIdleConns(10)
	pool.SetConnMaxLifetime(5 * time.Minute)

	if err := pool.PingContext(ctx); err != nil {
		logger.Error("mysql ping failed", zap.Error(err))
		_ = pool.Close()
		return nil, nil, err
	}
	return New(db.New(pool), logger), func() { _ = pool.Close() }, nil
}
