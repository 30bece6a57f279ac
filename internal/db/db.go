package db

import (
	"context"
	"fmt"

	"github.com/b2bquote/rfq-service/internal/router/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

// InitDb инициализирует подключение к базе данных и возвращает пул соединений.
func InitDb(cfg config.Config) (*pgxpool.Pool, error) {
	if cfg.PostgresConn == "" {
		return nil, fmt.Errorf("POSTGRES_CONN environment variable is missing")
	}

	dbPool, err := pgxpool.New(context.Background(), cfg.PostgresConn)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %v", err)
	}

	return dbPool, nil
}
