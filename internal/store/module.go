package store

import (
	"context"

	"store_assistant/internal/config"

	"github.com/jmoiron/sqlx"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func Module() fx.Option {
	return fx.Module(
		"store",
		fx.Provide(func(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (*sqlx.DB, error) {
			db, err := Open(cfg.DatabaseDSN)
			if err != nil {
				return nil, err
			}
			if err := Migrate(context.Background(), db); err != nil {
				_ = db.Close()
				return nil, err
			}
			logger.Named("store").Info("database ready", zap.String("dsn", cfg.DatabaseDSN))
			lc.Append(fx.Hook{
				OnStop: func(_ context.Context) error {
					return db.Close()
				},
			})
			return db, nil
		}),
	)
}
