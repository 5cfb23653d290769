package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"file-gateway/internal/config"
	"file-gateway/internal/db"
)

// Open builds the Store selected by cfg.Driver. The postgres driver applies
// pending migrations before opening its pool.
func Open(ctx context.Context, cfg config.StorageConfig, logger zerolog.Logger) (Store, error) {
	switch cfg.Driver {
	case config.DriverMinio:
		store, err := NewMinioStore(ctx, MinioOptions{
			Endpoint:     cfg.Endpoint,
			AccessKey:    cfg.AccessKey,
			SecretKey:    cfg.SecretKey,
			Region:       cfg.Region,
			Bucket:       cfg.Bucket,
			CreateBucket: cfg.CreateBucket,
		}, logger)
		if err != nil {
			return nil, err
		}
		return store, nil

	case config.DriverS3:
		store, err := NewS3Store(ctx, S3Options{
			Region:    cfg.Region,
			Bucket:    cfg.Bucket,
			Prefix:    cfg.Prefix,
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
		})
		if err != nil {
			return nil, err
		}
		return store, nil

	case config.DriverPostgres:
		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			return nil, fmt.Errorf("postgres storage: %w", err)
		}
		logger.Info().Str("driver", cfg.Driver).Msg("migrations_applied")

		conn, err := db.OpenDB(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("postgres storage: %w", err)
		}
		return NewPostgresStore(conn), nil

	case config.DriverMemory:
		logger.Warn().Msg("memory storage selected; objects are lost on restart")
		return NewMemoryStore(), nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
