package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // database/sql driver

	"github.com/AntonStoeckl/room-inventory-go/inventory"
	"github.com/AntonStoeckl/room-inventory-go/roomseed"
	"github.com/AntonStoeckl/room-inventory-go/roomseed/postgresseed"
)

const (
	driverPostgres = "postgres"
	connectTimeout = 5 * time.Second
)

// loadSeed reads the room seed from the configured file or database, falling back to inventory.DefaultSeed.
func loadSeed(ctx context.Context, cfg Config, logger Logger) ([]inventory.SeedEntry, error) {
	switch {
	case cfg.SeedFile != "":
		return roomseed.ReadFile(cfg.SeedFile)
	case cfg.PostgresDSN != "":
		return loadSeedFromPostgres(ctx, cfg, logger)
	default:
		return inventory.DefaultSeed(), nil
	}
}

func loadSeedFromPostgres(ctx context.Context, cfg Config, logger Logger) ([]inventory.SeedEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	options := []postgresseed.Option{
		postgresseed.WithTableName(cfg.SeedTable),
		postgresseed.WithLogger(logger),
	}

	switch cfg.DBAdapter {
	case "sql":
		db, err := sql.Open(driverPostgres, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open sql.DB: %w", err)
		}
		defer func() { _ = db.Close() }()

		loader, err := postgresseed.NewLoaderFromSQLDB(db, options...)
		if err != nil {
			return nil, err
		}

		return loader.Load(ctx)

	case "sqlx":
		db, err := sqlx.ConnectContext(ctx, driverPostgres, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to connect with sqlx: %w", err)
		}
		defer func() { _ = db.Close() }()

		loader, err := postgresseed.NewLoaderFromSQLX(db, options...)
		if err != nil {
			return nil, err
		}

		return loader.Load(ctx)

	default:
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create pgx pool: %w", err)
		}
		defer pool.Close()

		if pingErr := pool.Ping(ctx); pingErr != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", pingErr)
		}

		loader, err := postgresseed.NewLoaderFromPGXPool(pool, options...)
		if err != nil {
			return nil, err
		}

		return loader.Load(ctx)
	}
}
