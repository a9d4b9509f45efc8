package main

import (
	"context"
	"fmt"

	"surgical-records/internal/adapters/storage/file"
	mem "surgical-records/internal/adapters/storage/memory"
	pg "surgical-records/internal/adapters/storage/postgres"
	rd "surgical-records/internal/adapters/storage/redis"
	"surgical-records/internal/config"
	"surgical-records/internal/domain/records"
	"surgical-records/internal/platform/logger"
)

// openStore abre el medio configurado y carga el store una sola vez.
// Un slot corrupto no es fatal: el store arranca vacío.
func openStore(ctx context.Context, cfg config.Storage, log logger.Logger) (*records.Store, func() error, error) {
	medium, closer, err := openMedium(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s storage: %w", cfg.Driver, err)
	}

	store := records.NewStore(medium, log)
	recovered, err := store.Load(ctx)
	if err != nil {
		_ = closer()
		return nil, nil, fmt.Errorf("load store: %w", err)
	}

	log.Info("store loaded", map[string]any{
		"driver":    cfg.Driver,
		"records":   store.Len(),
		"recovered": recovered,
	})
	return store, closer, nil
}

func openMedium(ctx context.Context, cfg config.Storage) (records.Medium, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Driver {
	case config.DriverMemory:
		return mem.NewSlot(), noop, nil

	case config.DriverFile:
		s, err := file.NewSlot(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, noop, nil

	case config.DriverPostgres:
		db, err := pg.Open(cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		repo := pg.NewSlotRepo(db, cfg.Slot)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return repo, db.Close, nil

	case config.DriverRedis:
		s, err := rd.Open(rd.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Key:      cfg.Slot,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}

	return nil, nil, fmt.Errorf("%w: unknown storage driver %q", config.ErrInvalidConfig, cfg.Driver)
}
