package main

import (
	"context"
	"log/slog"

	"github.com/ericfisherdev/codeconvert/internal/adapter/driven/postgres"
	"github.com/ericfisherdev/codeconvert/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/codeconvert/internal/config"
	"github.com/ericfisherdev/codeconvert/internal/domain/port/driven"
)

// storage bundles the selected credential store backend.
type storage struct {
	backend string
	users   driven.UserStore
	migrate func() error
	close   func() error
}

func (s *storage) closeLogged(logger *slog.Logger) {
	if err := s.close(); err != nil {
		logger.Error("error closing database", "backend", s.backend, "error", err)
	}
}

// openStorage opens PostgreSQL for postgres:// URLs and SQLite otherwise.
func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*storage, error) {
	if cfg.UsesPostgres() {
		db, err := postgres.NewDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		logger.Info("database opened", "backend", "postgres")
		return &storage{
			backend: "postgres",
			users:   postgres.NewUserRepo(db),
			migrate: func() error { return postgres.RunMigrations(db) },
			close:   db.Close,
		}, nil
	}

	db, err := sqlite.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	logger.Info("database opened", "backend", "sqlite", "path", db.Path())
	return &storage{
		backend: "sqlite",
		users:   sqlite.NewUserRepo(db),
		migrate: func() error { return sqlite.RunMigrations(db.Writer) },
		close:   db.Close,
	}, nil
}
