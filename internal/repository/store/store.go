// Package store opens the storage backend named in the configuration and
// exposes it through the repository interfaces. The server and the seed
// command both open storage here.
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sakif/interview-coach/internal/config"
	"github.com/sakif/interview-coach/internal/repository"
	"github.com/sakif/interview-coach/internal/repository/postgres"
	sqliteRepo "github.com/sakif/interview-coach/internal/repository/sqlite"
)

// Store is one opened backend. The caller owns it and must Close it.
type Store struct {
	Driver     string
	Users      repository.UserRepository
	Sessions   repository.SessionRepository
	Interviews repository.InterviewRepository
	Feedback   repository.FeedbackRepository

	ping  func(ctx context.Context) error
	close func() error
}

// Open opens the backend named by cfg.Driver and runs its migrations.
// For SQLite the database file's directory is created first.
func Open(ctx context.Context, cfg config.StorageConfig) (*Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		if cfg.SQLitePath != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
		db, err := sqliteRepo.New(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &Store{
			Driver:     cfg.Driver,
			Users:      db.Users(),
			Sessions:   db.Sessions(),
			Interviews: db.Interviews(),
			Feedback:   db.Feedback(),
			ping:       db.Ping,
			close:      db.Close,
		}, nil

	case config.DriverPostgres:
		db, err := postgres.New(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, err
		}
		return &Store{
			Driver:     cfg.Driver,
			Users:      db.Users(),
			Sessions:   db.Sessions(),
			Interviews: db.Interviews(),
			Feedback:   db.Feedback(),
			ping:       db.Ping,
			close:      db.Close,
		}, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

// Ping checks that the database answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

func (s *Store) Close() error {
	return s.close()
}
