package remote

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/subtrack/internal/remote/migrations"
)

// Store bundles the per-entity repositories over one Postgres connection.
type Store struct {
	db            *sql.DB
	subscriptions SubscriptionRepository
	settings      SettingsRepository
}

// Conn exposes the underlying database handle.
func (s *Store) Conn() *sql.DB {
	return s.db
}

// Subscriptions returns the subscription repository.
func (s *Store) Subscriptions() SubscriptionRepository {
	return s.subscriptions
}

// Settings returns the notification settings repository.
func (s *Store) Settings() SettingsRepository {
	return s.settings
}

// RunMigrations brings the remote schema up to date via goose.
func (s *Store) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, s.db, ".")
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// NewStore dials the remote store and migrates its schema.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	s := &Store{
		db:            db,
		subscriptions: NewPostgresSubscriptionRepository(db),
		settings:      NewPostgresSettingsRepository(db),
	}

	if err := s.RunMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}
	return s, nil
}
