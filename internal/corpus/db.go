// Package corpus reads the published history the pipeline validates against.
package corpus

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog"

	"github.com/votewire/autopost/internal/config"
	"github.com/votewire/autopost/internal/ctxutil"
	"github.com/votewire/autopost/internal/errors"
)

// pingTimeout bounds the connection check during store construction.
const pingTimeout = 5 * time.Second

// The queries mirror what the PHP helpers print: titles of published posts,
// newest first, and the candidate names attached to published profiles.
const (
	titlesQuery = `
		SELECT post_title
		FROM wp_posts
		WHERE post_type = 'post' AND post_status = 'publish'
		ORDER BY post_date DESC`

	candidatesQuery = `
		SELECT pm.meta_value
		FROM wp_postmeta pm
		JOIN wp_posts p ON p.id = pm.post_id
		WHERE pm.meta_key = 'candidate_name' AND p.post_status = 'publish'
		ORDER BY p.post_date DESC`
)

// DBStore reads the corpus directly from the site's content database.
type DBStore struct {
	db     *sqlx.DB
	logger zerolog.Logger
}

// DBOption configures a DBStore.
type DBOption func(*DBStore)

// WithDBLogger sets the logger used for corpus queries.
func WithDBLogger(logger zerolog.Logger) DBOption {
	return func(s *DBStore) {
		s.logger = logger
	}
}

// NewDBStore opens a pooled connection from the configured DSN and verifies
// it with a bounded ping.
func NewDBStore(ctx context.Context, cfg *config.DBConfig, opts ...DBOption) (*DBStore, error) {
	db, err := sqlx.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("%w: open database: %w", errors.ErrCorpusUnavailable, err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping database: %w", errors.ErrCorpusUnavailable, err)
	}

	return NewDBStoreWithDB(db, opts...), nil
}

// NewDBStoreWithDB wraps an existing connection. Pool settings are left to
// the caller; Close still closes the connection.
func NewDBStoreWithDB(db *sqlx.DB, opts ...DBOption) *DBStore {
	s := &DBStore{
		db:     db,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close releases the underlying connection pool.
func (s *DBStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Titles returns existing published post titles.
func (s *DBStore) Titles(ctx context.Context) ([]string, error) {
	return s.query(ctx, titlesQuery, "post titles")
}

// Candidates returns candidate names that already have a profile.
func (s *DBStore) Candidates(ctx context.Context) ([]string, error) {
	return s.query(ctx, candidatesQuery, "candidate names")
}

// query runs one corpus query and cleans the rows.
func (s *DBStore) query(ctx context.Context, query, what string) ([]string, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	var values []string
	if err := s.db.SelectContext(ctx, &values, query); err != nil {
		return nil, fmt.Errorf("%w: query %s: %w", errors.ErrCorpusUnavailable, what, err)
	}

	s.logger.Debug().
		Int("rows", len(values)).
		Str("query", what).
		Msg("corpus query finished")

	return cleanStrings(values), nil
}

// Ensure DBStore implements Store.
var _ Store = (*DBStore)(nil)
