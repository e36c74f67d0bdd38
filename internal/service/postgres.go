package service

import (
	"context"
	"fmt"
	"regexp"

	"github.com/agentdesk/agentdesk/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// PostgresDocs searches a documentation table with columns
// category, title, body and url.
type PostgresDocs struct {
	pool  *pgxpool.Pool
	table string
}

// NewPostgresDocs opens a connection pool. The pool connects lazily, so an
// unreachable database surfaces on the first query or TestConnection.
func NewPostgresDocs(ctx context.Context, dsn, table string) (*PostgresDocs, error) {
	if !identRe.MatchString(table) {
		return nil, fmt.Errorf("invalid postgres table name %q", table)
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	return &PostgresDocs{pool: pool, table: table}, nil
}

// Close releases the pool
func (s *PostgresDocs) Close() error {
	s.pool.Close()
	return nil
}

// TestConnection pings the database
func (s *PostgresDocs) TestConnection(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Search finds rows in the category whose title or body mention a query term
func (s *PostgresDocs) Search(ctx context.Context, category models.Category, query string, limit int) ([]Doc, error) {
	if limit <= 0 {
		limit = 3
	}

	sql := fmt.Sprintf(`SELECT title, body, coalesce(url, '') FROM %s
WHERE category = $1 AND (title ~* $2 OR body ~* $2)
LIMIT $3`, s.table)

	rows, err := s.pool.Query(ctx, sql, string(category), termPattern(query), limit)
	if err != nil {
		return nil, fmt.Errorf("query docs: %w", err)
	}

	docs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Doc, error) {
		var d Doc
		err := row.Scan(&d.Title, &d.Body, &d.URL)
		return d, err
	})
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return docs, nil
}
