package source

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dd0wney/cluso-relations/pkg/record"
)

// recordsQuery selects the live records of one schema from the INSPIRE
// records table.
const recordsQuery = `
SELECT json
FROM records_metadata
WHERE json->>'$schema' LIKE '%/' || $1
  AND coalesce((json->>'deleted')::boolean, false) = false
ORDER BY id`

// Postgres reads records from an INSPIRE database.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to the database at databaseURL.
func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// One scan per category worker
	config.MaxConns = 8
	config.MinConns = 1
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// Scan implements Source.
func (s *Postgres) Scan(ctx context.Context, category string, fields []string, fn func(record.Record) error) error {
	schema, err := Schema(category)
	if err != nil {
		return err
	}

	rows, err := s.pool.Query(ctx, recordsQuery, schema)
	if err != nil {
		return fmt.Errorf("failed to query %s records: %w", category, err)
	}
	defer rows.Close()

	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return fmt.Errorf("failed to scan %s record: %w", category, err)
		}
		rec, err := record.Decode(data)
		if err != nil {
			return fmt.Errorf("%s: %w", category, err)
		}
		if err := fn(rec.Project(fields)); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read %s records: %w", category, err)
	}
	return nil
}

// Ping checks database connectivity
func (s *Postgres) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the connection pool
func (s *Postgres) Close() error {
	s.pool.Close()
	return nil
}
