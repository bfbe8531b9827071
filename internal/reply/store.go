package reply

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/j0lvera/chimein/internal/db"
)

// Table holds the candidate reply texts. Schema creation and reads must
// agree on this name.
const Table = "responses"

const (
	createTableSQL = `CREATE TABLE IF NOT EXISTS ` + Table + ` (
		id INTEGER PRIMARY KEY,
		text TEXT NOT NULL
	)`
	randomTextSQL = `SELECT text FROM ` + Table + ` ORDER BY RANDOM() LIMIT 1`
	countSQL      = `SELECT COUNT(*) FROM ` + Table
)

// Record is one row of the replies table. Rows are inserted out of band.
type Record struct {
	ID   int64
	Text string
}

// Store reads reply texts from the shared pool.
type Store struct {
	client *db.Client
	log    zerolog.Logger
}

// NewStore creates a new reply store
func NewStore(client *db.Client, log zerolog.Logger) *Store {
	return &Store{client: client, log: log}
}

// EnsureSchema creates the replies table if it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.client.DB.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create %s table: %w", Table, err)
	}
	return nil
}

// FetchRandomText returns one text chosen uniformly among all rows.
// The boolean is false when the table is empty or the read failed; callers
// cannot tell the two apart.
func (s *Store) FetchRandomText(ctx context.Context) (string, bool) {
	var text string
	err := s.client.DB.QueryRowContext(ctx, randomTextSQL).Scan(&text)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.log.Debug().Err(err).Msg("random reply read failed")
		}
		return "", false
	}
	return text, true
}

// Count returns the number of stored replies.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.client.DB.QueryRowContext(ctx, countSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count replies: %w", err)
	}
	return n, nil
}
