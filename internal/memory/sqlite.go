package memory

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/amishk599/kpiadvisor/internal/model"
)

// Ensure SQLiteStore implements model.ConversationStore.
var _ model.ConversationStore = (*SQLiteStore)(nil)

// SQLiteStore persists exchanges in a SQLite database. Several sessions can
// share one database file; each store only sees its own session.
type SQLiteStore struct {
	db      *sql.DB
	session string
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures the
// exchanges table exists.
func NewSQLiteStore(dbPath, session string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS exchanges (
		seq        INTEGER PRIMARY KEY AUTOINCREMENT,
		id         TEXT NOT NULL UNIQUE,
		session    TEXT NOT NULL,
		input      TEXT NOT NULL,
		output     TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating exchanges table: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_exchanges_session ON exchanges (session, seq)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating exchanges index: %w", err)
	}

	return &SQLiteStore{db: db, session: session}, nil
}

// History returns the session's exchanges in insertion order.
func (s *SQLiteStore) History(ctx context.Context) ([]model.Exchange, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, input, output, created_at FROM exchanges WHERE session = ? ORDER BY seq", s.session)
	if err != nil {
		return nil, fmt.Errorf("querying history for session %s: %w", s.session, err)
	}
	defer rows.Close()

	var history []model.Exchange
	for rows.Next() {
		var ex model.Exchange
		var createdAt string
		if err := rows.Scan(&ex.ID, &ex.Input, &ex.Output, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning exchange: %w", err)
		}
		ex.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at of exchange %s: %w", ex.ID, err)
		}
		history = append(history, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading history for session %s: %w", s.session, err)
	}
	return history, nil
}

// Append records one exchange at the end of the session.
func (s *SQLiteStore) Append(ctx context.Context, ex model.Exchange) error {
	createdAt := ex.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO exchanges (id, session, input, output, created_at) VALUES (?, ?, ?, ?, ?)",
		ex.ID, s.session, ex.Input, ex.Output, createdAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("appending exchange %s: %w", ex.ID, err)
	}
	return nil
}

func (s *SQLiteStore) Buffer(ctx context.Context) (string, error) {
	history, err := s.History(ctx)
	if err != nil {
		return "", err
	}
	return FormatBuffer(history), nil
}

// Clear deletes every exchange of the session. Other sessions are untouched.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM exchanges WHERE session = ?", s.session); err != nil {
		return fmt.Errorf("clearing session %s: %w", s.session, err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
