package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/glebarez/go-sqlite"
	"github.com/google/uuid"

	"github.com/comigor/becas-go/internal/logger"
)

// DefaultDSN keeps the database in memory so nothing outlives the session.
const DefaultDSN = "file::memory:"

// SQLite is a Store backed by a SQLite table. Each store owns a fresh session
// id; rows of other sessions sharing the same file are never read or touched.
type SQLite struct {
	db        *sql.DB
	sessionID string
	opts      options
}

var _ Store = (*SQLite)(nil)

// OpenSQLite opens (or creates) the messages table at dsn and seeds a new
// session with the greeting. An empty dsn means DefaultDSN.
func OpenSQLite(ctx context.Context, dsn string, opts ...Option) (*SQLite, error) {
	if dsn == "" {
		dsn = DefaultDSN
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history: %w", err)
	}
	// an in-memory database lives and dies with its connection
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS messages (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        session_id TEXT NOT NULL,
        role TEXT NOT NULL,
        content TEXT NOT NULL,
        created_at INTEGER NOT NULL
    );`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create messages table: %w", err)
	}

	s := &SQLite{db: db, sessionID: uuid.NewString(), opts: buildOptions(opts)}
	if err := s.Append(ctx, Assistant(Greeting, s.opts.now())); err != nil {
		db.Close()
		return nil, err
	}
	logger.L.Info("sqlite history initialized", "session_id", s.sessionID)
	return s, nil
}

// SessionID identifies the rows owned by this store.
func (s *SQLite) SessionID() string { return s.sessionID }

// Append inserts msg after every existing message of the session.
func (s *SQLite) Append(ctx context.Context, msg Message) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (session_id, role, content, created_at) VALUES (?,?,?,?);`,
		s.sessionID, string(msg.Role), msg.Content, msg.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("store message: %w", err)
	}
	return nil
}

// Reset deletes the session's messages and re-seeds the greeting atomically.
func (s *SQLite) Reset(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("reset history: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?;`, s.sessionID); err != nil {
		return fmt.Errorf("reset history: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO messages (session_id, role, content, created_at) VALUES (?,?,?,?);`,
		s.sessionID, string(RoleAssistant), Greeting, s.opts.now().UnixNano()); err != nil {
		return fmt.Errorf("reset history: %w", err)
	}
	return tx.Commit()
}

// All returns the session's messages in chronological order.
func (s *SQLite) All(ctx context.Context) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT role, content, created_at FROM messages WHERE session_id = ? ORDER BY id ASC;`, s.sessionID)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var (
			m    Message
			role string
			ts   int64
		)
		if err := rows.Scan(&role, &m.Content, &ts); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		m.Role = Role(role)
		m.CreatedAt = time.Unix(0, ts)
		out = append(out, m)
	}
	return out, rows.Err()
}

// Close drops the session's rows and closes the database.
func (s *SQLite) Close() error {
	if _, err := s.db.Exec(`DELETE FROM messages WHERE session_id = ?;`, s.sessionID); err != nil {
		logger.L.Warn("failed to drop session history", "session_id", s.sessionID, "error", err)
	}
	return s.db.Close()
}
