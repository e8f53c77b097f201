package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"

	"github.com/mudhay027/ritaitutor/internal/tutor"
)

// Store is the conversation store: append-only turn pairs keyed by session
// id, plus the windowed read the history loader needs. Session lifecycle
// (create/rename/delete) belongs to the surrounding application; this store
// only appends and reads turns.
type Store struct {
	DB *sql.DB
}

// New constructs the Store from DATABASE_URL or the POSTGRES_* environment.
func New(ctx context.Context) (*Store, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		host := getenvDefault("POSTGRES_HOST", "localhost")
		port := getenvDefault("POSTGRES_PORT", "5432")
		user := os.Getenv("POSTGRES_USER")
		pass := os.Getenv("POSTGRES_PASSWORD")
		db := os.Getenv("POSTGRES_DB")
		ssl := getenvDefault("POSTGRES_SSLMODE", "disable")
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", user, pass, host, port, db, ssl)
	}
	return NewWithDSN(ctx, dsn)
}

// NewWithDSN constructs the Store using an explicit Postgres DSN
func NewWithDSN(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

func getenvDefault(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

// CreateSession inserts a conversation session row and returns its id.
// Mostly exercised by tests and operational tooling; the application UI owns
// session management.
func (s *Store) CreateSession(ctx context.Context, title string) (int64, error) {
	if title == "" {
		title = "New Chat"
	}
	var id int64
	err := s.DB.QueryRowContext(ctx, `INSERT INTO chat_sessions (title) VALUES ($1) RETURNING id`, title).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// AppendTurnPair writes the user question and the assistant answer as a
// single transaction. Both rows are committed together or neither is, so a
// session never records a question without its answer.
func (s *Store) AppendTurnPair(ctx context.Context, sessionID int64, question, answer string) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO chat_messages (session_id, role, content) VALUES ($1,$2,$3)`,
		sessionID, tutor.RoleUser, question); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO chat_messages (session_id, role, content) VALUES ($1,$2,$3)`,
		sessionID, tutor.RoleAssistant, answer); err != nil {
		return err
	}
	return tx.Commit()
}

// RecentTurns returns up to limit turns for the session, newest first. An
// unknown session yields an empty slice.
func (s *Store) RecentTurns(ctx context.Context, sessionID int64, limit int) ([]tutor.Turn, error) {
	rows, err := s.DB.QueryContext(ctx, `
SELECT session_id, role, content, created_at
FROM chat_messages
WHERE session_id=$1
ORDER BY created_at DESC, id DESC
LIMIT $2`, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turns []tutor.Turn
	for rows.Next() {
		var t tutor.Turn
		if err := rows.Scan(&t.SessionID, &t.Role, &t.Content, &t.CreatedAt); err != nil {
			return nil, err
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}
