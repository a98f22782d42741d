package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/vbrandao/batepapo-server/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS participants (
	id             TEXT PRIMARY KEY,
	name           TEXT NOT NULL UNIQUE,
	last_heartbeat INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id        TEXT PRIMARY KEY,
	from_name TEXT NOT NULL,
	to_name   TEXT NOT NULL,
	text      TEXT NOT NULL,
	type      TEXT NOT NULL,
	time      TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_participants_heartbeat ON participants(last_heartbeat);
`

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLite store and ensures the schema exists.
// dbPath is the path to the SQLite database file.
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, func(db *sql.DB) error {
		_, err := db.Exec(schema)
		return err
	})
}

// NewWithSetup creates a new SQLite store and runs a setup function.
// Useful for tests to apply a custom schema.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ==== ParticipantStore implementation ====

// InsertParticipant creates a participant and assigns its ID.
func (s *SQLiteStore) InsertParticipant(ctx context.Context, name string, lastHeartbeat int64) (*store.Participant, error) {
	query := `
		INSERT INTO participants (id, name, last_heartbeat)
		VALUES (?, ?, ?)
	`
	id := uuid.New().String()
	if _, err := s.db.ExecContext(ctx, query, id, name, lastHeartbeat); err != nil {
		return nil, fmt.Errorf("insert participant: %w", err)
	}

	return &store.Participant{ID: id, Name: name, LastHeartbeat: lastHeartbeat}, nil
}

// GetParticipantByName retrieves a participant by name.
func (s *SQLiteStore) GetParticipantByName(ctx context.Context, name string) (*store.Participant, error) {
	query := `
		SELECT id, name, last_heartbeat
		FROM participants
		WHERE name = ?
	`
	var p store.Participant
	err := s.db.QueryRowContext(ctx, query, name).Scan(&p.ID, &p.Name, &p.LastHeartbeat)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("query participant: %w", err)
	}

	return &p, nil
}

// ListParticipants retrieves all registered participants.
func (s *SQLiteStore) ListParticipants(ctx context.Context) ([]*store.Participant, error) {
	query := `
		SELECT id, name, last_heartbeat
		FROM participants
		ORDER BY name
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query participants: %w", err)
	}
	defer rows.Close()

	return scanParticipants(rows)
}

// ListStaleParticipants retrieves participants whose last heartbeat is older
// than the given millisecond timestamp.
func (s *SQLiteStore) ListStaleParticipants(ctx context.Context, olderThan int64) ([]*store.Participant, error) {
	query := `
		SELECT id, name, last_heartbeat
		FROM participants
		WHERE last_heartbeat < ?
	`
	rows, err := s.db.QueryContext(ctx, query, olderThan)
	if err != nil {
		return nil, fmt.Errorf("query stale participants: %w", err)
	}
	defer rows.Close()

	return scanParticipants(rows)
}

// UpdateHeartbeat refreshes a participant's last heartbeat.
func (s *SQLiteStore) UpdateHeartbeat(ctx context.Context, name string, lastHeartbeat int64) error {
	query := `
		UPDATE participants
		SET last_heartbeat = ?
		WHERE name = ?
	`
	result, err := s.db.ExecContext(ctx, query, lastHeartbeat, name)
	if err != nil {
		return fmt.Errorf("update heartbeat: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}

	return nil
}

// DeleteParticipant removes a participant by ID.
func (s *SQLiteStore) DeleteParticipant(ctx context.Context, id string) error {
	query := `DELETE FROM participants WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}

	return nil
}

func scanParticipants(rows *sql.Rows) ([]*store.Participant, error) {
	participants := make([]*store.Participant, 0)
	for rows.Next() {
		var p store.Participant
		if err := rows.Scan(&p.ID, &p.Name, &p.LastHeartbeat); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		participants = append(participants, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate participants: %w", err)
	}

	return participants, nil
}

// ==== MessageStore implementation ====

// InsertMessage persists a message and assigns its ID.
func (s *SQLiteStore) InsertMessage(ctx context.Context, msg *store.Message) (*store.Message, error) {
	query := `
		INSERT INTO messages (id, from_name, to_name, text, type, time)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	saved := *msg
	saved.ID = uuid.New().String()

	_, err := s.db.ExecContext(ctx, query, saved.ID, saved.From, saved.To, saved.Text, saved.Type, saved.Time)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}

	return &saved, nil
}

// GetMessageByID retrieves a message by ID.
func (s *SQLiteStore) GetMessageByID(ctx context.Context, id string) (*store.Message, error) {
	query := `
		SELECT id, from_name, to_name, text, type, time
		FROM messages
		WHERE id = ?
	`
	var m store.Message
	err := s.db.QueryRowContext(ctx, query, id).Scan(&m.ID, &m.From, &m.To, &m.Text, &m.Type, &m.Time)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("query message: %w", err)
	}

	return &m, nil
}

// ListMessages retrieves all messages in insertion order.
func (s *SQLiteStore) ListMessages(ctx context.Context) ([]*store.Message, error) {
	query := `
		SELECT id, from_name, to_name, text, type, time
		FROM messages
		ORDER BY rowid
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	messages := make([]*store.Message, 0)
	for rows.Next() {
		var m store.Message
		if err := rows.Scan(&m.ID, &m.From, &m.To, &m.Text, &m.Type, &m.Time); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	return messages, nil
}

// UpdateMessage overwrites the mutable fields of an existing message.
func (s *SQLiteStore) UpdateMessage(ctx context.Context, msg *store.Message) error {
	query := `
		UPDATE messages
		SET from_name = ?, to_name = ?, text = ?, type = ?, time = ?
		WHERE id = ?
	`
	result, err := s.db.ExecContext(ctx, query, msg.From, msg.To, msg.Text, msg.Type, msg.Time, msg.ID)
	if err != nil {
		return fmt.Errorf("update message: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}

	return nil
}

// DeleteMessage removes a message by ID.
func (s *SQLiteStore) DeleteMessage(ctx context.Context, id string) error {
	query := `DELETE FROM messages WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}

	return nil
}
