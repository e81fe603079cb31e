package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/foundme/foundme/internal/model"
)

// SaveSession persists a new session.
func (s *Store) SaveSession(ctx context.Context, session *model.Session) error {
	identifiersJSON, err := json.Marshal(session.Identifiers)
	if err != nil {
		return fmt.Errorf("failed to serialize identifiers: %w", err)
	}
	metadataJSON, err := json.Marshal(session.Metadata)
	if err != nil {
		return fmt.Errorf("failed to serialize metadata: %w", err)
	}

	query := `
	INSERT INTO sessions (id, owner_id, label, kind, identifiers, state, created_at, started_at, completed_at, result_count, last_error, metadata)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		session.ID,
		session.OwnerID,
		session.Label,
		session.Kind.String(),
		string(identifiersJSON),
		session.State.String(),
		formatTime(session.CreatedAt),
		nullableTime(session.StartedAt),
		nullableTime(session.CompletedAt),
		session.ResultCount,
		session.LastError,
		string(metadataJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	return nil
}

// GetSession retrieves a session by id.
// Returns ErrSessionNotFound if no session exists.
func (s *Store) GetSession(ctx context.Context, id string) (*model.Session, error) {
	query := `
	SELECT id, owner_id, label, kind, identifiers, state, created_at, started_at, completed_at, result_count, last_error, metadata
	FROM sessions
	WHERE id = ?
	`

	row := s.db.QueryRowContext(ctx, query, id)
	session, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

// UpdateSession persists the session's mutable fields (state, timestamps,
// result count, error reason, metadata). Transition legality is enforced in
// the model before this is called; the store records what it is given.
func (s *Store) UpdateSession(ctx context.Context, session *model.Session) error {
	metadataJSON, err := json.Marshal(session.Metadata)
	if err != nil {
		return fmt.Errorf("failed to serialize metadata: %w", err)
	}

	query := `
	UPDATE sessions
	SET state = ?, started_at = ?, completed_at = ?, result_count = ?, last_error = ?, metadata = ?
	WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		session.State.String(),
		nullableTime(session.StartedAt),
		nullableTime(session.CompletedAt),
		session.ResultCount,
		session.LastError,
		string(metadataJSON),
		session.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return ErrSessionNotFound
	}

	return nil
}

// DeleteSession removes a session and, via the foreign-key cascade, every
// finding it owns. Deleting an individual finding is deliberately not
// exposed: findings leave the store only with their session.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ErrSessionNotFound
	}

	return nil
}

// ListSessions returns sessions for an owner, most recent first.
// An empty ownerID lists all sessions (elevated-role path).
func (s *Store) ListSessions(ctx context.Context, ownerID string, limit, offset int) ([]*model.Session, error) {
	query := `
	SELECT id, owner_id, label, kind, identifiers, state, created_at, started_at, completed_at, result_count, last_error, metadata
	FROM sessions
	`
	args := make([]any, 0, 3)
	if ownerID != "" {
		query += " WHERE owner_id = ?"
		args = append(args, ownerID)
	}
	query += " ORDER BY created_at DESC"
	if limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*model.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanSession.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanSession reads one session row.
func scanSession(row rowScanner) (*model.Session, error) {
	var (
		session         model.Session
		kind            string
		state           string
		identifiersJSON string
		createdAt       string
		startedAt       sql.NullString
		completedAt     sql.NullString
		lastError       sql.NullString
		metadataJSON    sql.NullString
	)

	err := row.Scan(
		&session.ID,
		&session.OwnerID,
		&session.Label,
		&kind,
		&identifiersJSON,
		&state,
		&createdAt,
		&startedAt,
		&completedAt,
		&session.ResultCount,
		&lastError,
		&metadataJSON,
	)
	if err != nil {
		return nil, err
	}

	session.Kind = model.SearchKind(kind)
	session.State = model.SessionState(state)
	session.CreatedAt = parseTimestamp(createdAt)
	if startedAt.Valid {
		session.StartedAt = parseTimestamp(startedAt.String)
	}
	if completedAt.Valid {
		session.CompletedAt = parseTimestamp(completedAt.String)
	}
	if lastError.Valid {
		session.LastError = lastError.String
	}

	if err := json.Unmarshal([]byte(identifiersJSON), &session.Identifiers); err != nil {
		return nil, fmt.Errorf("failed to parse identifiers: %w", err)
	}
	if metadataJSON.Valid && metadataJSON.String != "" {
		if err := json.Unmarshal([]byte(metadataJSON.String), &session.Metadata); err != nil {
			session.Metadata = make(map[string]string)
		}
	}

	return &session, nil
}

// formatTime serializes a timestamp for storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// nullableTime serializes a timestamp, mapping the zero value to NULL.
func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return formatTime(t)
}
