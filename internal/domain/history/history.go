// Package history is the append-only suggestion attempt log. One row per
// completed request attempt, success or failure, for diagnostics. Nothing in
// the refresh cycle reads it back.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/plumenote/plume/pkg/uuid"
)

// Attempt is one recorded suggestion request.
type Attempt struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"documentId"`
	Model      string    `json:"model"`
	Outcome    string    `json:"outcome"` // "success" | "failure"
	Detail     string    `json:"detail"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Service struct {
	db *sql.DB
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// Record appends one attempt. Satisfies the coordinator's AttemptRecorder.
func (s *Service) Record(ctx context.Context, documentID, model, outcome, detail string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO suggestion_attempt (id, document_id, model, outcome, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, uuid.NewV7().String(), documentID, model, outcome, detail, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}
	return nil
}

// ListByDocument returns the document's attempts, newest first.
func (s *Service) ListByDocument(ctx context.Context, documentID string, limit int) ([]*Attempt, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, model, outcome, detail, created_at
		FROM suggestion_attempt
		WHERE document_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, documentID, limit)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	out := make([]*Attempt, 0)
	for rows.Next() {
		var a Attempt
		var createdAt string
		if err := rows.Scan(&a.ID, &a.DocumentID, &a.Model, &a.Outcome, &a.Detail, &createdAt); err != nil {
			return nil, fmt.Errorf("list attempts: %w", err)
		}
		a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, &a)
	}
	return out, rows.Err()
}
