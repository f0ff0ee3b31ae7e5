// Package document stores the documents whose text feeds the suggestion flow.
// Content is authoritative here; suggestion sets are ephemeral and live with
// the coordinator, never in this table.
package document

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/plumenote/plume/pkg/uuid"
)

// ErrNotFound is returned when a document does not exist in the workspace.
var ErrNotFound = errors.New("document not found")

type Document struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspaceId"`
	OwnerID     string    `json:"ownerId"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CreateInput struct {
	OwnerID string
	Title   string
	Content string
}

type UpdateInput struct {
	Title   string
	Content string
}

type Service struct {
	db *sql.DB
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

func (s *Service) Create(ctx context.Context, workspaceID string, input CreateInput) (*Document, error) {
	id := uuid.NewV7().String()
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO document (id, workspace_id, owner_id, title, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, workspaceID, input.OwnerID, input.Title, input.Content, now, now)
	if err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	return s.Get(ctx, workspaceID, id)
}

func (s *Service) Get(ctx context.Context, workspaceID, documentID string) (*Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, workspace_id, owner_id, title, content, created_at, updated_at
		FROM document
		WHERE id = ? AND workspace_id = ?
	`, documentID, workspaceID)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// List returns the workspace's documents, newest first.
func (s *Service) List(ctx context.Context, workspaceID string, limit, offset int) ([]*Document, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, workspace_id, owner_id, title, content, created_at, updated_at
		FROM document
		WHERE workspace_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, workspaceID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	out := make([]*Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("list documents: %w", err)
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// Update replaces title and content. The caller feeds the new content to the
// suggestion coordinator separately; this service only persists it.
func (s *Service) Update(ctx context.Context, workspaceID, documentID string, input UpdateInput) (*Document, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx, `
		UPDATE document
		SET title = ?, content = ?, updated_at = ?
		WHERE id = ? AND workspace_id = ?
	`, input.Title, input.Content, now, documentID, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("update document: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, workspaceID, documentID)
}

func (s *Service) Delete(ctx context.Context, workspaceID, documentID string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM document WHERE id = ? AND workspace_id = ?
	`, documentID, workspaceID)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*Document, error) {
	var doc Document
	var createdAt, updatedAt string
	if err := row.Scan(&doc.ID, &doc.WorkspaceID, &doc.OwnerID, &doc.Title, &doc.Content, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	doc.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	doc.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &doc, nil
}
