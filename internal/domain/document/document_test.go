package document

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/plumenote/plume/internal/infra/sqlite"
	"github.com/plumenote/plume/pkg/uuid"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sqlite.NewDB(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// In-memory SQLite gives each connection its own database; pin to one.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

func createFixtures(t *testing.T, db *sql.DB) (workspaceID, userID string) {
	t.Helper()
	workspaceID = uuid.NewV7().String()
	userID = uuid.NewV7().String()
	now := time.Now().UTC().Format(time.RFC3339)

	if _, err := db.Exec(`
		INSERT INTO workspace (id, name, slug, created_at, updated_at)
		VALUES (?, 'Test Workspace', ?, ?, ?)
	`, workspaceID, "ws-"+workspaceID, now, now); err != nil {
		t.Fatalf("failed to insert workspace fixture: %v", err)
	}
	if _, err := db.Exec(`
		INSERT INTO user_account (id, workspace_id, email, password_hash, display_name, status, created_at, updated_at)
		VALUES (?, ?, ?, 'x', 'Test User', 'active', ?, ?)
	`, userID, workspaceID, userID+"@example.com", now, now); err != nil {
		t.Fatalf("failed to insert user fixture: %v", err)
	}
	return workspaceID, userID
}

func TestService_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	workspaceID, userID := createFixtures(t, db)
	svc := NewService(db)
	ctx := context.Background()

	created, err := svc.Create(ctx, workspaceID, CreateInput{
		OwnerID: userID,
		Title:   "Resume",
		Content: "Experience: built X.",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" || created.Title != "Resume" {
		t.Fatalf("unexpected document: %+v", created)
	}

	got, err := svc.Get(ctx, workspaceID, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Content != "Experience: built X." {
		t.Errorf("content %q", got.Content)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("timestamps not populated")
	}
}

func TestService_GetWrongWorkspace(t *testing.T) {
	db := setupTestDB(t)
	workspaceID, userID := createFixtures(t, db)
	otherWorkspace, _ := createFixtures(t, db)
	svc := NewService(db)
	ctx := context.Background()

	created, err := svc.Create(ctx, workspaceID, CreateInput{OwnerID: userID, Title: "t"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Get(ctx, otherWorkspace, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-workspace Get: got %v, want ErrNotFound", err)
	}
}

func TestService_List(t *testing.T) {
	db := setupTestDB(t)
	workspaceID, userID := createFixtures(t, db)
	svc := NewService(db)
	ctx := context.Background()

	for _, title := range []string{"one", "two", "three"} {
		if _, err := svc.Create(ctx, workspaceID, CreateInput{OwnerID: userID, Title: title}); err != nil {
			t.Fatalf("Create %s: %v", title, err)
		}
	}

	docs, err := svc.List(ctx, workspaceID, 10, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("expected 3 documents, got %d", len(docs))
	}
}

func TestService_Update(t *testing.T) {
	db := setupTestDB(t)
	workspaceID, userID := createFixtures(t, db)
	svc := NewService(db)
	ctx := context.Background()

	created, err := svc.Create(ctx, workspaceID, CreateInput{OwnerID: userID, Title: "draft", Content: "v1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := svc.Update(ctx, workspaceID, created.ID, UpdateInput{Title: "final", Content: "v2"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "final" || updated.Content != "v2" {
		t.Fatalf("update not applied: %+v", updated)
	}

	if _, err := svc.Update(ctx, workspaceID, "missing", UpdateInput{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Update missing: got %v, want ErrNotFound", err)
	}
}

func TestService_Delete(t *testing.T) {
	db := setupTestDB(t)
	workspaceID, userID := createFixtures(t, db)
	svc := NewService(db)
	ctx := context.Background()

	created, err := svc.Create(ctx, workspaceID, CreateInput{OwnerID: userID, Title: "gone"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Delete(ctx, workspaceID, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, workspaceID, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after Delete: got %v, want ErrNotFound", err)
	}
	if err := svc.Delete(ctx, workspaceID, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second Delete: got %v, want ErrNotFound", err)
	}
}
