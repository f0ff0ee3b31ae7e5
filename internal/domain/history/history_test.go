package history

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/plumenote/plume/internal/infra/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sqlite.NewDB(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

func TestService_RecordAndList(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	if err := svc.Record(ctx, "doc-1", "llama3.2:3b", "success", "3 suggestions"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	// ids are time-ordered per millisecond; space the rows out so the
	// newest-first order is deterministic.
	time.Sleep(2 * time.Millisecond)
	if err := svc.Record(ctx, "doc-1", "llama3.2:3b", "failure", "connection refused"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := svc.Record(ctx, "doc-2", "", "success", "0 suggestions"); err != nil {
		t.Fatalf("Record: %v", err)
	}

	attempts, err := svc.ListByDocument(ctx, "doc-1", 10)
	if err != nil {
		t.Fatalf("ListByDocument: %v", err)
	}
	if len(attempts) != 2 {
		t.Fatalf("expected 2 attempts for doc-1, got %d", len(attempts))
	}
	// Newest first: the failure was recorded last.
	if attempts[0].Outcome != "failure" || attempts[0].Detail != "connection refused" {
		t.Errorf("unexpected first attempt: %+v", attempts[0])
	}
	if attempts[1].Outcome != "success" {
		t.Errorf("unexpected second attempt: %+v", attempts[1])
	}
}

func TestService_ListLimit(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := svc.Record(ctx, "doc-1", "m", "success", ""); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	attempts, err := svc.ListByDocument(ctx, "doc-1", 3)
	if err != nil {
		t.Fatalf("ListByDocument: %v", err)
	}
	if len(attempts) != 3 {
		t.Fatalf("limit not applied: got %d", len(attempts))
	}
}

func TestService_ListEmpty(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	attempts, err := svc.ListByDocument(context.Background(), "never-seen", 10)
	if err != nil {
		t.Fatalf("ListByDocument: %v", err)
	}
	if len(attempts) != 0 {
		t.Fatalf("expected no attempts, got %d", len(attempts))
	}
}
