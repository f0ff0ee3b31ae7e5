package sqlite

import (
	"path/filepath"
	"testing"
)

func TestNewDB_InMemory(t *testing.T) {
	db, err := NewDB(":memory:")
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	defer db.Close()

	var fk int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("pragma query: %v", err)
	}
	if fk != 1 {
		t.Errorf("foreign keys not enforced, got %d", fk)
	}
}

func TestNewDB_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plume.db")
	db, err := NewDB(path)
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	defer db.Close()

	var mode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("pragma query: %v", err)
	}
	if mode != "wal" {
		t.Errorf("expected WAL journal mode, got %q", mode)
	}
}

func TestNewDB_MissingParentDir(t *testing.T) {
	if _, err := NewDB(filepath.Join(t.TempDir(), "nope", "plume.db")); err == nil {
		t.Fatal("expected error for missing parent directory")
	}
}
