package auth

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	"github.com/plumenote/plume/internal/infra/sqlite"
	pkgauth "github.com/plumenote/plume/pkg/auth"
)

func TestMain(m *testing.M) {
	os.Setenv("PLUME_JWT_SECRET", "test-secret-key-32-chars-min!!!")
	os.Exit(m.Run())
}

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

func TestRegister_Success(t *testing.T) {
	svc := NewService(setupTestDB(t))

	result, err := svc.Register(context.Background(), RegisterInput{
		Email:         "ada@example.com",
		Password:      "correct horse battery",
		DisplayName:   "Ada",
		WorkspaceName: "Ada's Workspace",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if result.Token == "" || result.UserID == "" || result.WorkspaceID == "" {
		t.Fatalf("incomplete result: %+v", result)
	}

	claims, err := pkgauth.ParseJWT(result.Token)
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	if claims.UserID != result.UserID || claims.WorkspaceID != result.WorkspaceID {
		t.Errorf("claims %+v do not match result %+v", claims, result)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := NewService(setupTestDB(t))
	ctx := context.Background()

	input := RegisterInput{Email: "dup@example.com", Password: "pw-one", WorkspaceName: "A"}
	if _, err := svc.Register(ctx, input); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if _, err := svc.Register(ctx, input); !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("second Register: got %v, want ErrEmailAlreadyExists", err)
	}
}

func TestRegister_SameWorkspaceNameAllowed(t *testing.T) {
	svc := NewService(setupTestDB(t))
	ctx := context.Background()

	for _, email := range []string{"a@example.com", "b@example.com"} {
		if _, err := svc.Register(ctx, RegisterInput{Email: email, Password: "pw", WorkspaceName: "My Resume"}); err != nil {
			t.Fatalf("Register %s: %v", email, err)
		}
	}
}

func TestLogin_Success(t *testing.T) {
	svc := NewService(setupTestDB(t))
	ctx := context.Background()

	reg, err := svc.Register(ctx, RegisterInput{Email: "ada@example.com", Password: "secret-pw", WorkspaceName: "W"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	result, err := svc.Login(ctx, LoginInput{Email: "ada@example.com", Password: "secret-pw"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.UserID != reg.UserID || result.WorkspaceID != reg.WorkspaceID {
		t.Errorf("login identity mismatch: %+v vs %+v", result, reg)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := NewService(setupTestDB(t))
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Email: "ada@example.com", Password: "right", WorkspaceName: "W"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Login(ctx, LoginInput{Email: "ada@example.com", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("Login: got %v, want ErrInvalidCredentials", err)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc := NewService(setupTestDB(t))

	if _, err := svc.Login(context.Background(), LoginInput{Email: "nobody@example.com", Password: "pw"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("Login: got %v, want ErrInvalidCredentials", err)
	}
}

func TestGenerateSlug(t *testing.T) {
	slug := generateSlug("Ada's Team!", "0123")
	if slug != "adas-team-0123" {
		t.Errorf("generateSlug = %q", slug)
	}
}
