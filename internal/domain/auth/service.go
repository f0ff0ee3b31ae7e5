// Package auth implements Register and Login: workspace creation, user
// creation, password hashing, and JWT issuance.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	pkgauth "github.com/plumenote/plume/pkg/auth"
	"github.com/plumenote/plume/pkg/uuid"
)

// ErrInvalidCredentials is returned by Login for a wrong email or password.
// A single error for both cases avoids leaking whether the email exists.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrEmailAlreadyExists is returned by Register when the email is taken.
var ErrEmailAlreadyExists = errors.New("email already registered")

// RegisterInput holds the data for creating a new workspace and user.
// WorkspaceName creates the tenant; Email is the unique login identifier.
type RegisterInput struct {
	Email         string
	Password      string
	DisplayName   string
	WorkspaceName string
}

type LoginInput struct {
	Email    string
	Password string
}

// Result is returned after a successful Register or Login. Token is a signed
// JWT carrying UserID and WorkspaceID claims.
type Result struct {
	Token       string
	UserID      string
	WorkspaceID string
}

// Service defines the authentication operations.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*Result, error)
	Login(ctx context.Context, input LoginInput) (*Result, error)
}

type service struct {
	db *sql.DB
}

// NewService creates a Service backed by the provided DB.
func NewService(db *sql.DB) Service {
	return &service{db: db}
}

// Register creates a new workspace and user atomically, then returns a JWT.
// The password is hashed with bcrypt before storage.
func (s *service) Register(ctx context.Context, input RegisterInput) (*Result, error) {
	hash, err := pkgauth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	workspaceID := uuid.NewV7().String()
	userID := uuid.NewV7().String()

	if err := s.insertWorkspaceAndUser(ctx, insertParams{
		workspaceID:   workspaceID,
		userID:        userID,
		workspaceName: input.WorkspaceName,
		email:         input.Email,
		passwordHash:  hash,
		displayName:   input.DisplayName,
	}); err != nil {
		return nil, err
	}

	token, err := pkgauth.GenerateJWT(userID, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("generate JWT: %w", err)
	}
	return &Result{Token: token, UserID: userID, WorkspaceID: workspaceID}, nil
}

type insertParams struct {
	workspaceID   string
	userID        string
	workspaceName string
	email         string
	passwordHash  string
	displayName   string
}

func (s *service) insertWorkspaceAndUser(ctx context.Context, p insertParams) error {
	now := time.Now().UTC().Format(time.RFC3339)
	slug := generateSlug(p.workspaceName, p.workspaceID)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO workspace (id, name, slug, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, p.workspaceID, p.workspaceName, slug, now, now)
	if err != nil {
		return fmt.Errorf("create workspace: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_account (id, workspace_id, email, password_hash, display_name, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 'active', ?, ?)
	`, p.userID, p.workspaceID, p.email, p.passwordHash, p.displayName, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailAlreadyExists
		}
		return fmt.Errorf("create user: %w", err)
	}

	return tx.Commit()
}

// Login verifies credentials and returns a JWT. Any failure yields
// ErrInvalidCredentials, whether the email was unknown or the password wrong.
func (s *service) Login(ctx context.Context, input LoginInput) (*Result, error) {
	var userID, workspaceID string
	var passwordHash sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT id, workspace_id, password_hash
		FROM user_account
		WHERE email = ? AND status = 'active'
		LIMIT 1
	`, input.Email).Scan(&userID, &workspaceID, &passwordHash)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !passwordHash.Valid || passwordHash.String == "" {
		return nil, ErrInvalidCredentials
	}
	if !pkgauth.VerifyPassword(passwordHash.String, input.Password) {
		return nil, ErrInvalidCredentials
	}

	token, err := pkgauth.GenerateJWT(userID, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("generate JWT: %w", err)
	}
	return &Result{Token: token, UserID: userID, WorkspaceID: workspaceID}, nil
}

// slugChar maps one rune to its slug representation: lowercase letters and
// digits pass through, spaces and dashes become '-', everything else drops.
func slugChar(c rune) rune {
	switch {
	case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		return c
	case c >= 'A' && c <= 'Z':
		return c + 32
	case c == ' ', c == '-':
		return '-'
	default:
		return -1
	}
}

// generateSlug builds a URL-safe workspace slug. The full workspace ID is the
// suffix so identical names never collide on the UNIQUE constraint.
func generateSlug(name, id string) string {
	return strings.Map(slugChar, name) + "-" + id
}

// isUniqueViolation checks for a SQLite UNIQUE constraint error, which the
// driver surfaces only through the message text.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
