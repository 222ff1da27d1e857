package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/MKhiriev/go-vault-trust/internal/logger"
	"github.com/MKhiriev/go-vault-trust/models"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var userColumns = []string{
	"user_id", "email", "name", "auth_hash", "encryption_salt",
	"encrypted_vault_key", "public_key", "encrypted_private_key",
	"is_admin", "created_at",
}

func newTestUserRepo(t *testing.T) (*userRepository, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	l := logger.NewLogger("test")
	repo := &userRepository{
		db:     &DB{DB: db, logger: l},
		logger: l,
	}
	return repo, mock, db
}

func pgError(code string) error {
	return &pgconn.PgError{Code: code}
}

func TestCreateUser_Success(t *testing.T) {
	repo, mock, db := newTestUserRepo(t)
	defer db.Close()

	ctx := context.Background()
	user := models.User{
		Email:               "john@example.com",
		Name:                "John",
		AuthHash:            "verifier",
		EncryptionSalt:      "c2FsdA==",
		EncryptedVaultKey:   "d3JhcHBlZA==",
		PublicKey:           "cHVi",
		EncryptedPrivateKey: "cHJpdg==",
	}

	now := time.Now()

	rows := sqlmock.
		NewRows(userColumns).
		AddRow(1, user.Email, user.Name, user.AuthHash, user.EncryptionSalt,
			user.EncryptedVaultKey, user.PublicKey, user.EncryptedPrivateKey, false, now)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs(user.Email, user.Name, user.AuthHash, user.EncryptionSalt,
			user.EncryptedVaultKey, user.PublicKey, user.EncryptedPrivateKey, false).
		WillReturnRows(rows)

	created, err := repo.CreateUser(ctx, user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.UserID != 1 {
		t.Errorf("expected UserID=1, got %d", created.UserID)
	}
	if created.Email != user.Email {
		t.Errorf("expected email %s, got %s", user.Email, created.Email)
	}
}

func TestCreateUser_UniqueViolation(t *testing.T) {
	repo, mock, db := newTestUserRepo(t)
	defer db.Close()

	ctx := context.Background()
	user := models.User{Email: "john@example.com"}

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(pgError(pgerrcode.UniqueViolation))

	_, err := repo.CreateUser(ctx, user)
	if !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestCreateUser_UnexpectedDBError(t *testing.T) {
	repo, mock, db := newTestUserRepo(t)
	defer db.Close()

	ctx := context.Background()
	user := models.User{Email: "john@example.com"}

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(errors.New("db network error"))

	_, err := repo.CreateUser(ctx, user)
	if err == nil || !strings.Contains(err.Error(), "unexpected DB error") {
		t.Fatalf("expected wrapped unexpected DB error, got %v", err)
	}
}

func TestCreateUser_ScanError(t *testing.T) {
	repo, mock, db := newTestUserRepo(t)
	defer db.Close()

	ctx := context.Background()
	user := models.User{Email: "john@example.com"}

	rows := sqlmock.
		NewRows([]string{"user_id"}). // intentionally wrong shape → scan error
		AddRow(1)

	mock.ExpectQuery("INSERT INTO users").
		WillReturnRows(rows)

	_, err := repo.CreateUser(ctx, user)
	if err == nil {
		t.Fatal("expected scan error, got nil")
	}
}

func TestFindUserByEmail_Success(t *testing.T) {
	repo, mock, db := newTestUserRepo(t)
	defer db.Close()

	ctx := context.Background()

	now := time.Now()
	rows := sqlmock.
		NewRows(userColumns).
		AddRow(1, "john@example.com", "John", "verifier", "c2FsdA==",
			"d3JhcHBlZA==", "cHVi", "cHJpdg==", false, now)

	mock.ExpectQuery("SELECT user_id").
		WithArgs("john@example.com").
		WillReturnRows(rows)

	found, err := repo.FindUserByEmail(ctx, "john@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found.Email != "john@example.com" {
		t.Errorf("expected email john@example.com, got %s", found.Email)
	}
	if !found.HasIdentityKey() {
		t.Error("expected identity key to be present")
	}
}

func TestFindUserByEmail_NotFound(t *testing.T) {
	repo, mock, db := newTestUserRepo(t)
	defer db.Close()

	ctx := context.Background()

	mock.ExpectQuery("SELECT user_id").
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err := repo.FindUserByEmail(ctx, "nobody@example.com")
	if !errors.Is(err, ErrNoUserWasFound) {
		t.Fatalf("expected ErrNoUserWasFound, got %v", err)
	}
}

func TestFindUserByID_Success(t *testing.T) {
	repo, mock, db := newTestUserRepo(t)
	defer db.Close()

	ctx := context.Background()

	now := time.Now()
	rows := sqlmock.
		NewRows(userColumns).
		AddRow(42, "admin@example.com", "Admin", "verifier", "c2FsdA==",
			"d3JhcHBlZA==", "", "", true, now)

	mock.ExpectQuery("SELECT user_id").
		WithArgs(int64(42)).
		WillReturnRows(rows)

	found, err := repo.FindUserByID(ctx, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found.IsAdmin {
		t.Error("expected admin flag to survive the round trip")
	}
	if found.HasIdentityKey() {
		t.Error("expected no identity key for this account")
	}
}

func TestFindUserByID_NotFound(t *testing.T) {
	repo, mock, db := newTestUserRepo(t)
	defer db.Close()

	ctx := context.Background()

	mock.ExpectQuery("SELECT user_id").
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err := repo.FindUserByID(ctx, 404)
	if !errors.Is(err, ErrNoUserWasFound) {
		t.Fatalf("expected ErrNoUserWasFound, got %v", err)
	}
}
