package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/MKhiriev/go-vault-trust/internal/logger"
	"github.com/MKhiriev/go-vault-trust/models"
	sq "github.com/Masterminds/squirrel"
)

func newTestGrantRepo(t *testing.T) (*grantRepository, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	l := logger.NewLogger("test")
	repo := &grantRepository{
		db:      &DB{DB: db, logger: l},
		logger:  l,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
	return repo, mock, db
}

func grantRow(grantID string, status models.GrantStatus, now time.Time) *sqlmock.Rows {
	return sqlmock.
		NewRows(grantColumns).
		AddRow(grantID, int64(1), "friend@example.com", nil,
			"Y2lwaGVydGV4dA==", string(status), models.AccessUse, nil,
			false, true, nil, "", now, now)
}

func TestCreateGrant_Success(t *testing.T) {
	repo, mock, db := newTestGrantRepo(t)
	defer db.Close()

	ctx := context.Background()
	grant := models.AccessGrant{
		GrantID:        "0192f0c1-0000-7000-8000-000000000001",
		OwnerID:        1,
		RecipientEmail: "friend@example.com",
		ItemCiphertext: "Y2lwaGVydGV4dA==",
		Status:         models.GrantPending,
		AccessLevel:    models.AccessUse,
		CanAutoLogin:   true,
	}

	mock.ExpectQuery("INSERT INTO access_grants").
		WillReturnRows(grantRow(grant.GrantID, models.GrantPending, time.Now()))

	created, err := repo.CreateGrant(ctx, grant)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Status != models.GrantPending {
		t.Errorf("expected status pending, got %s", created.Status)
	}
	if created.RecipientID != nil {
		t.Error("expected recipient to be unbound on a fresh grant")
	}
}

func TestGetGrant_NotFound(t *testing.T) {
	repo, mock, db := newTestGrantRepo(t)
	defer db.Close()

	ctx := context.Background()

	mock.ExpectQuery("SELECT (.+) FROM access_grants").
		WillReturnRows(sqlmock.NewRows(grantColumns))

	_, err := repo.GetGrant(ctx, "missing")
	if !errors.Is(err, ErrGrantNotFound) {
		t.Fatalf("expected ErrGrantNotFound, got %v", err)
	}
}

func TestTransitionStatus_Success(t *testing.T) {
	repo, mock, db := newTestGrantRepo(t)
	defer db.Close()

	ctx := context.Background()
	grantID := "0192f0c1-0000-7000-8000-000000000001"

	mock.ExpectQuery("UPDATE access_grants").
		WillReturnRows(grantRow(grantID, models.GrantAccepted, time.Now()))

	grant, err := repo.TransitionStatus(ctx, grantID,
		[]models.GrantStatus{models.GrantPending}, models.GrantAccepted, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if grant.Status != models.GrantAccepted {
		t.Errorf("expected status accepted, got %s", grant.Status)
	}
}

func TestTransitionStatus_StateConflict(t *testing.T) {
	repo, mock, db := newTestGrantRepo(t)
	defer db.Close()

	ctx := context.Background()

	// the guard matched zero rows: the grant is already terminal
	mock.ExpectQuery("UPDATE access_grants").
		WillReturnRows(sqlmock.NewRows(grantColumns))

	_, err := repo.TransitionStatus(ctx, "already-revoked",
		[]models.GrantStatus{models.GrantActive}, models.GrantRevoked, models.RevokeReasonOwner)
	if !errors.Is(err, ErrStateConflict) {
		t.Fatalf("expected ErrStateConflict, got %v", err)
	}
}

func TestBindRecipient_GrantNotFound(t *testing.T) {
	repo, mock, db := newTestGrantRepo(t)
	defer db.Close()

	ctx := context.Background()

	mock.ExpectExec("UPDATE access_grants").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.BindRecipient(ctx, "missing", 7)
	if !errors.Is(err, ErrGrantNotFound) {
		t.Fatalf("expected ErrGrantNotFound, got %v", err)
	}
}

func TestScheduleAutoRevoke_KeepsFirstDeadline(t *testing.T) {
	repo, mock, db := newTestGrantRepo(t)
	defer db.Close()

	ctx := context.Background()

	// COALESCE leaves an already-set deadline untouched, so a repeat
	// login cannot defer the revoke
	mock.ExpectExec(`UPDATE access_grants SET revoke_after = COALESCE\(revoke_after, \$1\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.ScheduleAutoRevoke(ctx, "grant-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSweepExpired_ReturnsAffectedIDs(t *testing.T) {
	repo, mock, db := newTestGrantRepo(t)
	defer db.Close()

	ctx := context.Background()
	now := time.Now()

	rows := sqlmock.NewRows([]string{"grant_id"}).
		AddRow("grant-1").
		AddRow("grant-2")

	mock.ExpectQuery("UPDATE access_grants").
		WillReturnRows(rows)

	ids, err := repo.SweepExpired(ctx, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 swept grants, got %d", len(ids))
	}
}

func TestListDueAutoRevokes_Empty(t *testing.T) {
	repo, mock, db := newTestGrantRepo(t)
	defer db.Close()

	ctx := context.Background()

	mock.ExpectQuery("SELECT grant_id FROM access_grants").
		WillReturnRows(sqlmock.NewRows([]string{"grant_id"}))

	ids, err := repo.ListDueAutoRevokes(ctx, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected no due auto-revokes, got %d", len(ids))
	}
}
