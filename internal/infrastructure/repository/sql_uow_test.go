package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"adboard/internal/models"
	"adboard/pkg/database"
)

var adColumns = []string{
	"a.oid", "a.title", "a.city", "a.description", "a.price", "a.created_at", "a.approved_at", "a.views", "a.photos", "a.status",
	"u.oid", "u.first_name", "u.last_name", "u.middle_name", "u.email", "u.phone", "u.time_call", "u.role", "u.status", "u.password_hash", "u.created_at",
	"c.oid", "c.title", "c.code", "c.description", "c.created_at",
}

func newMockDB(t *testing.T) (*database.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	mock.MatchExpectationsInOrder(false)
	for i := 0; i < 7; i++ {
		mock.ExpectPrepare(".*")
	}
	db, err := database.NewFromConn(conn, time.Second, time.Second)
	if err != nil {
		t.Fatalf("NewFromConn: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func pendingAdRow() *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(adColumns).AddRow(
		"ad-1", "Sofa", "Moscow", "Green sofa", "4500", now, nil, 0, []byte(`["photos/a.jpg"]`), "ON_MODERATION",
		"user-1", "Ivan", "Petrov", nil, "ivan@example.com", "79991234567", nil, "USER", "ACTIVE", "hash", now,
		"cat-1", "Furniture", "furniture", "", now,
	)
}

func TestSQLUnitOfWorkCommitsDecisionAtomically(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM advertisements").WithArgs("ad-1").WillReturnRows(pendingAdRow())
	mock.ExpectExec("UPDATE advertisements").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO moderation").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	factory := NewSQLUnitOfWorkFactory(db)
	uow, err := factory.Begin(context.Background())
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer uow.Rollback()

	ad, err := uow.GetAdvertisementCtx(context.Background(), "ad-1")
	if err != nil {
		t.Fatalf("GetAdvertisementCtx: %v", err)
	}
	if ad == nil || ad.Status != models.StatusOnModeration {
		t.Fatalf("unexpected advertisement: %+v", ad)
	}

	decision, err := models.NewModeration(ad.OID, "mod-1", true, "")
	if err != nil {
		t.Fatal(err)
	}
	if err := ad.ApplyDecision(true, decision.CreatedAt); err != nil {
		t.Fatal(err)
	}

	if err := uow.UpdateAdvertisementCtx(context.Background(), ad); err != nil {
		t.Fatalf("UpdateAdvertisementCtx: %v", err)
	}
	if err := uow.AddModerationCtx(context.Background(), decision); err != nil {
		t.Fatalf("AddModerationCtx: %v", err)
	}
	if err := uow.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSQLUnitOfWorkRollsBackOnWriteFailure(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM advertisements").WithArgs("ad-1").WillReturnRows(pendingAdRow())
	mock.ExpectExec("UPDATE advertisements").WillReturnError(errors.New("deadlock"))
	mock.ExpectRollback()

	factory := NewSQLUnitOfWorkFactory(db)
	uow, err := factory.Begin(context.Background())
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}

	ad, err := uow.GetAdvertisementCtx(context.Background(), "ad-1")
	if err != nil {
		t.Fatal(err)
	}
	if err := ad.ApplyDecision(false, time.Now()); err != nil {
		t.Fatal(err)
	}

	if err := uow.UpdateAdvertisementCtx(context.Background(), ad); err == nil {
		t.Fatal("expected write failure")
	}
	if err := uow.Rollback(); err != nil {
		t.Fatalf("Rollback: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSQLUnitOfWorkRollbackAfterCommitIsNoop(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectCommit()

	factory := NewSQLUnitOfWorkFactory(db)
	uow, err := factory.Begin(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if err := uow.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := uow.Rollback(); err != nil {
		t.Errorf("Rollback after Commit: %v", err)
	}
	if err := uow.Commit(); err == nil {
		t.Error("second Commit must fail")
	}
}
