package repository

import (
	"context"
	"database/sql"
	"sync"

	"adboard/internal/domain"
	"adboard/internal/models"
	"adboard/pkg/database"
	errs "adboard/pkg/errors"
)

// SQLUnitOfWorkFactory opens transactions against the shared connection pool.
type SQLUnitOfWorkFactory struct {
	db *database.DB
}

var _ domain.UnitOfWorkFactory = (*SQLUnitOfWorkFactory)(nil)

func NewSQLUnitOfWorkFactory(db *database.DB) *SQLUnitOfWorkFactory {
	return &SQLUnitOfWorkFactory{db: db}
}

// Begin returns a unit of work with its transaction already started.
func (f *SQLUnitOfWorkFactory) Begin(ctx context.Context) (domain.UnitOfWork, error) {
	uow := NewSQLUnitOfWork(f.db)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	return uow, nil
}

// SQLUnitOfWork scopes advertisement and moderation writes to one database
// transaction. The moderation decision path reads the advertisement, updates
// its status and inserts the decision record, and all three see the same tx,
// so either both rows change or neither does.
//
// Lookups of other entities delegate to the plain repository outside the
// transaction; they are reads that do not participate in the atomicity
// guarantee.
type SQLUnitOfWork struct {
	*SQLRepository

	db   *database.DB
	tx   *sql.Tx
	mu   sync.Mutex
	done bool
}

var _ domain.UnitOfWork = (*SQLUnitOfWork)(nil)

func NewSQLUnitOfWork(db *database.DB) *SQLUnitOfWork {
	return &SQLUnitOfWork{
		SQLRepository: NewSQLRepository(db),
		db:            db,
	}
}

func (u *SQLUnitOfWork) Begin(ctx context.Context) error {
	const op = "repository.SQLUnitOfWork.Begin"

	u.mu.Lock()
	defer u.mu.Unlock()

	if u.tx != nil {
		return errs.NewStorage(op, "transaction already started", nil)
	}
	tx, err := u.db.Conn().BeginTx(ctx, nil)
	if err != nil {
		return errs.NewStorage(op, "failed to begin transaction", err)
	}
	u.tx = tx
	u.done = false
	return nil
}

func (u *SQLUnitOfWork) Commit() error {
	const op = "repository.SQLUnitOfWork.Commit"

	u.mu.Lock()
	defer u.mu.Unlock()

	if u.tx == nil || u.done {
		return errs.NewStorage(op, "no active transaction", nil)
	}
	u.done = true
	if err := u.tx.Commit(); err != nil {
		return errs.NewStorage(op, "commit failed", err)
	}
	return nil
}

// Rollback is a no-op after Commit so it can sit in a defer.
func (u *SQLUnitOfWork) Rollback() error {
	const op = "repository.SQLUnitOfWork.Rollback"

	u.mu.Lock()
	defer u.mu.Unlock()

	if u.tx == nil || u.done {
		return nil
	}
	u.done = true
	if err := u.tx.Rollback(); err != nil {
		return errs.NewStorage(op, "rollback failed", err)
	}
	return nil
}

func (u *SQLUnitOfWork) activeTx() (*sql.Tx, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.tx == nil || u.done {
		return nil, errs.NewStorage("repository.SQLUnitOfWork", "no active transaction", nil)
	}
	return u.tx, nil
}

// GetAdvertisementCtx reads through the transaction so the row being
// moderated is the row being updated.
func (u *SQLUnitOfWork) GetAdvertisementCtx(ctx context.Context, oid string) (*models.Advertisement, error) {
	tx, err := u.activeTx()
	if err != nil {
		return nil, err
	}
	return u.db.GetAdvertisementTx(ctx, tx, oid)
}

func (u *SQLUnitOfWork) UpdateAdvertisementCtx(ctx context.Context, ad *models.Advertisement) error {
	tx, err := u.activeTx()
	if err != nil {
		return err
	}
	return u.db.UpdateAdvertisementTx(ctx, tx, ad)
}

func (u *SQLUnitOfWork) AddModerationCtx(ctx context.Context, m *models.Moderation) error {
	tx, err := u.activeTx()
	if err != nil {
		return err
	}
	return u.db.InsertModerationTx(ctx, tx, m)
}
