package domain

import "context"

// UnitOfWork coordinates a set of repository operations within a single
// database transaction to ensure consistency across multiple entities.
// It also exposes repository capabilities so services can operate through it.
//
// Typical usage:
//  uow, err := factory.Begin(ctx)
//  if err != nil { ... }
//  defer uow.Rollback()
//  if err := uow.UpdateAdvertisementCtx(ctx, ad); err != nil { ... }
//  if err := uow.AddModerationCtx(ctx, mod); err != nil { ... }
//  if err := uow.Commit(); err != nil { ... }
//
// The deferred Rollback is a no-op after Commit, so the transaction closes
// on every exit path. The moderation insert and the advertisement update
// committing together is the core atomicity guarantee of the subsystem.
//
// NOTE: Keep the transaction as short as possible.

type UnitOfWork interface {
	// Transaction controls
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	// Repository access (embed to expose methods)
	Repository
}

// UnitOfWorkFactory starts new UnitOfWork instances.
// A returned UnitOfWork is already begun; Begin may be a no-op.
// Keeping Begin on UnitOfWork allows reusing implementations in tests.
type UnitOfWorkFactory interface {
	Begin(ctx context.Context) (UnitOfWork, error)
}
