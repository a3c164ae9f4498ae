package testutil

import (
	"context"

	"adboard/internal/domain"
	"adboard/internal/models"
)

// FakeUnitOfWork stages advertisement and moderation writes and applies them
// to the backing repository only on Commit, mimicking the transaction
// semantics of the SQL implementation. Tests can assert that a failed flow
// left the repository untouched.
type FakeUnitOfWork struct {
	*InMemoryRepository

	stagedAds  []models.Advertisement
	stagedMods []models.Moderation

	Committed  bool
	RolledBack bool

	CommitErr error
	WriteErr  error
}

var _ domain.UnitOfWork = (*FakeUnitOfWork)(nil)

func (u *FakeUnitOfWork) Begin(context.Context) error { return nil }

func (u *FakeUnitOfWork) Commit() error {
	if u.CommitErr != nil {
		return u.CommitErr
	}
	u.Committed = true
	for i := range u.stagedAds {
		u.InMemoryRepository.Ads[u.stagedAds[i].OID] = u.stagedAds[i]
	}
	for i := range u.stagedMods {
		u.InMemoryRepository.Moderations[u.stagedMods[i].OID] = u.stagedMods[i]
	}
	return nil
}

func (u *FakeUnitOfWork) Rollback() error {
	if u.Committed {
		return nil
	}
	u.RolledBack = true
	u.stagedAds = nil
	u.stagedMods = nil
	return nil
}

func (u *FakeUnitOfWork) GetAdvertisementCtx(ctx context.Context, oid string) (*models.Advertisement, error) {
	// staged writes win over the backing store, like reads inside a tx
	for i := len(u.stagedAds) - 1; i >= 0; i-- {
		if u.stagedAds[i].OID == oid {
			ad := u.stagedAds[i]
			return &ad, nil
		}
	}
	return u.InMemoryRepository.GetAdvertisementCtx(ctx, oid)
}

func (u *FakeUnitOfWork) UpdateAdvertisementCtx(_ context.Context, ad *models.Advertisement) error {
	if u.WriteErr != nil {
		return u.WriteErr
	}
	u.stagedAds = append(u.stagedAds, *ad)
	return nil
}

func (u *FakeUnitOfWork) AddModerationCtx(_ context.Context, m *models.Moderation) error {
	if u.WriteErr != nil {
		return u.WriteErr
	}
	u.stagedMods = append(u.stagedMods, *m)
	return nil
}

// FakeUoWFactory hands out fake units of work over one shared repository and
// remembers the last one for assertions.
type FakeUoWFactory struct {
	Repo     *InMemoryRepository
	BeginErr error

	Last *FakeUnitOfWork

	// applied to every new unit of work
	CommitErr error
	WriteErr  error
}

var _ domain.UnitOfWorkFactory = (*FakeUoWFactory)(nil)

func NewFakeUoWFactory(repo *InMemoryRepository) *FakeUoWFactory {
	return &FakeUoWFactory{Repo: repo}
}

func (f *FakeUoWFactory) Begin(context.Context) (domain.UnitOfWork, error) {
	if f.BeginErr != nil {
		return nil, f.BeginErr
	}
	uow := &FakeUnitOfWork{
		InMemoryRepository: f.Repo,
		CommitErr:          f.CommitErr,
		WriteErr:           f.WriteErr,
	}
	f.Last = uow
	return uow, nil
}
