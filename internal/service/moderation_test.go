package service

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"adboard/internal/models"
	"adboard/internal/testutil"
	errs "adboard/pkg/errors"
	"adboard/pkg/events"
)

func seedAuthor(t *testing.T, repo *testutil.InMemoryRepository) models.User {
	t.Helper()
	u, err := models.NewUser("Ivan", "Petrov", nil, "ivan@example.com", "79991234567", nil)
	if err != nil {
		t.Fatal(err)
	}
	repo.SeedUser(*u)
	return *u
}

func seedModerator(t *testing.T, repo *testutil.InMemoryRepository) models.User {
	t.Helper()
	u, err := models.NewUser("Olga", "Orlova", nil, "olga@example.com", "79990000001", nil)
	if err != nil {
		t.Fatal(err)
	}
	u.Role = models.RoleModerator
	u.Status = models.UserStatusActive
	repo.SeedUser(*u)
	return *u
}

func seedPendingAd(t *testing.T, repo *testutil.InMemoryRepository, author models.User) models.Advertisement {
	t.Helper()
	c, err := models.NewCategory("Furniture", "")
	if err != nil {
		t.Fatal(err)
	}
	repo.SeedCategory(*c)
	ad, err := models.NewAdvertisement("Sofa", "Moscow", "Green sofa",
		decimal.NewFromInt(4500), []string{"photos/a.jpg"}, author, *c)
	if err != nil {
		t.Fatal(err)
	}
	ad.Status = models.StatusOnModeration
	repo.SeedAd(*ad)
	return *ad
}

// recordingBus collects published events for assertions.
type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func newRecordingBus() (*events.Bus, *recordingBus) {
	bus := events.NewBus(nil)
	rec := &recordingBus{}
	bus.Subscribe("recorder", events.Any, func(_ context.Context, e events.Event) error {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		rec.events = append(rec.events, e)
		return nil
	})
	return bus, rec
}

func (r *recordingBus) all() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.events...)
}

func TestModerationApprovePublishesAd(t *testing.T) {
	repo := testutil.NewInMemoryRepository()
	author := seedAuthor(t, repo)
	moderator := seedModerator(t, repo)
	ad := seedPendingAd(t, repo, author)
	factory := testutil.NewFakeUoWFactory(repo)
	bus, rec := newRecordingBus()
	svc := NewModerationService(repo, factory, bus, nil)

	decision, err := svc.Create(context.Background(), moderator.Actor(), DecisionInput{
		AdvertisementID: ad.OID,
		IsApproved:      true,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	stored := repo.Ads[ad.OID]
	if stored.Status != models.StatusActive {
		t.Errorf("status = %s, want %s", stored.Status, models.StatusActive)
	}
	if stored.ApprovedAt == nil {
		t.Error("approval must stamp approved_at")
	}
	if _, ok := repo.Moderations[decision.OID]; !ok {
		t.Error("decision record not persisted")
	}
	if !factory.Last.Committed {
		t.Error("transaction not committed")
	}

	got := rec.all()
	if len(got) != 1 || got[0].Type() != events.TypeModerated {
		t.Fatalf("events = %v, want one %s", got, events.TypeModerated)
	}
	if got[0].AdvertisementID() != ad.OID {
		t.Errorf("event for %s, want %s", got[0].AdvertisementID(), ad.OID)
	}
}

func TestModerationRejectReturnsForRevision(t *testing.T) {
	repo := testutil.NewInMemoryRepository()
	moderator := seedModerator(t, repo)
	ad := seedPendingAd(t, repo, seedAuthor(t, repo))
	factory := testutil.NewFakeUoWFactory(repo)
	svc := NewModerationService(repo, factory, nil, nil)

	decision, err := svc.Create(context.Background(), moderator.Actor(), DecisionInput{
		AdvertisementID: ad.OID,
		IsApproved:      false,
		RejectionReason: "no real photos",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	stored := repo.Ads[ad.OID]
	if stored.Status != models.StatusRejectedForRevision {
		t.Errorf("status = %s, want %s", stored.Status, models.StatusRejectedForRevision)
	}
	if stored.ApprovedAt != nil {
		t.Error("rejection must clear approved_at")
	}
	if decision.RejectionReason != "no real photos" {
		t.Errorf("reason = %q", decision.RejectionReason)
	}
}

func TestModerationRejectWithoutReasonWritesNothing(t *testing.T) {
	repo := testutil.NewInMemoryRepository()
	moderator := seedModerator(t, repo)
	ad := seedPendingAd(t, repo, seedAuthor(t, repo))
	factory := testutil.NewFakeUoWFactory(repo)
	svc := NewModerationService(repo, factory, nil, nil)

	_, err := svc.Create(context.Background(), moderator.Actor(), DecisionInput{
		AdvertisementID: ad.OID,
		IsApproved:      false,
	})
	if !errs.Is(err, errs.ErrValidation) {
		t.Fatalf("got %v, want validation error", err)
	}
	if got := repo.Ads[ad.OID].Status; got != models.StatusOnModeration {
		t.Errorf("status changed to %s on invalid input", got)
	}
	if len(repo.Moderations) != 0 {
		t.Error("moderation record written for invalid input")
	}
}

func TestModerationMissingAdWritesNothing(t *testing.T) {
	repo := testutil.NewInMemoryRepository()
	moderator := seedModerator(t, repo)
	factory := testutil.NewFakeUoWFactory(repo)
	bus, rec := newRecordingBus()
	svc := NewModerationService(repo, factory, bus, nil)

	_, err := svc.Create(context.Background(), moderator.Actor(), DecisionInput{
		AdvertisementID: "missing-ad",
		IsApproved:      true,
	})
	if !errs.Is(err, errs.ErrNotFound) {
		t.Fatalf("got %v, want not found", err)
	}
	if len(repo.Moderations) != 0 {
		t.Error("moderation record written for a missing advertisement")
	}
	if factory.Last.Committed {
		t.Error("transaction committed for a missing advertisement")
	}
	if len(rec.all()) != 0 {
		t.Error("event published for a failed decision")
	}
}

func TestModerationRequiresPrivilegedRole(t *testing.T) {
	repo := testutil.NewInMemoryRepository()
	author := seedAuthor(t, repo)
	ad := seedPendingAd(t, repo, author)
	factory := testutil.NewFakeUoWFactory(repo)
	svc := NewModerationService(repo, factory, nil, nil)

	_, err := svc.Create(context.Background(), author.Actor(), DecisionInput{
		AdvertisementID: ad.OID,
		IsApproved:      true,
	})
	if !errs.Is(err, errs.ErrAccessDenied) {
		t.Fatalf("got %v, want access denied", err)
	}
	if got := repo.Ads[ad.OID].Status; got != models.StatusOnModeration {
		t.Errorf("status changed to %s by an unprivileged actor", got)
	}
}

func TestModerationOnRemovedAdConflicts(t *testing.T) {
	repo := testutil.NewInMemoryRepository()
	moderator := seedModerator(t, repo)
	ad := seedPendingAd(t, repo, seedAuthor(t, repo))
	ad.Status = models.StatusRemoved
	repo.SeedAd(ad)
	factory := testutil.NewFakeUoWFactory(repo)
	svc := NewModerationService(repo, factory, nil, nil)

	_, err := svc.Create(context.Background(), moderator.Actor(), DecisionInput{
		AdvertisementID: ad.OID,
		IsApproved:      true,
	})
	if !errs.Is(err, errs.ErrStatusConflict) {
		t.Fatalf("got %v, want status conflict", err)
	}
	if len(repo.Moderations) != 0 {
		t.Error("moderation record written against a removed advertisement")
	}
}

func TestModerationHistoryVisibility(t *testing.T) {
	repo := testutil.NewInMemoryRepository()
	author := seedAuthor(t, repo)
	moderator := seedModerator(t, repo)
	ad := seedPendingAd(t, repo, author)
	factory := testutil.NewFakeUoWFactory(repo)
	svc := NewModerationService(repo, factory, nil, nil)

	if _, err := svc.Create(context.Background(), moderator.Actor(), DecisionInput{
		AdvertisementID: ad.OID,
		IsApproved:      false,
		RejectionReason: "blurry photos",
	}); err != nil {
		t.Fatal(err)
	}

	history, err := svc.ListByAdvertisement(context.Background(), author.Actor(), ad.OID)
	if err != nil {
		t.Fatalf("author must see own history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("history length = %d, want 1", len(history))
	}

	stranger := models.Actor{ID: "stranger", Role: models.RoleUser}
	if _, err := svc.ListByAdvertisement(context.Background(), stranger, ad.OID); !errs.Is(err, errs.ErrAccessDenied) {
		t.Errorf("stranger access: got %v, want access denied", err)
	}
}
