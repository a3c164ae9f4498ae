package models

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	errs "adboard/pkg/errors"
)

func testAuthor(t *testing.T) User {
	t.Helper()
	u, err := NewUser("Ivan", "Petrov", nil, "ivan@example.com", "79991234567", nil)
	if err != nil {
		t.Fatalf("NewUser: %v", err)
	}
	return *u
}

func testCategory(t *testing.T) Category {
	t.Helper()
	c, err := NewCategory("Furniture", "Tables, sofas and chairs")
	if err != nil {
		t.Fatalf("NewCategory: %v", err)
	}
	return *c
}

func testAd(t *testing.T) *Advertisement {
	t.Helper()
	ad, err := NewAdvertisement("Sofa", "Moscow", "Green sofa, barely used",
		decimal.NewFromInt(4500), []string{"photos/a.jpg"}, testAuthor(t), testCategory(t))
	if err != nil {
		t.Fatalf("NewAdvertisement: %v", err)
	}
	return ad
}

func TestNewAdvertisementStartsAsDraft(t *testing.T) {
	ad := testAd(t)
	if ad.Status != StatusDraft {
		t.Errorf("status = %s, want %s", ad.Status, StatusDraft)
	}
	if ad.ApprovedAt != nil {
		t.Error("new advertisement must not carry an approval timestamp")
	}
	if ad.OID == "" {
		t.Error("new advertisement must get an id")
	}
}

func TestNewAdvertisementPhotoBounds(t *testing.T) {
	author, category := testAuthor(t), testCategory(t)
	price := decimal.NewFromInt(10)

	cases := []struct {
		name   string
		count  int
		wantOK bool
	}{
		{"zero photos", 0, false},
		{"one photo", 1, true},
		{"ten photos", 10, true},
		{"eleven photos", 11, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			photos := make([]string, tc.count)
			for i := range photos {
				photos[i] = "photos/p.jpg"
			}
			_, err := NewAdvertisement("Sofa", "Moscow", "desc", price, photos, author, category)
			if tc.wantOK && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.wantOK && !errs.Is(err, errs.ErrValidation) {
				t.Fatalf("got %v, want validation error", err)
			}
		})
	}
}

func TestNewAdvertisementFieldValidation(t *testing.T) {
	author, category := testAuthor(t), testCategory(t)
	photos := []string{"photos/a.jpg"}

	if _, err := NewAdvertisement("", "Moscow", "desc", decimal.NewFromInt(1), photos, author, category); !errs.Is(err, errs.ErrValidation) {
		t.Errorf("empty title: got %v, want validation error", err)
	}
	long := strings.Repeat("x", 251)
	if _, err := NewAdvertisement("Sofa", "Moscow", long, decimal.NewFromInt(1), photos, author, category); !errs.Is(err, errs.ErrValidation) {
		t.Errorf("long description: got %v, want validation error", err)
	}
	if _, err := NewAdvertisement("Sofa", "Moscow", "desc", decimal.NewFromInt(-1), photos, author, category); !errs.Is(err, errs.ErrValidation) {
		t.Errorf("negative price: got %v, want validation error", err)
	}
	if _, err := NewAdvertisement("Sofa", "Moscow", "desc", decimal.Zero, photos, author, category); err != nil {
		t.Errorf("zero price must be allowed, got %v", err)
	}
}

func TestSubmitTransitions(t *testing.T) {
	cases := []struct {
		from   AdStatus
		wantOK bool
	}{
		{StatusDraft, true},
		{StatusRejectedForRevision, true},
		{StatusOnModeration, false},
		{StatusActive, false},
		{StatusRemoved, false},
	}
	for _, tc := range cases {
		t.Run(string(tc.from), func(t *testing.T) {
			ad := testAd(t)
			ad.Status = tc.from
			err := ad.Submit()
			if tc.wantOK {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if ad.Status != StatusOnModeration {
					t.Errorf("status = %s, want %s", ad.Status, StatusOnModeration)
				}
				return
			}
			if !errs.Is(err, errs.ErrStatusConflict) {
				t.Fatalf("got %v, want status conflict", err)
			}
			if ad.Status != tc.from {
				t.Errorf("status changed on failed submit: %s", ad.Status)
			}
		})
	}
}

func TestApplyDecisionApprove(t *testing.T) {
	ad := testAd(t)
	ad.Status = StatusOnModeration
	now := time.Now().UTC()

	if err := ad.ApplyDecision(true, now); err != nil {
		t.Fatalf("ApplyDecision: %v", err)
	}
	if ad.Status != StatusActive {
		t.Errorf("status = %s, want %s", ad.Status, StatusActive)
	}
	if ad.ApprovedAt == nil || !ad.ApprovedAt.Equal(now) {
		t.Errorf("approved_at = %v, want %v", ad.ApprovedAt, now)
	}
}

func TestApplyDecisionReject(t *testing.T) {
	ad := testAd(t)
	ad.Status = StatusActive
	at := time.Now().UTC()
	ad.ApprovedAt = &at

	if err := ad.ApplyDecision(false, time.Now()); err != nil {
		t.Fatalf("ApplyDecision: %v", err)
	}
	if ad.Status != StatusRejectedForRevision {
		t.Errorf("status = %s, want %s", ad.Status, StatusRejectedForRevision)
	}
	if ad.ApprovedAt != nil {
		t.Error("rejection must clear the approval timestamp")
	}
}

func TestRemovedIsASink(t *testing.T) {
	ad := testAd(t)
	ad.Status = StatusRemoved

	if err := ad.Submit(); !errs.Is(err, errs.ErrStatusConflict) {
		t.Errorf("submit on removed: got %v, want status conflict", err)
	}
	if err := ad.ApplyDecision(true, time.Now()); !errs.Is(err, errs.ErrStatusConflict) {
		t.Errorf("decision on removed: got %v, want status conflict", err)
	}
	if err := ad.Remove(); !errs.Is(err, errs.ErrStatusConflict) {
		t.Errorf("remove on removed: got %v, want status conflict", err)
	}
	if ad.Status != StatusRemoved {
		t.Errorf("status left the sink: %s", ad.Status)
	}
}

func TestRemoveTransitions(t *testing.T) {
	for _, from := range []AdStatus{StatusActive, StatusDraft, StatusRejectedForRevision} {
		ad := testAd(t)
		ad.Status = from
		if err := ad.Remove(); err != nil {
			t.Errorf("remove from %s: %v", from, err)
		}
		if ad.Status != StatusRemoved {
			t.Errorf("remove from %s: status = %s", from, ad.Status)
		}
	}

	ad := testAd(t)
	ad.Status = StatusOnModeration
	if err := ad.Remove(); !errs.Is(err, errs.ErrStatusConflict) {
		t.Errorf("remove from ON_MODERATION: got %v, want status conflict", err)
	}
}

func TestApplyPatchMergesAndValidates(t *testing.T) {
	ad := testAd(t)
	newTitle := "Armchair"
	newPrice := decimal.NewFromInt(900)

	if err := ad.Apply(AdvertisementPatch{Title: &newTitle, Price: &newPrice}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if ad.Title != "Armchair" || !ad.Price.Equal(newPrice) {
		t.Errorf("patch not applied: %s %s", ad.Title, ad.Price)
	}
	if ad.City != "Moscow" {
		t.Errorf("untouched field changed: %s", ad.City)
	}
}

func TestApplyPatchLeavesReceiverOnError(t *testing.T) {
	ad := testAd(t)
	before := *ad
	empty := ""

	err := ad.Apply(AdvertisementPatch{Title: &empty})
	if !errs.Is(err, errs.ErrValidation) {
		t.Fatalf("got %v, want validation error", err)
	}
	if ad.Title != before.Title || ad.Status != before.Status {
		t.Error("advertisement mutated by a failed patch")
	}
}

func TestVisibleTo(t *testing.T) {
	ad := testAd(t)
	author := ad.Author.Actor()
	stranger := Actor{ID: "someone-else", Role: RoleUser}
	moderator := Actor{ID: "mod", Role: RoleModerator}
	guest := Actor{Role: RoleGuest}

	if !ad.VisibleTo(author) || !ad.VisibleTo(moderator) {
		t.Error("draft must be visible to its author and to moderators")
	}
	if ad.VisibleTo(stranger) || ad.VisibleTo(guest) {
		t.Error("draft must be hidden from strangers and guests")
	}

	ad.Status = StatusActive
	if !ad.VisibleTo(guest) {
		t.Error("active advertisement must be public")
	}
}
