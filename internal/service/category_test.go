package service

import (
	"context"
	"testing"

	"adboard/internal/models"
	"adboard/internal/testutil"
	errs "adboard/pkg/errors"
)

var adminActor = models.Actor{ID: "admin-1", Role: models.RoleAdmin}

func TestCategoryCreateAdminOnly(t *testing.T) {
	repo := testutil.NewInMemoryRepository()
	svc := NewCategoryService(repo, nil)

	for _, actor := range []models.Actor{
		{ID: "u", Role: models.RoleUser},
		{ID: "m", Role: models.RoleModerator},
		{Role: models.RoleGuest},
	} {
		if _, err := svc.Create(context.Background(), actor, "Furniture", ""); !errs.Is(err, errs.ErrAccessDenied) {
			t.Errorf("role %s: got %v, want access denied", actor.Role, err)
		}
	}

	c, err := svc.Create(context.Background(), adminActor, "Furniture", "Sofas and tables")
	if err != nil {
		t.Fatalf("admin create: %v", err)
	}
	if c.Code != "furniture" {
		t.Errorf("code = %q", c.Code)
	}
}

func TestCategoryCreateDuplicateTitle(t *testing.T) {
	repo := testutil.NewInMemoryRepository()
	svc := NewCategoryService(repo, nil)

	if _, err := svc.Create(context.Background(), adminActor, "Furniture", ""); err != nil {
		t.Fatal(err)
	}
	_, err := svc.Create(context.Background(), adminActor, "Furniture", "")
	if !errs.Is(err, errs.ErrAlreadyExists) {
		t.Fatalf("got %v, want already exists", err)
	}
}

func TestCategoryDelete(t *testing.T) {
	repo := testutil.NewInMemoryRepository()
	svc := NewCategoryService(repo, nil)

	c, err := svc.Create(context.Background(), adminActor, "Furniture", "")
	if err != nil {
		t.Fatal(err)
	}

	user := models.Actor{ID: "u", Role: models.RoleUser}
	if err := svc.Delete(context.Background(), user, c.OID); !errs.Is(err, errs.ErrAccessDenied) {
		t.Errorf("user delete: got %v, want access denied", err)
	}

	if err := svc.Delete(context.Background(), adminActor, c.OID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if err := svc.Delete(context.Background(), adminActor, c.OID); !errs.Is(err, errs.ErrNotFound) {
		t.Errorf("double delete: got %v, want not found", err)
	}
}
