package service

import (
	"context"

	"adboard/internal/domain"
	"adboard/internal/models"
	errs "adboard/pkg/errors"
	"adboard/pkg/logging"
)

type CategoryService struct {
	repo domain.Repository
	log  *logging.ComponentLogger
}

func NewCategoryService(repo domain.Repository, log *logging.Logger) *CategoryService {
	s := &CategoryService{repo: repo}
	if log != nil {
		s.log = log.WithComponent("category_service")
	}
	return s
}

func (s *CategoryService) GetByID(ctx context.Context, oid string) (*models.Category, error) {
	const op = "service.CategoryService.GetByID"

	c, err := s.repo.GetCategoryCtx(ctx, oid)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errs.NewNotFound(op, "category", oid)
	}
	return c, nil
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	return s.repo.AllCategoriesCtx(ctx)
}

// Create adds a category to the taxonomy. Admin only; titles are unique.
func (s *CategoryService) Create(ctx context.Context, actor models.Actor, title, description string) (*models.Category, error) {
	const op = "service.CategoryService.Create"

	if actor.Role != models.RoleAdmin {
		return nil, errs.NewAccessDenied(op, "only admins may create categories")
	}

	existing, err := s.repo.GetCategoryByTitleCtx(ctx, title)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errs.NewAlreadyExists(op, "category", "a category with this title already exists")
	}

	category, err := models.NewCategory(title, description)
	if err != nil {
		return nil, err
	}
	if err := s.repo.AddCategoryCtx(ctx, category); err != nil {
		return nil, err
	}

	if s.log != nil {
		s.log.Info("category created",
			logging.String("category_id", category.OID),
			logging.String("code", category.Code))
	}
	return category, nil
}

// Delete removes a category. Admin only; deleting an absent category is an
// error, not a no-op.
func (s *CategoryService) Delete(ctx context.Context, actor models.Actor, oid string) error {
	const op = "service.CategoryService.Delete"

	if actor.Role != models.RoleAdmin {
		return errs.NewAccessDenied(op, "only admins may delete categories")
	}

	existing, err := s.repo.GetCategoryCtx(ctx, oid)
	if err != nil {
		return err
	}
	if existing == nil {
		return errs.NewNotFound(op, "category", oid)
	}
	return s.repo.DeleteCategoryCtx(ctx, oid)
}
