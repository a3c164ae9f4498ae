// Package testutil provides in-memory doubles for the domain contracts so
// service tests run without a database.
package testutil

import (
	"context"
	"sort"
	"sync"

	"adboard/internal/domain"
	"adboard/internal/models"
)

// InMemoryRepository is a map-backed domain.Repository. ForcedErr, when set,
// is returned by every call, which lets tests exercise storage failures.
type InMemoryRepository struct {
	mu          sync.Mutex
	Ads         map[string]models.Advertisement
	Users       map[string]models.User
	Categories  map[string]models.Category
	Moderations map[string]models.Moderation

	ForcedErr error
}

var _ domain.Repository = (*InMemoryRepository)(nil)

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		Ads:         make(map[string]models.Advertisement),
		Users:       make(map[string]models.User),
		Categories:  make(map[string]models.Category),
		Moderations: make(map[string]models.Moderation),
	}
}

// Seed helpers panic-free inserts for test fixtures.

func (r *InMemoryRepository) SeedUser(u models.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Users[u.OID] = u
}

func (r *InMemoryRepository) SeedCategory(c models.Category) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Categories[c.OID] = c
}

func (r *InMemoryRepository) SeedAd(ad models.Advertisement) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Ads[ad.OID] = ad
}

func (r *InMemoryRepository) GetAdvertisementCtx(_ context.Context, oid string) (*models.Advertisement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ForcedErr != nil {
		return nil, r.ForcedErr
	}
	if ad, ok := r.Ads[oid]; ok {
		return &ad, nil
	}
	return nil, nil
}

func (r *InMemoryRepository) GetAdvertisementByTitleAndAuthorCtx(_ context.Context, title, authorID string) (*models.Advertisement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ForcedErr != nil {
		return nil, r.ForcedErr
	}
	for _, ad := range r.Ads {
		if ad.Title == title && ad.Author.OID == authorID {
			a := ad
			return &a, nil
		}
	}
	return nil, nil
}

func (r *InMemoryRepository) AllAdvertisementsCtx(_ context.Context) ([]models.Advertisement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ForcedErr != nil {
		return nil, r.ForcedErr
	}
	out := make([]models.Advertisement, 0, len(r.Ads))
	for _, ad := range r.Ads {
		out = append(out, ad)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *InMemoryRepository) FindAdvertisementsCtx(_ context.Context, filter domain.AdvertisementFilter) ([]models.Advertisement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ForcedErr != nil {
		return nil, r.ForcedErr
	}
	var out []models.Advertisement
	for _, ad := range r.Ads {
		if filter.City != "" && ad.City != filter.City {
			continue
		}
		if filter.CategoryID != "" && ad.Category.OID != filter.CategoryID {
			continue
		}
		if filter.PriceMin != nil && ad.Price.LessThan(*filter.PriceMin) {
			continue
		}
		if filter.PriceMax != nil && ad.Price.GreaterThan(*filter.PriceMax) {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, ad.Status) {
			continue
		}
		out = append(out, ad)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func containsStatus(statuses []models.AdStatus, s models.AdStatus) bool {
	for _, st := range statuses {
		if st == s {
			return true
		}
	}
	return false
}

func (r *InMemoryRepository) AddAdvertisementCtx(_ context.Context, ad *models.Advertisement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ForcedErr != nil {
		return r.ForcedErr
	}
	r.Ads[ad.OID] = *ad
	return nil
}

func (r *InMemoryRepository) UpdateAdvertisementCtx(_ context.Context, ad *models.Advertisement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ForcedErr != nil {
		return r.ForcedErr
	}
	r.Ads[ad.OID] = *ad
	return nil
}

func (r *InMemoryRepository) IncrementAdvertisementViewsCtx(_ context.Context, oid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ForcedErr != nil {
		return r.ForcedErr
	}
	if ad, ok := r.Ads[oid]; ok {
		ad.Views++
		r.Ads[oid] = ad
	}
	return nil
}

func (r *InMemoryRepository) GetCategoryCtx(_ context.Context, oid string) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ForcedErr != nil {
		return nil, r.ForcedErr
	}
	if c, ok := r.Categories[oid]; ok {
		return &c, nil
	}
	return nil, nil
}

func (r *InMemoryRepository) GetCategoryByTitleCtx(_ context.Context, title string) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ForcedErr != nil {
		return nil, r.ForcedErr
	}
	for _, c := range r.Categories {
		if c.Title == title {
			cc := c
			return &cc, nil
		}
	}
	return nil, nil
}

func (r *InMemoryRepository) AllCategoriesCtx(_ context.Context) ([]models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ForcedErr != nil {
		return nil, r.ForcedErr
	}
	out := make([]models.Category, 0, len(r.Categories))
	for _, c := range r.Categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (r *InMemoryRepository) AddCategoryCtx(_ context.Context, c *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ForcedErr != nil {
		return r.ForcedErr
	}
	r.Categories[c.OID] = *c
	return nil
}

func (r *InMemoryRepository) DeleteCategoryCtx(_ context.Context, oid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ForcedErr != nil {
		return r.ForcedErr
	}
	delete(r.Categories, oid)
	return nil
}

func (r *InMemoryRepository) GetModerationCtx(_ context.Context, oid string) (*models.Moderation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ForcedErr != nil {
		return nil, r.ForcedErr
	}
	if m, ok := r.Moderations[oid]; ok {
		return &m, nil
	}
	return nil, nil
}

func (r *InMemoryRepository) ListModerationsByAdvertisementCtx(_ context.Context, advertisementID string) ([]models.Moderation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ForcedErr != nil {
		return nil, r.ForcedErr
	}
	var out []models.Moderation
	for _, m := range r.Moderations {
		if m.AdvertisementID == advertisementID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *InMemoryRepository) AddModerationCtx(_ context.Context, m *models.Moderation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ForcedErr != nil {
		return r.ForcedErr
	}
	r.Moderations[m.OID] = *m
	return nil
}

func (r *InMemoryRepository) GetUserCtx(_ context.Context, oid string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ForcedErr != nil {
		return nil, r.ForcedErr
	}
	if u, ok := r.Users[oid]; ok {
		return &u, nil
	}
	return nil, nil
}

func (r *InMemoryRepository) GetUserByEmailCtx(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ForcedErr != nil {
		return nil, r.ForcedErr
	}
	for _, u := range r.Users {
		if u.Email == email {
			uu := u
			return &uu, nil
		}
	}
	return nil, nil
}

func (r *InMemoryRepository) GetUserByEmailOrPhoneCtx(_ context.Context, email, phone string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ForcedErr != nil {
		return nil, r.ForcedErr
	}
	for _, u := range r.Users {
		if u.Email == email || u.Phone == phone {
			uu := u
			return &uu, nil
		}
	}
	return nil, nil
}

func (r *InMemoryRepository) AddUserCtx(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ForcedErr != nil {
		return r.ForcedErr
	}
	r.Users[u.OID] = *u
	return nil
}

func (r *InMemoryRepository) UpdateUserCtx(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ForcedErr != nil {
		return r.ForcedErr
	}
	r.Users[u.OID] = *u
	return nil
}
