package domain

import (
	"context"

	"github.com/shopspring/decimal"

	"adboard/internal/models"
)

// AdvertisementFilter narrows advertisement queries. Zero values mean
// "no constraint"; Limit 0 falls back to the configured default.
type AdvertisementFilter struct {
	PriceMin   *decimal.Decimal
	PriceMax   *decimal.Decimal
	CategoryID string
	City       string
	Statuses   []models.AdStatus
	Offset     int
	Limit      int
}

// Repositories return (nil, nil) for an absent entity; services translate
// that into the NotFound error kind. Storage failures come back wrapped as
// StorageError.

// AdvertisementRepository defines data access for advertisements.
type AdvertisementRepository interface {
	GetAdvertisementCtx(ctx context.Context, oid string) (*models.Advertisement, error)
	GetAdvertisementByTitleAndAuthorCtx(ctx context.Context, title, authorID string) (*models.Advertisement, error)
	AllAdvertisementsCtx(ctx context.Context) ([]models.Advertisement, error)
	FindAdvertisementsCtx(ctx context.Context, filter AdvertisementFilter) ([]models.Advertisement, error)
	AddAdvertisementCtx(ctx context.Context, ad *models.Advertisement) error
	UpdateAdvertisementCtx(ctx context.Context, ad *models.Advertisement) error
	// IncrementAdvertisementViewsCtx bumps the view counter atomically in
	// the store, so concurrent readers never lose counts to a full-row write.
	IncrementAdvertisementViewsCtx(ctx context.Context, oid string) error
}

// CategoryRepository defines data access for advertisement categories.
type CategoryRepository interface {
	GetCategoryCtx(ctx context.Context, oid string) (*models.Category, error)
	GetCategoryByTitleCtx(ctx context.Context, title string) (*models.Category, error)
	AllCategoriesCtx(ctx context.Context) ([]models.Category, error)
	AddCategoryCtx(ctx context.Context, category *models.Category) error
	DeleteCategoryCtx(ctx context.Context, oid string) error
}

// ModerationRepository defines access to the append-only decision history.
type ModerationRepository interface {
	GetModerationCtx(ctx context.Context, oid string) (*models.Moderation, error)
	ListModerationsByAdvertisementCtx(ctx context.Context, advertisementID string) ([]models.Moderation, error)
	AddModerationCtx(ctx context.Context, moderation *models.Moderation) error
}

// UserRepository defines user lookups for authorship and authorization.
type UserRepository interface {
	GetUserCtx(ctx context.Context, oid string) (*models.User, error)
	GetUserByEmailCtx(ctx context.Context, email string) (*models.User, error)
	GetUserByEmailOrPhoneCtx(ctx context.Context, email, phone string) (*models.User, error)
	AddUserCtx(ctx context.Context, user *models.User) error
	UpdateUserCtx(ctx context.Context, user *models.User) error
}

// Repository aggregates the repos commonly required by services.
type Repository interface {
	AdvertisementRepository
	CategoryRepository
	ModerationRepository
	UserRepository
}
