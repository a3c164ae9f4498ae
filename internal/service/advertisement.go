// Package service implements the application use cases. Every operation
// takes the acting principal explicitly; there is no ambient identity in
// context values. Authorization and status rules live here, persistence
// behind domain.Repository, transactional writes behind domain.UnitOfWork.
package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"adboard/internal/domain"
	"adboard/internal/models"
	errs "adboard/pkg/errors"
	"adboard/pkg/events"
	"adboard/pkg/logging"
	"adboard/pkg/metrics"
)

type AdvertisementService struct {
	repo        domain.Repository
	uowFactory  domain.UnitOfWorkFactory
	bus         *events.Bus
	log         *logging.ComponentLogger
	searchLimit int

	mCreated *metrics.Counter
	mRemoved *metrics.Counter
}

func NewAdvertisementService(repo domain.Repository, uowFactory domain.UnitOfWorkFactory, bus *events.Bus, log *logging.Logger, searchLimit int) *AdvertisementService {
	if searchLimit <= 0 {
		searchLimit = 20
	}
	s := &AdvertisementService{
		repo:        repo,
		uowFactory:  uowFactory,
		bus:         bus,
		searchLimit: searchLimit,
		mCreated:    metrics.Default.Counter("advertisements_created_total", "Total advertisements created"),
		mRemoved:    metrics.Default.Counter("advertisements_removed_total", "Total advertisements removed"),
	}
	if log != nil {
		s.log = log.WithComponent("advertisement_service")
	}
	return s
}

// GetByID returns the advertisement. ACTIVE ads are public; anything else
// is readable only by the author and privileged roles, AccessDenied
// otherwise. NotFound means the ad does not exist.
func (s *AdvertisementService) GetByID(ctx context.Context, actor models.Actor, oid string) (*models.Advertisement, error) {
	const op = "service.AdvertisementService.GetByID"

	ad, err := s.repo.GetAdvertisementCtx(ctx, oid)
	if err != nil {
		return nil, err
	}
	if ad == nil {
		return nil, errs.NewNotFound(op, "advertisement", oid)
	}
	if !ad.VisibleTo(actor) {
		return nil, errs.NewAccessDenied(op, "advertisement is not visible to this actor")
	}

	// views count public reads only; a failed bump never fails the read
	if ad.Status == models.StatusActive && actor.ID != ad.Author.OID {
		if err := s.repo.IncrementAdvertisementViewsCtx(ctx, oid); err != nil {
			if s.log != nil {
				s.log.Warn("failed to bump view counter", logging.String("advertisement_id", oid))
			}
		} else {
			ad.Views++
		}
	}
	return ad, nil
}

// ListAll returns every advertisement for privileged roles and only ACTIVE
// ones for everyone else. Authors reach their own drafts through GetByID.
func (s *AdvertisementService) ListAll(ctx context.Context, actor models.Actor) ([]models.Advertisement, error) {
	ads, err := s.repo.AllAdvertisementsCtx(ctx)
	if err != nil {
		return nil, err
	}
	if actor.Role.Privileged() {
		return ads, nil
	}
	visible := make([]models.Advertisement, 0, len(ads))
	for _, ad := range ads {
		if ad.Status == models.StatusActive {
			visible = append(visible, ad)
		}
	}
	return visible, nil
}

// SearchParams are the public search filters. CategoryTitle, when set, is
// resolved to a category before querying.
type SearchParams struct {
	PriceMin      *decimal.Decimal
	PriceMax      *decimal.Decimal
	CategoryTitle string
	City          string
	Offset        int
	Limit         int
}

// Search queries the board. Non-privileged actors only ever see ACTIVE ads
// here; drafts and returned ads are reachable through GetByID and ListAll.
func (s *AdvertisementService) Search(ctx context.Context, actor models.Actor, params SearchParams) ([]models.Advertisement, error) {
	const op = "service.AdvertisementService.Search"

	filter := domain.AdvertisementFilter{
		PriceMin: params.PriceMin,
		PriceMax: params.PriceMax,
		City:     params.City,
		Offset:   params.Offset,
		Limit:    params.Limit,
	}
	if filter.Limit <= 0 || filter.Limit > s.searchLimit {
		filter.Limit = s.searchLimit
	}
	if !actor.Role.Privileged() {
		filter.Statuses = []models.AdStatus{models.StatusActive}
	}

	if params.CategoryTitle != "" {
		category, err := s.repo.GetCategoryByTitleCtx(ctx, params.CategoryTitle)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, errs.NewNotFound(op, "category", params.CategoryTitle)
		}
		filter.CategoryID = category.OID
	}

	return s.repo.FindAdvertisementsCtx(ctx, filter)
}

// CreateAdvertisementInput carries the author-supplied fields of a new ad.
type CreateAdvertisementInput struct {
	Title       string
	City        string
	Description string
	Price       decimal.Decimal
	Photos      []string
	CategoryID  string
}

// Create registers a new DRAFT owned by the actor. A second ad with the
// same title by the same author is rejected.
func (s *AdvertisementService) Create(ctx context.Context, actor models.Actor, input CreateAdvertisementInput) (*models.Advertisement, error) {
	const op = "service.AdvertisementService.Create"

	if actor.Role == models.RoleGuest || actor.ID == "" {
		return nil, errs.NewAccessDenied(op, "authentication required to create advertisements")
	}

	author, err := s.repo.GetUserCtx(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, errs.NewNotFound(op, "user", actor.ID)
	}

	category, err := s.repo.GetCategoryCtx(ctx, input.CategoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, errs.NewNotFound(op, "category", input.CategoryID)
	}

	existing, err := s.repo.GetAdvertisementByTitleAndAuthorCtx(ctx, input.Title, actor.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errs.NewAlreadyExists(op, "advertisement",
			"an advertisement with this title already exists for this author")
	}

	ad, err := models.NewAdvertisement(input.Title, input.City, input.Description,
		input.Price, input.Photos, *author, *category)
	if err != nil {
		return nil, err
	}
	if err := s.repo.AddAdvertisementCtx(ctx, ad); err != nil {
		return nil, err
	}

	s.mCreated.Inc(1)
	if s.log != nil {
		s.log.Info("advertisement created",
			logging.String("advertisement_id", ad.OID),
			logging.String("author_id", actor.ID))
	}
	return ad, nil
}

// Update applies a partial edit. Only the author may edit, and only while
// the ad is in DRAFT or REJECTED_FOR_REVISION.
func (s *AdvertisementService) Update(ctx context.Context, actor models.Actor, oid string, patch models.AdvertisementPatch) (*models.Advertisement, error) {
	const op = "service.AdvertisementService.Update"

	uow, err := s.uowFactory.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback()

	ad, err := uow.GetAdvertisementCtx(ctx, oid)
	if err != nil {
		return nil, err
	}
	if ad == nil {
		return nil, errs.NewNotFound(op, "advertisement", oid)
	}
	if ad.Author.OID != actor.ID {
		return nil, errs.NewAccessDenied(op, "only the author may edit an advertisement")
	}
	if !ad.Status.Editable() {
		return nil, errs.NewStatusConflict(op, string(ad.Status),
			"advertisement can only be edited as a draft or after rejection")
	}

	if err := ad.Apply(patch); err != nil {
		return nil, err
	}
	if err := uow.UpdateAdvertisementCtx(ctx, ad); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return ad, nil
}

// SubmitForModeration sends the actor's draft into the review queue.
func (s *AdvertisementService) SubmitForModeration(ctx context.Context, actor models.Actor, oid string) (*models.Advertisement, error) {
	const op = "service.AdvertisementService.SubmitForModeration"

	uow, err := s.uowFactory.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback()

	ad, err := uow.GetAdvertisementCtx(ctx, oid)
	if err != nil {
		return nil, err
	}
	if ad == nil {
		return nil, errs.NewNotFound(op, "advertisement", oid)
	}
	if ad.Author.OID != actor.ID {
		return nil, errs.NewAccessDenied(op, "only the author may submit an advertisement for moderation")
	}
	if err := ad.Submit(); err != nil {
		return nil, err
	}
	if err := uow.UpdateAdvertisementCtx(ctx, ad); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.AdvertisementSubmitted{
			Base:     events.Base{Ts: time.Now().UTC(), AdID: ad.OID},
			AuthorID: ad.Author.OID,
		})
	}
	return ad, nil
}

// Remove takes the advertisement off the board. Only the author may do it;
// the transition itself decides which statuses allow it.
func (s *AdvertisementService) Remove(ctx context.Context, actor models.Actor, oid string) error {
	const op = "service.AdvertisementService.Remove"

	uow, err := s.uowFactory.Begin(ctx)
	if err != nil {
		return err
	}
	defer uow.Rollback()

	ad, err := uow.GetAdvertisementCtx(ctx, oid)
	if err != nil {
		return err
	}
	if ad == nil {
		return errs.NewNotFound(op, "advertisement", oid)
	}
	if ad.Author.OID != actor.ID {
		return errs.NewAccessDenied(op, "only the author may remove an advertisement")
	}
	if err := ad.Remove(); err != nil {
		return err
	}
	if err := uow.UpdateAdvertisementCtx(ctx, ad); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.mRemoved.Inc(1)
	if s.bus != nil {
		s.bus.Publish(ctx, events.AdvertisementRemoved{
			Base:     events.Base{Ts: time.Now().UTC(), AdID: ad.OID},
			AuthorID: ad.Author.OID,
		})
	}
	return nil
}
