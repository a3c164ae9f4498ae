package service

import (
	"context"

	"adboard/internal/domain"
	"adboard/internal/models"
	errs "adboard/pkg/errors"
	"adboard/pkg/events"
	"adboard/pkg/logging"
	"adboard/pkg/metrics"
)

type ModerationService struct {
	repo       domain.Repository
	uowFactory domain.UnitOfWorkFactory
	bus        *events.Bus
	log        *logging.ComponentLogger

	mApproved *metrics.Counter
	mRejected *metrics.Counter
}

func NewModerationService(repo domain.Repository, uowFactory domain.UnitOfWorkFactory, bus *events.Bus, log *logging.Logger) *ModerationService {
	s := &ModerationService{
		repo:       repo,
		uowFactory: uowFactory,
		bus:        bus,
		mApproved:  metrics.Default.Counter("moderation_approved_total", "Total approved moderation decisions"),
		mRejected:  metrics.Default.Counter("moderation_rejected_total", "Total rejected moderation decisions"),
	}
	if log != nil {
		s.log = log.WithComponent("moderation_service")
	}
	return s
}

// DecisionInput is one approve/reject judgment on an advertisement.
// RejectionReason is required when IsApproved is false and ignored when the
// decision approves.
type DecisionInput struct {
	AdvertisementID string
	IsApproved      bool
	RejectionReason string
}

// Create records a moderation decision. The advertisement status change and
// the decision record are written in one transaction: a moderation row never
// exists without the matching status transition, and vice versa. If the
// advertisement does not exist nothing is written at all.
//
// The moderated event is published only after the transaction commits and is
// best-effort: a failing subscriber never undoes the decision.
func (s *ModerationService) Create(ctx context.Context, actor models.Actor, input DecisionInput) (*models.Moderation, error) {
	const op = "service.ModerationService.Create"

	if !actor.Role.Privileged() {
		return nil, errs.NewAccessDenied(op, "only moderators and admins may record moderation decisions")
	}

	decision, err := models.NewModeration(input.AdvertisementID, actor.ID, input.IsApproved, input.RejectionReason)
	if err != nil {
		return nil, err
	}

	uow, err := s.uowFactory.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback()

	ad, err := uow.GetAdvertisementCtx(ctx, input.AdvertisementID)
	if err != nil {
		return nil, err
	}
	if ad == nil {
		return nil, errs.NewNotFound(op, "advertisement", input.AdvertisementID)
	}
	if err := ad.ApplyDecision(decision.IsApproved, decision.CreatedAt); err != nil {
		return nil, err
	}

	if err := uow.UpdateAdvertisementCtx(ctx, ad); err != nil {
		return nil, err
	}
	if err := uow.AddModerationCtx(ctx, decision); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	if decision.IsApproved {
		s.mApproved.Inc(1)
	} else {
		s.mRejected.Inc(1)
	}
	if s.log != nil {
		s.log.Info("moderation decision recorded",
			logging.String("moderation_id", decision.OID),
			logging.String("advertisement_id", ad.OID),
			logging.String("moderator_id", actor.ID),
			logging.Bool("approved", decision.IsApproved))
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.AdvertisementModerated{
			Base:         events.Base{Ts: decision.CreatedAt, AdID: ad.OID},
			ModerationID: decision.OID,
			ModeratorID:  decision.ModeratorID,
			IsApproved:   decision.IsApproved,
			Reason:       decision.RejectionReason,
		})
	}
	return decision, nil
}

// GetByID returns a single decision record. Visible to privileged roles and
// to the author of the advertisement it judges.
func (s *ModerationService) GetByID(ctx context.Context, actor models.Actor, oid string) (*models.Moderation, error) {
	const op = "service.ModerationService.GetByID"

	m, err := s.repo.GetModerationCtx(ctx, oid)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errs.NewNotFound(op, "moderation", oid)
	}
	if !actor.Role.Privileged() {
		ad, err := s.repo.GetAdvertisementCtx(ctx, m.AdvertisementID)
		if err != nil {
			return nil, err
		}
		if ad == nil || ad.Author.OID != actor.ID {
			return nil, errs.NewNotFound(op, "moderation", oid)
		}
	}
	return m, nil
}

// ListByAdvertisement returns the full decision history of one ad, oldest
// first. Same visibility rule as GetByID.
func (s *ModerationService) ListByAdvertisement(ctx context.Context, actor models.Actor, advertisementID string) ([]models.Moderation, error) {
	const op = "service.ModerationService.ListByAdvertisement"

	ad, err := s.repo.GetAdvertisementCtx(ctx, advertisementID)
	if err != nil {
		return nil, err
	}
	if ad == nil {
		return nil, errs.NewNotFound(op, "advertisement", advertisementID)
	}
	if !actor.Role.Privileged() && ad.Author.OID != actor.ID {
		return nil, errs.NewAccessDenied(op, "moderation history is restricted to the author and moderators")
	}
	return s.repo.ListModerationsByAdvertisementCtx(ctx, advertisementID)
}
