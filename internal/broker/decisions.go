package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"adboard/internal/domain"
	"adboard/internal/service"
	errs "adboard/pkg/errors"
)

// TypeModerationDecision is the message type carrying an approve/reject
// judgment made in external review tooling.
const TypeModerationDecision = "moderation.decision"

type decisionMessage struct {
	Type            string `json:"type"`
	AdvertisementID string `json:"advertisement_id"`
	ModeratorID     string `json:"moderator_id"`
	IsApproved      bool   `json:"is_approved"`
	RejectionReason string `json:"rejection_reason"`
}

// NewDecisionHandler adapts incoming decision messages to the moderation
// service. The moderator named in the message must exist and hold a
// privileged role; the service re-checks this, so a spoofed message cannot
// escalate.
func NewDecisionHandler(moderation *service.ModerationService, users domain.UserRepository) HandlerFunc {
	return func(ctx context.Context, e Envelope) error {
		const op = "broker.DecisionHandler"

		var msg decisionMessage
		if err := json.Unmarshal(e.Raw, &msg); err != nil {
			return errs.NewValidation(op, "malformed decision message", err)
		}
		if msg.AdvertisementID == "" || msg.ModeratorID == "" {
			return errs.NewValidation(op, "decision message missing advertisement or moderator id", nil)
		}

		moderator, err := users.GetUserCtx(ctx, msg.ModeratorID)
		if err != nil {
			return err
		}
		if moderator == nil {
			return errs.NewNotFound(op, "user", msg.ModeratorID)
		}

		_, err = moderation.Create(ctx, moderator.Actor(), service.DecisionInput{
			AdvertisementID: msg.AdvertisementID,
			IsApproved:      msg.IsApproved,
			RejectionReason: msg.RejectionReason,
		})
		if err != nil {
			return fmt.Errorf("apply decision for advertisement %s: %w", msg.AdvertisementID, err)
		}
		return nil
	}
}
