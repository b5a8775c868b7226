/**
 * @description
 * This file contains the credit-gated ad-copy generation flow. It is a small
 * two-state saga: either the attempt was never debited (not entitled, or the
 * user is covered by a subscription), or it was debited and ends confirmed
 * (provider succeeded, credit stays spent) or refunded (provider failed).
 * There is no partial terminal state: every exit after the debit goes
 * through the refund decision.
 */
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/umaremlyn/Adstreamai/internal/domain"
	"github.com/umaremlyn/Adstreamai/internal/store"
)

// GenerateAdCopies runs a single generation attempt for the caller. No
// retries: a failed attempt must be retried by a new caller-initiated
// request. The result is returned verbatim and never persisted here.
func (s *Service) GenerateAdCopies(ctx context.Context, clerkUserID string, input domain.CampaignInput) (*domain.GeneratedAdCopies, error) {
	if err := validateCampaignInput(input); err != nil {
		return nil, err
	}

	user, err := s.repo.GetOrCreateUserByClerkID(ctx, clerkUserID, "", s.opts.DefaultCredits)
	if err != nil {
		return nil, err
	}

	// Subscribed users are entitled without touching the ledger: their
	// credits are not the gating resource, so they are neither debited nor
	// refunded. Everyone else spends a credit through a conditional atomic
	// decrement; zero rows means the balance was already empty and nothing
	// was debited.
	debited := false
	if !user.HasActiveSubscription() {
		if err := s.repo.DebitCredit(ctx, user.ID); err != nil {
			if errors.Is(err, store.ErrInsufficientCredits) {
				return nil, ErrNotEntitled
			}
			return nil, err
		}
		debited = true
	}

	genCtx, cancel := context.WithTimeout(ctx, s.opts.GenerationTimeout)
	defer cancel()

	result, err := s.generator.GenerateAdCopies(genCtx, input.ProductName, input.TargetAudience, input.Tone)
	if err != nil {
		if debited {
			if refundErr := s.repo.RefundCredit(ctx, user.ID); refundErr != nil {
				s.logger.Error("failed to refund credit after generation failure",
					"user_id", user.ID, "error", refundErr)
			}
		}
		s.logger.Error("ad copy generation failed",
			"user_id", user.ID, "product_name", input.ProductName, "error", err)
		return nil, fmt.Errorf("%w: %s", ErrUpstreamFailure, err.Error())
	}

	s.publish(ctx, domain.EventAdCopyGenerated, domain.AdCopyGeneratedEvent{
		UserID:      user.ID,
		ProductName: input.ProductName,
		CopyCount:   len(result.AdCopies),
		OccurredAt:  time.Now().UTC(),
	})
	return result, nil
}
