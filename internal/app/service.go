/**
 * @description
 * This file contains the core business logic for campaign management. The
 * Service layer resolves the authenticated Clerk identity to an application
 * user, applies business rules (status forced to draft at creation, owner
 * scoping on every mutation) and delegates persistence to the repository.
 */
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/umaremlyn/Adstreamai/internal/domain"
	"github.com/umaremlyn/Adstreamai/internal/store"
)

// EventsExchange is the topic exchange domain events are published to.
const EventsExchange = "adstream.events"

// Repository defines the database operations the service needs.
type Repository interface {
	GetOrCreateUserByClerkID(ctx context.Context, clerkUserID, email string, defaultCredits int) (*domain.User, error)
	DebitCredit(ctx context.Context, userID string) error
	RefundCredit(ctx context.Context, userID string) error
	CreateCampaign(ctx context.Context, campaign *domain.Campaign) error
	ListCampaignsByUser(ctx context.Context, userID string) ([]domain.Campaign, error)
	UpdateCampaign(ctx context.Context, userID, campaignID string, update domain.CampaignUpdate) (*domain.Campaign, error)
	DeleteCampaign(ctx context.Context, userID, campaignID string) error
	CreateAdCopy(ctx context.Context, userID string, copy *domain.AdCopy) error
}

// Generator defines the completion-provider call the generation flow needs.
type Generator interface {
	GenerateAdCopies(ctx context.Context, productName, targetAudience, tone string) (*domain.GeneratedAdCopies, error)
}

// Publisher is the broker interface for best-effort domain events.
type Publisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body interface{}) error
}

// Options carries the tunables the service needs from configuration.
type Options struct {
	DefaultCredits    int
	GenerationTimeout time.Duration
}

// Service provides the business logic for campaigns and ad-copy generation.
type Service struct {
	repo      Repository
	generator Generator
	events    Publisher
	logger    *slog.Logger
	opts      Options
}

// NewService creates a new campaign service. events may be nil when no
// broker is configured.
func NewService(repo Repository, generator Generator, events Publisher, logger *slog.Logger, opts Options) *Service {
	if opts.GenerationTimeout <= 0 {
		opts.GenerationTimeout = 60 * time.Second
	}
	return &Service{
		repo:      repo,
		generator: generator,
		events:    events,
		logger:    logger,
		opts:      opts,
	}
}

// GetAccount resolves (provisioning if needed) the application user for the
// authenticated Clerk identity.
func (s *Service) GetAccount(ctx context.Context, clerkUserID, email string) (*domain.User, error) {
	return s.repo.GetOrCreateUserByClerkID(ctx, clerkUserID, email, s.opts.DefaultCredits)
}

// CreateCampaign creates a campaign for the caller. The status is always
// 'draft' no matter what the caller sent.
func (s *Service) CreateCampaign(ctx context.Context, clerkUserID string, input domain.CampaignInput) (*domain.Campaign, error) {
	if err := validateCampaignInput(input); err != nil {
		return nil, err
	}
	user, err := s.repo.GetOrCreateUserByClerkID(ctx, clerkUserID, "", s.opts.DefaultCredits)
	if err != nil {
		return nil, err
	}

	campaign := &domain.Campaign{
		UserID:         user.ID,
		ProductName:    strings.TrimSpace(input.ProductName),
		TargetAudience: strings.TrimSpace(input.TargetAudience),
		Tone:           strings.TrimSpace(input.Tone),
		Status:         domain.CampaignStatusDraft,
	}
	if err := s.repo.CreateCampaign(ctx, campaign); err != nil {
		return nil, err
	}

	s.publish(ctx, domain.EventCampaignCreated, domain.CampaignEvent{
		EventType:   domain.EventCampaignCreated,
		CampaignID:  campaign.ID,
		UserID:      user.ID,
		ProductName: campaign.ProductName,
		Status:      campaign.Status,
		OccurredAt:  time.Now().UTC(),
	})
	return campaign, nil
}

// ListCampaigns returns the caller's campaigns newest-first, ad copies
// included.
func (s *Service) ListCampaigns(ctx context.Context, clerkUserID string) ([]domain.Campaign, error) {
	user, err := s.repo.GetOrCreateUserByClerkID(ctx, clerkUserID, "", s.opts.DefaultCredits)
	if err != nil {
		return nil, err
	}
	return s.repo.ListCampaignsByUser(ctx, user.ID)
}

// UpdateCampaign applies a partial patch to a caller-owned campaign.
func (s *Service) UpdateCampaign(ctx context.Context, clerkUserID, campaignID string, update domain.CampaignUpdate) (*domain.Campaign, error) {
	if update.IsEmpty() {
		return nil, fmt.Errorf("%w: no fields to update", ErrInvalidInput)
	}
	if update.Status != nil && !domain.IsValidCampaignStatus(*update.Status) {
		return nil, fmt.Errorf("%w: unknown campaign status %q", ErrInvalidInput, *update.Status)
	}
	user, err := s.repo.GetOrCreateUserByClerkID(ctx, clerkUserID, "", s.opts.DefaultCredits)
	if err != nil {
		return nil, err
	}

	campaign, err := s.repo.UpdateCampaign(ctx, user.ID, campaignID, update)
	if err != nil {
		if errors.Is(err, store.ErrCampaignNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, err
	}
	return campaign, nil
}

// DeleteCampaign removes a caller-owned campaign and its ad copies.
func (s *Service) DeleteCampaign(ctx context.Context, clerkUserID, campaignID string) error {
	user, err := s.repo.GetOrCreateUserByClerkID(ctx, clerkUserID, "", s.opts.DefaultCredits)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteCampaign(ctx, user.ID, campaignID); err != nil {
		if errors.Is(err, store.ErrCampaignNotFound) {
			return ErrCampaignNotFound
		}
		return err
	}

	s.publish(ctx, domain.EventCampaignDeleted, domain.CampaignEvent{
		EventType:  domain.EventCampaignDeleted,
		CampaignID: campaignID,
		UserID:     user.ID,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

// SaveAdCopy persists one generated ad copy under a caller-owned campaign.
// This is the explicit bridge between the ephemeral generation result and
// the campaign's stored ad-copy collection.
func (s *Service) SaveAdCopy(ctx context.Context, clerkUserID, campaignID string, input domain.AdCopyInput) (*domain.AdCopy, error) {
	if strings.TrimSpace(input.Headline) == "" || strings.TrimSpace(input.Body) == "" {
		return nil, fmt.Errorf("%w: headline and body are required", ErrInvalidInput)
	}
	user, err := s.repo.GetOrCreateUserByClerkID(ctx, clerkUserID, "", s.opts.DefaultCredits)
	if err != nil {
		return nil, err
	}

	copy := &domain.AdCopy{
		CampaignID: campaignID,
		Headline:   input.Headline,
		Body:       input.Body,
		CTA:        input.CTA,
		Variations: input.Variations,
	}
	if err := s.repo.CreateAdCopy(ctx, user.ID, copy); err != nil {
		if errors.Is(err, store.ErrCampaignNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, err
	}
	return copy, nil
}

func validateCampaignInput(input domain.CampaignInput) error {
	if strings.TrimSpace(input.ProductName) == "" {
		return fmt.Errorf("%w: productName is required", ErrInvalidInput)
	}
	if strings.TrimSpace(input.TargetAudience) == "" {
		return fmt.Errorf("%w: targetAudience is required", ErrInvalidInput)
	}
	if strings.TrimSpace(input.Tone) == "" {
		return fmt.Errorf("%w: tone is required", ErrInvalidInput)
	}
	return nil
}

// publish sends a domain event when a broker is configured. Failures are
// logged and swallowed; events never fail the request.
func (s *Service) publish(ctx context.Context, routingKey string, body interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, EventsExchange, routingKey, body); err != nil {
		s.logger.Warn("failed to publish domain event", "routing_key", routingKey, "error", err)
	}
}
