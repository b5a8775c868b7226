package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/umaremlyn/Adstreamai/internal/domain"
	"github.com/umaremlyn/Adstreamai/internal/store"
)

type fakeRepo struct {
	user        *domain.User
	campaigns   []*domain.Campaign
	adCopies    []*domain.AdCopy
	debitCalls  int
	refundCalls int
	refundErr   error
	nextID      int
}

func newFakeRepo(credits int, subscriptionStatus *string) *fakeRepo {
	return &fakeRepo{
		user: &domain.User{
			ID:                 "user-1",
			ClerkUserID:        "clerk-1",
			Credits:            credits,
			SubscriptionStatus: subscriptionStatus,
		},
	}
}

func (f *fakeRepo) GetOrCreateUserByClerkID(ctx context.Context, clerkUserID, email string, defaultCredits int) (*domain.User, error) {
	u := *f.user
	return &u, nil
}

func (f *fakeRepo) DebitCredit(ctx context.Context, userID string) error {
	f.debitCalls++
	if f.user.Credits <= 0 {
		return store.ErrInsufficientCredits
	}
	f.user.Credits--
	return nil
}

func (f *fakeRepo) RefundCredit(ctx context.Context, userID string) error {
	f.refundCalls++
	if f.refundErr != nil {
		return f.refundErr
	}
	f.user.Credits++
	return nil
}

func (f *fakeRepo) CreateCampaign(ctx context.Context, campaign *domain.Campaign) error {
	f.nextID++
	campaign.ID = "campaign-" + strconv.Itoa(f.nextID)
	campaign.CreatedAt = time.Now()
	campaign.UpdatedAt = campaign.CreatedAt
	campaign.AdCopies = []domain.AdCopy{}
	stored := *campaign
	f.campaigns = append(f.campaigns, &stored)
	return nil
}

func (f *fakeRepo) ListCampaignsByUser(ctx context.Context, userID string) ([]domain.Campaign, error) {
	result := []domain.Campaign{}
	for i := len(f.campaigns) - 1; i >= 0; i-- {
		if f.campaigns[i].UserID != userID {
			continue
		}
		c := *f.campaigns[i]
		c.AdCopies = []domain.AdCopy{}
		for _, copy := range f.adCopies {
			if copy.CampaignID == c.ID {
				c.AdCopies = append(c.AdCopies, *copy)
			}
		}
		result = append(result, c)
	}
	return result, nil
}

func (f *fakeRepo) UpdateCampaign(ctx context.Context, userID, campaignID string, update domain.CampaignUpdate) (*domain.Campaign, error) {
	for _, c := range f.campaigns {
		if c.ID != campaignID || c.UserID != userID {
			continue
		}
		if update.ProductName != nil {
			c.ProductName = *update.ProductName
		}
		if update.TargetAudience != nil {
			c.TargetAudience = *update.TargetAudience
		}
		if update.Tone != nil {
			c.Tone = *update.Tone
		}
		if update.Status != nil {
			c.Status = *update.Status
		}
		updated := *c
		return &updated, nil
	}
	return nil, store.ErrCampaignNotFound
}

func (f *fakeRepo) DeleteCampaign(ctx context.Context, userID, campaignID string) error {
	for i, c := range f.campaigns {
		if c.ID == campaignID && c.UserID == userID {
			f.campaigns = append(f.campaigns[:i], f.campaigns[i+1:]...)
			return nil
		}
	}
	return store.ErrCampaignNotFound
}

func (f *fakeRepo) CreateAdCopy(ctx context.Context, userID string, copy *domain.AdCopy) error {
	for _, c := range f.campaigns {
		if c.ID == copy.CampaignID && c.UserID == userID {
			f.nextID++
			copy.ID = "adcopy-" + strconv.Itoa(f.nextID)
			copy.CreatedAt = time.Now()
			stored := *copy
			f.adCopies = append(f.adCopies, &stored)
			return nil
		}
	}
	return store.ErrCampaignNotFound
}

type fakeGenerator struct {
	result *domain.GeneratedAdCopies
	err    error
	calls  int
}

func (f *fakeGenerator) GenerateAdCopies(ctx context.Context, productName, targetAudience, tone string) (*domain.GeneratedAdCopies, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(repo Repository, generator Generator) *Service {
	return NewService(repo, generator, nil, testLogger(), Options{DefaultCredits: 3})
}

func singleCopyResult() *domain.GeneratedAdCopies {
	return &domain.GeneratedAdCopies{
		AdCopies: []domain.GeneratedAdCopy{
			{
				Headline:   "Step Into Acme",
				Body:       "Shoes built for every stride.",
				CTA:        "Shop now",
				Variations: []string{"v1", "v2", "v3"},
			},
		},
	}
}

func TestGenerateAdCopies_NotEntitledWithoutCreditsOrSubscription(t *testing.T) {
	repo := newFakeRepo(0, nil)
	gen := &fakeGenerator{result: singleCopyResult()}
	svc := newTestService(repo, gen)

	_, err := svc.GenerateAdCopies(context.Background(), "clerk-1", domain.CampaignInput{
		ProductName: "Acme Shoes", TargetAudience: "18-35 year olds", Tone: "professional",
	})
	if !errors.Is(err, ErrNotEntitled) {
		t.Fatalf("expected ErrNotEntitled, got %v", err)
	}
	if repo.user.Credits != 0 {
		t.Errorf("expected credits unchanged at 0, got %d", repo.user.Credits)
	}
	if repo.refundCalls != 0 {
		t.Errorf("entitlement failure must not refund, saw %d refund calls", repo.refundCalls)
	}
	if gen.calls != 0 {
		t.Errorf("provider must not be called for unentitled users, saw %d calls", gen.calls)
	}
}

func TestGenerateAdCopies_SuccessSpendsExactlyOneCredit(t *testing.T) {
	repo := newFakeRepo(1, nil)
	gen := &fakeGenerator{result: singleCopyResult()}
	svc := newTestService(repo, gen)

	result, err := svc.GenerateAdCopies(context.Background(), "clerk-1", domain.CampaignInput{
		ProductName: "Acme Shoes", TargetAudience: "18-35 year olds", Tone: "professional",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.AdCopies) != 1 {
		t.Fatalf("expected the provider payload returned verbatim, got %d copies", len(result.AdCopies))
	}
	if result.AdCopies[0].Headline != "Step Into Acme" {
		t.Errorf("unexpected headline %q", result.AdCopies[0].Headline)
	}
	if repo.user.Credits != 0 {
		t.Errorf("expected credits 1 -> 0, got %d", repo.user.Credits)
	}
	if repo.debitCalls != 1 || repo.refundCalls != 0 {
		t.Errorf("expected one debit and no refund, got debit=%d refund=%d", repo.debitCalls, repo.refundCalls)
	}
}

func TestGenerateAdCopies_ProviderFailureRefundsTheDebit(t *testing.T) {
	repo := newFakeRepo(2, nil)
	gen := &fakeGenerator{err: errors.New("openai API error: status 503")}
	svc := newTestService(repo, gen)

	_, err := svc.GenerateAdCopies(context.Background(), "clerk-1", domain.CampaignInput{
		ProductName: "Acme Shoes", TargetAudience: "18-35 year olds", Tone: "professional",
	})
	if !errors.Is(err, ErrUpstreamFailure) {
		t.Fatalf("expected ErrUpstreamFailure, got %v", err)
	}
	if !strings.Contains(err.Error(), "status 503") {
		t.Errorf("expected provider message preserved, got %q", err.Error())
	}
	if repo.user.Credits != 2 {
		t.Errorf("expected net-zero credits after debit+refund, got %d", repo.user.Credits)
	}
	if repo.debitCalls != 1 || repo.refundCalls != 1 {
		t.Errorf("expected exactly one debit and one refund, got debit=%d refund=%d", repo.debitCalls, repo.refundCalls)
	}
}

func TestGenerateAdCopies_SubscribedUserNeverTouchesLedger(t *testing.T) {
	status := "active"
	repo := newFakeRepo(5, &status)
	gen := &fakeGenerator{err: errors.New("provider unavailable")}
	svc := newTestService(repo, gen)

	_, err := svc.GenerateAdCopies(context.Background(), "clerk-1", domain.CampaignInput{
		ProductName: "Acme Shoes", TargetAudience: "18-35 year olds", Tone: "professional",
	})
	if !errors.Is(err, ErrUpstreamFailure) {
		t.Fatalf("expected ErrUpstreamFailure, got %v", err)
	}
	if repo.user.Credits != 5 {
		t.Errorf("subscribed user's credits must not change, got %d", repo.user.Credits)
	}
	if repo.debitCalls != 0 || repo.refundCalls != 0 {
		t.Errorf("subscribed user must bypass the ledger, got debit=%d refund=%d", repo.debitCalls, repo.refundCalls)
	}
}

func TestGenerateAdCopies_LapsedSubscriptionStatusesAreNotEntitled(t *testing.T) {
	for _, status := range []string{domain.SubscriptionStatusDeleted, domain.SubscriptionStatusPastDue, ""} {
		t.Run("status_"+status, func(t *testing.T) {
			s := status
			repo := newFakeRepo(0, &s)
			gen := &fakeGenerator{result: singleCopyResult()}
			svc := newTestService(repo, gen)

			_, err := svc.GenerateAdCopies(context.Background(), "clerk-1", domain.CampaignInput{
				ProductName: "Acme Shoes", TargetAudience: "18-35 year olds", Tone: "professional",
			})
			if !errors.Is(err, ErrNotEntitled) {
				t.Fatalf("expected ErrNotEntitled for status %q, got %v", status, err)
			}
		})
	}
}

func TestGenerateAdCopies_LapsedSubscriberWithCreditsIsDebited(t *testing.T) {
	status := domain.SubscriptionStatusPastDue
	repo := newFakeRepo(1, &status)
	gen := &fakeGenerator{result: singleCopyResult()}
	svc := newTestService(repo, gen)

	_, err := svc.GenerateAdCopies(context.Background(), "clerk-1", domain.CampaignInput{
		ProductName: "Acme Shoes", TargetAudience: "18-35 year olds", Tone: "professional",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.user.Credits != 0 {
		t.Errorf("expected lapsed subscriber to spend a credit, got %d", repo.user.Credits)
	}
}

func TestGenerateAdCopies_RejectsEmptyInputBeforeDebiting(t *testing.T) {
	repo := newFakeRepo(3, nil)
	gen := &fakeGenerator{result: singleCopyResult()}
	svc := newTestService(repo, gen)

	_, err := svc.GenerateAdCopies(context.Background(), "clerk-1", domain.CampaignInput{
		ProductName: "", TargetAudience: "everyone", Tone: "bold",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if repo.debitCalls != 0 {
		t.Errorf("validation failure must not debit, saw %d debit calls", repo.debitCalls)
	}
}

func TestGenerateAdCopies_RefundFailureStillSurfacesUpstreamError(t *testing.T) {
	repo := newFakeRepo(1, nil)
	repo.refundErr = errors.New("connection reset")
	gen := &fakeGenerator{err: errors.New("bad response from OpenAI")}
	svc := newTestService(repo, gen)

	_, err := svc.GenerateAdCopies(context.Background(), "clerk-1", domain.CampaignInput{
		ProductName: "Acme Shoes", TargetAudience: "18-35 year olds", Tone: "professional",
	})
	if !errors.Is(err, ErrUpstreamFailure) {
		t.Fatalf("expected the original upstream failure, got %v", err)
	}
	if repo.refundCalls != 1 {
		t.Errorf("expected a refund attempt, got %d", repo.refundCalls)
	}
}
