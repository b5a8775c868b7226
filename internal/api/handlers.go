/**
 * @description
 * This file contains the HTTP handlers for the campaign and generation
 * endpoints. Handlers decode requests, call the service layer, and translate
 * service errors into the API's status codes. All business rules live in the
 * service; nothing here touches the database.
 *
 * Key features:
 * - Campaign CRUD scoped to the authenticated user.
 * - Credit-gated ad-copy generation with per-user rate limiting.
 * - Consistent JSON error envelope: {"error": "..."}.
 */

package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/umaremlyn/Adstreamai/internal/app"
	"github.com/umaremlyn/Adstreamai/internal/domain"
)

// Service defines the business operations the HTTP layer depends on.
type Service interface {
	GetAccount(ctx context.Context, clerkUserID, email string) (*domain.User, error)
	CreateCampaign(ctx context.Context, clerkUserID string, input domain.CampaignInput) (*domain.Campaign, error)
	ListCampaigns(ctx context.Context, clerkUserID string) ([]domain.Campaign, error)
	UpdateCampaign(ctx context.Context, clerkUserID, campaignID string, update domain.CampaignUpdate) (*domain.Campaign, error)
	DeleteCampaign(ctx context.Context, clerkUserID, campaignID string) error
	SaveAdCopy(ctx context.Context, clerkUserID, campaignID string, input domain.AdCopyInput) (*domain.AdCopy, error)
	GenerateAdCopies(ctx context.Context, clerkUserID string, input domain.CampaignInput) (*domain.GeneratedAdCopies, error)
}

// RateLimiter throttles the generation endpoint per subject. A nil limiter
// disables throttling.
type RateLimiter interface {
	Consume(ctx context.Context, subject string) (allowed bool, retryAfterSeconds int, err error)
}

// Handler holds the dependencies for the API handlers.
type Handler struct {
	service Service
	limiter RateLimiter
	logger  *slog.Logger
}

// NewHandler creates a new API handler. limiter may be nil.
func NewHandler(service Service, limiter RateLimiter, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		limiter: limiter,
		logger:  logger,
	}
}

// handleGetAccount returns the caller's account, provisioning it on first
// sight of the Clerk identity.
func (h *Handler) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	clerkUserID, ok := GetClerkUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.service.GetAccount(r.Context(), clerkUserID, GetClerkEmail(r.Context()))
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, user)
}

func (h *Handler) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	clerkUserID, ok := GetClerkUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var input domain.CampaignInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	campaign, err := h.service.CreateCampaign(r.Context(), clerkUserID, input)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, campaign)
}

func (h *Handler) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	clerkUserID, ok := GetClerkUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	campaigns, err := h.service.ListCampaigns(r.Context(), clerkUserID)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, campaigns)
}

func (h *Handler) handleUpdateCampaign(w http.ResponseWriter, r *http.Request) {
	clerkUserID, ok := GetClerkUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	campaignID := chi.URLParam(r, "campaignID")

	var update domain.CampaignUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	campaign, err := h.service.UpdateCampaign(r.Context(), clerkUserID, campaignID, update)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, campaign)
}

func (h *Handler) handleDeleteCampaign(w http.ResponseWriter, r *http.Request) {
	clerkUserID, ok := GetClerkUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	campaignID := chi.URLParam(r, "campaignID")

	if err := h.service.DeleteCampaign(r.Context(), clerkUserID, campaignID); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSaveAdCopy(w http.ResponseWriter, r *http.Request) {
	clerkUserID, ok := GetClerkUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	campaignID := chi.URLParam(r, "campaignID")

	var input domain.AdCopyInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	copy, err := h.service.SaveAdCopy(r.Context(), clerkUserID, campaignID, input)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, copy)
}

// handleGenerate runs one credit-gated generation attempt. The rate limiter
// fails open: a broken Redis must not take the endpoint down with it.
func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	clerkUserID, ok := GetClerkUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if h.limiter != nil {
		allowed, retryAfter, err := h.limiter.Consume(r.Context(), clerkUserID)
		if err != nil {
			h.logger.Warn("rate limiter unavailable, allowing request", "error", err)
		} else if !allowed {
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			respondWithError(w, http.StatusTooManyRequests, "Too many generation requests, slow down")
			return
		}
	}

	var input domain.CampaignInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.GenerateAdCopies(r.Context(), clerkUserID, input)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// respondWithServiceError maps service-layer errors to HTTP status codes.
// Ownership failures and missing rows both surface as 404 so callers cannot
// probe for other users' campaign IDs.
func (h *Handler) respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrNotEntitled):
		respondWithError(w, http.StatusPaymentRequired, "You have no credits left. Upgrade your plan to keep generating.")
	case errors.Is(err, app.ErrCampaignNotFound):
		respondWithError(w, http.StatusNotFound, "Campaign not found")
	case errors.Is(err, app.ErrUpstreamFailure):
		respondWithError(w, http.StatusBadGateway, err.Error())
	default:
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// respondWithError sends a JSON error response.
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithJSON sends a JSON response with the given status code.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
