/**
 * @description
 * This file sets up the HTTP router for the service. It defines the API
 * endpoints, associates them with their corresponding handlers, and applies
 * the standard middleware stack plus Clerk authentication on the /api group.
 *
 * @dependencies
 * - net/http: Standard Go library for HTTP functionality.
 * - github.com/go-chi/chi/v5: A lightweight and idiomatic router for Go.
 * - github.com/go-chi/cors: CORS middleware for the browser frontend.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates and returns the router for the campaign service.
func NewRouter(h *Handler, jwksURL string) http.Handler {
	r := chi.NewRouter()

	// Add standard middleware for logging, panic recovery, and timeouts.
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	r.Get("/health", h.handleHealth)

	// Group routes that require authentication.
	r.Route("/api", func(r chi.Router) {
		r.Use(ClerkAuthMiddleware(jwksURL))

		r.Get("/me", h.handleGetAccount)

		r.Post("/campaigns", h.handleCreateCampaign)
		r.Get("/campaigns", h.handleListCampaigns)
		r.Put("/campaigns/{campaignID}", h.handleUpdateCampaign)
		r.Delete("/campaigns/{campaignID}", h.handleDeleteCampaign)
		r.Post("/campaigns/{campaignID}/ad-copies", h.handleSaveAdCopy)

		r.Post("/generate", h.handleGenerate)
	})

	return r
}
