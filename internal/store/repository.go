/**
 * @description
 * This package implements the data access layer for the campaign-service.
 * It contains all the SQL queries and logic for interacting with PostgreSQL.
 * This file defines the Repository type and the sentinel errors the service
 * layer matches on.
 */
package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Sentinel errors returned by repository methods.
var (
	// ErrUserNotFound is returned when no user row matches the lookup.
	ErrUserNotFound = errors.New("user not found")

	// ErrCampaignNotFound is returned when a campaign does not exist or is
	// not owned by the caller. Ownership violations are deliberately
	// indistinguishable from missing rows.
	ErrCampaignNotFound = errors.New("campaign not found")

	// ErrInsufficientCredits is returned when a conditional debit matched no
	// row, meaning the balance was already zero. No decrement happened.
	ErrInsufficientCredits = errors.New("insufficient credits")
)

// Repository handles database operations for users, campaigns and ad copies.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new repository backed by the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}
