/**
 * @description
 * This file implements user persistence: lazy provisioning keyed by the Clerk
 * identity, and the credit ledger operations. The debit is a single
 * conditional decrement so the check-then-debit pair cannot race and the
 * balance can never go negative.
 */
package store

import (
	"context"
	"fmt"

	"github.com/umaremlyn/Adstreamai/internal/domain"
)

// GetOrCreateUserByClerkID returns the user for the given Clerk identity,
// inserting a fresh row with the default credit grant on first sight.
func (r *Repository) GetOrCreateUserByClerkID(ctx context.Context, clerkUserID, email string, defaultCredits int) (*domain.User, error) {
	query := `
        INSERT INTO users (clerk_user_id, email, credits)
        VALUES ($1, $2, $3)
        ON CONFLICT (clerk_user_id) DO UPDATE SET
            email = COALESCE(NULLIF(EXCLUDED.email, ''), users.email),
            updated_at = NOW()
        RETURNING id, clerk_user_id, email, credits, subscription_status, created_at, updated_at
    `
	var user domain.User
	err := r.db.QueryRow(ctx, query, clerkUserID, email, defaultCredits).Scan(
		&user.ID,
		&user.ClerkUserID,
		&user.Email,
		&user.Credits,
		&user.SubscriptionStatus,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create user: %w", err)
	}
	return &user, nil
}

// DebitCredit atomically spends one credit. The WHERE clause guards the
// balance, so two concurrent requests cannot both spend the last credit.
func (r *Repository) DebitCredit(ctx context.Context, userID string) error {
	query := `
        UPDATE users
        SET credits = credits - 1, updated_at = NOW()
        WHERE id = $1 AND credits > 0
    `
	tag, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to debit credit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInsufficientCredits
	}
	return nil
}

// RefundCredit returns one credit after a debited generation attempt failed.
func (r *Repository) RefundCredit(ctx context.Context, userID string) error {
	query := `
        UPDATE users
        SET credits = credits + 1, updated_at = NOW()
        WHERE id = $1
    `
	tag, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to refund credit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
