/**
 * @description
 * This file implements ad-copy persistence. An ad copy is only ever written
 * under a campaign the caller owns; the ownership check and the insert are a
 * single statement.
 */
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/umaremlyn/Adstreamai/internal/domain"
)

// CreateAdCopy saves one ad copy under a caller-owned campaign. Returns
// ErrCampaignNotFound when the campaign is missing or owned by someone else.
func (r *Repository) CreateAdCopy(ctx context.Context, userID string, copy *domain.AdCopy) error {
	if copy.ID == "" {
		copy.ID = uuid.NewString()
	}
	variations, err := json.Marshal(copy.Variations)
	if err != nil {
		return fmt.Errorf("failed to encode variations: %w", err)
	}

	query := `
        INSERT INTO ad_copies (id, campaign_id, headline, body, cta, variations)
        SELECT $1, c.id, $3, $4, $5, $6
        FROM campaigns c
        WHERE c.id = $2 AND c.user_id = $7
        RETURNING created_at
    `
	err = r.db.QueryRow(ctx, query,
		copy.ID,
		copy.CampaignID,
		copy.Headline,
		copy.Body,
		copy.CTA,
		variations,
		userID,
	).Scan(&copy.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCampaignNotFound
		}
		return fmt.Errorf("failed to create ad copy: %w", err)
	}
	return nil
}
