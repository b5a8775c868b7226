/**
 * @description
 * This file implements campaign persistence. Every mutating query carries the
 * owner in its WHERE clause, so a foreign or missing campaign surfaces as
 * ErrCampaignNotFound rather than a silent no-op.
 */
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/umaremlyn/Adstreamai/internal/domain"
)

// CreateCampaign inserts a new campaign. The status is set by the caller
// (the service layer always forces 'draft').
func (r *Repository) CreateCampaign(ctx context.Context, campaign *domain.Campaign) error {
	if campaign.ID == "" {
		campaign.ID = uuid.NewString()
	}
	query := `
        INSERT INTO campaigns (id, user_id, product_name, target_audience, tone, status)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING created_at, updated_at
    `
	err := r.db.QueryRow(ctx, query,
		campaign.ID,
		campaign.UserID,
		campaign.ProductName,
		campaign.TargetAudience,
		campaign.Tone,
		campaign.Status,
	).Scan(&campaign.CreatedAt, &campaign.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create campaign: %w", err)
	}
	campaign.AdCopies = []domain.AdCopy{}
	return nil
}

// ListCampaignsByUser returns the caller's campaigns newest-first, each with
// its ad-copy collection attached.
func (r *Repository) ListCampaignsByUser(ctx context.Context, userID string) ([]domain.Campaign, error) {
	query := `
        SELECT id, user_id, product_name, target_audience, tone, status, created_at, updated_at
        FROM campaigns
        WHERE user_id = $1
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	defer rows.Close()

	campaigns := []domain.Campaign{}
	for rows.Next() {
		var c domain.Campaign
		if err := rows.Scan(&c.ID, &c.UserID, &c.ProductName, &c.TargetAudience, &c.Tone, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan campaign: %w", err)
		}
		c.AdCopies = []domain.AdCopy{}
		campaigns = append(campaigns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(campaigns) == 0 {
		return campaigns, nil
	}

	ids := make([]string, len(campaigns))
	indexByID := make(map[string]int, len(campaigns))
	for i, c := range campaigns {
		ids[i] = c.ID
		indexByID[c.ID] = i
	}

	copies, err := r.listAdCopiesForCampaigns(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, copy := range copies {
		if i, ok := indexByID[copy.CampaignID]; ok {
			campaigns[i].AdCopies = append(campaigns[i].AdCopies, copy)
		}
	}
	return campaigns, nil
}

func (r *Repository) listAdCopiesForCampaigns(ctx context.Context, campaignIDs []string) ([]domain.AdCopy, error) {
	query := `
        SELECT id, campaign_id, headline, body, cta, variations, created_at
        FROM ad_copies
        WHERE campaign_id = ANY($1::uuid[])
        ORDER BY created_at ASC
    `
	rows, err := r.db.Query(ctx, query, campaignIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list ad copies: %w", err)
	}
	defer rows.Close()

	var copies []domain.AdCopy
	for rows.Next() {
		var copy domain.AdCopy
		var variations []byte
		if err := rows.Scan(&copy.ID, &copy.CampaignID, &copy.Headline, &copy.Body, &copy.CTA, &variations, &copy.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ad copy: %w", err)
		}
		if len(variations) > 0 {
			if err := json.Unmarshal(variations, &copy.Variations); err != nil {
				return nil, fmt.Errorf("failed to decode ad copy variations: %w", err)
			}
		}
		copies = append(copies, copy)
	}
	return copies, rows.Err()
}

// UpdateCampaign applies a partial patch to a caller-owned campaign and
// returns the updated row.
func (r *Repository) UpdateCampaign(ctx context.Context, userID, campaignID string, update domain.CampaignUpdate) (*domain.Campaign, error) {
	setClause, args := buildCampaignUpdateClause(update)
	args = append(args, campaignID, userID)
	query := fmt.Sprintf(`
        UPDATE campaigns
        SET %s
        WHERE id = $%d AND user_id = $%d
        RETURNING id, user_id, product_name, target_audience, tone, status, created_at, updated_at
    `, setClause, len(args)-1, len(args))

	var c domain.Campaign
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&c.ID, &c.UserID, &c.ProductName, &c.TargetAudience, &c.Tone, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCampaignNotFound
		}
		return nil, fmt.Errorf("failed to update campaign: %w", err)
	}
	c.AdCopies = []domain.AdCopy{}
	return &c, nil
}

// buildCampaignUpdateClause renders the SET clause for a partial patch.
// updated_at is always touched; other columns only when the patch sets them.
func buildCampaignUpdateClause(update domain.CampaignUpdate) (string, []interface{}) {
	clauses := []string{"updated_at = NOW()"}
	args := []interface{}{}
	next := func() int { return len(args) + 1 }

	if update.ProductName != nil {
		clauses = append(clauses, fmt.Sprintf("product_name = $%d", next()))
		args = append(args, *update.ProductName)
	}
	if update.TargetAudience != nil {
		clauses = append(clauses, fmt.Sprintf("target_audience = $%d", next()))
		args = append(args, *update.TargetAudience)
	}
	if update.Tone != nil {
		clauses = append(clauses, fmt.Sprintf("tone = $%d", next()))
		args = append(args, *update.Tone)
	}
	if update.Status != nil {
		clauses = append(clauses, fmt.Sprintf("status = $%d", next()))
		args = append(args, *update.Status)
	}
	return strings.Join(clauses, ", "), args
}

// DeleteCampaign removes a caller-owned campaign and its dependent ad copies
// in one transaction.
func (r *Repository) DeleteCampaign(ctx context.Context, userID, campaignID string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
        DELETE FROM ad_copies
        WHERE campaign_id = $1
          AND EXISTS (SELECT 1 FROM campaigns WHERE id = $1 AND user_id = $2)
    `, campaignID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete ad copies: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM campaigns WHERE id = $1 AND user_id = $2`, campaignID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete campaign: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCampaignNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
