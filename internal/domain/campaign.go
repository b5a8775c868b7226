/**
 * @description
 * This file defines the campaign model and its lifecycle statuses. A campaign
 * is a user-owned marketing-content record; its status always starts at
 * 'draft' and only changes through an explicit update.
 */
package domain

import "time"

// Campaign lifecycle statuses.
const (
	CampaignStatusDraft  = "draft"
	CampaignStatusActive = "active"
	CampaignStatusPaused = "paused"
)

// IsValidCampaignStatus reports whether s is one of the known lifecycle states.
func IsValidCampaignStatus(s string) bool {
	return s == CampaignStatusDraft || s == CampaignStatusActive || s == CampaignStatusPaused
}

// Campaign represents a marketing campaign owned by a single user.
type Campaign struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	ProductName    string    `json:"productName"`
	TargetAudience string    `json:"targetAudience"`
	Tone           string    `json:"tone"`
	Status         string    `json:"status"`
	AdCopies       []AdCopy  `json:"adCopies"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// CampaignInput carries the caller-supplied fields for creating a campaign or
// requesting ad-copy generation. Status is deliberately absent: creation
// always forces 'draft'.
type CampaignInput struct {
	ProductName    string `json:"productName"`
	TargetAudience string `json:"targetAudience"`
	Tone           string `json:"tone"`
}

// CampaignUpdate is a partial patch for a campaign. Nil fields are left
// untouched.
type CampaignUpdate struct {
	ProductName    *string `json:"productName"`
	TargetAudience *string `json:"targetAudience"`
	Tone           *string `json:"tone"`
	Status         *string `json:"status"`
}

// IsEmpty reports whether the patch would change nothing.
func (u CampaignUpdate) IsEmpty() bool {
	return u.ProductName == nil && u.TargetAudience == nil && u.Tone == nil && u.Status == nil
}
