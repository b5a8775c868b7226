/**
 * @description
 * This file defines the ad-copy models. GeneratedAdCopies is the ephemeral
 * result of one generation call and is never persisted automatically; AdCopy
 * is the persisted row a caller explicitly saves under a campaign.
 */
package domain

import "time"

// AdCopy represents a persisted ad copy belonging to a campaign.
type AdCopy struct {
	ID         string    `json:"id"`
	CampaignID string    `json:"campaignId"`
	Headline   string    `json:"headline"`
	Body       string    `json:"body"`
	CTA        string    `json:"cta"`
	Variations []string  `json:"variations"`
	CreatedAt  time.Time `json:"createdAt"`
}

// AdCopyInput carries the caller-supplied fields for saving an ad copy.
type AdCopyInput struct {
	Headline   string   `json:"headline"`
	Body       string   `json:"body"`
	CTA        string   `json:"cta"`
	Variations []string `json:"variations"`
}

// GeneratedAdCopy is one element of a generation result. It mirrors the
// structured tool-call schema the completion provider is forced to return.
type GeneratedAdCopy struct {
	Headline   string   `json:"headline"`
	Body       string   `json:"body"`
	CTA        string   `json:"cta"`
	Variations []string `json:"variations"`
}

// GeneratedAdCopies is the full payload of one generation invocation,
// returned to the caller verbatim.
type GeneratedAdCopies struct {
	AdCopies []GeneratedAdCopy `json:"adCopies"`
}
