/**
 * @description
 * This file defines the domain event payloads published to the message broker
 * for downstream analytics. Publishing is best-effort; no consumer inside
 * this service depends on these events.
 */
package domain

import "time"

// Routing keys for campaign lifecycle and generation events.
const (
	EventCampaignCreated = "campaign.created"
	EventCampaignDeleted = "campaign.deleted"
	EventAdCopyGenerated = "adcopy.generated"
)

// CampaignEvent is published when a campaign is created or deleted.
type CampaignEvent struct {
	EventType   string    `json:"event_type"`
	CampaignID  string    `json:"campaign_id"`
	UserID      string    `json:"user_id"`
	ProductName string    `json:"product_name"`
	Status      string    `json:"status"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// AdCopyGeneratedEvent is published after a successful generation call.
type AdCopyGeneratedEvent struct {
	UserID      string    `json:"user_id"`
	ProductName string    `json:"product_name"`
	CopyCount   int       `json:"copy_count"`
	OccurredAt  time.Time `json:"occurred_at"`
}
