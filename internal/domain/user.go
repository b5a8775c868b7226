/**
 * @description
 * This file defines the user model for the campaign-service. Users are
 * provisioned lazily from the authenticated Clerk identity and carry the
 * credit balance and subscription status that gate ad-copy generation.
 */
package domain

import "time"

// Subscription statuses that do NOT entitle a user to generate ad copies.
// The status field is an open string set owned by the payment provider;
// anything outside this list (and non-empty) counts as an active subscription.
const (
	SubscriptionStatusDeleted = "deleted"
	SubscriptionStatusPastDue = "past_due"
)

// User represents an application user row.
type User struct {
	ID                 string    `json:"id"`
	ClerkUserID        string    `json:"-"`
	Email              string    `json:"email,omitempty"`
	Credits            int       `json:"credits"`
	SubscriptionStatus *string   `json:"subscriptionStatus"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// HasActiveSubscription reports whether the user's subscription entitles them
// to generation without spending credits. Unset, "deleted" and "past_due"
// statuses are all treated as not entitled.
func (u *User) HasActiveSubscription() bool {
	if u.SubscriptionStatus == nil {
		return false
	}
	status := *u.SubscriptionStatus
	return status != "" && status != SubscriptionStatusDeleted && status != SubscriptionStatusPastDue
}
