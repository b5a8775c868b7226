/**
 * @description
 * Typed errors for the service layer. The API layer matches on these with
 * errors.Is to pick the outward HTTP status, so each distinct failure class
 * the presentation layer cares about has its own sentinel.
 */
package app

import "errors"

var (
	// ErrNotEntitled means the user has no credits and no active
	// subscription. It never follows a debit, so it never triggers a refund.
	ErrNotEntitled = errors.New("user has not paid or is out of credits")

	// ErrCampaignNotFound covers both missing campaigns and ownership
	// violations on update/delete/save.
	ErrCampaignNotFound = errors.New("campaign not found")

	// ErrInvalidInput is returned for malformed caller input, such as an
	// unknown campaign status or empty required fields.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUpstreamFailure wraps completion-provider failures: transport
	// errors, non-2xx responses and malformed structured output. A debited
	// attempt that ends here has already been refunded.
	ErrUpstreamFailure = errors.New("ad copy generation failed")
)
