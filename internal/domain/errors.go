package domain

import "errors"

var (
	// ErrNotFound covers unknown links, cookies, campaigns etc. Click ingestion
	// treats it as non-fatal and falls back to a fresh cookie.
	ErrNotFound = errors.New("not found")

	// ErrUnattributed means the conversion was recorded but no live cookie or
	// click could be resolved; commission is withheld pending manual review.
	ErrUnattributed = errors.New("conversion could not be attributed")

	// ErrInvalidCommissionInput is returned when a percentage rule is applied
	// to a conversion without an event value.
	ErrInvalidCommissionInput = errors.New("invalid commission input")

	// ErrInvalidTierConfig is returned at campaign-save time for tier tables
	// with gaps or overlaps. Calculation never fails for a saved table.
	ErrInvalidTierConfig = errors.New("invalid tier configuration")

	// ErrInvalidStateTransition is a caller error on the payout state machine.
	ErrInvalidStateTransition = errors.New("invalid payout state transition")

	// ErrStorage wraps retryable persistence failures.
	ErrStorage = errors.New("storage error")

	ErrDuplicateEvent = errors.New("conversion event already recorded")
	ErrForbidden      = errors.New("forbidden")
)
