package domain

import "errors"

var (
	// ErrValidation covers bad caller input. Wrapped with detail at the
	// call site.
	ErrValidation = errors.New("validation failed")

	ErrNotFound = errors.New("not found")

	// ErrSlotFull is returned by the slot ledger when booked_count has
	// reached capacity.
	ErrSlotFull = errors.New("slot is fully booked")

	// ErrCapacityConflict means the payment was taken by the gateway but
	// the slot filled up between order creation and confirmation. Needs
	// manual reconciliation, never silently mapped to success or to a
	// generic failure.
	ErrCapacityConflict = errors.New("slot just became full: payment captured but booking cannot be assigned, contact support")

	ErrGateway            = errors.New("payment gateway error")
	ErrPaymentNotVerified = errors.New("payment not verified")
)
