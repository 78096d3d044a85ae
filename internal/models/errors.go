package models

import "errors"

// Domain errors. Every rejection the engine can produce maps to one of
// these; handlers translate them to HTTP codes and storage/network errors
// never cross the service boundary unwrapped.
var (
	// ErrUnknownClient means no client matches the presented API key.
	ErrUnknownClient = errors.New("unknown client")

	// ErrOrphanedClient means a client row exists without its business.
	// Cascade rules should make this impossible; it is checked anyway.
	ErrOrphanedClient = errors.New("client has no business")

	// ErrTooManyActiveOTPs means the user already has the maximum number of
	// pending OTPs for this client.
	ErrTooManyActiveOTPs = errors.New("too many active OTPs")

	// ErrDeliveryFailed means the messaging gateway rejected the send. No
	// OTP record is persisted for a failed delivery.
	ErrDeliveryFailed = errors.New("message delivery failed")

	// ErrInvalidCode means no OTP matches the (phone, code, client) triple.
	ErrInvalidCode = errors.New("invalid code")

	// ErrExpired means the OTP matched but its expiry has passed.
	ErrExpired = errors.New("code expired")

	// ErrAlreadyUsed means the OTP matched but was consumed earlier.
	ErrAlreadyUsed = errors.New("code already used")

	// ErrPersistenceConflict surfaces unique-constraint violations as a
	// domain error (duplicate API key, duplicate admin email, a phone-number
	// race loser that still fails after re-fetch).
	ErrPersistenceConflict = errors.New("persistence conflict")

	// ErrNotFound is the generic missing-row error for admin lookups.
	ErrNotFound = errors.New("record not found")
)
