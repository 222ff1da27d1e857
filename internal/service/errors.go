package service

import "errors"

var (
	ErrInvalidDataProvided = errors.New("invalid data provided")
	ErrWrongPassword       = errors.New("wrong password")
	ErrUnauthorized        = errors.New("operation is not permitted for this user")

	ErrTokenCreationFailed     = errors.New("token creation failed")
	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")

	// ErrNoIdentityKey is returned when sharing at a recipient who has not
	// published an identity public key. Sharing never silently proceeds
	// without one.
	ErrNoIdentityKey = errors.New("recipient has no identity key")

	// ErrInvalidGrantState is returned when a grant operation is attempted
	// from a status that does not admit it. State violations are rejected,
	// never coerced.
	ErrInvalidGrantState = errors.New("grant is not in a state that permits this operation")

	// ErrGrantExpired is returned when a login hits a grant whose deadline
	// has passed. Externally it maps to the same response as
	// ErrInvalidGrantState.
	ErrGrantExpired = errors.New("grant has expired")

	// ErrRequestAlreadyProcessed is returned when an administrator decides
	// an emergency request that is no longer pending.
	ErrRequestAlreadyProcessed = errors.New("emergency request has already been processed")
)
