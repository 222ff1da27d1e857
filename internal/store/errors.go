package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrEmailAlreadyExists is returned when an attempt to register a new
	// user fails because a user with the same email already exists.
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrNoUserWasFound is returned when a query expected to match at least
	// one user record produces an empty result set.
	ErrNoUserWasFound = errors.New("no user was found")

	// ErrVaultNotFound is returned when a user has no vault blob yet.
	// Callers use this to distinguish "new vault" from a failed decrypt.
	ErrVaultNotFound = errors.New("vault blob was not found")

	// ErrShareNotFound is returned when a contact-share mailbox entry does
	// not exist, e.g. it was already accepted or declined.
	ErrShareNotFound = errors.New("contact share was not found")

	// ErrGrantNotFound is returned when an access grant lookup by id
	// produces no row.
	ErrGrantNotFound = errors.New("access grant was not found")

	// ErrSessionNotFound is returned when an access session lookup by id
	// produces no row.
	ErrSessionNotFound = errors.New("access session was not found")

	// ErrWillNotFound is returned when an owner has no digital will
	// configuration.
	ErrWillNotFound = errors.New("digital will config was not found")

	// ErrRequestNotFound is returned when an emergency request lookup by id
	// produces no row.
	ErrRequestNotFound = errors.New("emergency request was not found")

	// ErrStateConflict is returned when a conditional status update matched
	// zero rows: the record was not in the expected prior state. This is the
	// storage-level guard behind every grant and emergency-request
	// transition, making concurrent revoke/login/sweep races safe.
	ErrStateConflict = errors.New("record was not in the expected state")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails (e.g. invalid argument count or unsupported type).
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRow is returned when scanning column values from a single
	// result row into a destination struct fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails, typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan rows")
)
