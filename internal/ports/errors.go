package ports

import "errors"

// Standard application-level errors.
// Core components and adapters wrap underlying detail with these standard
// errors so callers can match on kind with errors.Is.
var (
	// Settlement Errors (caller-recoverable: retry with a corrected request)
	ErrUnknownUser         = errors.New("user is not registered")
	ErrInvalidAmount       = errors.New("energy amount is out of range")
	ErrInvalidPrice        = errors.New("price per unit is out of range")
	ErrSelfTrade           = errors.New("buyer and seller cannot be the same entity")
	ErrFutureTimestamp     = errors.New("trade timestamp cannot be in the future")
	ErrInsufficientBalance = errors.New("seller does not have enough energy to sell")

	// General Errors
	ErrInvalidRequest     = errors.New("invalid request parameters or format")
	ErrNotFound           = errors.New("resource not found")
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Database Specific Errors
	ErrDBConnection = errors.New("database connection error")
	ErrQueryFailed  = errors.New("database query failed")
)

// IsSettlementError reports whether err is one of the caller-recoverable
// settlement error kinds.
func IsSettlementError(err error) bool {
	for _, kind := range []error{
		ErrUnknownUser,
		ErrInvalidAmount,
		ErrInvalidPrice,
		ErrSelfTrade,
		ErrFutureTimestamp,
		ErrInsufficientBalance,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
