package stampcard

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios.
var (
	// Card errors
	ErrCardNotFound = errors.New("stampcard: card not found")
	ErrCardExists   = errors.New("stampcard: card already exists")
	ErrLegacyCard   = errors.New("stampcard: card predates the reward system, please contact support")

	// Reward errors
	ErrNoRewards         = errors.New("stampcard: no available rewards to redeem")
	ErrInvalidStampCount = errors.New("stampcard: stamp count must be between 1 and 10")

	// Session errors
	ErrScanInProgress  = errors.New("stampcard: a scan is already being processed")
	ErrDuplicateScan   = errors.New("stampcard: duplicate scan discarded")
	ErrNoPendingStamp  = errors.New("stampcard: no stamp confirmation pending")
	ErrSessionClosed   = errors.New("stampcard: session is closed")
	ErrCommitAbandoned = errors.New("stampcard: commit abandoned by watchdog")

	// Store errors
	ErrVersionConflict = errors.New("stampcard: concurrent update conflict")
	ErrStoreNotReady   = errors.New("stampcard: store not ready")
	ErrStoreClosed     = errors.New("stampcard: store is closed")
	ErrMigrationFailed = errors.New("stampcard: migration failed")
)

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("stampcard: validation failed for %s: %s", e.Field, e.Message)
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCardNotFound)
}

// IsBusinessRule returns true if the error is a business-rule rejection that
// must be surfaced to the operator and never retried.
func IsBusinessRule(err error) bool {
	return errors.Is(err, ErrNoRewards) ||
		errors.Is(err, ErrLegacyCard) ||
		errors.Is(err, ErrInvalidStampCount)
}

// IsRetryable returns true if the error is temporary and the operation can be
// retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrVersionConflict) ||
		errors.Is(err, ErrStoreNotReady)
}
