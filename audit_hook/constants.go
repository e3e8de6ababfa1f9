package audithook

// Action constants for audit events.
const (
	// Card actions
	ActionCardCreated = "card.created"
	ActionCardPinned  = "card.pinned"

	// Stamp actions
	ActionStampsAdded = "stamps.added"

	// Reward actions
	ActionRewardEarned   = "reward.earned"
	ActionRewardRedeemed = "reward.redeemed"

	// Scan actions
	ActionScanDeduped = "scan.deduped"
	ActionScanFailed  = "scan.failed"

	// Store actions
	ActionCommitConflict = "commit.conflict"
)

// Resource constants for audit events.
const (
	ResourceCard  = "card"
	ResourceScan  = "scan"
	ResourceStore = "store"
)

// Category constants for audit events.
const (
	CategoryLoyalty = "loyalty"
	CategoryScan    = "scan"
	CategoryStorage = "storage"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePartial = "partial"
)
