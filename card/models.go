package card

import (
	"time"

	"github.com/xraph/stampcard/types"
)

// Schema versions for stored card records. Records written before the reward
// system existed carry SchemaLegacy and are rejected by mutating operations.
const (
	SchemaLegacy = 0
	SchemaV1     = 1
)

// Card is the per-customer-per-cafe loyalty record tracking stamps and
// rewards. The customer identity fields are a snapshot captured at issuance
// time and are not re-synced from any identity service.
//
// ID is an opaque string: cards minted by the engine use a TypeID
// ("card_..."), but cards derived from scanned payloads keep whatever
// identifier the payload carried.
type Card struct {
	types.Entity
	ID            string `json:"id"`
	CustomerID    string `json:"customer_id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CafeUserID    string `json:"cafe_user_id"`

	// CurrentStamps is progress toward the next reward, always in
	// [0, StampsPerReward-1]. TotalStamps is the lifetime count and never
	// decreases.
	CurrentStamps    int `json:"current_stamps"`
	TotalStamps      int `json:"total_stamps"`
	AvailableRewards int `json:"available_rewards"`
	TotalRedeemed    int `json:"total_redeemed"`

	Pinned        bool      `json:"pinned"`
	IssueDate     time.Time `json:"issue_date"`
	LastStampDate time.Time `json:"last_stamp_date"`

	// History is the serialized scan-history sequence, newest-last. It is
	// stored as a JSON string rather than a native array so the record shape
	// matches what other producers of this format write.
	History string `json:"history"`

	// Schema tags the record layout version. Mutations require SchemaV1.
	Schema int `json:"schema"`

	// Version is the optimistic-concurrency token. Stores accept an update
	// only when the caller's Version matches the stored one, then bump it.
	Version int64 `json:"version"`
}

// CanRedeem reports whether the card has at least one redeemable reward.
func (c *Card) CanRedeem() bool {
	return c.AvailableRewards > 0
}

// IsLegacy reports whether the record predates the reward-system schema.
func (c *Card) IsLegacy() bool {
	return c.Schema < SchemaV1
}

// Clone returns a deep copy of the card. History is a value string, so a
// shallow field copy is sufficient.
func (c *Card) Clone() *Card {
	if c == nil {
		return nil
	}
	dup := *c
	return &dup
}
