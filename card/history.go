package card

import (
	"encoding/json"
	"time"
)

// History entry actions.
const (
	ActionStampAdded     = "stamp_added"
	ActionRewardRedeemed = "reward_redeemed"
)

// HistoryEntry is one scan-history record. The wire shape is fixed: other
// producers and consumers of card records read the same serialized sequence.
type HistoryEntry struct {
	Timestamp   string `json:"timestamp"` // ISO-8601 / RFC 3339
	Action      string `json:"action"`    // stamp_added | reward_redeemed
	CafeUserID  string `json:"cafeUserId"`
	StampsAdded int    `json:"stampsAdded,omitempty"`
}

// NewHistoryEntry builds an entry stamped with the given time in UTC.
func NewHistoryEntry(ts time.Time, action, cafeUserID string, stampsAdded int) HistoryEntry {
	return HistoryEntry{
		Timestamp:   ts.UTC().Format(time.RFC3339),
		Action:      action,
		CafeUserID:  cafeUserID,
		StampsAdded: stampsAdded,
	}
}

// EmptyHistory is the serialized form of a history with no entries.
const EmptyHistory = "[]"

// DecodeHistory parses a serialized history string. A corrupt or empty blob
// yields an empty sequence rather than an error: history is advisory and must
// never block a mutation.
func DecodeHistory(serialized string) []HistoryEntry {
	if serialized == "" {
		return nil
	}

	var entries []HistoryEntry
	if err := json.Unmarshal([]byte(serialized), &entries); err != nil {
		return nil
	}
	return entries
}

// EncodeHistory serializes a history sequence. An empty sequence encodes to
// EmptyHistory.
func EncodeHistory(entries []HistoryEntry) string {
	if len(entries) == 0 {
		return EmptyHistory
	}

	data, err := json.Marshal(entries)
	if err != nil {
		// HistoryEntry contains only plain strings and ints; this cannot
		// fail at runtime.
		return EmptyHistory
	}
	return string(data)
}

// AppendHistory appends an entry to a serialized history string, newest-last,
// and returns the new serialized form.
func AppendHistory(serialized string, entry HistoryEntry) string {
	return EncodeHistory(append(DecodeHistory(serialized), entry))
}
