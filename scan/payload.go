// Package scan decodes and encodes the QR payload wire format shared by all
// cafe-cards producers and consumers.
//
// The wire format is a JSON object with a string field "type" of either
// "loyalty_card" or "reward_redemption" and a string field "app" equal to
// "cafe-cards". Anything that does not match is treated as an opaque legacy
// identifier and degraded to a best-effort stamp intent — the parser never
// rejects a scan.
package scan

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Wire format discriminators.
const (
	AppName        = "cafe-cards"
	TypeCard       = "loyalty_card"
	TypeRedemption = "reward_redemption"
)

// Fallback identity for payloads that carry no customer information.
const (
	FallbackCustomerName  = "Unknown Customer"
	FallbackCustomerEmail = "unknown@example.com"

	// fallbackCardIDLen is how many leading runes of an opaque payload are
	// kept as the derived card identifier.
	fallbackCardIDLen = 20
)

// payload is the wire shape of both record types. Field names are fixed by
// the format: loyalty_card records carry the customer id as "userId",
// reward_redemption records as "customerId".
type payload struct {
	Type             string `json:"type"`
	App              string `json:"app"`
	UserID           string `json:"userId,omitempty"`
	CustomerID       string `json:"customerId,omitempty"`
	CustomerName     string `json:"customerName"`
	Email            string `json:"email"`
	CardID           string `json:"cardId"`
	IssueDate        string `json:"issueDate,omitempty"`
	CurrentStamps    int    `json:"currentStamps,omitempty"`
	AvailableRewards int    `json:"availableRewards,omitempty"`
	Timestamp        string `json:"timestamp,omitempty"`
}

// Parse decodes a raw scanned string into an Intent. It is total: malformed
// or unrecognized payloads produce a fallback stamp intent with a synthetic
// customer identity, never an error. Accepting any string as a low-confidence
// scan is a deliberate availability-over-validation policy.
func Parse(raw string) *Intent {
	var p payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return fallbackIntent(raw)
	}

	switch p.Type {
	case TypeCard:
		return &Intent{
			Kind:          KindStamp,
			CustomerID:    p.UserID,
			CustomerName:  p.CustomerName,
			CustomerEmail: p.Email,
			CardID:        p.CardID,
		}
	case TypeRedemption:
		return &Intent{
			Kind:             KindRedemption,
			CustomerID:       p.CustomerID,
			CustomerName:     p.CustomerName,
			CustomerEmail:    p.Email,
			CardID:           p.CardID,
			CurrentStamps:    p.CurrentStamps,
			AvailableRewards: p.AvailableRewards,
		}
	default:
		return fallbackIntent(raw)
	}
}

func fallbackIntent(raw string) *Intent {
	return &Intent{
		Kind:          KindStamp,
		CustomerID:    uuid.NewString(),
		CustomerName:  FallbackCustomerName,
		CustomerEmail: FallbackCustomerEmail,
		CardID:        truncateCardID(raw),
		Fallback:      true,
	}
}

// truncateCardID derives a card identifier from an opaque payload: the first
// fallbackCardIDLen runes, with an ellipsis marker when the payload is longer.
func truncateCardID(raw string) string {
	runes := []rune(raw)
	if len(runes) <= fallbackCardIDLen {
		return raw
	}
	return string(runes[:fallbackCardIDLen]) + "..."
}

// CardPayload describes a loyalty_card record for encoding.
type CardPayload struct {
	CustomerID    string
	CustomerName  string
	CustomerEmail string
	CardID        string
	IssueDate     time.Time
}

// EncodeCard produces the loyalty_card wire JSON shown in a customer's
// identification QR.
func EncodeCard(cp CardPayload) (string, error) {
	data, err := json.Marshal(payload{
		Type:         TypeCard,
		App:          AppName,
		UserID:       cp.CustomerID,
		CustomerName: cp.CustomerName,
		Email:        cp.CustomerEmail,
		CardID:       cp.CardID,
		IssueDate:    cp.IssueDate.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// RedemptionPayload describes a reward_redemption record for encoding.
type RedemptionPayload struct {
	CustomerID       string
	CustomerName     string
	CustomerEmail    string
	CardID           string
	CurrentStamps    int
	AvailableRewards int
	Timestamp        time.Time
}

// EncodeRedemption produces the reward_redemption wire JSON shown in a
// customer's redemption QR. The embedded stamp and reward counts snapshot the
// card state the customer confirmed.
func EncodeRedemption(rp RedemptionPayload) (string, error) {
	data, err := json.Marshal(payload{
		Type:             TypeRedemption,
		App:              AppName,
		CustomerID:       rp.CustomerID,
		CustomerName:     rp.CustomerName,
		Email:            rp.CustomerEmail,
		CardID:           rp.CardID,
		CurrentStamps:    rp.CurrentStamps,
		AvailableRewards: rp.AvailableRewards,
		Timestamp:        rp.Timestamp.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// IsWireFormat reports whether a raw payload looks like a structured
// cafe-cards record without fully decoding it. Useful for diagnostics.
func IsWireFormat(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return false
	}

	var p payload
	if err := json.Unmarshal([]byte(trimmed), &p); err != nil {
		return false
	}
	return p.Type == TypeCard || p.Type == TypeRedemption
}
