package scan_test

import (
	"strings"
	"testing"
	"time"

	"github.com/xraph/stampcard/scan"
)

func TestParseCard(t *testing.T) {
	raw := `{"type":"loyalty_card","app":"cafe-cards","userId":"cust_1","customerName":"Jess","email":"jess@example.com","cardId":"card_1","issueDate":"2025-06-01T00:00:00Z"}`

	intent := scan.Parse(raw)
	if intent.Kind != scan.KindStamp {
		t.Fatalf("Kind = %q, want %q", intent.Kind, scan.KindStamp)
	}
	if intent.Fallback {
		t.Error("expected structured payload to not be a fallback")
	}
	if intent.CustomerID != "cust_1" {
		t.Errorf("CustomerID = %q, want cust_1", intent.CustomerID)
	}
	if intent.CustomerName != "Jess" {
		t.Errorf("CustomerName = %q, want Jess", intent.CustomerName)
	}
	if intent.CustomerEmail != "jess@example.com" {
		t.Errorf("CustomerEmail = %q", intent.CustomerEmail)
	}
	if intent.CardID != "card_1" {
		t.Errorf("CardID = %q, want card_1", intent.CardID)
	}
}

func TestParseRedemption(t *testing.T) {
	raw := `{"type":"reward_redemption","app":"cafe-cards","customerId":"cust_2","customerName":"Sam","email":"sam@example.com","cardId":"card_2","currentStamps":4,"availableRewards":2,"timestamp":"2025-06-01T10:00:00Z"}`

	intent := scan.Parse(raw)
	if intent.Kind != scan.KindRedemption {
		t.Fatalf("Kind = %q, want %q", intent.Kind, scan.KindRedemption)
	}
	if intent.CustomerID != "cust_2" {
		t.Errorf("CustomerID = %q, want cust_2", intent.CustomerID)
	}
	if intent.CardID != "card_2" {
		t.Errorf("CardID = %q, want card_2", intent.CardID)
	}
	if intent.CurrentStamps != 4 {
		t.Errorf("CurrentStamps = %d, want 4", intent.CurrentStamps)
	}
	if intent.AvailableRewards != 2 {
		t.Errorf("AvailableRewards = %d, want 2", intent.AvailableRewards)
	}
}

func TestParseFallback(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"plain string", "legacy-code-123"},
		{"malformed json", `{"type":`},
		{"unknown type", `{"type":"gift_card","app":"cafe-cards"}`},
		{"empty string", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent := scan.Parse(tt.raw)
			if intent.Kind != scan.KindStamp {
				t.Errorf("Kind = %q, want %q", intent.Kind, scan.KindStamp)
			}
			if !intent.Fallback {
				t.Error("expected fallback intent")
			}
			if intent.CustomerID == "" {
				t.Error("expected synthetic customer id")
			}
			if intent.CustomerName != scan.FallbackCustomerName {
				t.Errorf("CustomerName = %q, want %q", intent.CustomerName, scan.FallbackCustomerName)
			}
			if intent.CustomerEmail != scan.FallbackCustomerEmail {
				t.Errorf("CustomerEmail = %q, want %q", intent.CustomerEmail, scan.FallbackCustomerEmail)
			}
		})
	}
}

func TestParseFallbackSyntheticIDsDiffer(t *testing.T) {
	a := scan.Parse("legacy-code")
	b := scan.Parse("legacy-code")
	if a.CustomerID == b.CustomerID {
		t.Error("expected distinct synthetic customer ids per parse")
	}
}

func TestFallbackCardIDTruncation(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"short payload kept whole", "short-code", "short-code"},
		{"exactly twenty runes", strings.Repeat("a", 20), strings.Repeat("a", 20)},
		{"long payload truncated", strings.Repeat("a", 30), strings.Repeat("a", 20) + "..."},
		{"multibyte runes counted as runes", strings.Repeat("ü", 25), strings.Repeat("ü", 20) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent := scan.Parse(tt.raw)
			if intent.CardID != tt.want {
				t.Errorf("CardID = %q, want %q", intent.CardID, tt.want)
			}
		})
	}
}

func TestEncodeCardRoundTrip(t *testing.T) {
	raw, err := scan.EncodeCard(scan.CardPayload{
		CustomerID:    "cust_1",
		CustomerName:  "Jess",
		CustomerEmail: "jess@example.com",
		CardID:        "card_1",
		IssueDate:     time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if !scan.IsWireFormat(raw) {
		t.Error("encoded card payload should be recognized as wire format")
	}

	intent := scan.Parse(raw)
	if intent.Kind != scan.KindStamp || intent.Fallback {
		t.Fatalf("round-trip kind = %q fallback = %v", intent.Kind, intent.Fallback)
	}
	if intent.CustomerID != "cust_1" || intent.CardID != "card_1" {
		t.Errorf("round-trip identity mismatch: %+v", intent)
	}
}

func TestEncodeRedemptionRoundTrip(t *testing.T) {
	raw, err := scan.EncodeRedemption(scan.RedemptionPayload{
		CustomerID:       "cust_2",
		CustomerName:     "Sam",
		CustomerEmail:    "sam@example.com",
		CardID:           "card_2",
		CurrentStamps:    7,
		AvailableRewards: 1,
		Timestamp:        time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	intent := scan.Parse(raw)
	if intent.Kind != scan.KindRedemption {
		t.Fatalf("round-trip kind = %q", intent.Kind)
	}
	if intent.CustomerID != "cust_2" || intent.CardID != "card_2" {
		t.Errorf("round-trip identity mismatch: %+v", intent)
	}
	if intent.CurrentStamps != 7 || intent.AvailableRewards != 1 {
		t.Errorf("round-trip counts mismatch: %+v", intent)
	}
}

func TestEncodeCardUsesWireFieldNames(t *testing.T) {
	raw, err := scan.EncodeCard(scan.CardPayload{CustomerID: "cust_1", CardID: "card_1"})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	// The customer id field differs by record type: userId on cards,
	// customerId on redemptions.
	if !strings.Contains(raw, `"userId":"cust_1"`) {
		t.Errorf("card payload must carry userId: %s", raw)
	}
	if strings.Contains(raw, `"customerId"`) {
		t.Errorf("card payload must not carry customerId: %s", raw)
	}
}

func TestIsWireFormat(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"card record", `{"type":"loyalty_card","app":"cafe-cards"}`, true},
		{"redemption record", `{"type":"reward_redemption","app":"cafe-cards"}`, true},
		{"leading whitespace", `  {"type":"loyalty_card"}`, true},
		{"plain string", "legacy-code", false},
		{"unknown type", `{"type":"gift_card"}`, false},
		{"malformed", `{"type":`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scan.IsWireFormat(tt.raw); got != tt.want {
				t.Errorf("IsWireFormat(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}
