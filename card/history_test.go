package card_test

import (
	"strings"
	"testing"
	"time"

	"github.com/xraph/stampcard/card"
)

func TestAppendHistory(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)

	serialized := card.AppendHistory(card.EmptyHistory,
		card.NewHistoryEntry(ts, card.ActionStampAdded, "cafe_1", 3))
	serialized = card.AppendHistory(serialized,
		card.NewHistoryEntry(ts.Add(time.Minute), card.ActionRewardRedeemed, "cafe_1", 0))

	entries := card.DecodeHistory(serialized)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Action != card.ActionStampAdded {
		t.Errorf("entries[0].Action = %q, want %q", entries[0].Action, card.ActionStampAdded)
	}
	if entries[0].StampsAdded != 3 {
		t.Errorf("entries[0].StampsAdded = %d, want 3", entries[0].StampsAdded)
	}
	if entries[0].Timestamp != "2025-06-01T12:30:00Z" {
		t.Errorf("entries[0].Timestamp = %q", entries[0].Timestamp)
	}
	if entries[1].Action != card.ActionRewardRedeemed {
		t.Errorf("entries[1].Action = %q, want %q", entries[1].Action, card.ActionRewardRedeemed)
	}
}

func TestHistoryWireShape(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	serialized := card.EncodeHistory([]card.HistoryEntry{
		card.NewHistoryEntry(ts, card.ActionStampAdded, "cafe_1", 2),
	})

	// Field names are part of the stored record format.
	for _, key := range []string{`"timestamp"`, `"action"`, `"cafeUserId"`, `"stampsAdded"`} {
		if !strings.Contains(serialized, key) {
			t.Errorf("serialized history missing %s: %s", key, serialized)
		}
	}
}

func TestHistoryOmitsZeroStamps(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	serialized := card.EncodeHistory([]card.HistoryEntry{
		card.NewHistoryEntry(ts, card.ActionRewardRedeemed, "cafe_1", 0),
	})
	if strings.Contains(serialized, "stampsAdded") {
		t.Errorf("redemption entry should omit stampsAdded: %s", serialized)
	}
}

func TestDecodeHistoryCorrupt(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty string", ""},
		{"not json", "{{{"},
		{"wrong shape", `{"timestamp":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := card.DecodeHistory(tt.in); len(got) != 0 {
				t.Errorf("expected empty history, got %d entries", len(got))
			}
		})
	}
}

func TestEncodeHistoryEmpty(t *testing.T) {
	if got := card.EncodeHistory(nil); got != card.EmptyHistory {
		t.Errorf("EncodeHistory(nil) = %q, want %q", got, card.EmptyHistory)
	}
}
