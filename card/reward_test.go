package card_test

import (
	"testing"

	"github.com/xraph/stampcard/card"
)

func TestCalculateRewards(t *testing.T) {
	tests := []struct {
		name        string
		totalStamps int
		wantCurrent int
		wantRewards int
	}{
		{"zero", 0, 0, 0},
		{"below threshold", 9, 9, 0},
		{"exactly one reward", 10, 0, 1},
		{"mid second cycle", 29, 9, 2},
		{"exactly three rewards", 30, 0, 3},
		{"negative clamps to zero", -5, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current, rewards := card.CalculateRewards(tt.totalStamps)
			if current != tt.wantCurrent {
				t.Errorf("currentStamps = %d, want %d", current, tt.wantCurrent)
			}
			if rewards != tt.wantRewards {
				t.Errorf("availableRewards = %d, want %d", rewards, tt.wantRewards)
			}
		})
	}
}

func TestAddStamps(t *testing.T) {
	tests := []struct {
		name          string
		start         card.Card
		add           int
		wantEarned    int
		wantCurrent   int
		wantAvailable int
		wantTotal     int
	}{
		{
			name:        "no wrap",
			start:       card.Card{CurrentStamps: 3, TotalStamps: 3},
			add:         4,
			wantEarned:  0, wantCurrent: 7, wantAvailable: 0, wantTotal: 7,
		},
		{
			name:        "exact wrap earns one",
			start:       card.Card{CurrentStamps: 9, TotalStamps: 9},
			add:         1,
			wantEarned:  1, wantCurrent: 0, wantAvailable: 1, wantTotal: 10,
		},
		{
			name:        "wrap with remainder",
			start:       card.Card{CurrentStamps: 8, TotalStamps: 18, AvailableRewards: 1},
			add:         5,
			wantEarned:  1, wantCurrent: 3, wantAvailable: 2, wantTotal: 23,
		},
		{
			name:        "multi wrap in one addition",
			start:       card.Card{CurrentStamps: 5, TotalStamps: 5},
			add:         26,
			wantEarned:  3, wantCurrent: 1, wantAvailable: 3, wantTotal: 31,
		},
		{
			name:        "zero is a no-op",
			start:       card.Card{CurrentStamps: 4, TotalStamps: 4},
			add:         0,
			wantEarned:  0, wantCurrent: 4, wantAvailable: 0, wantTotal: 4,
		},
		{
			name:        "negative is a no-op",
			start:       card.Card{CurrentStamps: 4, TotalStamps: 4},
			add:         -2,
			wantEarned:  0, wantCurrent: 4, wantAvailable: 0, wantTotal: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.start
			earned := c.AddStamps(tt.add)
			if earned != tt.wantEarned {
				t.Errorf("earned = %d, want %d", earned, tt.wantEarned)
			}
			if c.CurrentStamps != tt.wantCurrent {
				t.Errorf("CurrentStamps = %d, want %d", c.CurrentStamps, tt.wantCurrent)
			}
			if c.AvailableRewards != tt.wantAvailable {
				t.Errorf("AvailableRewards = %d, want %d", c.AvailableRewards, tt.wantAvailable)
			}
			if c.TotalStamps != tt.wantTotal {
				t.Errorf("TotalStamps = %d, want %d", c.TotalStamps, tt.wantTotal)
			}
		})
	}
}

func TestAddStampsDoesNotReconstructSpentRewards(t *testing.T) {
	// After a redemption, available rewards lag behind total/10. A later
	// addition must only add newly earned rewards, not resurrect spent ones.
	c := card.Card{CurrentStamps: 0, TotalStamps: 10, AvailableRewards: 1}
	if !c.Redeem() {
		t.Fatal("expected redeem to succeed")
	}
	if c.AvailableRewards != 0 || c.TotalRedeemed != 1 {
		t.Fatalf("after redeem: available=%d redeemed=%d", c.AvailableRewards, c.TotalRedeemed)
	}

	earned := c.AddStamps(10)
	if earned != 1 {
		t.Errorf("earned = %d, want 1", earned)
	}
	if c.AvailableRewards != 1 {
		t.Errorf("AvailableRewards = %d, want 1 (spent reward must stay spent)", c.AvailableRewards)
	}
	if c.TotalStamps != 20 {
		t.Errorf("TotalStamps = %d, want 20", c.TotalStamps)
	}
}

func TestRedeem(t *testing.T) {
	c := card.Card{CurrentStamps: 4, TotalStamps: 24, AvailableRewards: 2}

	if !c.Redeem() {
		t.Fatal("expected first redeem to succeed")
	}
	if c.AvailableRewards != 1 || c.TotalRedeemed != 1 {
		t.Errorf("after first redeem: available=%d redeemed=%d", c.AvailableRewards, c.TotalRedeemed)
	}
	if c.CurrentStamps != 4 || c.TotalStamps != 24 {
		t.Errorf("redeem must not touch stamps: current=%d total=%d", c.CurrentStamps, c.TotalStamps)
	}

	if !c.Redeem() {
		t.Fatal("expected second redeem to succeed")
	}
	if c.Redeem() {
		t.Error("expected redeem with zero rewards to fail")
	}
	if c.AvailableRewards != 0 || c.TotalRedeemed != 2 {
		t.Errorf("failed redeem must not mutate: available=%d redeemed=%d", c.AvailableRewards, c.TotalRedeemed)
	}
}

func TestCanRedeem(t *testing.T) {
	c := card.Card{}
	if c.CanRedeem() {
		t.Error("expected CanRedeem to be false with no rewards")
	}
	c.AvailableRewards = 1
	if !c.CanRedeem() {
		t.Error("expected CanRedeem to be true with one reward")
	}
}

func TestIsLegacy(t *testing.T) {
	legacy := card.Card{Schema: card.SchemaLegacy}
	if !legacy.IsLegacy() {
		t.Error("expected legacy schema to report IsLegacy")
	}
	current := card.Card{Schema: card.SchemaV1}
	if current.IsLegacy() {
		t.Error("expected v1 schema to not report IsLegacy")
	}
}
