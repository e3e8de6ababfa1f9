package stampcard_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	stampcard "github.com/xraph/stampcard"
	"github.com/xraph/stampcard/card"
	"github.com/xraph/stampcard/scan"
	"github.com/xraph/stampcard/store/memory"
)

const cardScan = `{"type":"loyalty_card","app":"cafe-cards","userId":"cust_1","customerName":"Jess","email":"jess@example.com","cardId":"card_1"}`

func redemptionScan(t *testing.T, customerID string) string {
	t.Helper()
	raw, err := scan.EncodeRedemption(scan.RedemptionPayload{
		CustomerID: customerID,
		CardID:     "card_1",
		Timestamp:  time.Now(),
	})
	if err != nil {
		t.Fatalf("encode redemption failed: %v", err)
	}
	return raw
}

func TestHandleScanStampFlow(t *testing.T) {
	e := newEngine(t)
	s := e.NewSession("cafe_1")
	ctx := context.Background()

	res, err := s.HandleScan(ctx, cardScan)
	if err != nil {
		t.Fatalf("HandleScan failed: %v", err)
	}
	if !res.AwaitingConfirmation {
		t.Error("stamp scan must await confirmation")
	}
	if res.Card != nil {
		t.Error("nothing may be committed before confirmation")
	}
	if s.State() != stampcard.StateStampPending {
		t.Errorf("State = %q, want %q", s.State(), stampcard.StateStampPending)
	}

	confirmed, err := s.ConfirmStamps(ctx, 4)
	if err != nil {
		t.Fatalf("ConfirmStamps failed: %v", err)
	}
	if confirmed.Card == nil || confirmed.Card.TotalStamps != 4 {
		t.Errorf("confirmed card = %+v", confirmed.Card)
	}
	if s.State() != stampcard.StateIdle {
		t.Errorf("State = %q, want idle after commit", s.State())
	}

	acts := s.Activities()
	if len(acts) != 1 || acts[0].Action != "stamp_added" || acts[0].Err != "" {
		t.Errorf("activities = %+v", acts)
	}
}

func TestHandleScanRedemptionCommitsImmediately(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	// Seed a card with a redeemable reward.
	if _, err := e.AddStamps(ctx, "cust_1", "cafe_1", 10); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	s := e.NewSession("cafe_1")
	res, err := s.HandleScan(ctx, redemptionScan(t, "cust_1"))
	if err != nil {
		t.Fatalf("HandleScan failed: %v", err)
	}
	if res.AwaitingConfirmation {
		t.Error("redemption scans have no confirmation gate")
	}
	if res.Card == nil || res.Card.TotalRedeemed != 1 {
		t.Errorf("card = %+v", res.Card)
	}
	if s.State() != stampcard.StateIdle {
		t.Errorf("State = %q, want idle", s.State())
	}
}

func TestHandleScanRedemptionFailureRecorded(t *testing.T) {
	e := newEngine(t)
	s := e.NewSession("cafe_1")

	// No card exists, so the redemption commit fails; the session must
	// return to Idle and keep a local record of the attempt.
	_, err := s.HandleScan(context.Background(), redemptionScan(t, "cust_missing"))
	if !errors.Is(err, stampcard.ErrCardNotFound) {
		t.Fatalf("got %v, want ErrCardNotFound", err)
	}
	if s.State() != stampcard.StateIdle {
		t.Errorf("State = %q, want idle after failed commit", s.State())
	}

	acts := s.Activities()
	if len(acts) != 1 || acts[0].Err == "" {
		t.Errorf("expected one failed activity, got %+v", acts)
	}
}

func TestHandleScanDedup(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := base
	var mu sync.Mutex
	now := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return clock
	}

	e := stampcard.New(memory.New(), stampcard.WithClock(now))
	ctx := context.Background()

	if _, err := e.AddStamps(ctx, "cust_1", "cafe_1", 10); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	s := e.NewSession("cafe_1")
	raw := redemptionScan(t, "cust_1")

	if _, err := s.HandleScan(ctx, raw); err != nil {
		t.Fatalf("first scan failed: %v", err)
	}

	// Identical frame within the window: dropped without a second mutation.
	if _, err := s.HandleScan(ctx, raw); !errors.Is(err, stampcard.ErrDuplicateScan) {
		t.Fatalf("got %v, want ErrDuplicateScan", err)
	}

	c, err := e.FindCard(ctx, "cust_1", "cafe_1")
	if err != nil {
		t.Fatalf("FindCard failed: %v", err)
	}
	if c.TotalRedeemed != 1 {
		t.Errorf("TotalRedeemed = %d, want 1 (duplicate must not commit)", c.TotalRedeemed)
	}

	// Past the window the same payload is a fresh scan again.
	mu.Lock()
	clock = base.Add(stampcard.DefaultDedupWindow + time.Second)
	mu.Unlock()

	if _, err := s.HandleScan(ctx, raw); !errors.Is(err, stampcard.ErrNoRewards) {
		// The reward was already spent; what matters is the scan was
		// processed rather than deduped.
		t.Errorf("got %v, want ErrNoRewards", err)
	}
}

func TestHandleScanRejectedWhileBusy(t *testing.T) {
	e := newEngine(t)
	s := e.NewSession("cafe_1")
	ctx := context.Background()

	if _, err := s.HandleScan(ctx, cardScan); err != nil {
		t.Fatalf("first scan failed: %v", err)
	}

	// A different payload while a confirmation is pending is ignored.
	if _, err := s.HandleScan(ctx, "another-code"); !errors.Is(err, stampcard.ErrScanInProgress) {
		t.Errorf("got %v, want ErrScanInProgress", err)
	}
}

func TestConfirmStamps(t *testing.T) {
	e := newEngine(t)
	s := e.NewSession("cafe_1")
	ctx := context.Background()

	if _, err := s.ConfirmStamps(ctx, 1); !errors.Is(err, stampcard.ErrNoPendingStamp) {
		t.Errorf("confirm without scan: got %v, want ErrNoPendingStamp", err)
	}

	if _, err := s.HandleScan(ctx, cardScan); err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	// An invalid count leaves the confirmation pending for correction.
	if _, err := s.ConfirmStamps(ctx, 0); !errors.Is(err, stampcard.ErrInvalidStampCount) {
		t.Errorf("got %v, want ErrInvalidStampCount", err)
	}
	if s.State() != stampcard.StateStampPending {
		t.Errorf("State = %q, want stamp_pending after invalid count", s.State())
	}

	if _, err := s.ConfirmStamps(ctx, stampcard.MaxStampsPerScan); err != nil {
		t.Fatalf("valid confirm failed: %v", err)
	}
}

func TestCancel(t *testing.T) {
	e := newEngine(t)
	s := e.NewSession("cafe_1")
	ctx := context.Background()

	if _, err := s.HandleScan(ctx, cardScan); err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	s.Cancel()
	if s.State() != stampcard.StateIdle {
		t.Errorf("State = %q, want idle after cancel", s.State())
	}
	if _, err := s.ConfirmStamps(ctx, 1); !errors.Is(err, stampcard.ErrNoPendingStamp) {
		t.Errorf("got %v, want ErrNoPendingStamp after cancel", err)
	}
}

func TestClosedSession(t *testing.T) {
	e := newEngine(t)
	s := e.NewSession("cafe_1")
	ctx := context.Background()

	s.Close()

	if _, err := s.HandleScan(ctx, cardScan); !errors.Is(err, stampcard.ErrSessionClosed) {
		t.Errorf("HandleScan: got %v, want ErrSessionClosed", err)
	}
	if _, err := s.ConfirmStamps(ctx, 1); !errors.Is(err, stampcard.ErrSessionClosed) {
		t.Errorf("ConfirmStamps: got %v, want ErrSessionClosed", err)
	}
}

// hangingStore wraps the memory store and parks UpdateCard until released,
// simulating a hung backend.
type hangingStore struct {
	*memory.Store
	release chan struct{}
}

func (s *hangingStore) UpdateCard(ctx context.Context, c *card.Card) error {
	<-s.release
	return s.Store.UpdateCard(ctx, c)
}

func TestCommitWatchdogDiscardsLateResult(t *testing.T) {
	release := make(chan struct{})
	s := &hangingStore{Store: memory.New(), release: release}
	e := stampcard.New(s)
	ctx := context.Background()

	if _, err := e.AddStamps(ctx, "cust_1", "cafe_1", 10); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	sess := e.NewSession("cafe_1", stampcard.WithCommitTimeout(20*time.Millisecond))
	raw := redemptionScan(t, "cust_1")

	done := make(chan error, 1)
	go func() {
		_, err := sess.HandleScan(ctx, raw)
		done <- err
	}()

	// Wait for the watchdog to fire, then release the hung store call.
	deadline := time.After(2 * time.Second)
	for len(sess.Activities()) == 0 {
		select {
		case <-deadline:
			t.Fatal("watchdog never reset the session")
		case <-time.After(5 * time.Millisecond):
		}
	}
	close(release)

	if err := <-done; !errors.Is(err, stampcard.ErrCommitAbandoned) {
		t.Errorf("got %v, want ErrCommitAbandoned", err)
	}

	acts := sess.Activities()
	if len(acts) == 0 || acts[0].Action != "commit_abandoned" {
		t.Errorf("activities = %+v", acts)
	}
}

func TestActivityLogBounded(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	s := e.NewSession("cafe_1", stampcard.WithDedupWindow(time.Nanosecond))

	if _, err := e.AddStamps(ctx, "cust_1", "cafe_1", 1); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	// Each failed redemption records one activity; only the newest ten
	// survive.
	raw := redemptionScan(t, "cust_1")
	for i := 0; i < 15; i++ {
		if _, err := s.HandleScan(ctx, raw); !errors.Is(err, stampcard.ErrNoRewards) {
			t.Fatalf("scan %d: got %v, want ErrNoRewards", i, err)
		}
	}

	acts := s.Activities()
	if len(acts) != 10 {
		t.Errorf("activity log length = %d, want 10", len(acts))
	}
}
