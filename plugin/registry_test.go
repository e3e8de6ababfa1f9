package plugin_test

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/stampcard/plugin"
)

// recorder implements a subset of the hook interfaces and records calls.
type recorder struct {
	name string

	cardCreated  int
	stampsAdded  int
	lastCount    int
	scanFailures []error
}

func (r *recorder) Name() string { return r.name }

func (r *recorder) OnCardCreated(_ context.Context, _ interface{}) error {
	r.cardCreated++
	return nil
}

func (r *recorder) OnStampsAdded(_ context.Context, _ interface{}, count int) error {
	r.stampsAdded++
	r.lastCount = count
	return nil
}

func (r *recorder) OnScanFailed(_ context.Context, _ string, err error) error {
	r.scanFailures = append(r.scanFailures, err)
	return nil
}

func TestRegisterAndEmit(t *testing.T) {
	reg := plugin.NewRegistry()
	rec := &recorder{name: "test"}

	if err := reg.Register(rec); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if reg.Count() != 1 {
		t.Errorf("Count = %d, want 1", reg.Count())
	}

	ctx := context.Background()
	reg.EmitCardCreated(ctx, nil)
	reg.EmitStampsAdded(ctx, nil, 4)
	scanErr := errors.New("boom")
	reg.EmitScanFailed(ctx, "raw", scanErr)

	// Hooks the plugin does not implement must be safe to emit.
	reg.EmitRewardRedeemed(ctx, nil)
	reg.EmitCommitConflict(ctx, "card_1", 1)

	if rec.cardCreated != 1 {
		t.Errorf("cardCreated = %d, want 1", rec.cardCreated)
	}
	if rec.stampsAdded != 1 || rec.lastCount != 4 {
		t.Errorf("stampsAdded = %d lastCount = %d", rec.stampsAdded, rec.lastCount)
	}
	if len(rec.scanFailures) != 1 || !errors.Is(rec.scanFailures[0], scanErr) {
		t.Errorf("scanFailures = %v", rec.scanFailures)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	reg := plugin.NewRegistry()

	if err := reg.Register(&recorder{name: "dup"}); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	if err := reg.Register(&recorder{name: "dup"}); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}

func TestGet(t *testing.T) {
	reg := plugin.NewRegistry()
	rec := &recorder{name: "test"}
	if err := reg.Register(rec); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if got := reg.Get("test"); got != plugin.Plugin(rec) {
		t.Errorf("Get returned %v", got)
	}
	if got := reg.Get("missing"); got != nil {
		t.Errorf("expected Get of unknown plugin to return nil, got %v", got)
	}
}
