// Package audithook bridges Stampcard lifecycle events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not import
// Chronicle directly. Callers inject a RecorderFunc adapter that bridges
// to Chronicle at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xraph/stampcard/card"
	"github.com/xraph/stampcard/plugin"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin           = (*Extension)(nil)
	_ plugin.OnCardCreated    = (*Extension)(nil)
	_ plugin.OnCardPinned     = (*Extension)(nil)
	_ plugin.OnStampsAdded    = (*Extension)(nil)
	_ plugin.OnRewardEarned   = (*Extension)(nil)
	_ plugin.OnRewardRedeemed = (*Extension)(nil)
	_ plugin.OnScanDeduped    = (*Extension)(nil)
	_ plugin.OnScanFailed     = (*Extension)(nil)
	_ plugin.OnCommitConflict = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
// This matches chronicle.Emitter but is defined locally so that the
// audit_hook package does not import Chronicle directly — callers inject
// the concrete *chronicle.Chronicle at wiring time.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
// It mirrors chronicle/audit.Event but avoids a module dependency.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges Stampcard lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Card lifecycle hooks
// ──────────────────────────────────────────────────

// OnCardCreated implements plugin.OnCardCreated.
func (e *Extension) OnCardCreated(ctx context.Context, c interface{}) error {
	cardID, customerID := cardIDs(c)
	return e.record(ctx, ActionCardCreated, SeverityInfo, OutcomeSuccess,
		ResourceCard, cardID, CategoryLoyalty, nil,
		"event", "card_created",
		"customer_id", customerID,
	)
}

// OnCardPinned implements plugin.OnCardPinned.
func (e *Extension) OnCardPinned(ctx context.Context, cardID string, pinned bool) error {
	return e.record(ctx, ActionCardPinned, SeverityInfo, OutcomeSuccess,
		ResourceCard, cardID, CategoryLoyalty, nil,
		"event", "card_pinned",
		"pinned", pinned,
	)
}

// ──────────────────────────────────────────────────
// Stamp / reward hooks
// ──────────────────────────────────────────────────

// OnStampsAdded implements plugin.OnStampsAdded.
func (e *Extension) OnStampsAdded(ctx context.Context, c interface{}, count int) error {
	cardID, customerID := cardIDs(c)
	return e.record(ctx, ActionStampsAdded, SeverityInfo, OutcomeSuccess,
		ResourceCard, cardID, CategoryLoyalty, nil,
		"event", "stamps_added",
		"customer_id", customerID,
		"count", count,
	)
}

// OnRewardEarned implements plugin.OnRewardEarned.
func (e *Extension) OnRewardEarned(ctx context.Context, c interface{}, earned int) error {
	cardID, customerID := cardIDs(c)
	return e.record(ctx, ActionRewardEarned, SeverityInfo, OutcomeSuccess,
		ResourceCard, cardID, CategoryLoyalty, nil,
		"event", "reward_earned",
		"customer_id", customerID,
		"earned", earned,
	)
}

// OnRewardRedeemed implements plugin.OnRewardRedeemed.
func (e *Extension) OnRewardRedeemed(ctx context.Context, c interface{}) error {
	cardID, customerID := cardIDs(c)
	return e.record(ctx, ActionRewardRedeemed, SeverityInfo, OutcomeSuccess,
		ResourceCard, cardID, CategoryLoyalty, nil,
		"event", "reward_redeemed",
		"customer_id", customerID,
	)
}

// ──────────────────────────────────────────────────
// Scan session hooks
// ──────────────────────────────────────────────────

// OnScanDeduped implements plugin.OnScanDeduped.
func (e *Extension) OnScanDeduped(ctx context.Context, _ string) error {
	// Payload contents are not recorded to keep customer data out of the trail.
	return e.record(ctx, ActionScanDeduped, SeverityInfo, OutcomeSuccess,
		ResourceScan, "", CategoryScan, nil,
		"event", "scan_deduped",
	)
}

// OnScanFailed implements plugin.OnScanFailed.
func (e *Extension) OnScanFailed(ctx context.Context, _ string, err error) error {
	return e.record(ctx, ActionScanFailed, SeverityError, OutcomeFailure,
		ResourceScan, "", CategoryScan, err,
		"event", "scan_failed",
	)
}

// ──────────────────────────────────────────────────
// Store hooks
// ──────────────────────────────────────────────────

// OnCommitConflict implements plugin.OnCommitConflict.
func (e *Extension) OnCommitConflict(ctx context.Context, cardID string, attempt int) error {
	return e.record(ctx, ActionCommitConflict, SeverityWarning, OutcomePartial,
		ResourceStore, cardID, CategoryStorage, nil,
		"event", "commit_conflict",
		"attempt", attempt,
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// cardIDs extracts identifiers from the untyped hook payload.
func cardIDs(v interface{}) (cardID, customerID string) {
	if c, ok := v.(*card.Card); ok && c != nil {
		return c.ID, c.CustomerID
	}
	return "", ""
}

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
