// Package observability provides a metrics extension for Stampcard that
// records lifecycle event counts via a pluggable MetricFactory.
package observability

import (
	"context"

	"github.com/xraph/stampcard/plugin"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin           = (*MetricsExtension)(nil)
	_ plugin.OnInit           = (*MetricsExtension)(nil)
	_ plugin.OnCardCreated    = (*MetricsExtension)(nil)
	_ plugin.OnCardPinned     = (*MetricsExtension)(nil)
	_ plugin.OnStampsAdded    = (*MetricsExtension)(nil)
	_ plugin.OnRewardEarned   = (*MetricsExtension)(nil)
	_ plugin.OnRewardRedeemed = (*MetricsExtension)(nil)
	_ plugin.OnScanDeduped    = (*MetricsExtension)(nil)
	_ plugin.OnScanFailed     = (*MetricsExtension)(nil)
	_ plugin.OnCommitConflict = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records system-wide lifecycle metrics.
// Register it as a Stampcard plugin to automatically track loyalty metrics.
type MetricsExtension struct {
	factory MetricFactory

	// Card metrics
	CardsCreated Counter
	CardsPinned  Counter

	// Stamp metrics
	StampsAdded    Counter
	StampBatchSize Histogram

	// Reward metrics
	RewardsEarned   Counter
	RewardsRedeemed Counter

	// Scan metrics
	ScansDeduped Counter
	ScansFailed  Counter

	// Store metrics
	CommitConflicts Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Card metrics
		CardsCreated: factory.Counter("stampcard.card.created"),
		CardsPinned:  factory.Counter("stampcard.card.pinned"),

		// Stamp metrics
		StampsAdded:    factory.Counter("stampcard.stamps.added"),
		StampBatchSize: factory.Histogram("stampcard.stamps.batch.size"),

		// Reward metrics
		RewardsEarned:   factory.Counter("stampcard.reward.earned"),
		RewardsRedeemed: factory.Counter("stampcard.reward.redeemed"),

		// Scan metrics
		ScansDeduped: factory.Counter("stampcard.scan.deduped"),
		ScansFailed:  factory.Counter("stampcard.scan.failed"),

		// Store metrics
		CommitConflicts: factory.Counter("stampcard.store.commit_conflicts"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	// No initialization needed
	return nil
}

// ──────────────────────────────────────────────────
// Card lifecycle hooks
// ──────────────────────────────────────────────────

// OnCardCreated implements plugin.OnCardCreated.
func (m *MetricsExtension) OnCardCreated(_ context.Context, _ interface{}) error {
	m.CardsCreated.Inc()
	return nil
}

// OnCardPinned implements plugin.OnCardPinned.
func (m *MetricsExtension) OnCardPinned(_ context.Context, _ string, pinned bool) error {
	if pinned {
		m.CardsPinned.Inc()
	}
	return nil
}

// ──────────────────────────────────────────────────
// Stamp / reward hooks
// ──────────────────────────────────────────────────

// OnStampsAdded implements plugin.OnStampsAdded.
func (m *MetricsExtension) OnStampsAdded(_ context.Context, _ interface{}, count int) error {
	m.StampsAdded.Add(float64(count))
	m.StampBatchSize.Observe(float64(count))
	return nil
}

// OnRewardEarned implements plugin.OnRewardEarned.
func (m *MetricsExtension) OnRewardEarned(_ context.Context, _ interface{}, earned int) error {
	m.RewardsEarned.Add(float64(earned))
	return nil
}

// OnRewardRedeemed implements plugin.OnRewardRedeemed.
func (m *MetricsExtension) OnRewardRedeemed(_ context.Context, _ interface{}) error {
	m.RewardsRedeemed.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Scan session hooks
// ──────────────────────────────────────────────────

// OnScanDeduped implements plugin.OnScanDeduped.
func (m *MetricsExtension) OnScanDeduped(_ context.Context, _ string) error {
	m.ScansDeduped.Inc()
	return nil
}

// OnScanFailed implements plugin.OnScanFailed.
func (m *MetricsExtension) OnScanFailed(_ context.Context, _ string, _ error) error {
	m.ScansFailed.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Store hooks
// ──────────────────────────────────────────────────

// OnCommitConflict implements plugin.OnCommitConflict.
func (m *MetricsExtension) OnCommitConflict(_ context.Context, _ string, _ int) error {
	m.CommitConflicts.Inc()
	return nil
}
