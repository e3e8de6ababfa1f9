package stampcard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/xraph/stampcard/card"
	"github.com/xraph/stampcard/scan"
)

// State is the scan session state.
type State string

// Session states. A session accepts a new scan only while Idle.
const (
	StateIdle              State = "idle"
	StateParsing           State = "parsing"
	StateStampPending      State = "stamp_pending"
	StateRedemptionPending State = "redemption_pending"
	StateCommitting        State = "committing"
)

// Session defaults.
const (
	// DefaultDedupWindow absorbs repeated frames from a continuous camera
	// scan of the same code.
	DefaultDedupWindow = 3 * time.Second

	// DefaultCommitTimeout guards against a stuck commit: if a store call
	// never returns, the session resets to Idle and the late result, when it
	// eventually arrives, is discarded rather than applied.
	DefaultCommitTimeout = 30 * time.Second

	// maxActivities bounds the in-memory scan activity log.
	maxActivities = 10
)

// Activity is one entry in the session's bounded scan activity log. Failed
// commits are recorded here too, so the operator keeps a local record of
// attempts whose remote write never happened.
type Activity struct {
	Time    time.Time `json:"time"`
	Payload string    `json:"payload"`
	Action  string    `json:"action"`
	Err     string    `json:"err,omitempty"`
}

// ScanResult is what a scan produces for the operator UI.
type ScanResult struct {
	Intent *scan.Intent `json:"intent"`

	// AwaitingConfirmation is set for stamp intents: the operator must call
	// ConfirmStamps with a quantity before anything is committed. A single
	// scan can never silently apply an arbitrary stamp count.
	AwaitingConfirmation bool `json:"awaiting_confirmation"`

	// Card is set once a commit completed (redemption scans, and the return
	// value of ConfirmStamps).
	Card *card.Card `json:"card,omitempty"`
}

// Session is a per-operator-device scan processor. It serializes scans
// through a small state machine: duplicate frames are dropped, a new scan is
// ignored while another is being processed, and stamp issuance passes through
// an explicit quantity confirmation gate.
type Session struct {
	engine     *Engine
	cafeUserID string
	logger     *slog.Logger

	mu      sync.Mutex
	state   State
	pending *scan.Intent

	lastPayload   string
	lastPayloadAt time.Time

	// commitToken tags each commit attempt; a result whose token no longer
	// matches is discarded instead of being applied to a session that has
	// moved on.
	commitToken uint64
	watchdog    *time.Timer

	activities []Activity
	closed     bool

	dedupWindow   time.Duration
	commitTimeout time.Duration
	now           func() time.Time
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithDedupWindow sets how long an identical raw payload is considered a
// duplicate frame.
func WithDedupWindow(d time.Duration) SessionOption {
	return func(s *Session) {
		if d > 0 {
			s.dedupWindow = d
		}
	}
}

// WithCommitTimeout sets the stuck-commit watchdog timeout.
func WithCommitTimeout(d time.Duration) SessionOption {
	return func(s *Session) {
		if d > 0 {
			s.commitTimeout = d
		}
	}
}

// NewSession creates a scan session for an operator device at the given cafe.
func (e *Engine) NewSession(cafeUserID string, opts ...SessionOption) *Session {
	s := &Session{
		engine:        e,
		cafeUserID:    cafeUserID,
		logger:        e.logger,
		state:         StateIdle,
		dedupWindow:   DefaultDedupWindow,
		commitTimeout: DefaultCommitTimeout,
		now:           e.now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// State returns the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Activities returns a copy of the bounded scan activity log, newest-last.
func (s *Session) Activities() []Activity {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Activity, len(s.activities))
	copy(out, s.activities)
	return out
}

// HandleScan processes a raw scanned (or manually entered) payload.
//
// Stamp intents stop at the confirmation gate: the result carries the decoded
// intent with AwaitingConfirmation set, and nothing is committed until
// ConfirmStamps. Redemption intents commit immediately, since the redemption
// QR is generated from a customer-confirmed screen.
func (s *Session) HandleScan(ctx context.Context, raw string) (*ScanResult, error) {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	if s.state != StateIdle {
		s.mu.Unlock()
		return nil, ErrScanInProgress
	}

	now := s.now()
	if raw == s.lastPayload && now.Sub(s.lastPayloadAt) < s.dedupWindow {
		s.mu.Unlock()
		s.engine.plugins.EmitScanDeduped(ctx, raw)
		return nil, ErrDuplicateScan
	}
	s.lastPayload = raw
	s.lastPayloadAt = now

	s.state = StateParsing
	intent := scan.Parse(raw)

	if intent.Kind == scan.KindStamp {
		s.state = StateStampPending
		s.pending = intent
		s.mu.Unlock()

		return &ScanResult{Intent: intent, AwaitingConfirmation: true}, nil
	}

	// Redemption: no confirmation gate.
	s.state = StateRedemptionPending
	token := s.beginCommitLocked()
	s.mu.Unlock()

	c, err := s.engine.RedeemReward(ctx, intent.CustomerID, s.cafeUserID)
	return s.finishCommit(ctx, token, raw, "reward_redeemed", intent, c, err)
}

// ConfirmStamps commits the pending stamp intent with the operator-chosen
// quantity (1 to MaxStampsPerScan). An invalid count leaves the confirmation
// pending so the operator can correct it.
func (s *Session) ConfirmStamps(ctx context.Context, count int) (*ScanResult, error) {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	if s.state != StateStampPending || s.pending == nil {
		s.mu.Unlock()
		return nil, ErrNoPendingStamp
	}
	if count < 1 || count > MaxStampsPerScan {
		s.mu.Unlock()
		return nil, ErrInvalidStampCount
	}

	intent := s.pending
	raw := s.lastPayload
	token := s.beginCommitLocked()
	s.mu.Unlock()

	c, err := s.engine.AddStamps(ctx, intent.CustomerID, s.cafeUserID, count)
	return s.finishCommit(ctx, token, raw, "stamp_added", intent, c, err)
}

// Cancel abandons a pending confirmation and returns the session to Idle.
// It has no effect on a commit already in flight.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateStampPending || s.state == StateRedemptionPending {
		s.state = StateIdle
		s.pending = nil
	}
}

// Close permanently closes the session.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.state = StateIdle
	s.pending = nil
	if s.watchdog != nil {
		s.watchdog.Stop()
	}
}

// beginCommitLocked transitions to Committing, mints a commit token, and arms
// the stuck-commit watchdog. Caller must hold s.mu.
func (s *Session) beginCommitLocked() uint64 {
	s.state = StateCommitting
	s.pending = nil
	s.commitToken++
	token := s.commitToken

	if s.watchdog != nil {
		s.watchdog.Stop()
	}
	s.watchdog = time.AfterFunc(s.commitTimeout, func() {
		s.abandonCommit(token)
	})

	return token
}

// abandonCommit resets a session whose commit never returned. The in-flight
// request is not cancelled; its result is discarded by the token check when
// it eventually resolves.
func (s *Session) abandonCommit(token uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateCommitting || s.commitToken != token {
		return
	}

	s.state = StateIdle
	s.recordActivityLocked(Activity{
		Time:    s.now(),
		Payload: s.lastPayload,
		Action:  "commit_abandoned",
		Err:     ErrCommitAbandoned.Error(),
	})

	s.logger.Warn("scan commit abandoned by watchdog",
		"cafe_user_id", s.cafeUserID,
	)
}

// finishCommit applies a commit result to the session, unless the watchdog
// already moved the session on.
func (s *Session) finishCommit(ctx context.Context, token uint64, raw, action string, intent *scan.Intent, c *card.Card, err error) (*ScanResult, error) {
	s.mu.Lock()

	if s.watchdog != nil {
		s.watchdog.Stop()
	}

	if s.state != StateCommitting || s.commitToken != token {
		// The watchdog reset this session while the request was in flight.
		s.mu.Unlock()
		return nil, ErrCommitAbandoned
	}

	s.state = StateIdle

	activity := Activity{
		Time:    s.now(),
		Payload: raw,
		Action:  action,
	}
	if err != nil {
		activity.Err = err.Error()
	}
	s.recordActivityLocked(activity)
	s.mu.Unlock()

	if err != nil {
		s.engine.plugins.EmitScanFailed(ctx, raw, err)
		s.logger.Warn("scan commit failed",
			"cafe_user_id", s.cafeUserID,
			"action", action,
			"error", err,
		)
		return nil, err
	}

	return &ScanResult{Intent: intent, Card: c}, nil
}

// recordActivityLocked appends to the bounded activity log, dropping the
// oldest entries. Caller must hold s.mu.
func (s *Session) recordActivityLocked(a Activity) {
	s.activities = append(s.activities, a)
	if len(s.activities) > maxActivities {
		s.activities = s.activities[len(s.activities)-maxActivities:]
	}
}
