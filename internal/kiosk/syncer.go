package kiosk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jmorrell/narthex/internal/domain/checkin"
	"github.com/jmorrell/narthex/internal/metrics"
)

// State is the connectivity state of the kiosk.
type State int

const (
	StateOnline State = iota
	StateOffline
	StateSyncing
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateOnline:
		return "online"
	case StateOffline:
		return "offline"
	case StateSyncing:
		return "syncing"
	default:
		return "unknown"
	}
}

// API is the server surface the syncer drives.
type API interface {
	Ping(ctx context.Context) bool
	CheckIn(ctx context.Context, items []checkin.RequestItem) (*checkin.BatchResult, error)
}

// RetryPolicy bounds replay attempts for transport failures. Backoff doubles
// per attempt from Base up to Cap.
type RetryPolicy struct {
	MaxAttempts int
	Base        time.Duration
	Cap         time.Duration
}

// Delay returns the backoff before the given (1-based) attempt.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	d := p.Base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= p.Cap {
			return p.Cap
		}
	}
	if d > p.Cap {
		return p.Cap
	}
	return d
}

// SessionState is the kiosk's transient per-family UI cache. A privacy reset
// clears it; the offline queue is deliberately not part of it.
type SessionState struct {
	mu     sync.Mutex
	values map[string]string
}

// NewSessionState creates an empty cache.
func NewSessionState() *SessionState {
	return &SessionState{values: make(map[string]string)}
}

// Set stores a value.
func (s *SessionState) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Get reads a value.
func (s *SessionState) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// Clear drops everything.
func (s *SessionState) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string]string)
}

// Syncer is the offline queue state machine: Online → Offline when the
// connectivity probe fails, Offline → Syncing when it recovers, Syncing →
// Online once the queue drains. One replay is in flight at a time, in
// original submission order, and a cycle aborts only between items.
type Syncer struct {
	store   *Store
	client  API
	policy  RetryPolicy
	session *SessionState
	logger  *slog.Logger

	mu           sync.Mutex
	state        State
	backoffUntil time.Time

	// OnResolved, when set, receives each entry's terminal outcome: the
	// result for business outcomes, the error for gave-up transport
	// failures.
	OnResolved func(entry Entry, res *checkin.Result, err error)
}

// NewSyncer creates a syncer over a durable store and an API client.
func NewSyncer(store *Store, client API, policy RetryPolicy, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 5
	}
	if policy.Base <= 0 {
		policy.Base = time.Second
	}
	if policy.Cap <= 0 {
		policy.Cap = time.Minute
	}
	return &Syncer{
		store:   store,
		client:  client,
		policy:  policy,
		session: NewSessionState(),
		logger:  logger,
		state:   StateOnline,
	}
}

// State returns the current connectivity state.
func (s *Syncer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Syncer) setState(st State) {
	s.mu.Lock()
	prev := s.state
	s.state = st
	s.mu.Unlock()
	if prev != st {
		s.logger.Info("kiosk state change", "from", prev.String(), "to", st.String())
	}
}

// Session exposes the transient UI cache.
func (s *Syncer) Session() *SessionState {
	return s.session
}

// PrivacyReset clears locally cached session state after an idle timeout.
// Queued check-ins represent real, not-yet-confirmed admissions and are
// never discarded here.
func (s *Syncer) PrivacyReset() {
	s.session.Clear()
}

// Submit sends the item directly when online, falling back to the queue on a
// transport failure. The idempotency key is generated here if the caller
// didn't set one, so a later replay cannot double-apply.
func (s *Syncer) Submit(ctx context.Context, item checkin.RequestItem) (*checkin.Result, error) {
	if item.IdempotencyKey == "" {
		item.IdempotencyKey = uuid.NewString()
	}

	if s.State() != StateOnline {
		if err := s.store.Enqueue(ctx, item); err != nil {
			return nil, err
		}
		return nil, nil
	}

	batch, err := s.client.CheckIn(ctx, []checkin.RequestItem{item})
	if err != nil {
		if errors.Is(err, ErrServerUnavailable) {
			s.setState(StateOffline)
			if qerr := s.store.Enqueue(ctx, item); qerr != nil {
				return nil, qerr
			}
			return nil, nil
		}
		return nil, err
	}
	if len(batch.Results) != 1 {
		return nil, fmt.Errorf("unexpected result count %d", len(batch.Results))
	}
	return &batch.Results[0], nil
}

// Probe checks connectivity and drives the state machine: a failed probe
// goes Offline, a successful one triggers a sync when anything is queued.
func (s *Syncer) Probe(ctx context.Context) error {
	if !s.client.Ping(ctx) {
		s.setState(StateOffline)
		return nil
	}
	s.mu.Lock()
	waiting := time.Now().Before(s.backoffUntil)
	s.mu.Unlock()
	if waiting {
		return nil
	}
	pending, err := s.store.Len(ctx)
	if err != nil {
		return err
	}
	if pending == 0 {
		s.setState(StateOnline)
		return nil
	}
	return s.Sync(ctx)
}

// Run drives periodic probes until the context is cancelled.
func (s *Syncer) Run(ctx context.Context, probeInterval time.Duration) {
	if probeInterval <= 0 {
		probeInterval = 10 * time.Second
	}
	ticker := time.NewTicker(probeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Probe(ctx); err != nil {
				s.logger.Error("probe failed", "error", err)
			}
		}
	}
}

// Sync drains the queue one entry at a time in submission order. A terminal
// business rejection dequeues and is surfaced rather than retried, since a
// full room does not empty by waiting. Transport failures keep the entry queued
// up to the retry bound, then surface as a manual-intervention failure.
// Cancellation takes effect between items, never mid-replay.
func (s *Syncer) Sync(ctx context.Context) error {
	s.setState(StateSyncing)

	entries, err := s.store.Pending(ctx)
	if err != nil {
		s.setState(StateOffline)
		return err
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			s.setState(StateOffline)
			return ctx.Err()
		}

		ok, err := s.replay(ctx, entry)
		if err != nil {
			// Server unreachable again; stop the cycle, entries stay queued.
			s.setState(StateOffline)
			return nil
		}
		if !ok {
			continue
		}
	}

	s.setState(StateOnline)
	return nil
}

// replay resolves one entry. The returned error is non-nil only for a
// transport failure that should abort the cycle.
func (s *Syncer) replay(ctx context.Context, entry Entry) (bool, error) {
	batch, err := s.client.CheckIn(ctx, []checkin.RequestItem{entry.Item})
	if err != nil {
		attempts := entry.Attempts + 1
		if attempts >= s.policy.MaxAttempts {
			// Out of retries: surface for manual intervention and stop
			// replaying it.
			s.logger.Error("giving up on queued check-in",
				"idempotency_key", entry.IdempotencyKey,
				"attempts", attempts,
				"error", err)
			metrics.SyncReplays.WithLabelValues("gave_up").Inc()
			if rerr := s.store.Resolve(ctx, entry.ID); rerr != nil {
				return false, rerr
			}
			if s.OnResolved != nil {
				s.OnResolved(entry, nil, err)
			}
			return true, nil
		}
		if rerr := s.store.RecordFailure(ctx, entry.ID, err.Error()); rerr != nil {
			return false, rerr
		}
		s.mu.Lock()
		s.backoffUntil = time.Now().Add(s.policy.Delay(attempts))
		s.mu.Unlock()
		metrics.SyncReplays.WithLabelValues("retry").Inc()
		return false, err
	}

	if len(batch.Results) != 1 {
		return false, fmt.Errorf("unexpected result count %d", len(batch.Results))
	}
	res := batch.Results[0]

	switch {
	case res.Success:
		// AlreadyCheckedIn counts as success: the earlier replay landed.
		metrics.SyncReplays.WithLabelValues(res.Outcome.String()).Inc()
	case res.Outcome == checkin.OutcomeInternalError:
		// Transient server-side failure; keep it queued.
		attempts := entry.Attempts + 1
		if attempts < s.policy.MaxAttempts {
			if rerr := s.store.RecordFailure(ctx, entry.ID, res.Message); rerr != nil {
				return false, rerr
			}
			metrics.SyncReplays.WithLabelValues("retry").Inc()
			return false, nil
		}
		metrics.SyncReplays.WithLabelValues("gave_up").Inc()
	default:
		// Genuine business rejection: terminal, surfaced, not retried.
		s.logger.Warn("queued check-in rejected",
			"idempotency_key", entry.IdempotencyKey,
			"outcome", res.Outcome.String())
		metrics.SyncReplays.WithLabelValues(res.Outcome.String()).Inc()
	}

	if err := s.store.Resolve(ctx, entry.ID); err != nil {
		return false, err
	}
	if s.OnResolved != nil {
		s.OnResolved(entry, &res, nil)
	}
	return true, nil
}
