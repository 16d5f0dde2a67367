package session

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// RenewalPolicy selects how UpdateActivity treats the expiration.
type RenewalPolicy int

const (
	// RenewAlways extends the session on every activity call while a
	// live snapshot exists. This matches the shipped behavior of the
	// storage layer this store replaces, whose recency guard compared
	// the activity timestamp against itself and so never fired.
	RenewAlways RenewalPolicy = iota

	// RenewWithinActivityWindow extends the session only when the
	// previously recorded activity was within ActivityWindow of now.
	// A call outside the window still records the new activity time
	// but leaves the expiration untouched.
	RenewWithinActivityWindow
)

// DefaultDuration is the absolute session lifetime applied when the
// config leaves Duration zero.
const DefaultDuration = 30 * time.Minute

// DefaultActivityWindow is the recency window used by
// [RenewWithinActivityWindow] when the config leaves it zero.
const DefaultActivityWindow = 5 * time.Minute

// Config tunes a [Store].
type Config struct {
	Duration       time.Duration
	ActivityWindow time.Duration
	Renewal        RenewalPolicy
}

// Store persists exactly one [Snapshot] per client context with
// absolute expiration. Expiry is detected lazily on read; there is no
// background timer.
type Store struct {
	slot Slot
	cfg  Config
	now  func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the store's time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates a Store over the given slot.
func NewStore(slot Slot, cfg Config, opts ...Option) *Store {
	if cfg.Duration <= 0 {
		cfg.Duration = DefaultDuration
	}
	if cfg.ActivityWindow <= 0 {
		cfg.ActivityWindow = DefaultActivityWindow
	}
	s := &Store{
		slot: slot,
		cfg:  cfg,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save writes a new snapshot for user with a full lifetime,
// overwriting any existing snapshot unconditionally. A second login
// from the same context replaces the first.
func (s *Store) Save(ctx context.Context, user UserSummary) error {
	now := s.now()
	snap := &Snapshot{
		User:         user,
		ExpiresAt:    now.Add(s.cfg.Duration).Unix(),
		LastActivity: now.Unix(),
	}
	return s.write(ctx, snap)
}

// Get reads the stored snapshot. An expired snapshot (or one whose
// expiration does not exceed its last activity) clears the slot and
// returns nil. An empty slot returns nil without error.
func (s *Store) Get(ctx context.Context) (*Snapshot, error) {
	snap, err := s.read(ctx)
	if err != nil || snap == nil {
		return nil, err
	}

	if s.expired(snap) {
		if err := s.slot.Delete(ctx); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return snap, nil
}

// UpdateActivity records activity on the current snapshot. Under
// [RenewAlways] it also pushes the expiration a full lifetime out;
// under [RenewWithinActivityWindow] it does so only when the previous
// activity was recent enough. No-op when no live snapshot exists.
func (s *Store) UpdateActivity(ctx context.Context) error {
	snap, err := s.Get(ctx)
	if err != nil || snap == nil {
		return err
	}

	now := s.now()
	renew := true
	if s.cfg.Renewal == RenewWithinActivityWindow {
		last := time.Unix(snap.LastActivity, 0)
		renew = now.Sub(last) <= s.cfg.ActivityWindow
	}

	snap.LastActivity = now.Unix()
	if renew {
		snap.ExpiresAt = now.Add(s.cfg.Duration).Unix()
	}
	return s.write(ctx, snap)
}

// Extend unconditionally grants the current snapshot a full lifetime
// from now. This is the unambiguous renewal path; prefer it over
// UpdateActivity in new call sites.
func (s *Store) Extend(ctx context.Context) error {
	snap, err := s.Get(ctx)
	if err != nil {
		return err
	}
	if snap == nil {
		return nil
	}

	now := s.now()
	snap.ExpiresAt = now.Add(s.cfg.Duration).Unix()
	snap.LastActivity = now.Unix()
	return s.write(ctx, snap)
}

// Clear deletes the snapshot. Slot implementations also remove any
// legacy compatibility keys they carry.
func (s *Store) Clear(ctx context.Context) error {
	return s.slot.Delete(ctx)
}

// IsExpired reports whether the stored snapshot has expired. An empty
// slot reports true. The slot is not modified; the next Get performs
// the actual cleanup.
func (s *Store) IsExpired(ctx context.Context) (bool, error) {
	snap, err := s.read(ctx)
	if err != nil {
		return false, err
	}
	if snap == nil {
		return true, nil
	}
	return s.expired(snap), nil
}

// TimeRemaining reports whole minutes until expiry, never negative.
func (s *Store) TimeRemaining(ctx context.Context) (int, error) {
	snap, err := s.read(ctx)
	if err != nil {
		return 0, err
	}
	if snap == nil {
		return 0, nil
	}

	remaining := time.Unix(snap.ExpiresAt, 0).Sub(s.now())
	if remaining <= 0 {
		return 0, nil
	}
	return int(remaining / time.Minute), nil
}

func (s *Store) expired(snap *Snapshot) bool {
	if snap.ExpiresAt <= snap.LastActivity {
		return true
	}
	return s.now().Unix() > snap.ExpiresAt
}

func (s *Store) read(ctx context.Context) (*Snapshot, error) {
	data, err := s.slot.Read(ctx)
	if err != nil {
		if errors.Is(err, ErrSlotEmpty) {
			return nil, nil
		}
		return nil, err
	}

	snap, err := Decode(data)
	if err != nil {
		// A corrupt slot is unrecoverable; drop it so the next login
		// starts clean.
		if delErr := s.slot.Delete(ctx); delErr != nil {
			return nil, delErr
		}
		return nil, nil
	}
	return snap, nil
}

func (s *Store) write(ctx context.Context, snap *Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	ttl := time.Unix(snap.ExpiresAt, 0).Sub(s.now())
	if ttl <= 0 {
		ttl = time.Second
	}
	return s.slot.Write(ctx, data, ttl)
}
