package authkit

import (
	"fmt"
	"time"

	internalaudit "github.com/conducta/authkit/internal/audit"
	internalmetrics "github.com/conducta/authkit/internal/metrics"
	"github.com/conducta/authkit/password"
	"github.com/conducta/authkit/session"
	"github.com/conducta/authkit/throttle"
)

// Builder assembles a [Gateway]. Construction is allocation-only
// until Build; no I/O happens before the first Gateway method call.
type Builder struct {
	config    Config
	store     CredentialStore
	verifier  CredentialVerifier
	hasher    PasswordHasher
	slots     session.SlotFactory
	auditSink AuditSink
	now       func() time.Time

	built bool
}

// New creates a Builder seeded with default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithCredentialStore sets the external system of record. Required.
func (b *Builder) WithCredentialStore(store CredentialStore) *Builder {
	b.store = store
	return b
}

// WithVerifier sets the opaque password-verification capability.
// Required: Build fails with [ErrConfiguration] when absent. There is
// no degraded comparison path.
func (b *Builder) WithVerifier(v CredentialVerifier) *Builder {
	b.verifier = v
	return b
}

// WithPasswordHasher overrides the default argon2id hasher.
func (b *Builder) WithPasswordHasher(h PasswordHasher) *Builder {
	b.hasher = h
	return b
}

// WithSessionSlots sets the factory resolving each client context's
// session storage location. Defaults to an in-memory factory;
// servers fronting real clients supply
// [session.NewRedisSlotFactory] or their own implementation.
func (b *Builder) WithSessionSlots(factory session.SlotFactory) *Builder {
	b.slots = factory
	return b
}

// WithSessionSlot routes every client context to one fixed slot.
// Suitable for single-context processes only; multi-client servers
// use [Builder.WithSessionSlots].
func (b *Builder) WithSessionSlot(slot session.Slot) *Builder {
	b.slots = session.FixedSlotFactory(slot)
	return b
}

// WithAuditSink sets the audit event destination.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithClock overrides the gateway's time source. Tests use this to
// advance throttle windows and session expiry deterministically.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Build validates the configuration and wires the Gateway. A missing
// credential store or verifier is [ErrConfiguration].
func (b *Builder) Build() (*Gateway, error) {
	if b.built {
		return nil, fmt.Errorf("%w: builder already used", ErrConfiguration)
	}
	if err := validateConfig(b.config); err != nil {
		return nil, err
	}
	if b.store == nil {
		return nil, fmt.Errorf("%w: credential store is required", ErrConfiguration)
	}
	if b.verifier == nil {
		return nil, fmt.Errorf("%w: credential verifier is required", ErrConfiguration)
	}

	now := b.now
	if now == nil {
		now = time.Now
	}

	hasher := b.hasher
	if hasher == nil {
		h, err := password.NewHasher(password.DefaultParams())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
		}
		hasher = h
	}

	slots := b.slots
	if slots == nil {
		slots = session.NewMemorySlotFactory()
	}

	loginLimiter := throttle.New(b.config.Throttle.Login, throttle.WithClock(now))
	apiLimiter := throttle.New(b.config.Throttle.API, throttle.WithClock(now))
	resetLimiter := throttle.New(b.config.Throttle.Reset, throttle.WithClock(now))

	var sweeper *throttle.Sweeper
	if b.config.Throttle.SweepInterval > 0 {
		sweeper = throttle.NewSweeper(
			b.config.Throttle.SweepInterval,
			loginLimiter, apiLimiter, resetLimiter,
		)
		sweeper.Start()
	}

	g := &Gateway{
		config:       b.config,
		store:        b.store,
		verifier:     b.verifier,
		hasher:       hasher,
		slots:        slots,
		loginLimiter: loginLimiter,
		apiLimiter:   apiLimiter,
		resetLimiter: resetLimiter,
		sweeper:      sweeper,
		audit: internalaudit.NewDispatcher(internalaudit.Config{
			Enabled:    b.config.Audit.Enabled,
			BufferSize: b.config.Audit.BufferSize,
			DropIfFull: b.config.Audit.DropIfFull,
		}, b.auditSink),
		metrics: internalmetrics.New(internalmetrics.Config{
			Enabled: b.config.Metrics.Enabled,
		}),
		now: now,
	}

	b.built = true
	return g, nil
}
