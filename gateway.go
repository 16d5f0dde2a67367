package authkit

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	internalaudit "github.com/conducta/authkit/internal/audit"
	"github.com/conducta/authkit/session"
	"github.com/conducta/authkit/throttle"
)

// Gateway orchestrates login, logout, password-reset request, and
// password change by composing the attempt throttle, the session
// store, and the external credential store. Each operation is a short
// pipeline of guarded steps with early exit; none of them propagates
// a panic.
type Gateway struct {
	config       Config
	store        CredentialStore
	verifier     CredentialVerifier
	hasher       PasswordHasher
	slots        session.SlotFactory
	loginLimiter *throttle.Limiter
	apiLimiter   *throttle.Limiter
	resetLimiter *throttle.Limiter
	sweeper      *throttle.Sweeper
	audit        *internalaudit.Dispatcher
	metrics      *Metrics
	now          func() time.Time
}

// Close stops the background sweeper and flushes the audit
// dispatcher.
func (g *Gateway) Close() {
	if g == nil {
		return
	}
	if g.sweeper != nil {
		g.sweeper.Stop()
	}
	if g.audit != nil {
		g.audit.Close()
	}
}

// Sessions returns the session store addressing the slot selected by
// ctx (see [WithSessionContext]). Callers use it for activity and
// expiry calls that do not pass through a gateway operation (renewal
// pings, remaining-time displays). Two contexts carrying different
// identifiers hold independent snapshots.
func (g *Gateway) Sessions(ctx context.Context) *session.Store {
	slot := g.slots(sessionContextFromContext(ctx))
	return session.NewStore(slot, g.config.Session, session.WithClock(g.now))
}

// AllowAPICall consumes one attempt from the generic API throttle for
// key. Returns a [RateLimitError] when the budget is exhausted.
func (g *Gateway) AllowAPICall(key string) error {
	if g.apiLimiter.Check(key) {
		return nil
	}
	return &RateLimitError{RetryAfterMinutes: g.retryAfterMinutes(g.apiLimiter, key)}
}

// MetricsSnapshot copies the gateway's counters.
func (g *Gateway) MetricsSnapshot() MetricsSnapshot {
	if g == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return g.metrics.Snapshot()
}

// AuditDropped reports audit events discarded under backpressure.
func (g *Gateway) AuditDropped() uint64 {
	if g == nil {
		return 0
	}
	return g.audit.Dropped()
}

func (g *Gateway) metricInc(id MetricID) {
	g.metrics.Inc(id)
}

// guard converts an escaped panic into ErrInternal at the public
// boundary. The panic detail never reaches the caller.
func (g *Gateway) guard(op string, err *error) {
	if r := recover(); r != nil {
		log.Printf("authkit: panic in %s: %v", op, r)
		g.metricInc(MetricInternalError)
		*err = ErrInternal
	}
}

// storeCtx applies the configured per-call bound to dependency calls.
func (g *Gateway) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.config.StoreCallTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, g.config.StoreCallTimeout)
}

// persistence maps a dependency failure to the generic persistence
// error. The underlying detail is logged, not returned.
func (g *Gateway) persistence(op string, err error) error {
	log.Printf("authkit: %s: %v", op, err)
	return ErrPersistence
}

func (g *Gateway) emit(ctx context.Context, eventType string, success bool, accountID, username string, cause error, metadata map[string]string) {
	if g.audit == nil {
		return
	}

	event := AuditEvent{
		ID:        uuid.NewString(),
		Timestamp: g.now(),
		EventType: eventType,
		AccountID: accountID,
		Username:  username,
		Origin:    clientOriginFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if cause != nil {
		event.Error = cause.Error()
	}
	g.audit.Emit(ctx, event)
}

func (g *Gateway) retryAfterMinutes(l *throttle.Limiter, key string) int {
	wait := l.TimeUntilReset(key)
	if wait <= 0 {
		return 0
	}
	minutes := int((wait + time.Minute - 1) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
