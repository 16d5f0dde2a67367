package authkit

import (
	"context"
	"io"
	"time"

	internalaudit "github.com/conducta/authkit/internal/audit"
	internalmetrics "github.com/conducta/authkit/internal/metrics"
	"github.com/conducta/authkit/session"
	"github.com/rs/zerolog"
)

// UserSummary is the immutable projection of an account returned by
// [Gateway.Login] and stored inside a session snapshot.
type UserSummary = session.UserSummary

// SessionSnapshot is the persisted per-context session record.
type SessionSnapshot = session.Snapshot

// AccountRecord is the external account entity as the credential
// store presents it. authkit reads it, copies a [UserSummary] out of
// it, and writes back lockout state through [AccountUpdate]; it never
// owns the record.
type AccountRecord struct {
	ID          string
	Username    string
	Email       string
	DisplayName string
	Role        string
	Scope       string
	Active      bool

	FailedAttempts     int
	LockedUntil        *time.Time
	MustChangePassword bool
	LastAccess         *time.Time
}

// Summary builds the point-in-time projection stored in a session.
func (a *AccountRecord) Summary() UserSummary {
	return UserSummary{
		ID:          a.ID,
		Username:    a.Username,
		DisplayName: a.DisplayName,
		Role:        a.Role,
		Active:      a.Active,
		Scope:       a.Scope,
	}
}

// AccountUpdate is a partial account mutation. Nil fields are left
// unchanged by the store.
type AccountUpdate struct {
	FailedAttempts     *int
	LockedUntil        *time.Time
	LastAccess         *time.Time
	PasswordHash       *string
	MustChangePassword *bool
}

// CredentialStore is the system of record for accounts, password
// hashes, and lockout state. Fetch methods return (nil, nil) when no
// matching account exists; FetchAccountByUsername returns active
// accounts only.
type CredentialStore interface {
	FetchAccountByUsername(ctx context.Context, username string) (*AccountRecord, error)
	FetchAccountByEmail(ctx context.Context, email string) (*AccountRecord, error)
	UpdateAccount(ctx context.Context, accountID string, update AccountUpdate) error
	InsertPasswordResetToken(ctx context.Context, accountID string, tokenDigest [32]byte, expiresAt time.Time) error
}

// ConditionalAccountUpdater is an optional [CredentialStore]
// capability. When implemented, the lockout-threshold write becomes a
// compare-and-set on failedAttempts, so two racing failed logins
// cannot both perform the lock write. Returns false when the expected
// count no longer matches.
type ConditionalAccountUpdater interface {
	UpdateAccountIf(ctx context.Context, accountID string, expectFailedAttempts int, update AccountUpdate) (bool, error)
}

// CredentialVerifier is the opaque password-verification capability.
// It is required at Build: a missing verifier is [ErrConfiguration],
// never a fallback to plaintext comparison.
type CredentialVerifier interface {
	VerifyCredentials(ctx context.Context, username, password string) (bool, error)
}

// PasswordHasher hashes new passwords before they reach the
// credential store. The default is the password package's argon2id
// hasher.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// AuditEvent is a structured audit record emitted by the gateway.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the gateway's audit
// dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink writes JSON-encoded events to an [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// ZerologSink forwards audit events onto a zerolog logger.
type ZerologSink = internalaudit.ZerologSink

// NewChannelSink creates a [ChannelSink] with the given buffer size.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] writing to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// NewZerologSink creates a [ZerologSink] over the given logger.
func NewZerologSink(logger zerolog.Logger) *ZerologSink {
	return internalaudit.NewZerologSink(logger)
}

// MetricID identifies a counter in the in-process metrics system.
type MetricID = internalmetrics.MetricID

const (
	MetricLoginSuccess          = internalmetrics.MetricLoginSuccess
	MetricLoginFailure          = internalmetrics.MetricLoginFailure
	MetricLoginRateLimited      = internalmetrics.MetricLoginRateLimited
	MetricLoginLocked           = internalmetrics.MetricLoginLocked
	MetricLoginValidationFailed = internalmetrics.MetricLoginValidationFailed
	MetricSessionSaved          = internalmetrics.MetricSessionSaved
	MetricSessionCleared        = internalmetrics.MetricSessionCleared
	MetricResetRequested        = internalmetrics.MetricResetRequested
	MetricResetRateLimited      = internalmetrics.MetricResetRateLimited
	MetricPasswordChanged       = internalmetrics.MetricPasswordChanged
	MetricInternalError         = internalmetrics.MetricInternalError
)

// Metrics holds the gateway's atomic counters.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot = internalmetrics.Snapshot
