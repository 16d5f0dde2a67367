package authkit

import (
	"fmt"
	"time"

	"github.com/conducta/authkit/session"
	"github.com/conducta/authkit/throttle"
)

// Config defines gateway policy. [New] seeds the Builder with the
// defaults; [Builder.WithConfig] replaces the whole tree, and Build
// validates the result rather than backfilling zeroes, so a
// zero-valued policy is rejected, not silently defaulted. Session
// durations are the one exception: the session store fills its own
// zero durations.
type Config struct {
	Throttle ThrottleConfig
	Session  session.Config
	Lockout  LockoutConfig
	Reset    ResetConfig
	Password PasswordConfig
	Audit    AuditConfig
	Metrics  MetricsConfig

	// StoreCallTimeout bounds every credential-store and session-slot
	// call; a deadline hit surfaces as ErrPersistence. Zero disables
	// the bound (a hung dependency then hangs the operation).
	StoreCallTimeout time.Duration
}

// ThrottleConfig names the fixed-window policies per call site.
// Policies are plain values passed in here, not global singletons, so
// tests and deployments swap them freely.
type ThrottleConfig struct {
	Login throttle.Policy
	API   throttle.Policy
	Reset throttle.Policy

	// SweepInterval drives the background sweeper when the gateway
	// owns one. Zero keeps the sweeper stopped; expired windows are
	// then only replaced lazily.
	SweepInterval time.Duration
}

// LockoutConfig controls durable per-account lockout. This is policy
// stored with the account, not the process-local throttle; the two
// are independent, stacked defenses.
type LockoutConfig struct {
	Threshold int
	Duration  time.Duration
}

// ResetConfig controls password-reset tokens.
type ResetConfig struct {
	TokenTTL time.Duration
}

// PasswordConfig controls new-password policy.
type PasswordConfig struct {
	MinLength int
}

// AuditConfig tunes the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig tunes the in-process counters.
type MetricsConfig struct {
	Enabled bool
}

func defaultConfig() Config {
	return Config{
		Throttle: ThrottleConfig{
			Login: throttle.LoginPolicy,
			API:   throttle.APIPolicy,
			Reset: throttle.ResetPolicy,
		},
		Session: session.Config{
			Duration:       session.DefaultDuration,
			ActivityWindow: session.DefaultActivityWindow,
			Renewal:        session.RenewAlways,
		},
		Lockout: LockoutConfig{
			Threshold: 5,
			Duration:  time.Hour,
		},
		Reset: ResetConfig{
			TokenTTL: 24 * time.Hour,
		},
		Password: PasswordConfig{
			MinLength: 10,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func validateConfig(cfg Config) error {
	for _, p := range []throttle.Policy{cfg.Throttle.Login, cfg.Throttle.API, cfg.Throttle.Reset} {
		if p.MaxAttempts <= 0 {
			return fmt.Errorf("%w: throttle policy %q needs MaxAttempts > 0", ErrConfiguration, p.Name)
		}
		if p.Window <= 0 {
			return fmt.Errorf("%w: throttle policy %q needs Window > 0", ErrConfiguration, p.Name)
		}
	}
	if cfg.Lockout.Threshold <= 0 {
		return fmt.Errorf("%w: lockout threshold must be > 0", ErrConfiguration)
	}
	if cfg.Lockout.Duration <= 0 {
		return fmt.Errorf("%w: lockout duration must be > 0", ErrConfiguration)
	}
	if cfg.Reset.TokenTTL <= 0 {
		return fmt.Errorf("%w: reset token TTL must be > 0", ErrConfiguration)
	}
	if cfg.Session.Duration < 0 || cfg.Session.ActivityWindow < 0 {
		return fmt.Errorf("%w: session durations must not be negative", ErrConfiguration)
	}
	if cfg.Password.MinLength < 0 {
		return fmt.Errorf("%w: password min length must not be negative", ErrConfiguration)
	}
	if cfg.StoreCallTimeout < 0 {
		return fmt.Errorf("%w: store call timeout must not be negative", ErrConfiguration)
	}
	return nil
}
