package authkit

import (
	"context"
	"strings"
	"time"
)

const (
	eventLoginSuccess     = "login_success"
	eventLoginFailure     = "login_failure"
	eventLoginRateLimited = "login_rate_limited"
	eventLoginLocked      = "login_locked"
	eventLogout           = "logout"
)

// Login runs the credential-check pipeline and, on success, saves a
// session snapshot and returns the authenticated user's summary.
//
// The guards run strictly in order: input validation, attempt
// throttle, account fetch, stored-lockout check, failed-attempt
// threshold, password verification. Unknown usernames, wrong
// passwords, and inactive accounts all fail with the same
// [ErrInvalidCredentials].
func (g *Gateway) Login(ctx context.Context, username, pass string) (user *UserSummary, err error) {
	defer g.guard("login", &err)

	// Step 1: input validation, before the limiter or store see
	// anything.
	username = strings.TrimSpace(username)
	if username == "" || pass == "" {
		g.metricInc(MetricLoginValidationFailed)
		return nil, ErrValidation
	}

	// Step 2: process-local attempt throttle, keyed by username plus
	// client origin. A denied check consumes nothing and does not
	// extend the window.
	key := username + ":" + clientOriginFromContext(ctx)
	if !g.loginLimiter.Check(key) {
		rateErr := &RateLimitError{RetryAfterMinutes: g.retryAfterMinutes(g.loginLimiter, key)}
		g.metricInc(MetricLoginRateLimited)
		g.emit(ctx, eventLoginRateLimited, false, "", username, rateErr, nil)
		return nil, rateErr
	}

	// Step 3: fetch the account. Absent and inactive are both
	// indistinguishable from a wrong password.
	account, err := g.fetchByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if account == nil || !account.Active {
		g.metricInc(MetricLoginFailure)
		g.emit(ctx, eventLoginFailure, false, "", username, ErrInvalidCredentials, map[string]string{
			"reason": "account_missing_or_inactive",
		})
		return nil, ErrInvalidCredentials
	}

	now := g.now()

	// Step 4: stored lockout.
	if account.LockedUntil != nil && account.LockedUntil.After(now) {
		lockErr := &LockedError{Until: *account.LockedUntil}
		g.metricInc(MetricLoginLocked)
		g.emit(ctx, eventLoginLocked, false, account.ID, username, lockErr, nil)
		return nil, lockErr
	}

	// Step 5: failed-attempt threshold, evaluated before password
	// verification and independent of step 4's stored value. A count
	// that crossed the threshold on a prior request whose lockout
	// write has not propagated gets re-locked here.
	if account.FailedAttempts >= g.config.Lockout.Threshold {
		until := now.Add(g.config.Lockout.Duration)
		if err := g.writeLockout(ctx, account, until); err != nil {
			return nil, err
		}
		lockErr := &LockedError{Until: until}
		g.metricInc(MetricLoginLocked)
		g.emit(ctx, eventLoginLocked, false, account.ID, username, lockErr, map[string]string{
			"reason": "threshold_reached",
		})
		return nil, lockErr
	}

	// Step 6: opaque verification. The verifier's presence was
	// enforced at Build; a runtime failure is a dependency failure,
	// never a trigger for a degraded comparison.
	callCtx, cancel := g.storeCtx(ctx)
	ok, err := g.verifier.VerifyCredentials(callCtx, username, pass)
	cancel()
	if err != nil {
		g.emit(ctx, eventLoginFailure, false, account.ID, username, ErrPersistence, map[string]string{
			"reason": "verifier_unavailable",
		})
		return nil, g.persistence("verify credentials", err)
	}

	// Step 7: wrong password. Count the failure; the throttle counter
	// stays untouched (the Check in step 2 already consumed this
	// attempt).
	if !ok {
		failed := account.FailedAttempts + 1
		if err := g.updateAccount(ctx, account.ID, AccountUpdate{FailedAttempts: &failed}); err != nil {
			return nil, err
		}
		g.metricInc(MetricLoginFailure)
		g.emit(ctx, eventLoginFailure, false, account.ID, username, ErrInvalidCredentials, map[string]string{
			"reason": "password_mismatch",
		})
		return nil, ErrInvalidCredentials
	}

	// Step 8: success. Restore the throttle budget, clear the failure
	// counter, record access time, and persist the session snapshot.
	g.loginLimiter.Reset(key)

	zero := 0
	if err := g.updateAccount(ctx, account.ID, AccountUpdate{
		FailedAttempts: &zero,
		LastAccess:     &now,
	}); err != nil {
		return nil, err
	}

	summary := account.Summary()

	callCtx, cancel = g.storeCtx(ctx)
	err = g.Sessions(ctx).Save(callCtx, summary)
	cancel()
	if err != nil {
		return nil, g.persistence("save session", err)
	}

	g.metricInc(MetricSessionSaved)
	g.metricInc(MetricLoginSuccess)
	g.emit(ctx, eventLoginSuccess, true, account.ID, username, nil, nil)

	return &summary, nil
}

// Logout clears the session slot selected by ctx. It always
// succeeds: a failing slot is logged and audited, not surfaced, since
// the client is abandoning the session either way.
func (g *Gateway) Logout(ctx context.Context) {
	var err error
	defer g.guard("logout", &err)

	callCtx, cancel := g.storeCtx(ctx)
	err = g.Sessions(ctx).Clear(callCtx)
	cancel()
	if err != nil {
		g.persistence("clear session", err)
		g.emit(ctx, eventLogout, false, "", "", ErrPersistence, nil)
		return
	}

	g.metricInc(MetricSessionCleared)
	g.emit(ctx, eventLogout, true, "", "", nil, nil)
}

func (g *Gateway) fetchByUsername(ctx context.Context, username string) (*AccountRecord, error) {
	callCtx, cancel := g.storeCtx(ctx)
	defer cancel()

	account, err := g.store.FetchAccountByUsername(callCtx, username)
	if err != nil {
		return nil, g.persistence("fetch account by username", err)
	}
	return account, nil
}

func (g *Gateway) updateAccount(ctx context.Context, accountID string, update AccountUpdate) error {
	callCtx, cancel := g.storeCtx(ctx)
	defer cancel()

	if err := g.store.UpdateAccount(callCtx, accountID, update); err != nil {
		return g.persistence("update account", err)
	}
	return nil
}

// writeLockout persists the lockout timestamp. When the store
// implements [ConditionalAccountUpdater] the write is conditional on
// the failed-attempt count we just observed, so two racing requests
// cannot both perform it; losing the race is fine, the lock is
// already in place.
func (g *Gateway) writeLockout(ctx context.Context, account *AccountRecord, until time.Time) error {
	update := AccountUpdate{LockedUntil: &until}

	callCtx, cancel := g.storeCtx(ctx)
	defer cancel()

	if cas, ok := g.store.(ConditionalAccountUpdater); ok {
		if _, err := cas.UpdateAccountIf(callCtx, account.ID, account.FailedAttempts, update); err != nil {
			return g.persistence("lock account", err)
		}
		return nil
	}

	if err := g.store.UpdateAccount(callCtx, account.ID, update); err != nil {
		return g.persistence("lock account", err)
	}
	return nil
}
