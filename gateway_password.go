package authkit

import (
	"context"
	"strings"

	"github.com/conducta/authkit/internal/random"
)

const (
	eventResetRequested  = "password_reset_requested"
	eventPasswordChanged = "password_changed"
)

// RequestPasswordReset issues a single-use reset token for the
// account behind email. The raw token is returned for out-of-band
// delivery; only its SHA-256 digest is persisted.
//
// An unknown email returns ("", nil): the caller cannot distinguish
// present from absent accounts.
func (g *Gateway) RequestPasswordReset(ctx context.Context, email string) (token string, err error) {
	defer g.guard("request password reset", &err)

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", ErrValidation
	}

	if !g.resetLimiter.Check(email) {
		rateErr := &RateLimitError{RetryAfterMinutes: g.retryAfterMinutes(g.resetLimiter, email)}
		g.metricInc(MetricResetRateLimited)
		g.emit(ctx, eventResetRequested, false, "", "", rateErr, map[string]string{"email": email})
		return "", rateErr
	}

	callCtx, cancel := g.storeCtx(ctx)
	account, err := g.store.FetchAccountByEmail(callCtx, email)
	cancel()
	if err != nil {
		return "", g.persistence("fetch account by email", err)
	}
	if account == nil {
		// Same audit trail as the hit path, same return shape.
		g.metricInc(MetricResetRequested)
		g.emit(ctx, eventResetRequested, true, "", "", nil, map[string]string{"email": email})
		return "", nil
	}

	token, digest, err := random.NewResetToken()
	if err != nil {
		return "", g.persistence("generate reset token", err)
	}

	expiresAt := g.now().Add(g.config.Reset.TokenTTL)

	callCtx, cancel = g.storeCtx(ctx)
	err = g.store.InsertPasswordResetToken(callCtx, account.ID, digest, expiresAt)
	cancel()
	if err != nil {
		return "", g.persistence("insert reset token", err)
	}

	g.metricInc(MetricResetRequested)
	g.emit(ctx, eventResetRequested, true, account.ID, account.Username, nil, nil)

	return token, nil
}

// ChangePassword hashes newPassword with the configured hasher and
// writes it to the credential store, clearing the must-change flag.
// The plaintext is never persisted anywhere.
func (g *Gateway) ChangePassword(ctx context.Context, accountID, newPassword string) (err error) {
	defer g.guard("change password", &err)

	if accountID == "" || len(newPassword) < g.config.Password.MinLength {
		return ErrValidation
	}

	hash, err := g.hasher.Hash(newPassword)
	if err != nil {
		return g.persistence("hash password", err)
	}

	mustChange := false
	update := AccountUpdate{
		PasswordHash:       &hash,
		MustChangePassword: &mustChange,
	}

	callCtx, cancel := g.storeCtx(ctx)
	err = g.store.UpdateAccount(callCtx, accountID, update)
	cancel()
	if err != nil {
		return g.persistence("update password", err)
	}

	g.metricInc(MetricPasswordChanged)
	g.emit(ctx, eventPasswordChanged, true, accountID, "", nil, nil)

	return nil
}
