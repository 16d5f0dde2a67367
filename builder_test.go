package authkit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/conducta/authkit/throttle"
)

func TestBuild_RequiresStoreAndVerifier(t *testing.T) {
	verifier := &mockVerifier{}
	store := newMockStore()

	if _, err := New().WithVerifier(verifier).Build(); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("missing store: %v, want ErrConfiguration", err)
	}
	if _, err := New().WithCredentialStore(store).Build(); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("missing verifier: %v, want ErrConfiguration", err)
	}

	g, err := New().WithCredentialStore(store).WithVerifier(verifier).Build()
	if err != nil {
		t.Fatalf("complete build: %v", err)
	}
	g.Close()
}

func TestBuild_RejectsReuse(t *testing.T) {
	b := New().WithCredentialStore(newMockStore()).WithVerifier(&mockVerifier{})

	g, err := b.Build()
	if err != nil {
		t.Fatalf("first Build: %v", err)
	}
	defer g.Close()

	if _, err := b.Build(); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("second Build: %v, want ErrConfiguration", err)
	}
}

func TestBuild_ValidatesConfig(t *testing.T) {
	base := func() Config { return defaultConfig() }

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero login attempts", func(c *Config) { c.Throttle.Login.MaxAttempts = 0 }},
		{"zero login window", func(c *Config) { c.Throttle.Login.Window = 0 }},
		{"zero lockout threshold", func(c *Config) { c.Lockout.Threshold = 0 }},
		{"zero lockout duration", func(c *Config) { c.Lockout.Duration = 0 }},
		{"zero reset ttl", func(c *Config) { c.Reset.TokenTTL = 0 }},
		{"negative session duration", func(c *Config) { c.Session.Duration = -time.Minute }},
		{"negative password min", func(c *Config) { c.Password.MinLength = -1 }},
		{"negative store timeout", func(c *Config) { c.StoreCallTimeout = -time.Second }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(&cfg)

			_, err := New().
				WithConfig(cfg).
				WithCredentialStore(newMockStore()).
				WithVerifier(&mockVerifier{}).
				Build()
			if !errors.Is(err, ErrConfiguration) {
				t.Fatalf("Build: %v, want ErrConfiguration", err)
			}
		})
	}
}

func TestBuild_SweeperLifecycle(t *testing.T) {
	cfg := defaultConfig()
	cfg.Audit.Enabled = false
	cfg.Throttle.SweepInterval = 10 * time.Millisecond
	cfg.Throttle.API = throttle.Policy{Name: "api", MaxAttempts: 1, Window: 5 * time.Millisecond}

	g, err := New().
		WithConfig(cfg).
		WithCredentialStore(newMockStore()).
		WithVerifier(&mockVerifier{}).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if err := g.AllowAPICall("k"); err != nil {
		t.Fatalf("AllowAPICall: %v", err)
	}

	// Close must stop the sweeper goroutine; calling it twice is safe.
	g.Close()
	g.Close()
}

func TestGateway_StoreCallTimeout(t *testing.T) {
	g, deps := newTestGateway(t, func(cfg *Config, _ *testDeps) {
		cfg.StoreCallTimeout = 20 * time.Millisecond
	})
	deps.store.fetchErr = context.DeadlineExceeded

	_, err := g.Login(context.Background(), "mgarcia", "correct horse battery")
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("Login: %v, want ErrPersistence", err)
	}
}
