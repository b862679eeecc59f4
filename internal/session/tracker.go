// Package session tracks the current authenticated-or-absent user.
package session

import (
	"context"
	"log/slog"
	"sync"

	"cinelog/internal/domain"
)

// Tracker holds the current user (nil = anonymous) and notifies subscribers
// on every change. Mutations elsewhere read it to gate writes; that gate is a
// UX courtesy, the real authorization boundary is the store's access rules.
type Tracker struct {
	provider domain.IdentityProvider
	logger   *slog.Logger

	mu      sync.RWMutex
	user    *domain.User
	subs    map[int]func(*domain.User)
	nextSub int
}

// NewTracker creates a session tracker backed by the given provider.
func NewTracker(provider domain.IdentityProvider, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		provider: provider,
		logger:   logger,
		subs:     make(map[int]func(*domain.User)),
	}
}

// Current returns the current user, or nil when anonymous.
func (t *Tracker) Current() *domain.User {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.user
}

// SignedIn reports whether a user is present.
func (t *Tracker) SignedIn() bool {
	return t.Current() != nil
}

// RequireUser returns the current user or ErrAuthRequired when absent.
func (t *Tracker) RequireUser() (*domain.User, error) {
	if user := t.Current(); user != nil {
		return user, nil
	}
	return nil, domain.ErrAuthRequired
}

// Subscribe registers a callback fired on every session change. The returned
// cancel func removes the subscription.
func (t *Tracker) Subscribe(fn func(*domain.User)) (cancel func()) {
	t.mu.Lock()
	id := t.nextSub
	t.nextSub++
	t.subs[id] = fn
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		delete(t.subs, id)
		t.mu.Unlock()
	}
}

// Resume validates a saved token and restores the session. A rejected or
// unreachable token leaves the session anonymous.
func (t *Tracker) Resume(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	user, err := t.provider.Validate(ctx, token)
	if err != nil {
		t.logger.Warn("saved session rejected", "error", err)
		return err
	}

	t.setUser(user)
	t.logger.Info("session resumed", "user", user.Name)
	return nil
}

// BeginLogin starts an interactive sign-in and returns the link code for the
// presentation layer to display.
func (t *Tracker) BeginLogin(ctx context.Context) (*domain.LinkCode, error) {
	code, err := t.provider.BeginLogin(ctx)
	if err != nil {
		t.logger.Error("failed to begin login", "error", err)
		return nil, err
	}
	return code, nil
}

// FinishLogin waits for the code claim and installs the resulting session.
// On failure the current user stays absent.
func (t *Tracker) FinishLogin(ctx context.Context, code *domain.LinkCode) (*domain.User, error) {
	user, err := t.provider.WaitLogin(ctx, code)
	if err != nil {
		t.logger.Error("login failed", "error", err)
		return nil, err
	}

	t.setUser(user)
	t.logger.Info("signed in", "user", user.Name)
	return user, nil
}

// Logout terminates the session. A provider failure is reported without
// clearing local state, matching the no-rollback contract: nothing local
// depends on the session beyond gating.
func (t *Tracker) Logout(ctx context.Context) error {
	user := t.Current()
	if user == nil {
		return nil
	}

	if err := t.provider.Logout(ctx, user.Token); err != nil {
		t.logger.Error("logout failed", "error", err)
		return err
	}

	t.setUser(nil)
	t.logger.Info("signed out")
	return nil
}

// setUser replaces the current user and notifies subscribers outside the lock.
func (t *Tracker) setUser(user *domain.User) {
	t.mu.Lock()
	t.user = user
	subs := make([]func(*domain.User), 0, len(t.subs))
	for _, fn := range t.subs {
		subs = append(subs, fn)
	}
	t.mu.Unlock()

	for _, fn := range subs {
		fn(user)
	}
}
