package tui

import "cinelog/internal/domain"

// SessionObserver adapts session tracker callbacks to a channel for Bubble Tea.
type SessionObserver struct {
	ch chan *domain.User
}

// NewSessionObserver creates a new channel-based observer.
func NewSessionObserver() *SessionObserver {
	return &SessionObserver{ch: make(chan *domain.User, 8)}
}

// OnChange sends the new user to the channel (non-blocking if full).
func (o *SessionObserver) OnChange(user *domain.User) {
	select {
	case o.ch <- user:
	default: // Non-blocking if channel full
	}
}

// Changes returns the channel the TUI command loop reads from.
func (o *SessionObserver) Changes() <-chan *domain.User {
	return o.ch
}
