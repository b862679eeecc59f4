package tui

import (
	"cinelog/internal/domain"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// CollectionLoadedMsg signals that the startup bulk load finished
type CollectionLoadedMsg struct {
	Count int
}

// MovieCreatedMsg signals a successful create
type MovieCreatedMsg struct {
	Movie domain.Movie
}

// MovieUpdatedMsg signals a successful update; carries the updated record so
// the detail view can refresh its independent snapshot
type MovieUpdatedMsg struct {
	Movie domain.Movie
}

// MovieDeletedMsg signals a successful delete
type MovieDeletedMsg struct {
	ID string
}

// NotesSavedMsg signals the notes field was persisted
type NotesSavedMsg struct {
	ID    string
	Notes string
}

// SessionChangedMsg carries every session change from the tracker
type SessionChangedMsg struct {
	User *domain.User
}

// LoginCodeMsg carries the link code to display while waiting for the claim
type LoginCodeMsg struct {
	Code *domain.LinkCode
}

// LoginFinishedMsg signals the interactive sign-in completed
type LoginFinishedMsg struct {
	User *domain.User
}

// LoggedOutMsg signals the session was terminated
type LoggedOutMsg struct{}

// StatusMsg sets a temporary status message
type StatusMsg struct {
	Message string
	IsError bool
}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct{}
