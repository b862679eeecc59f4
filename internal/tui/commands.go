package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"cinelog/internal/catalog"
	"cinelog/internal/domain"
	"cinelog/internal/session"
)

// Command factories for async operations. Each runs off the update loop with
// its own deadline; the modal flow guarantees at most one mutation in flight.

const (
	loadTimeout     = 30 * time.Second
	mutationTimeout = 30 * time.Second
	loginTimeout    = 6 * time.Minute // polling flow, bounded by the provider's wait
	statusLinger    = 3 * time.Second
)

// LoadCollectionCmd performs the single startup bulk load
func LoadCollectionCmd(c *catalog.Coordinator) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		if err := c.Load(ctx); err != nil {
			return ErrMsg{Err: err, Context: "loading collection"}
		}
		return CollectionLoadedMsg{Count: c.Cache().Len()}
	}
}

// CreateMovieCmd inserts a new movie
func CreateMovieCmd(c *catalog.Coordinator, name string, year int, posterURL string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()

		movie, err := c.Create(ctx, name, year, posterURL)
		if err != nil {
			return ErrMsg{Err: err, Context: "adding movie"}
		}
		return MovieCreatedMsg{Movie: movie}
	}
}

// UpdateMovieCmd rewrites a movie's editable fields
func UpdateMovieCmd(c *catalog.Coordinator, id, name string, year int, posterURL string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()

		movie, err := c.Update(ctx, id, name, year, posterURL)
		if err != nil {
			return ErrMsg{Err: err, Context: "updating movie"}
		}
		return MovieUpdatedMsg{Movie: movie}
	}
}

// DeleteMovieCmd removes a movie; confirmation already happened in the modal
func DeleteMovieCmd(c *catalog.Coordinator, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()

		if err := c.Delete(ctx, id, true); err != nil {
			return ErrMsg{Err: err, Context: "deleting movie"}
		}
		return MovieDeletedMsg{ID: id}
	}
}

// SaveNotesCmd patches only the notes field
func SaveNotesCmd(c *catalog.Coordinator, id, notes string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()

		if err := c.SaveNotes(ctx, id, notes); err != nil {
			return ErrMsg{Err: err, Context: "saving notes"}
		}
		return NotesSavedMsg{ID: id, Notes: notes}
	}
}

// ResumeSessionCmd validates a saved token at startup. It runs concurrently
// with the collection load; neither depends on the other.
func ResumeSessionCmd(t *session.Tracker, token string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		// A rejected token just leaves the session anonymous; the change
		// notification arrives through the session watcher.
		_ = t.Resume(ctx, token)
		return nil
	}
}

// BeginLoginCmd requests a link code for the interactive sign-in
func BeginLoginCmd(t *session.Tracker) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()

		code, err := t.BeginLogin(ctx)
		if err != nil {
			return ErrMsg{Err: err, Context: "signing in"}
		}
		return LoginCodeMsg{Code: code}
	}
}

// FinishLoginCmd waits for the link code claim
func FinishLoginCmd(t *session.Tracker, code *domain.LinkCode) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loginTimeout)
		defer cancel()

		user, err := t.FinishLogin(ctx, code)
		if err != nil {
			return ErrMsg{Err: err, Context: "signing in"}
		}
		return LoginFinishedMsg{User: user}
	}
}

// LogoutCmd terminates the session
func LogoutCmd(t *session.Tracker) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()

		if err := t.Logout(ctx); err != nil {
			return ErrMsg{Err: err, Context: "signing out"}
		}
		return LoggedOutMsg{}
	}
}

// WatchSessionCmd delivers the next session change from the observer channel
func WatchSessionCmd(ch <-chan *domain.User) tea.Cmd {
	return func() tea.Msg {
		user, ok := <-ch
		if !ok {
			return nil
		}
		return SessionChangedMsg{User: user}
	}
}

// ClearStatusCmd clears the status bar after a short linger
func ClearStatusCmd() tea.Cmd {
	return tea.Tick(statusLinger, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
