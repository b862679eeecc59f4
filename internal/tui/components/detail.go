package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"cinelog/internal/domain"
	"cinelog/internal/tui/styles"
)

const detailWidth = 56

// Detail is the movie detail modal. It holds its own snapshot of the record,
// not a live reference into the cache, so a successful edit must call
// SetMovie to keep the open view in sync.
type Detail struct {
	movie    domain.Movie
	notes    textarea.Model
	signedIn bool
}

// NewDetail creates the detail modal.
func NewDetail() Detail {
	ta := textarea.New()
	ta.Placeholder = "Write your thoughts about this movie..."
	ta.SetWidth(detailWidth - 4)
	ta.SetHeight(5)
	ta.CharLimit = 2000

	return Detail{notes: ta}
}

// Show installs a snapshot of the record and resets the notes editor to the
// stored notes.
func (d *Detail) Show(movie domain.Movie, signedIn bool) {
	d.movie = movie
	d.signedIn = signedIn
	d.notes.SetValue(movie.Notes)
	d.notes.Blur()
}

// SetMovie refreshes the snapshot after a successful update.
func (d *Detail) SetMovie(movie domain.Movie) {
	d.movie = movie
}

// SetSignedIn updates the session gate for the notes editor.
func (d *Detail) SetSignedIn(signedIn bool) {
	d.signedIn = signedIn
	if !signedIn {
		d.notes.Blur()
	}
}

// Movie returns the current snapshot.
func (d Detail) Movie() domain.Movie {
	return d.movie
}

// Notes returns the editor's current text.
func (d Detail) Notes() string {
	return d.notes.Value()
}

// NotesFocused reports whether the notes editor is capturing input.
func (d Detail) NotesFocused() bool {
	return d.notes.Focused()
}

// FocusNotes moves input focus into the notes editor. Read-only for
// anonymous users.
func (d *Detail) FocusNotes() bool {
	if !d.signedIn {
		return false
	}
	d.notes.Focus()
	return true
}

// BlurNotes returns focus to the modal's action keys.
func (d *Detail) BlurNotes() {
	d.notes.Blur()
}

// Update forwards input to the notes editor while it is focused.
func (d Detail) Update(msg tea.Msg) (Detail, tea.Cmd) {
	if !d.notes.Focused() {
		return d, nil
	}
	var cmd tea.Cmd
	d.notes, cmd = d.notes.Update(msg)
	return d, cmd
}

// View renders the detail modal.
func (d Detail) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render(d.movie.Name))
	b.WriteString("\n")
	b.WriteString(styles.SubtitleStyle.Render(fmt.Sprintf("%d", d.movie.Year)))
	b.WriteString("\n")

	if d.movie.PosterURL != "" {
		b.WriteString(styles.DimStyle.Render(truncate(d.movie.PosterURL, detailWidth-4)))
	} else {
		b.WriteString(styles.DimStyle.Render("no poster"))
	}
	b.WriteString("\n\n")

	b.WriteString(styles.SubtitleStyle.Render("Notes"))
	b.WriteString("\n")
	b.WriteString(d.notes.View())
	b.WriteString("\n\n")

	if d.notes.Focused() {
		b.WriteString(styles.DimStyle.Render("ctrl+s save notes · esc done"))
	} else if d.signedIn {
		b.WriteString(styles.DimStyle.Render("n notes · e edit · d delete · esc close"))
	} else {
		b.WriteString(styles.DimStyle.Render("sign in to edit · esc close"))
	}

	return styles.ActiveBorder.Render(
		lipgloss.NewStyle().Width(detailWidth).Padding(0, 1).Render(b.String()),
	)
}
