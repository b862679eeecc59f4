package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"cinelog/internal/domain"
	"cinelog/internal/tui/styles"
)

const (
	fieldName = iota
	fieldYear
	fieldPoster
	fieldCount
)

const formWidth = 48

// MovieForm is the add/edit modal. The same form serves both flows; editing
// preloads the record via SetMovie and keeps its id for the submit.
type MovieForm struct {
	inputs  [fieldCount]textinput.Model
	focus   int
	editID  string
	errText string
}

// NewMovieForm creates the form with empty fields.
func NewMovieForm() MovieForm {
	var f MovieForm

	name := textinput.New()
	name.Placeholder = "Movie name"
	name.CharLimit = 200
	name.Width = formWidth - 8
	name.Focus()

	year := textinput.New()
	year.Placeholder = "Year"
	year.CharLimit = 4
	year.Width = formWidth - 8

	poster := textinput.New()
	poster.Placeholder = "Poster URL (optional)"
	poster.CharLimit = 500
	poster.Width = formWidth - 8

	f.inputs[fieldName] = name
	f.inputs[fieldYear] = year
	f.inputs[fieldPoster] = poster
	return f
}

// Reset clears the form for a fresh add.
func (f *MovieForm) Reset() {
	f.editID = ""
	f.errText = ""
	for i := range f.inputs {
		f.inputs[i].SetValue("")
		f.inputs[i].Blur()
	}
	f.focus = fieldName
	f.inputs[fieldName].Focus()
}

// SetMovie preloads the form for editing an existing record.
func (f *MovieForm) SetMovie(movie domain.Movie) {
	f.Reset()
	f.editID = movie.ID
	f.inputs[fieldName].SetValue(movie.Name)
	f.inputs[fieldYear].SetValue(strconv.Itoa(movie.Year))
	f.inputs[fieldPoster].SetValue(movie.PosterURL)
}

// Editing reports whether the form was opened on an existing record.
func (f MovieForm) Editing() bool {
	return f.editID != ""
}

// EditID returns the id of the record being edited, or "" for an add.
func (f MovieForm) EditID() string {
	return f.editID
}

// SetError displays a validation or submission failure inside the form.
func (f *MovieForm) SetError(text string) {
	f.errText = text
}

// Values returns the current field contents. Year parse failures surface as
// year 0, which validation rejects.
func (f MovieForm) Values() (name string, year int, posterURL string) {
	name = strings.TrimSpace(f.inputs[fieldName].Value())
	year, _ = strconv.Atoi(strings.TrimSpace(f.inputs[fieldYear].Value()))
	posterURL = strings.TrimSpace(f.inputs[fieldPoster].Value())
	return name, year, posterURL
}

func (f *MovieForm) cycleFocus(delta int) {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + fieldCount) % fieldCount
	f.inputs[f.focus].Focus()
}

// Update handles focus cycling and forwards input to the focused field.
// Enter on any field is left to the caller to treat as submit.
func (f MovieForm) Update(msg tea.Msg) (MovieForm, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "tab", "down":
			f.cycleFocus(1)
			return f, nil
		case "shift+tab", "up":
			f.cycleFocus(-1)
			return f, nil
		}
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

// View renders the form modal.
func (f MovieForm) View() string {
	var b strings.Builder

	title := "Add Movie"
	if f.Editing() {
		title = "Edit Movie"
	}
	b.WriteString(styles.TitleStyle.Render(title))
	b.WriteString("\n\n")

	labels := [fieldCount]string{"Name", "Year", "Poster"}
	for i := range f.inputs {
		label := styles.DimStyle
		if i == f.focus {
			label = styles.AccentStyle
		}
		b.WriteString(label.Render(labels[i]))
		b.WriteString("\n")
		b.WriteString(f.inputs[i].View())
		b.WriteString("\n")
	}

	if f.errText != "" {
		b.WriteString("\n")
		b.WriteString(styles.ErrorStyle.Render(f.errText))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.DimStyle.Render("enter save · tab next · esc cancel"))

	return styles.ActiveBorder.Render(
		lipgloss.NewStyle().Width(formWidth).Padding(0, 1).Render(b.String()),
	)
}
