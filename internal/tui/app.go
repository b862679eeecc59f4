package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"cinelog/internal/catalog"
	"cinelog/internal/domain"
	"cinelog/internal/search"
	"cinelog/internal/session"
	"cinelog/internal/tui/components"
	"cinelog/internal/tui/styles"
)

// State identifies which view owns the keyboard.
type State int

const (
	StateLoading State = iota
	StateBrowsing
	StateDetail
	StateAdding
	StateEditing
	StateConfirmDelete
	StateLogin
	StateOmnibar
)

// Model is the root Bubble Tea model.
type Model struct {
	coordinator *catalog.Coordinator
	tracker     *session.Tracker
	observer    *SessionObserver

	state State

	grid        components.Grid
	detail      components.Detail
	form        components.MovieForm
	confirm     components.Confirm
	omnibar     components.Omnibar
	filterInput textinput.Model
	spin        spinner.Model

	savedToken string

	// Active view filter
	yearIdx int // index into cache.Years(); -1 means all years

	loginCode *domain.LinkCode

	status    string
	statusErr bool

	width  int
	height int
}

// NewModel creates the root model. savedToken, when non-empty, is validated
// in the background at startup.
func NewModel(coordinator *catalog.Coordinator, tracker *session.Tracker, gridColumns int, savedToken string) Model {
	observer := NewSessionObserver()
	tracker.Subscribe(observer.OnChange)

	filter := textinput.New()
	filter.Placeholder = "Filter by name..."
	filter.Prompt = "/ "
	filter.PromptStyle = styles.FilterPromptStyle
	filter.TextStyle = styles.FilterStyle
	filter.CharLimit = 100
	filter.Width = 32

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{Frames: styles.SpinnerFrames, FPS: spinner.Dot.FPS}
	sp.Style = styles.AccentStyle

	return Model{
		coordinator: coordinator,
		tracker:     tracker,
		observer:    observer,
		state:       StateLoading,
		grid:        components.NewGrid(gridColumns),
		detail:      components.NewDetail(),
		form:        components.NewMovieForm(),
		omnibar:     components.NewOmnibar(),
		filterInput: filter,
		spin:        sp,
		savedToken:  savedToken,
		yearIdx:     -1,
	}
}

// Init starts the collection load, the session resume, and the session watcher.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		LoadCollectionCmd(m.coordinator),
		WatchSessionCmd(m.observer.Changes()),
		m.spin.Tick,
	}
	if m.savedToken != "" {
		cmds = append(cmds, ResumeSessionCmd(m.tracker, m.savedToken))
	}
	return tea.Batch(cmds...)
}

// yearFilter returns the active year filter as the pure filter expects it.
func (m Model) yearFilter() string {
	years := m.coordinator.Cache().Years()
	if m.yearIdx < 0 || m.yearIdx >= len(years) {
		return ""
	}
	return strconv.Itoa(years[m.yearIdx])
}

// refreshDerived recomputes the grid contents and search index from the
// cache. Called after every cache-changing message.
func (m *Model) refreshDerived() {
	movies := m.coordinator.Cache().Movies()
	if m.yearIdx >= len(m.coordinator.Cache().Years()) {
		m.yearIdx = -1
	}
	filtered := catalog.Filter(movies, m.filterInput.Value(), m.yearFilter())
	m.grid.SetMovies(filtered)
	m.omnibar.SetIndex(search.NewIndex(movies))
}

func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.status = text
	m.statusErr = isErr
	return ClearStatusCmd()
}

// openDetail shows the detail modal for the given record.
func (m *Model) openDetail(movie domain.Movie) {
	m.detail.Show(movie, m.tracker.SignedIn())
	m.state = StateDetail
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.grid.SetSize(msg.Width, msg.Height-4)
		return m, nil

	case spinner.TickMsg:
		if m.state != StateLoading && m.state != StateLogin {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case CollectionLoadedMsg:
		m.state = StateBrowsing
		m.refreshDerived()
		return m, m.setStatus(fmt.Sprintf("Loaded %d movies", msg.Count), false)

	case MovieCreatedMsg:
		m.state = StateBrowsing
		m.refreshDerived()
		return m, m.setStatus(fmt.Sprintf("Added %q", msg.Movie.Name), false)

	case MovieUpdatedMsg:
		m.refreshDerived()
		// Back to the detail view with its snapshot refreshed
		m.detail.SetMovie(msg.Movie)
		m.state = StateDetail
		return m, m.setStatus(fmt.Sprintf("Updated %q", msg.Movie.Name), false)

	case MovieDeletedMsg:
		m.state = StateBrowsing
		m.refreshDerived()
		return m, m.setStatus("Movie deleted", false)

	case NotesSavedMsg:
		m.refreshDerived()
		if updated, ok := m.coordinator.Cache().Get(msg.ID); ok {
			m.detail.SetMovie(updated)
		}
		return m, m.setStatus("Notes saved", false)

	case SessionChangedMsg:
		m.detail.SetSignedIn(msg.User != nil)
		cmd := WatchSessionCmd(m.observer.Changes())
		if msg.User != nil {
			return m, tea.Batch(cmd, m.setStatus("Signed in as "+msg.User.Name, false))
		}
		return m, cmd

	case LoginCodeMsg:
		m.loginCode = msg.Code
		return m, tea.Batch(FinishLoginCmd(m.tracker, msg.Code), m.spin.Tick)

	case LoginFinishedMsg:
		m.loginCode = nil
		m.state = StateBrowsing
		return m, nil

	case LoggedOutMsg:
		return m, m.setStatus("Signed out", false)

	case ErrMsg:
		return m, m.handleError(msg)

	case StatusMsg:
		return m, m.setStatus(msg.Message, msg.IsError)

	case ClearStatusMsg:
		m.status = ""
		m.statusErr = false
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// handleError routes a failed command back to whichever view caused it.
func (m *Model) handleError(msg ErrMsg) tea.Cmd {
	switch m.state {
	case StateLoading:
		// The collection is unreachable; nothing to browse.
		m.state = StateBrowsing
		return m.setStatus(msg.Error(), true)
	case StateAdding, StateEditing:
		var verr *domain.ValidationError
		if errors.As(msg.Err, &verr) {
			m.form.SetError(verr.Error())
			return nil
		}
		m.form.SetError(msg.Error())
		return nil
	case StateConfirmDelete:
		m.state = StateDetail
		return m.setStatus(msg.Error(), true)
	case StateLogin:
		m.loginCode = nil
		m.state = StateBrowsing
		return m.setStatus(msg.Error(), true)
	}
	if errors.Is(msg.Err, domain.ErrAuthRequired) {
		return m.setStatus("Sign in to make changes (press i)", true)
	}
	return m.setStatus(msg.Error(), true)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global quit, except while a text field is capturing input
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.state {
	case StateLoading:
		if msg.String() == "q" {
			return m, tea.Quit
		}
		return m, nil
	case StateBrowsing:
		return m.handleBrowsingKey(msg)
	case StateDetail:
		return m.handleDetailKey(msg)
	case StateAdding, StateEditing:
		return m.handleFormKey(msg)
	case StateConfirmDelete:
		return m.handleConfirmKey(msg)
	case StateLogin:
		return m.handleLoginKey(msg)
	case StateOmnibar:
		return m.handleOmnibarKey(msg)
	}
	return m, nil
}

func (m Model) handleBrowsingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// While the filter input has focus it owns most keys
	if m.filterInput.Focused() {
		switch msg.String() {
		case "esc":
			m.filterInput.Blur()
			m.filterInput.SetValue("")
			m.refreshDerived()
			return m, nil
		case "enter":
			m.filterInput.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.filterInput, cmd = m.filterInput.Update(msg)
		m.refreshDerived()
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "/":
		m.filterInput.Focus()
		m.grid.SetFocused(false)
		return m, textinput.Blink
	case "y":
		m.cycleYearFilter()
		m.refreshDerived()
		return m, nil
	case "ctrl+f":
		m.omnibar.Open()
		m.state = StateOmnibar
		return m, textinput.Blink
	case "a":
		if !m.tracker.SignedIn() {
			return m, m.setStatus("Sign in to make changes (press i)", true)
		}
		m.form.Reset()
		m.state = StateAdding
		return m, textinput.Blink
	case "i":
		if m.tracker.SignedIn() {
			return m, LogoutCmd(m.tracker)
		}
		m.state = StateLogin
		return m, tea.Batch(BeginLoginCmd(m.tracker), m.spin.Tick)
	case "enter":
		if movie, ok := m.grid.Selected(); ok {
			m.openDetail(movie)
		}
		return m, nil
	case "left", "h":
		m.grid.SetFocused(true)
		m.grid.Move(-1, 0)
	case "right", "l":
		m.grid.SetFocused(true)
		m.grid.Move(1, 0)
	case "up", "k":
		m.grid.SetFocused(true)
		m.grid.Move(0, -1)
	case "down", "j":
		m.grid.SetFocused(true)
		m.grid.Move(0, 1)
	}
	return m, nil
}

// cycleYearFilter steps all -> newest -> ... -> oldest -> all.
func (m *Model) cycleYearFilter() {
	years := m.coordinator.Cache().Years()
	if len(years) == 0 {
		m.yearIdx = -1
		return
	}
	m.yearIdx++
	if m.yearIdx >= len(years) {
		m.yearIdx = -1
	}
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.detail.NotesFocused() {
		switch msg.String() {
		case "esc":
			m.detail.BlurNotes()
			return m, nil
		case "ctrl+s":
			m.detail.BlurNotes()
			return m, SaveNotesCmd(m.coordinator, m.detail.Movie().ID, m.detail.Notes())
		}
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "esc", "q":
		m.state = StateBrowsing
		return m, nil
	case "n":
		if !m.detail.FocusNotes() {
			return m, m.setStatus("Sign in to make changes (press i)", true)
		}
		return m, textinput.Blink
	case "e":
		if !m.tracker.SignedIn() {
			return m, m.setStatus("Sign in to make changes (press i)", true)
		}
		m.form.SetMovie(m.detail.Movie())
		m.state = StateEditing
		return m, textinput.Blink
	case "d":
		if !m.tracker.SignedIn() {
			return m, m.setStatus("Sign in to make changes (press i)", true)
		}
		movie := m.detail.Movie()
		m.confirm.Show(fmt.Sprintf("Delete %q?", movie.Name), movie.ID)
		m.state = StateConfirmDelete
		return m, nil
	}
	return m, nil
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if m.state == StateEditing {
			m.state = StateDetail
		} else {
			m.state = StateBrowsing
		}
		return m, nil
	case "enter":
		name, year, posterURL := m.form.Values()
		if m.state == StateEditing {
			return m, UpdateMovieCmd(m.coordinator, m.form.EditID(), name, year, posterURL)
		}
		return m, CreateMovieCmd(m.coordinator, name, year, posterURL)
	}
	var cmd tea.Cmd
	m.form, cmd = m.form.Update(msg)
	return m, cmd
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		return m, DeleteMovieCmd(m.coordinator, m.confirm.MovieID())
	case "n", "N", "esc":
		m.state = StateDetail
		return m, nil
	}
	return m, nil
}

func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The login wait cannot be abandoned once a code was issued, but the
	// modal can be dismissed; the result still lands via the watcher.
	if msg.String() == "esc" {
		m.loginCode = nil
		m.state = StateBrowsing
		return m, nil
	}
	return m, nil
}

func (m Model) handleOmnibarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.omnibar.Close()
		m.state = StateBrowsing
		return m, nil
	case "enter":
		if movie, ok := m.omnibar.Selected(); ok {
			m.omnibar.Close()
			m.openDetail(movie)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.omnibar, cmd = m.omnibar.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.state == StateLoading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spin.View()+" Loading collection...")
	}

	header := m.headerView()
	body := m.grid.View()
	status := m.statusView()

	base := lipgloss.JoinVertical(lipgloss.Left, header, body, status)

	var overlay string
	switch m.state {
	case StateDetail:
		overlay = m.detail.View()
	case StateAdding, StateEditing:
		overlay = m.form.View()
	case StateConfirmDelete:
		overlay = m.confirm.View()
	case StateLogin:
		overlay = m.loginView()
	case StateOmnibar:
		overlay = m.omnibar.View()
	}
	if overlay != "" {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, overlay)
	}
	return base
}

func (m Model) headerView() string {
	title := styles.HighlightStyle.Render("CINELOG")

	count := styles.SubtitleStyle.Render(
		fmt.Sprintf("%d de %d", m.grid.Len(), m.coordinator.Cache().Len()))

	var filters []string
	if m.filterInput.Focused() || m.filterInput.Value() != "" {
		filters = append(filters, m.filterInput.View())
	}
	if yf := m.yearFilter(); yf != "" {
		filters = append(filters, styles.AccentStyle.Render("year:"+yf))
	}

	who := styles.DimStyle.Render("anonymous")
	if user := m.tracker.Current(); user != nil {
		who = styles.SuccessStyle.Render(user.Name)
	}

	parts := []string{title, count}
	parts = append(parts, filters...)
	parts = append(parts, who)
	return strings.Join(parts, "  ")
}

func (m Model) statusView() string {
	if m.status != "" {
		if m.statusErr {
			return styles.ErrorStyle.Render(m.status)
		}
		return styles.SuccessStyle.Render(m.status)
	}
	help := "↑↓←→ move · enter open · / filter · y year · ctrl+f search · i sign in · q quit"
	if m.tracker.SignedIn() {
		help = "↑↓←→ move · enter open · a add · / filter · y year · ctrl+f search · i sign out · q quit"
	}
	return styles.DimStyle.Render(help)
}

func (m Model) loginView() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Sign In"))
	b.WriteString("\n\n")
	if m.loginCode == nil {
		b.WriteString(m.spin.View() + " Requesting link code...")
	} else {
		b.WriteString("Enter this code at\n")
		b.WriteString(styles.AccentStyle.Render(m.loginCode.VerifyURL))
		b.WriteString("\n\n")
		b.WriteString(styles.HighlightStyle.Render(m.loginCode.Code))
		b.WriteString("\n\n")
		b.WriteString(m.spin.View() + " " + styles.DimStyle.Render("Waiting for approval..."))
	}
	b.WriteString("\n\n")
	b.WriteString(styles.DimStyle.Render("esc dismiss"))

	return styles.ActiveBorder.Render(
		lipgloss.NewStyle().Width(44).Padding(0, 1).Render(b.String()),
	)
}
