package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"cinelog/internal/domain"
	"cinelog/internal/tui/styles"
)

// Layout constants for grid cards
const (
	cardInnerWidth  = 22
	cardLines       = 3
	cardBorderWidth = 2
	minColumns      = 1
)

// Grid renders the filtered collection as a card grid with a movable cursor.
type Grid struct {
	movies []domain.Movie

	cursor  int
	rowOff  int // first visible row
	columns int

	width   int
	height  int
	focused bool
}

// NewGrid creates a grid with the configured column count.
func NewGrid(columns int) Grid {
	if columns < minColumns {
		columns = 4
	}
	return Grid{columns: columns, focused: true}
}

// SetMovies replaces the displayed records, clamping the cursor.
func (g *Grid) SetMovies(movies []domain.Movie) {
	g.movies = movies
	if g.cursor >= len(movies) {
		g.cursor = len(movies) - 1
	}
	if g.cursor < 0 {
		g.cursor = 0
	}
	g.scrollToCursor()
}

// SetSize updates the drawable area.
func (g *Grid) SetSize(width, height int) {
	g.width = width
	g.height = height

	// Shrink columns on narrow terminals
	fit := width / (cardInnerWidth + cardBorderWidth + 1)
	if fit < minColumns {
		fit = minColumns
	}
	if fit < g.columns {
		g.columns = fit
	}
	g.scrollToCursor()
}

// SetFocused toggles cursor highlighting.
func (g *Grid) SetFocused(focused bool) {
	g.focused = focused
}

// Selected returns the movie under the cursor.
func (g Grid) Selected() (domain.Movie, bool) {
	if g.cursor < 0 || g.cursor >= len(g.movies) {
		return domain.Movie{}, false
	}
	return g.movies[g.cursor], true
}

// Len returns the number of displayed records.
func (g Grid) Len() int {
	return len(g.movies)
}

// Move shifts the cursor by the given deltas in grid coordinates.
func (g *Grid) Move(dx, dy int) {
	if len(g.movies) == 0 {
		return
	}
	next := g.cursor + dx + dy*g.columns
	if next < 0 || next >= len(g.movies) {
		return
	}
	g.cursor = next
	g.scrollToCursor()
}

// visibleRows returns how many card rows fit in the current height.
func (g Grid) visibleRows() int {
	rows := g.height / (cardLines + cardBorderWidth)
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (g *Grid) scrollToCursor() {
	if g.columns == 0 {
		return
	}
	row := g.cursor / g.columns
	if row < g.rowOff {
		g.rowOff = row
	}
	if vis := g.visibleRows(); row >= g.rowOff+vis {
		g.rowOff = row - vis + 1
	}
}

// View renders the card grid.
func (g Grid) View() string {
	if len(g.movies) == 0 {
		return styles.DimStyle.Render("No movies match.")
	}

	vis := g.visibleRows()
	first := g.rowOff * g.columns
	last := min(first+vis*g.columns, len(g.movies))

	var rows []string
	for i := first; i < last; i += g.columns {
		end := min(i+g.columns, len(g.movies))
		cards := make([]string, 0, g.columns)
		for j := i; j < end; j++ {
			cards = append(cards, g.renderCard(g.movies[j], j == g.cursor))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}

	view := strings.Join(rows, "\n")
	if g.rowOff > 0 {
		view = styles.DimStyle.Render("↑ more") + "\n" + view
	}
	if last < len(g.movies) {
		view = view + "\n" + styles.DimStyle.Render("↓ more")
	}
	return view
}

func (g Grid) renderCard(m domain.Movie, selected bool) string {
	title := truncate(m.Name, cardInnerWidth)
	if title == "" {
		title = styles.DimStyle.Render("(untitled)")
	} else {
		title = styles.TitleStyle.Render(title)
	}

	poster := styles.DimStyle.Render(styles.NoPosterChar + " no poster")
	if m.PosterURL != "" {
		poster = styles.SubtitleStyle.Render(styles.PosterChar + " poster")
	}

	body := lipgloss.NewStyle().Width(cardInnerWidth).Render(
		title + "\n" +
			styles.SubtitleStyle.Render(fmt.Sprintf("%d", m.Year)) + "\n" +
			poster,
	)

	border := styles.InactiveBorder
	if selected && g.focused {
		border = styles.ActiveBorder
	}
	return border.Render(body)
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}
