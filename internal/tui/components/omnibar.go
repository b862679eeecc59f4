package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"cinelog/internal/domain"
	"cinelog/internal/search"
	"cinelog/internal/tui/styles"
)

const (
	omnibarWidth   = 52
	omnibarMaxRows = 8
)

// Omnibar is the quick-open overlay: a fuzzy jump-to-movie box layered over
// the grid. It ranks against a search index rebuilt whenever the collection
// changes.
type Omnibar struct {
	input   textinput.Model
	index   *search.Index
	matches []search.Match
	cursor  int
}

// NewOmnibar creates the omnibar with an empty index.
func NewOmnibar() Omnibar {
	ti := textinput.New()
	ti.Placeholder = "Jump to movie..."
	ti.Prompt = "› "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle
	ti.CharLimit = 100
	ti.Width = omnibarWidth - 6
	return Omnibar{input: ti, index: search.NewIndex(nil)}
}

// SetIndex installs a fresh index and re-ranks the current query against it.
func (o *Omnibar) SetIndex(index *search.Index) {
	o.index = index
	o.rank()
}

// Open clears the query and focuses the input.
func (o *Omnibar) Open() {
	o.input.SetValue("")
	o.input.Focus()
	o.matches = nil
	o.cursor = 0
}

// Close blurs the input.
func (o *Omnibar) Close() {
	o.input.Blur()
}

// Selected returns the highlighted match, if any.
func (o Omnibar) Selected() (domain.Movie, bool) {
	if o.cursor < 0 || o.cursor >= len(o.matches) {
		return domain.Movie{}, false
	}
	return o.matches[o.cursor].Movie, true
}

func (o *Omnibar) rank() {
	o.matches = o.index.Rank(o.input.Value())
	if o.cursor >= len(o.matches) {
		o.cursor = 0
	}
}

// Update handles result navigation and forwards typing to the input.
func (o Omnibar) Update(msg tea.Msg) (Omnibar, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "down", "ctrl+n":
			if o.cursor < len(o.matches)-1 {
				o.cursor++
			}
			return o, nil
		case "up", "ctrl+p":
			if o.cursor > 0 {
				o.cursor--
			}
			return o, nil
		}
	}

	var cmd tea.Cmd
	o.input, cmd = o.input.Update(msg)
	o.rank()
	return o, cmd
}

// View renders the omnibar overlay.
func (o Omnibar) View() string {
	var b strings.Builder
	b.WriteString(o.input.View())
	b.WriteString("\n")

	if o.input.Value() == "" {
		b.WriteString(styles.DimStyle.Render("type to search · enter open · esc close"))
	} else if len(o.matches) == 0 {
		b.WriteString(styles.DimStyle.Render("no matches"))
	} else {
		shown := o.matches
		if len(shown) > omnibarMaxRows {
			shown = shown[:omnibarMaxRows]
		}
		for i, m := range shown {
			line := fmt.Sprintf("%s %s",
				highlightName(m.Movie.Name, m.MatchedIndexes),
				styles.DimStyle.Render(fmt.Sprintf("(%d)", m.Movie.Year)))
			if i == o.cursor {
				line = styles.AccentStyle.Render("▸ ") + line
			} else {
				line = "  " + line
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
		if len(o.matches) > omnibarMaxRows {
			b.WriteString(styles.DimStyle.Render(fmt.Sprintf("  +%d more", len(o.matches)-omnibarMaxRows)))
		}
	}

	return styles.ActiveBorder.Render(
		lipgloss.NewStyle().Width(omnibarWidth).Padding(0, 1).Render(b.String()),
	)
}

// highlightName emphasizes the matched character positions. Fold-only
// matches carry no positions and render plain.
func highlightName(name string, indexes []int) string {
	if len(indexes) == 0 {
		return name
	}
	hot := make(map[int]struct{}, len(indexes))
	for _, i := range indexes {
		hot[i] = struct{}{}
	}
	var b strings.Builder
	for i, r := range []rune(name) {
		if _, ok := hot[i]; ok {
			b.WriteString(styles.MatchStyle.Render(string(r)))
		} else {
			b.WriteString(string(r))
		}
	}
	return b.String()
}
