package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"cinelog/internal/tui/styles"
)

// Confirm is the yes/no modal used before destructive operations.
type Confirm struct {
	prompt  string
	movieID string
}

// Show arms the modal with a prompt and the id it is asking about.
func (c *Confirm) Show(prompt, movieID string) {
	c.prompt = prompt
	c.movieID = movieID
}

// MovieID returns the id the confirmation is pending on.
func (c Confirm) MovieID() string {
	return c.movieID
}

// View renders the confirmation modal.
func (c Confirm) View() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Confirm"))
	b.WriteString("\n\n")
	b.WriteString(c.prompt)
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("%s · %s",
		styles.ErrorStyle.Render("y delete"),
		styles.DimStyle.Render("n cancel")))

	return styles.ActiveBorder.Render(
		lipgloss.NewStyle().Width(44).Padding(0, 1).Render(b.String()),
	)
}
