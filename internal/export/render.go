package export

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/claude/liftplan/internal/plan"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// RenderOutline draws the outline as a bordered terminal table, one row per
// exercise, with each week cell split over several lines. Warnings follow
// the table.
func RenderOutline(title string, o plan.Outline) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		BorderRow(true).
		Headers(o.Headers()...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, r := range o.Rows {
		cells := make([]string, 0, 2+len(r.Cells))
		cells = append(cells, r.Name, string(r.TrainingMax))
		for _, c := range r.Cells {
			cells = append(cells, strings.Join(c.Lines(), "\n"))
		}
		t.Row(cells...)
	}

	var b strings.Builder
	if title != "" {
		b.WriteString(headerStyle.UnsetPadding().Render(title))
		b.WriteString("\n")
	}
	b.WriteString(t.Render())
	b.WriteString("\n")
	for _, w := range o.Warnings {
		b.WriteString(warnStyle.Render("warning: " + w.Message))
		b.WriteString("\n")
	}
	return b.String()
}
