package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/gubarz/postmd/internal/publish"
)

var actionStyles = map[publish.Action]lipgloss.Style{
	publish.ActionCreate: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	publish.ActionUpdate: lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	publish.ActionSkip:   lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	publish.ActionFail:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	publish.ActionDryRun: lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
}

// RenderSummary formats a batch as one line per article plus a totals line
func RenderSummary(sum publish.Summary) string {
	slugW := 4
	for _, o := range sum.Outcomes {
		slugW = max(slugW, lipgloss.Width(o.Slug))
	}
	slugW = min(slugW, 48)

	var b strings.Builder
	for _, o := range sum.Outcomes {
		action := actionStyles[o.Action].Render(fmt.Sprintf("%-7s", o.Action))
		slug := truncateString(o.Slug, slugW)
		if slug == "" {
			slug = styles.Dim.Render(truncateString(o.File, slugW))
		}
		pad := strings.Repeat(" ", max(0, slugW-lipgloss.Width(slug)))
		fmt.Fprintf(&b, "%s  %s%s  %s\n", action, slug, pad, styles.Dim.Render(o.Message))
	}
	b.WriteString(styles.Divider.Render(strings.Repeat("─", slugW+20)))
	b.WriteString("\n")
	b.WriteString(sum.String())
	return b.String()
}
