package render

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	humanize "github.com/dustin/go-humanize"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/dergoegge/bitcoin-core-github-metadata-stats/internal/model"
)

const maxErrorWidth = 48

// StyledText applies a lipgloss style to text when colors are enabled.
// When colors are disabled, it returns the plain text unchanged.
func StyledText(text string, style lipgloss.Style) string {
	if ColorsEnabled() {
		return style.Render(text)
	}
	return text
}

// truncate shortens a string to maxLen runes, appending an ellipsis if truncated.
func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

func statusLabel(ok bool) string {
	if ok {
		return "✔ ok"
	}
	return "✘ failed"
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(time.Second / 10).String()
}

// RunSummary renders the per-repository outcomes of a batch run as a table.
func RunSummary(runs []model.Run) string {
	if len(runs) == 0 {
		return "No repositories processed."
	}

	if !ColorsEnabled() {
		return plainRunSummary(runs)
	}

	headers := []string{"Repository", "Status", "Records", "Unmapped", "Duration", "Output"}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, runToRow(&r))
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1)

			if row == table.HeaderRow {
				return s.Bold(true).Foreground(lipgloss.Color("15"))
			}

			if row < 0 || row >= len(runs) {
				return s
			}

			switch col {
			case 0: // Repository
				return s.Bold(true)
			case 1: // Status
				if runs[row].OK {
					return s.Foreground(lipgloss.Color("10"))
				}
				return s.Foreground(lipgloss.Color("9"))
			default:
				return s
			}
		})

	return t.Render()
}

func runToRow(r *model.Run) []string {
	if !r.OK {
		return []string{
			r.Repository,
			statusLabel(false),
			"-",
			"-",
			formatDuration(r.Duration),
			truncate(r.Error, maxErrorWidth),
		}
	}
	return []string{
		r.Repository,
		statusLabel(true),
		fmt.Sprintf("%d", r.Records),
		fmt.Sprintf("%d", r.Unmapped),
		formatDuration(r.Duration),
		r.OutputPath,
	}
}

func plainRunSummary(runs []model.Run) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%-30s %-10s %8s %9s %10s %s\n",
		"Repository", "Status", "Records", "Unmapped", "Duration", "Output")
	fmt.Fprintf(&b, "%s\n", strings.Repeat("-", 100))

	for i := range runs {
		row := runToRow(&runs[i])
		fmt.Fprintf(&b, "%-30s %-10s %8s %9s %10s %s\n",
			row[0], row[1], row[2], row[3], row[4], row[5])
	}

	return b.String()
}

// History renders ledger entries as a table, most recent first.
func History(runs []model.Run) string {
	if len(runs) == 0 {
		return "No run history yet."
	}

	if !ColorsEnabled() {
		return plainHistory(runs)
	}

	headers := []string{"When", "Repository", "Status", "Records", "Unmapped", "Duration"}

	rows := make([][]string, 0, len(runs))
	for i := range runs {
		rows = append(rows, historyRow(&runs[i]))
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1)

			if row == table.HeaderRow {
				return s.Bold(true).Foreground(lipgloss.Color("15"))
			}

			if row < 0 || row >= len(runs) {
				return s
			}

			if col == 2 {
				if runs[row].OK {
					return s.Foreground(lipgloss.Color("10"))
				}
				return s.Foreground(lipgloss.Color("9"))
			}
			return s
		})

	return t.Render()
}

func historyRow(r *model.Run) []string {
	return []string{
		humanize.Time(r.CreatedAt),
		r.Repository,
		statusLabel(r.OK),
		fmt.Sprintf("%d", r.Records),
		fmt.Sprintf("%d", r.Unmapped),
		formatDuration(r.Duration),
	}
}

func plainHistory(runs []model.Run) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%-20s %-30s %-10s %8s %9s %10s\n",
		"When", "Repository", "Status", "Records", "Unmapped", "Duration")
	fmt.Fprintf(&b, "%s\n", strings.Repeat("-", 92))

	for i := range runs {
		row := historyRow(&runs[i])
		fmt.Fprintf(&b, "%-20s %-30s %-10s %8s %9s %10s\n",
			row[0], row[1], row[2], row[3], row[4], row[5])
	}

	return b.String()
}
