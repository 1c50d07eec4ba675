package cli

import (
	"fmt"

	dom "taskcli/internal/domain"
)

const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorRed    = "\033[91m"
	colorGreen  = "\033[92m"
	colorYellow = "\033[93m"
	colorBlue   = "\033[94m"
	colorCyan   = "\033[96m"
)

// printTaskTable renders tasks in fixed-width columns. ANSI escapes around
// individual cells would skew tabwriter's width accounting, so columns are
// padded manually.
func (a *App) printTaskTable(tasks []dom.Task) {
	if len(tasks) == 0 {
		a.warnf("No tasks found.")
		return
	}

	fmt.Fprintf(a.Out, "\n%s%-5s %-22s %-12s %-8s %-18s %-10s %s%s\n",
		colorBold, "ID", "Name", "Project", "Priority", "Due", "Status", "Rec", colorReset)
	fmt.Fprintf(a.Out, "%s%s%s\n", colorBlue, divider(82), colorReset)

	for _, t := range tasks {
		status := colorYellow + "pending  " + colorReset
		if t.Completed {
			status = colorGreen + "completed" + colorReset
		}
		recurring := " "
		if t.IsRecurring {
			recurring = "*"
		}
		due := t.DueDate.Format("2006-01-02") + " " + t.DueTime

		fmt.Fprintf(a.Out, "%-5d %-22s %-12s %s%-8s%s %-18s %s  %s\n",
			t.ID, clip(t.Name, 22), clip(t.Project, 12),
			priorityColor(t.Priority), t.Priority, colorReset,
			due, status, recurring)
	}

	fmt.Fprintf(a.Out, "\n%sTotal: %d task(s)%s\n", colorCyan, len(tasks), colorReset)
}

func priorityColor(p dom.Priority) string {
	switch p {
	case dom.PriorityHigh:
		return colorRed
	case dom.PriorityLow:
		return colorGreen
	default:
		return colorYellow
	}
}

// clip shortens s to at most max characters, counting runes so multi-byte
// names never get cut mid-character.
func clip(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

func divider(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = '-'
	}
	return string(b)
}
