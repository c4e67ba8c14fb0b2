// ABOUTME: Step meter for bounded retry loops
// ABOUTME: Shows finished, current and pending attempts as a row of markers

package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Steps renders markers for total attempts with current in progress.
// Attempts before current are drawn as failed.
func Steps(current, total int) string {
	if total <= 0 {
		return ""
	}
	failed := lipgloss.NewStyle().Foreground(BadgeCritBg)
	active := lipgloss.NewStyle().Foreground(BadgeInfoBg).Bold(true)
	pending := lipgloss.NewStyle().Foreground(BadgeNeutralBg)

	marks := make([]string, 0, total)
	for i := 1; i <= total; i++ {
		switch {
		case i < current:
			marks = append(marks, failed.Render("✗"))
		case i == current:
			marks = append(marks, active.Render("●"))
		default:
			marks = append(marks, pending.Render("○"))
		}
	}
	return fmt.Sprintf("%s  attempt %d of %d", strings.Join(marks, " "), current, total)
}
