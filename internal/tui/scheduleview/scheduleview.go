// ABOUTME: Schedule screen showing generation progress and the recommended plan
// ABOUTME: Resolves returned course ids against the catalog for display

package scheduleview

import (
	"fmt"
	"strings"

	"github.com/schaidule/schaidule-cli/internal/client"
	"github.com/schaidule/schaidule-cli/internal/tui/icons"
	"github.com/schaidule/schaidule-cli/internal/tui/styles"
	"github.com/schaidule/schaidule-cli/internal/tui/widgets"
)

type state int

const (
	stateIdle state = iota
	stateRunning
	stateDone
	stateFailed
)

// View displays one schedule generation run
type View struct {
	state   state
	attempt int
	total   int
	lastErr string
	result  *client.Schedule
	failure string
	titles  map[int]string
	width   int
}

// New creates an idle view for runs of up to total attempts
func New(total int) *View {
	return &View{total: total, titles: map[int]string{}}
}

// SetSize updates the available width
func (v *View) SetSize(width int) {
	v.width = width
}

// SetCatalog lets course ids in a result be shown with their titles
func (v *View) SetCatalog(entries []client.Course) {
	titles := make(map[int]string, len(entries))
	for _, e := range entries {
		titles[e.ID] = e.Title
	}
	v.titles = titles
}

// Start marks a new run as in progress
func (v *View) Start() {
	v.state = stateRunning
	v.attempt = 1
	v.lastErr = ""
	v.result = nil
	v.failure = ""
}

// Attempt records that attempt n failed with err and another may follow
func (v *View) Attempt(n int, err error) {
	if v.state != stateRunning {
		return
	}
	if err != nil {
		v.lastErr = err.Error()
	}
	if n < v.total {
		v.attempt = n + 1
	}
}

// Done shows a successful result
func (v *View) Done(s *client.Schedule) {
	v.state = stateDone
	v.result = s
}

// Fail shows why the run gave up
func (v *View) Fail(msg string) {
	v.state = stateFailed
	v.failure = msg
}

// Running reports whether a run is in progress
func (v *View) Running() bool {
	return v.state == stateRunning
}

// Result returns the last successful schedule, if any
func (v *View) Result() *client.Schedule {
	return v.result
}

// View renders the current state
func (v *View) View() string {
	var sb strings.Builder
	sb.WriteString(styles.Title.Render(icons.Schedule.String() + " Your Schedule"))
	sb.WriteString("\n")

	switch v.state {
	case stateIdle:
		sb.WriteString(styles.Subtitle.Render("Press g to generate a schedule from your profile"))

	case stateRunning:
		sb.WriteString("Generating schedule...\n\n")
		sb.WriteString(widgets.Steps(v.attempt, v.total))
		if v.lastErr != "" {
			sb.WriteString("\n")
			sb.WriteString(widgets.StatusText("Last attempt: "+v.lastErr, widgets.StatusWarning))
		}

	case stateFailed:
		sb.WriteString(widgets.StatusText(v.failure, widgets.StatusCritical))
		sb.WriteString("\n")
		sb.WriteString(styles.Help.Render("Press g to try again"))

	case stateDone:
		sb.WriteString(v.renderResult())
	}

	return styles.Panel.Width(v.panelWidth()).Render(sb.String())
}

func (v *View) panelWidth() int {
	if v.width < 60 {
		return 56
	}
	return v.width - 4
}

func (v *View) renderResult() string {
	var sb strings.Builder

	if len(v.result.Recommendations) > 0 {
		sb.WriteString(styles.Section.Render("Recommendations"))
		sb.WriteString("\n")
		for i, r := range v.result.Recommendations {
			sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, r))
		}
	}

	if len(v.result.CourseIDs) > 0 {
		if len(v.result.Recommendations) > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(styles.Section.Render(fmt.Sprintf("Courses (%d)", len(v.result.CourseIDs))))
		sb.WriteString("\n")
		for _, id := range v.result.CourseIDs {
			title, ok := v.titles[id]
			if !ok {
				title = styles.Subtitle.UnsetMarginBottom().Render("not in catalog")
			}
			sb.WriteString(fmt.Sprintf("  %s #%d  %s\n", icons.Course.String(), id, title))
		}
	}

	sb.WriteString(styles.Help.Render("Press g to generate again"))
	return sb.String()
}
