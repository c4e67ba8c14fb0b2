// ABOUTME: Debounced catalog search component for the TUI
// ABOUTME: Runs the filter only after typing pauses, then lets the user pick a result

package search

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/schaidule/schaidule-cli/internal/catalog"
	"github.com/schaidule/schaidule-cli/internal/client"
	"github.com/schaidule/schaidule-cli/internal/tui/icons"
	"github.com/schaidule/schaidule-cli/internal/tui/styles"
	"github.com/schaidule/schaidule-cli/internal/tui/widgets"
)

// maxResults caps how many matches are listed
const maxResults = 10

// instances gives each Search a distinct id so ticks from a closed
// component never match a new one
var instances atomic.Int64

// Searcher returns the matches for term
type Searcher func(term string) []client.Course

// PickedMsg is sent when the user chooses a result
type PickedMsg struct {
	Course client.Course
}

// CancelledMsg is sent when the user closes the search
type CancelledMsg struct{}

// debounceMsg fires after the quiet period for one keystroke generation
type debounceMsg struct {
	id  int64
	gen int
}

// Search is a text input with a debounced result list
type Search struct {
	id       int64
	title    string
	input    textinput.Model
	searcher Searcher
	debounce time.Duration
	gen      int
	results  []client.Course
	cursor   int
	searched bool
	width    int
}

// New creates a search over searcher that waits debounce after the last
// keystroke before filtering
func New(title string, searcher Searcher, debounce time.Duration) *Search {
	ti := textinput.New()
	ti.Placeholder = "Start typing a title..."
	ti.CharLimit = 120
	ti.Width = 50
	ti.Focus()

	return &Search{
		id:       instances.Add(1),
		title:    title,
		input:    ti,
		searcher: searcher,
		debounce: debounce,
	}
}

// Init implements tea.Model
func (s *Search) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model
func (s *Search) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		return s, nil

	case debounceMsg:
		if msg.id != s.id || msg.gen != s.gen {
			// Superseded by a later keystroke, or from a closed search
			return s, nil
		}
		s.Refresh()
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return CancelledMsg{} }
		case "up", "ctrl+p":
			if s.cursor > 0 {
				s.cursor--
			}
			return s, nil
		case "down", "ctrl+n":
			if s.cursor < len(s.visible())-1 {
				s.cursor++
			}
			return s, nil
		case "enter":
			results := s.visible()
			if len(results) == 0 {
				return s, nil
			}
			picked := results[s.cursor]
			return s, func() tea.Msg { return PickedMsg{Course: picked} }
		}

		before := s.input.Value()
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		if s.input.Value() == before {
			return s, cmd
		}
		s.gen++
		return s, tea.Batch(cmd, s.tick())
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *Search) tick() tea.Cmd {
	id, gen := s.id, s.gen
	return tea.Tick(s.debounce, func(time.Time) tea.Msg {
		return debounceMsg{id: id, gen: gen}
	})
}

// Refresh re-runs the filter for the current term
func (s *Search) Refresh() {
	s.results = s.searcher(s.input.Value())
	s.searched = true
	if s.cursor >= len(s.visible()) {
		s.cursor = 0
	}
}

// Term returns the text typed so far
func (s *Search) Term() string {
	return s.input.Value()
}

// Results returns the matches from the last completed filter
func (s *Search) Results() []client.Course {
	return append([]client.Course(nil), s.results...)
}

func (s *Search) visible() []client.Course {
	if len(s.results) > maxResults {
		return s.results[:maxResults]
	}
	return s.results
}

// View implements tea.Model
func (s *Search) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render(icons.Search.String() + " " + s.title))
	b.WriteString("\n")
	b.WriteString(s.input.View())
	b.WriteString("\n\n")

	switch {
	case strings.TrimSpace(s.input.Value()) == "":
		b.WriteString(styles.Subtitle.Render("Type to search the catalog"))
	case !s.searched:
		b.WriteString(styles.Subtitle.Render("Searching..."))
	case len(s.results) == 0:
		b.WriteString(styles.Subtitle.Render("No matches"))
	default:
		for i, c := range s.visible() {
			cursor := "  "
			style := styles.Normal
			if i == s.cursor {
				cursor = "> "
				style = styles.Selected
			}
			line := c.Title
			if c.Section != "" {
				line += " (" + c.Section + ")"
			}
			b.WriteString(cursor + style.Render(line) + " " + widgets.CategoryBadge(catalog.Classify(c.Title)) + "\n")
		}
		if extra := len(s.results) - maxResults; extra > 0 {
			b.WriteString(styles.Subtitle.Render(fmt.Sprintf("  ...and %d more, keep typing to narrow", extra)))
		}
	}

	return b.String()
}
