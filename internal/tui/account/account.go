// ABOUTME: Account screen showing the profile with an inline editor
// ABOUTME: Adds catalog entries through debounced search and saves the whole profile at once

package account

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/schaidule/schaidule-cli/internal/catalog"
	"github.com/schaidule/schaidule-cli/internal/client"
	"github.com/schaidule/schaidule-cli/internal/profile"
	"github.com/schaidule/schaidule-cli/internal/tui/icons"
	"github.com/schaidule/schaidule-cli/internal/tui/search"
	"github.com/schaidule/schaidule-cli/internal/tui/styles"
)

// SaveMsg asks the app to write the draft to the backend
type SaveMsg struct{}

// BackMsg asks the app to leave the account screen
type BackMsg struct{}

// NoticeMsg carries a transient message for the footer
type NoticeMsg struct {
	Notice profile.Notice
}

type mode int

const (
	modeView mode = iota
	modeSearch
	modeGoals
)

// Account displays and edits the logged-in profile
type Account struct {
	editor   *profile.Editor
	cache    *catalog.Cache
	debounce time.Duration

	mode   mode
	list   profile.List
	cursor int
	search *search.Search
	goals  textinput.Model
	saving bool
	width  int
	height int
}

// New creates the account screen over editor, suggesting from cache
func New(editor *profile.Editor, cache *catalog.Cache, debounce time.Duration) *Account {
	return &Account{
		editor:   editor,
		cache:    cache,
		debounce: debounce,
	}
}

// SetSize updates the screen dimensions
func (a *Account) SetSize(width, height int) {
	a.width = width
	a.height = height
}

// Editing reports whether there are unsaved changes
func (a *Account) Editing() bool {
	return a.editor.Editing()
}

// Saving reports whether a save is in flight
func (a *Account) Saving() bool {
	return a.saving
}

// Searching reports whether the catalog search is open
func (a *Account) Searching() bool {
	return a.mode == modeSearch
}

// Finish applies the outcome of a save started by SaveMsg
func (a *Account) Finish(saved *client.User, err error) profile.Notice {
	a.saving = false
	return a.editor.Finish(saved, err)
}

// RefreshSearch re-runs an open search, e.g. after the catalog arrives
func (a *Account) RefreshSearch() {
	if a.search != nil && strings.TrimSpace(a.search.Term()) != "" {
		a.search.Refresh()
	}
}

// Init implements tea.Model
func (a *Account) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (a *Account) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case search.PickedMsg:
		a.closeSearch()
		notice := a.editor.Add(a.list, msg.Course.Title)
		a.cursor = len(a.editor.Items(a.list)) - 1
		return a, noticeCmd(notice)

	case search.CancelledMsg:
		a.closeSearch()
		return a, nil

	case tea.KeyMsg:
		switch a.mode {
		case modeSearch:
			return a.updateSearch(msg)
		case modeGoals:
			return a.updateGoals(msg)
		default:
			return a.updateView(msg)
		}
	}

	// Debounce ticks and cursor blinks belong to the open input
	switch a.mode {
	case modeSearch:
		return a.updateSearch(msg)
	case modeGoals:
		return a.updateGoals(msg)
	}
	return a, nil
}

func (a *Account) updateView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.saving {
		return a, nil
	}

	items := a.editor.Items(a.list)
	switch msg.String() {
	case "tab", "left", "right", "h", "l":
		if a.list == profile.CompletedCourses {
			a.list = profile.Sports
		} else {
			a.list = profile.CompletedCourses
		}
		a.cursor = 0
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j":
		if a.cursor < len(items)-1 {
			a.cursor++
		}
	case "a":
		return a, a.openSearch()
	case "d", "x", "delete":
		if len(items) == 0 {
			return a, nil
		}
		title := items[a.cursor]
		a.editor.Remove(a.list, title)
		if a.cursor > 0 && a.cursor >= len(items)-1 {
			a.cursor--
		}
		return a, noticeCmd(profile.Notice{Level: profile.Success, Text: "Removed " + title})
	case "g":
		return a, a.openGoals()
	case "s", "ctrl+s":
		if !a.editor.Editing() {
			return a, noticeCmd(profile.Notice{Level: profile.Info, Text: "No changes to save"})
		}
		a.saving = true
		return a, func() tea.Msg { return SaveMsg{} }
	case "b", "esc":
		return a, func() tea.Msg { return BackMsg{} }
	}
	return a, nil
}

func (a *Account) openSearch() tea.Cmd {
	list := a.list
	title := "Add completed course"
	if list == profile.Sports {
		title = "Add sport or club"
	}
	a.search = search.New(title, func(term string) []client.Course {
		return a.editor.Suggest(a.cache, list, term)
	}, a.debounce)
	a.mode = modeSearch
	return a.search.Init()
}

func (a *Account) closeSearch() {
	a.search = nil
	a.mode = modeView
}

func (a *Account) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.search == nil {
		a.mode = modeView
		return a, nil
	}
	model, cmd := a.search.Update(msg)
	a.search = model.(*search.Search)
	return a, cmd
}

func (a *Account) openGoals() tea.Cmd {
	ti := textinput.New()
	ti.Placeholder = "e.g. Graduate in CS with a robotics focus"
	ti.CharLimit = 500
	ti.Width = 60
	ti.SetValue(a.editor.Draft().FutureGoals)
	ti.Focus()
	a.goals = ti
	a.mode = modeGoals
	return textinput.Blink
}

func (a *Account) updateGoals(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			a.mode = modeView
			return a, nil
		case "enter":
			a.editor.SetGoals(strings.TrimSpace(a.goals.Value()))
			a.mode = modeView
			return a, noticeCmd(profile.Notice{Level: profile.Success, Text: "Goals updated"})
		}
	}
	var cmd tea.Cmd
	a.goals, cmd = a.goals.Update(msg)
	return a, cmd
}

func noticeCmd(n profile.Notice) tea.Cmd {
	if n.Empty() {
		return nil
	}
	return func() tea.Msg { return NoticeMsg{Notice: n} }
}

// View renders the profile pane and, when open, the search or goals editor
func (a *Account) View() string {
	profilePane := a.viewProfile()

	var side string
	switch a.mode {
	case modeSearch:
		side = a.search.View()
	case modeGoals:
		side = styles.Title.Render(icons.Goal.String()+" Future goals") + "\n" + a.goals.View() +
			"\n\n" + styles.Help.Render("Enter to keep, Esc to cancel")
	default:
		side = a.viewActions()
	}

	leftWidth, rightWidth := a.paneWidths()
	left := styles.ActivePanel.Width(leftWidth).Render(profilePane)
	right := styles.Panel.Width(rightWidth).Render(side)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func (a *Account) paneWidths() (int, int) {
	width := a.width
	if width < 80 {
		width = 80
	}
	left := (width - 4) / 2
	return left, width - left - 4
}

func (a *Account) viewProfile() string {
	draft := a.editor.Draft()
	var sb strings.Builder

	title := "My Account"
	if a.editor.Editing() {
		title += " (unsaved)"
	}
	sb.WriteString(styles.Title.Render(icons.User.String() + " " + title))
	sb.WriteString("\n")
	sb.WriteString(styles.ValueStyle.Render(draft.Name))
	sb.WriteString("\n")
	sb.WriteString(styles.Subtitle.Render(draft.Email))
	sb.WriteString("\n")

	sb.WriteString(a.viewList(profile.CompletedCourses, icons.Course, draft.CompletedCourses))
	sb.WriteString("\n")
	sb.WriteString(a.viewList(profile.Sports, icons.Sport, draft.Sports))
	sb.WriteString("\n")

	sb.WriteString(styles.Section.Render(icons.Goal.String() + " Future goals"))
	sb.WriteString("\n")
	goals := draft.FutureGoals
	if goals == "" {
		goals = styles.Subtitle.Render("  none yet")
	} else {
		goals = "  " + goals
	}
	sb.WriteString(goals)

	if a.saving {
		sb.WriteString("\n\n")
		sb.WriteString(styles.StatusWarning.Render("Saving..."))
	}
	return sb.String()
}

func (a *Account) viewList(l profile.List, icon icons.Icon, items []string) string {
	var sb strings.Builder
	heading := fmt.Sprintf("%s %s (%d)", icon.String(), strings.ToUpper(l.String()[:1])+l.String()[1:], len(items))
	if l == a.list {
		sb.WriteString(styles.Section.Render(heading))
	} else {
		sb.WriteString(styles.Subtitle.UnsetMarginBottom().Render(heading))
	}
	sb.WriteString("\n")

	if len(items) == 0 {
		sb.WriteString(styles.Subtitle.Render("  none yet"))
		return sb.String()
	}
	for i, it := range items {
		cursor := "  "
		style := styles.Normal
		if l == a.list && i == a.cursor {
			cursor = "> "
			style = styles.Selected
		}
		sb.WriteString(cursor + style.Render(it) + "\n")
	}
	return sb.String()
}

func (a *Account) viewActions() string {
	var sb strings.Builder
	sb.WriteString(styles.Title.Render(icons.Course.String() + " Catalog"))
	sb.WriteString("\n")

	switch {
	case a.cache.Loading():
		sb.WriteString(styles.Subtitle.Render("Loading courses..."))
	case a.cache.Err() != "":
		sb.WriteString(styles.StatusCritical.Render("Could not load courses: " + a.cache.Err()))
	case a.cache.Fetched():
		sb.WriteString(fmt.Sprintf("%d courses, %d sports/clubs\n", len(a.cache.Academic()), len(a.cache.Sports())))
		remaining := len(a.cache.Remaining(a.editor.Items(profile.CompletedCourses)))
		sb.WriteString(styles.Subtitle.Render(fmt.Sprintf("Not yet completed: %d", remaining)))
	default:
		sb.WriteString(styles.Subtitle.Render("Catalog not loaded"))
	}
	sb.WriteString("\n\n")

	sb.WriteString(icons.Search.String() + " a  Add to " + a.list.String() + "\n")
	sb.WriteString(icons.Critical.String() + " d  Remove selected\n")
	sb.WriteString(icons.Goal.String() + " g  Edit goals\n")
	sb.WriteString(icons.Save.String() + " s  Save changes\n")
	sb.WriteString(icons.Back.String() + " b  Back to menu\n")
	return sb.String()
}
