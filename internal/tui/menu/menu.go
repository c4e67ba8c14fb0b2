// ABOUTME: Landing menu for the TUI
// ABOUTME: Offers login and register when logged out, account and schedule when logged in

package menu

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// Action is a menu choice
type Action int

const (
	ActionLogin Action = iota
	ActionRegister
	ActionAccount
	ActionSchedule
	ActionLogout
	ActionQuit
)

// SelectedMsg is sent when an option is chosen
type SelectedMsg struct {
	Action Action
}

// CancelledMsg is sent when the user leaves the menu
type CancelledMsg struct{}

type option struct {
	label string
	value Action
}

// Menu is the landing page selection list
type Menu struct {
	options  []option
	selected Action
	form     *huh.Form
}

// New creates the menu for the current login state
func New(loggedIn bool) *Menu {
	m := &Menu{}
	if loggedIn {
		m.options = []option{
			{label: "Generate schedule", value: ActionSchedule},
			{label: "My account", value: ActionAccount},
			{label: "Log out", value: ActionLogout},
			{label: "Quit", value: ActionQuit},
		}
	} else {
		m.options = []option{
			{label: "Log in", value: ActionLogin},
			{label: "Create account", value: ActionRegister},
			{label: "Quit", value: ActionQuit},
		}
	}
	m.selected = m.options[0].value
	m.form = m.buildForm()
	return m
}

func (m *Menu) buildForm() *huh.Form {
	opts := make([]huh.Option[Action], 0, len(m.options))
	for _, opt := range m.options {
		opts = append(opts, huh.NewOption(opt.label, opt.value))
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[Action]().
				Title("Plan your semester").
				Options(opts...).
				Value(&m.selected),
		),
	).WithTheme(huh.ThemeBase()).WithShowHelp(false)
}

// Init implements tea.Model
func (m *Menu) Init() tea.Cmd {
	return m.form.Init()
}

// Update implements tea.Model
func (m *Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "q", "esc":
			return m, func() tea.Msg { return CancelledMsg{} }
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		choice := m.selected
		// Rebuild so the menu is usable again when shown next
		m.form = m.buildForm()
		return m, tea.Batch(m.form.Init(), func() tea.Msg { return SelectedMsg{Action: choice} })
	}
	return m, cmd
}

// View implements tea.Model
func (m *Menu) View() string {
	return m.form.View()
}

// String returns the string representation of an Action
func (a Action) String() string {
	switch a {
	case ActionLogin:
		return "login"
	case ActionRegister:
		return "register"
	case ActionAccount:
		return "account"
	case ActionSchedule:
		return "schedule"
	case ActionLogout:
		return "logout"
	case ActionQuit:
		return "quit"
	default:
		return "unknown"
	}
}
