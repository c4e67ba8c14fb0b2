// ABOUTME: Login and registration forms as a bubbletea model
// ABOUTME: Uses huh forms with a step indicator and validates input before submit

package authform

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/schaidule/schaidule-cli/internal/client"
	"github.com/schaidule/schaidule-cli/internal/tui/icons"
	"github.com/schaidule/schaidule-cli/internal/tui/styles"
	"github.com/schaidule/schaidule-cli/internal/validate"
)

// Mode selects which form is shown
type Mode int

const (
	ModeLogin Mode = iota
	ModeRegister
)

// SubmittedMsg carries validated credentials. Exactly one input is set.
type SubmittedMsg struct {
	Login    *client.LoginInput
	Register *client.RegisterInput
}

// CancelledMsg is sent when the user backs out of the form
type CancelledMsg struct{}

// Form collects credentials across one or more steps
type Form struct {
	mode  Mode
	form  *huh.Form
	step  int
	width int
	err   string
	busy  bool

	// Field values bound to huh inputs
	name     string
	email    string
	password string
	confirm  string
}

// Step names for the progress indicator
var stepNames = map[Mode][]string{
	ModeLogin:    {"Credentials"},
	ModeRegister: {"About you", "Password"},
}

// createTheme returns the huh theme shared by the auth forms
func createTheme() *huh.Theme {
	t := huh.ThemeBase()

	cyan := lipgloss.Color("#06B6D4")
	cyanLight := lipgloss.Color("#22D3EE")
	blue := lipgloss.Color("#3B82F6")
	gray := lipgloss.Color("#9CA3AF")
	grayLight := lipgloss.Color("#E5E7EB")
	red := lipgloss.Color("#F87171")
	slate := lipgloss.Color("#334155")

	t.Group.Title = lipgloss.NewStyle().
		Foreground(cyan).
		Bold(true).
		MarginBottom(1)
	t.Group.Description = lipgloss.NewStyle().
		Foreground(gray).
		MarginBottom(1)

	t.Focused.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(cyan)
	t.Focused.Title = lipgloss.NewStyle().
		Foreground(cyanLight).
		Bold(true)
	t.Focused.Description = lipgloss.NewStyle().
		Foreground(gray)
	t.Focused.ErrorIndicator = lipgloss.NewStyle().
		Foreground(red).
		SetString(" *")
	t.Focused.ErrorMessage = lipgloss.NewStyle().
		Foreground(red)

	t.Focused.TextInput.Cursor = lipgloss.NewStyle().
		Foreground(cyan)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().
		Foreground(gray)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().
		Foreground(cyan)
	t.Focused.TextInput.Text = lipgloss.NewStyle().
		Foreground(grayLight)

	t.Focused.FocusedButton = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(blue).
		Padding(0, 2).
		MarginRight(1)
	t.Focused.BlurredButton = lipgloss.NewStyle().
		Foreground(gray).
		Background(slate).
		Padding(0, 2).
		MarginRight(1)

	t.Blurred = t.Focused
	t.Blurred.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.HiddenBorder()).
		BorderLeft(true)
	t.Blurred.Title = lipgloss.NewStyle().
		Foreground(gray)

	return t
}

// New creates a form for mode
func New(mode Mode) *Form {
	f := &Form{mode: mode, step: 1}
	f.form = f.createStepForm()
	return f
}

// Mode reports which form this is
func (f *Form) Mode() Mode {
	return f.mode
}

func (f *Form) createStepForm() *huh.Form {
	if f.mode == ModeLogin {
		return huh.NewForm(
			huh.NewGroup(
				f.emailInput(),
				huh.NewInput().
					Title("Password").
					EchoMode(huh.EchoModePassword).
					Value(&f.password).
					Validate(func(s string) error { return validate.Field("password", s, "required") }),
			).Title("Log in").
				Description("Welcome back. Enter your SchAIdule credentials."),
		).WithTheme(createTheme())
	}

	if f.step == 1 {
		return huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Name").
					Placeholder("Ada Lovelace").
					Value(&f.name).
					Validate(func(s string) error { return validate.Field("name", strings.TrimSpace(s), "required") }),
				f.emailInput(),
			).Title("Step 1: About you").
				Description("Create your SchAIdule account"),
		).WithTheme(createTheme())
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Password").
				Description("At least 6 characters").
				EchoMode(huh.EchoModePassword).
				Value(&f.password).
				Validate(func(s string) error { return validate.Field("password", s, "required,min=6") }),
			huh.NewInput().
				Title("Confirm password").
				EchoMode(huh.EchoModePassword).
				Value(&f.confirm).
				Validate(f.validateConfirm),
		).Title("Step 2: Password").
			Description("Choose a password for your account"),
	).WithTheme(createTheme())
}

func (f *Form) emailInput() *huh.Input {
	return huh.NewInput().
		Title("Email").
		Placeholder("you@example.edu").
		Value(&f.email).
		Validate(func(s string) error { return validate.Field("email", strings.TrimSpace(s), "required,email") })
}

func (f *Form) validateConfirm(s string) error {
	if s != f.password {
		return fmt.Errorf("passwords do not match")
	}
	return nil
}

// Init implements tea.Model
func (f *Form) Init() tea.Cmd {
	return f.form.Init()
}

// Update implements tea.Model
func (f *Form) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		f.width = msg.Width
	case tea.KeyMsg:
		if f.busy {
			// Waiting on the backend
			return f, nil
		}
		if msg.String() == "esc" {
			return f, func() tea.Msg { return CancelledMsg{} }
		}
		f.err = ""
	}

	form, cmd := f.form.Update(msg)
	if hf, ok := form.(*huh.Form); ok {
		f.form = hf
	}

	if f.form.State == huh.StateCompleted {
		return f.advanceStep()
	}
	return f, cmd
}

func (f *Form) advanceStep() (tea.Model, tea.Cmd) {
	if f.step < len(stepNames[f.mode]) {
		f.step++
		f.form = f.createStepForm()
		return f, f.form.Init()
	}

	msg := f.Submitted()
	f.busy = true
	return f, func() tea.Msg { return msg }
}

// Submitted builds the message for the collected values
func (f *Form) Submitted() SubmittedMsg {
	email := strings.TrimSpace(f.email)
	if f.mode == ModeLogin {
		return SubmittedMsg{Login: &client.LoginInput{Email: email, Password: f.password}}
	}
	return SubmittedMsg{Register: &client.RegisterInput{
		Name:     strings.TrimSpace(f.name),
		Email:    email,
		Password: f.password,
	}}
}

// SetError shows a backend rejection and restarts the form, keeping the
// name and email already entered
func (f *Form) SetError(msg string) tea.Cmd {
	f.err = msg
	f.busy = false
	f.password = ""
	f.confirm = ""
	f.step = 1
	f.form = f.createStepForm()
	return f.form.Init()
}

// Busy reports whether a submit is waiting on the backend
func (f *Form) Busy() bool {
	return f.busy
}

// Err returns the message shown above the form
func (f *Form) Err() string {
	return f.err
}

// View implements tea.Model
func (f *Form) View() string {
	var sb strings.Builder

	sb.WriteString(f.renderProgress())
	sb.WriteString("\n\n")

	if f.err != "" {
		sb.WriteString(styles.StatusCritical.Render(icons.Critical.String() + " " + f.err))
		sb.WriteString("\n\n")
	}
	if f.busy {
		sb.WriteString(styles.Subtitle.Render("Contacting SchAIdule..."))
		return sb.String()
	}

	sb.WriteString(f.form.View())
	return sb.String()
}

// renderProgress renders the step indicator line
func (f *Form) renderProgress() string {
	names := stepNames[f.mode]

	var steps []string
	for i, name := range names {
		stepNum := i + 1
		var indicator string
		var nameStyle lipgloss.Style

		if stepNum < f.step {
			indicator = lipgloss.NewStyle().Foreground(styles.Secondary).Render(icons.CheckOK.String())
			nameStyle = lipgloss.NewStyle().Foreground(styles.Muted)
		} else if stepNum == f.step {
			indicator = lipgloss.NewStyle().Foreground(styles.Primary).Bold(true).Render("●")
			nameStyle = lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
		} else {
			indicator = lipgloss.NewStyle().Foreground(styles.Muted).Render("○")
			nameStyle = lipgloss.NewStyle().Foreground(styles.Muted)
		}

		steps = append(steps, fmt.Sprintf("%s %s", indicator, nameStyle.Render(name)))
	}

	title := "Log in"
	if f.mode == ModeRegister {
		title = "Create account"
	}
	return styles.Title.Render(icons.Login.String()+" "+title) + "\n" + strings.Join(steps, "    ")
}
