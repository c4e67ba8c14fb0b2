// ABOUTME: Root bubbletea model for the TUI application
// ABOUTME: Manages screen state, guards protected screens and routes input to child components

package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/schaidule/schaidule-cli/internal/catalog"
	"github.com/schaidule/schaidule-cli/internal/client"
	"github.com/schaidule/schaidule-cli/internal/config"
	"github.com/schaidule/schaidule-cli/internal/profile"
	"github.com/schaidule/schaidule-cli/internal/schedule"
	"github.com/schaidule/schaidule-cli/internal/session"
	"github.com/schaidule/schaidule-cli/internal/tui/account"
	"github.com/schaidule/schaidule-cli/internal/tui/authform"
	"github.com/schaidule/schaidule-cli/internal/tui/icons"
	"github.com/schaidule/schaidule-cli/internal/tui/menu"
	"github.com/schaidule/schaidule-cli/internal/tui/scheduleview"
	"github.com/schaidule/schaidule-cli/internal/tui/styles"
	"github.com/schaidule/schaidule-cli/internal/tui/widgets"
)

// Screen represents the current TUI screen
type Screen int

const (
	ScreenMenu Screen = iota
	ScreenLogin
	ScreenRegister
	ScreenAccount
	ScreenSchedule
)

// protected reports whether s needs a logged-in session
func (s Screen) protected() bool {
	return s == ScreenAccount || s == ScreenSchedule
}

// Layout constants
const (
	minTerminalWidth = 80 // Minimum frame width
	panelPadding     = 4  // Total horizontal padding from panel borders (2 each side)
	eventBuffer      = 64
)

// API is the backend surface the TUI drives directly
type API interface {
	Login(ctx context.Context, input *client.LoginInput) (*client.AuthResponse, error)
	Register(ctx context.Context, input *client.RegisterInput) (*client.AuthResponse, error)
	profile.Updater
	schedule.Requester
}

// Deps are the long-lived services the TUI runs on
type Deps struct {
	API     API
	Session *session.Store
	Catalog *catalog.Cache
	Config  *config.Config
}

// eventMsg wraps a message posted from outside the update loop
type eventMsg struct {
	msg tea.Msg
}

// sessionChangedMsg is posted when the logged-in identity changes
type sessionChangedMsg struct {
	state session.State
}

// fetchCatalogMsg asks the update loop to start a catalog fetch
type fetchCatalogMsg struct{}

type catalogLoadedMsg struct {
	err error
}

type profileRefreshedMsg struct {
	err error
}

// authDoneMsg carries a login or registration result
type authDoneMsg struct {
	gen      int
	register bool
	resp     *client.AuthResponse
	err      error
}

type savedMsg struct {
	gen  int
	user *client.User
	err  error
}

type scheduleAttemptMsg struct {
	gen     int
	attempt int
	err     error
}

type scheduleDoneMsg struct {
	gen   int
	sched *client.Schedule
	err   error
}

// App is the root model for the TUI
type App struct {
	api     API
	session *session.Store
	catalog *catalog.Cache
	cfg     *config.Config

	screen     Screen
	width      int
	height     int
	toast      profile.Notice
	lastUpdate time.Time

	// gen is bumped on every navigation; responses tagged with an older
	// value belong to a screen the user already left
	gen            int
	cancelSchedule context.CancelFunc

	events  chan tea.Msg
	detach  []func()
	editor  *profile.Editor
	menu    *menu.Menu
	auth    *authform.Form
	account *account.Account
	sched   *scheduleview.View
}

// New creates a new TUI application and subscribes it to session changes
func New(deps Deps) *App {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.Default()
	}
	a := &App{
		api:     deps.API,
		session: deps.Session,
		catalog: deps.Catalog,
		cfg:     cfg,
		screen:  ScreenMenu,
		events:  make(chan tea.Msg, eventBuffer),
		menu:    menu.New(deps.Session.LoggedIn()),
		sched:   scheduleview.New(cfg.ScheduleAttempts),
	}

	a.detach = append(a.detach, a.session.Subscribe(func(st session.State) {
		a.post(sessionChangedMsg{state: st})
	}))
	a.detach = append(a.detach, a.catalog.Attach(a.session, func() {
		if !a.post(fetchCatalogMsg{}) {
			a.catalog.CancelRequest()
		}
	}))
	return a
}

// Close removes the session subscriptions
func (a *App) Close() {
	for _, fn := range a.detach {
		fn()
	}
	a.detach = nil
	a.stopSchedule()
}

// post queues msg for the update loop without blocking the caller and
// reports whether it was queued
func (a *App) post(msg tea.Msg) bool {
	select {
	case a.events <- msg:
		return true
	default:
		slog.Warn("TUI event queue full, dropping event", "event", fmt.Sprintf("%T", msg))
		return false
	}
}

func (a *App) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return eventMsg{msg: <-a.events}
	}
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.waitForEvent(), a.menu.Init()}
	if a.cfg.RefreshOnStart && a.session.LoggedIn() {
		cmds = append(cmds, a.refreshProfile())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		model, cmd := a.Update(msg.msg)
		return model, tea.Batch(cmd, a.waitForEvent())

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.account != nil {
			a.account.SetSize(a.contentWidth(), a.height)
		}
		a.sched.SetSize(a.contentWidth())
		if a.auth != nil {
			return a.updateAuth(msg)
		}
		return a, nil

	case tea.KeyMsg:
		// Handle global quit
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		// A toast lasts until the next key
		a.toast = profile.Notice{}

		switch a.screen {
		case ScreenMenu:
			return a.updateMenu(msg)
		case ScreenLogin, ScreenRegister:
			return a.updateAuth(msg)
		case ScreenAccount:
			return a.updateAccount(msg)
		case ScreenSchedule:
			return a.updateSchedule(msg)
		}

	case menu.SelectedMsg:
		return a.handleMenuAction(msg.Action)

	case menu.CancelledMsg:
		return a, tea.Quit

	case authform.SubmittedMsg:
		return a, a.authenticate(msg)

	case authform.CancelledMsg:
		return a, a.navigate(ScreenMenu)

	case authDoneMsg:
		return a.handleAuthDone(msg)

	case account.NoticeMsg:
		a.toast = msg.Notice
		return a, nil

	case account.BackMsg:
		if a.editor != nil && a.editor.Editing() {
			a.toast = profile.Notice{Level: profile.Info, Text: "Unsaved changes discarded"}
		}
		return a, a.navigate(ScreenMenu)

	case account.SaveMsg:
		return a, a.save()

	case savedMsg:
		return a.handleSaved(msg)

	case scheduleAttemptMsg:
		if msg.gen == a.gen {
			a.sched.Attempt(msg.attempt, msg.err)
		}
		return a, nil

	case scheduleDoneMsg:
		return a.handleScheduleDone(msg)

	case sessionChangedMsg:
		return a.handleSessionChanged(msg.state)

	case fetchCatalogMsg:
		return a, a.fetchCatalog()

	case catalogLoadedMsg:
		if errors.Is(msg.err, session.ErrNotLoggedIn) {
			// Logged out while the fetch was queued
			return a, nil
		}
		if msg.err != nil {
			a.toast = profile.Notice{Level: profile.Error, Text: a.expire(msg.err, "Could not load courses").Error()}
			return a, nil
		}
		a.lastUpdate = time.Now()
		a.sched.SetCatalog(a.catalog.Entries())
		if a.account != nil {
			a.account.RefreshSearch()
		}
		return a, nil

	case profileRefreshedMsg:
		if msg.err != nil {
			a.toast = profile.Notice{Level: profile.Error, Text: msg.err.Error()}
			return a, nil
		}
		a.lastUpdate = time.Now()
		return a, nil

	default:
		// Blinks, debounce ticks and huh internals go to the active component
		return a.forward(msg)
	}

	return a, nil
}

func (a *App) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch a.screen {
	case ScreenMenu:
		return a.updateMenu(msg)
	case ScreenLogin, ScreenRegister:
		return a.updateAuth(msg)
	case ScreenAccount:
		return a.updateAccount(msg)
	}
	return a, nil
}

func (a *App) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := a.menu.Update(msg)
	a.menu = model.(*menu.Menu)
	return a, cmd
}

func (a *App) updateAuth(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.auth == nil {
		return a, nil
	}
	model, cmd := a.auth.Update(msg)
	a.auth = model.(*authform.Form)
	return a, cmd
}

func (a *App) updateAccount(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.account == nil {
		return a, nil
	}
	model, cmd := a.account.Update(msg)
	a.account = model.(*account.Account)
	return a, cmd
}

func (a *App) updateSchedule(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "g", "enter":
		if a.sched.Running() {
			return a, nil
		}
		return a, a.generate()
	case "r":
		if a.sched.Running() {
			return a, nil
		}
		return a, tea.Batch(a.refreshProfile(), a.refetchCatalog())
	case "a":
		return a, a.navigate(ScreenAccount)
	case "b", "esc":
		return a, a.navigate(ScreenMenu)
	}
	return a, nil
}

func (a *App) handleMenuAction(action menu.Action) (tea.Model, tea.Cmd) {
	switch action {
	case menu.ActionLogin:
		return a, a.navigate(ScreenLogin)
	case menu.ActionRegister:
		return a, a.navigate(ScreenRegister)
	case menu.ActionAccount:
		return a, a.navigate(ScreenAccount)
	case menu.ActionSchedule:
		return a, a.navigate(ScreenSchedule)
	case menu.ActionLogout:
		if err := a.session.Logout(); err != nil {
			a.toast = profile.Notice{Level: profile.Error, Text: "Logged out, but the saved session could not be cleared"}
		} else {
			a.toast = profile.Notice{Level: profile.Success, Text: "Logged out"}
		}
		return a, a.navigate(ScreenMenu)
	case menu.ActionQuit:
		return a, tea.Quit
	}
	return a, nil
}

// navigate switches screens, sending logged-out users to the login form
// when the target needs a session
func (a *App) navigate(s Screen) tea.Cmd {
	a.gen++
	a.stopSchedule()

	if s.protected() && !a.session.LoggedIn() {
		if a.toast.Empty() {
			a.toast = profile.Notice{Level: profile.Info, Text: "Please log in to continue"}
		}
		s = ScreenLogin
	}

	if s != ScreenAccount {
		a.account = nil
		a.editor = nil
	}
	if s != ScreenLogin && s != ScreenRegister {
		a.auth = nil
	}
	a.screen = s

	switch s {
	case ScreenMenu:
		a.menu = menu.New(a.session.LoggedIn())
		return a.menu.Init()

	case ScreenLogin, ScreenRegister:
		mode := authform.ModeLogin
		if s == ScreenRegister {
			mode = authform.ModeRegister
		}
		a.auth = authform.New(mode)
		a.auth.Update(tea.WindowSizeMsg{Width: a.contentWidth(), Height: a.height})
		return a.auth.Init()

	case ScreenAccount:
		a.editor = profile.NewEditor(a.api, a.session)
		a.account = account.New(a.editor, a.catalog, a.cfg.SearchDebounce)
		a.account.SetSize(a.contentWidth(), a.height)
		return nil

	case ScreenSchedule:
		a.sched.SetCatalog(a.catalog.Entries())
		a.sched.SetSize(a.contentWidth())
		return nil
	}
	return nil
}

func (a *App) authenticate(msg authform.SubmittedMsg) tea.Cmd {
	gen := a.gen
	return func() tea.Msg {
		ctx := context.Background()
		if msg.Register != nil {
			resp, err := a.api.Register(ctx, msg.Register)
			return authDoneMsg{gen: gen, register: true, resp: resp, err: err}
		}
		resp, err := a.api.Login(ctx, msg.Login)
		return authDoneMsg{gen: gen, resp: resp, err: err}
	}
}

func (a *App) handleAuthDone(msg authDoneMsg) (tea.Model, tea.Cmd) {
	if msg.gen != a.gen || a.auth == nil {
		return a, nil
	}

	if msg.err != nil {
		fallback := "Login failed"
		if msg.register {
			fallback = "Registration failed"
		}
		slog.Warn(fallback, "error", msg.err)
		return a, a.auth.SetError(client.Message(msg.err, fallback))
	}

	if err := a.session.Login(&msg.resp.User, msg.resp.AccessToken); err != nil {
		slog.Error("Failed to persist session", "error", err)
		a.toast = profile.Notice{Level: profile.Error, Text: "Logged in, but the session could not be saved"}
	} else {
		a.toast = profile.Notice{Level: profile.Success, Text: "Welcome, " + msg.resp.User.Name}
	}

	if msg.register {
		// New users start by filling in their profile
		return a, a.navigate(ScreenAccount)
	}
	return a, a.navigate(ScreenSchedule)
}

func (a *App) save() tea.Cmd {
	if a.editor == nil || a.account == nil {
		return nil
	}
	token, draft, err := a.editor.Request()
	if err != nil {
		a.toast = a.account.Finish(nil, err)
		return nil
	}
	gen := a.gen
	return func() tea.Msg {
		saved, err := a.api.UpdateAccount(context.Background(), token, draft)
		return savedMsg{gen: gen, user: saved, err: err}
	}
}

func (a *App) handleSaved(msg savedMsg) (tea.Model, tea.Cmd) {
	if msg.gen != a.gen || a.account == nil {
		return a, nil
	}
	a.toast = a.account.Finish(msg.user, msg.err)
	if errors.Is(msg.err, client.ErrUnauthorized) {
		a.toast = profile.Notice{Level: profile.Error, Text: a.session.Expire(msg.err).Error()}
	}
	return a, nil
}

func (a *App) generate() tea.Cmd {
	a.stopSchedule()
	ctx, cancel := context.WithCancel(context.Background())
	a.cancelSchedule = cancel

	gen := a.gen
	g := schedule.New(a.api, a.session)
	g.Attempts = a.cfg.ScheduleAttempts
	g.Delay = a.cfg.ScheduleDelay
	g.OnAttempt = func(n int, err error) {
		a.post(scheduleAttemptMsg{gen: gen, attempt: n, err: err})
	}

	a.sched.Start()
	return func() tea.Msg {
		sched, err := g.Generate(ctx)
		return scheduleDoneMsg{gen: gen, sched: sched, err: err}
	}
}

func (a *App) stopSchedule() {
	if a.cancelSchedule != nil {
		a.cancelSchedule()
		a.cancelSchedule = nil
	}
}

func (a *App) handleScheduleDone(msg scheduleDoneMsg) (tea.Model, tea.Cmd) {
	if msg.gen != a.gen {
		return a, nil
	}
	a.cancelSchedule = nil

	if msg.err != nil {
		if errors.Is(msg.err, context.Canceled) {
			return a, nil
		}
		err := a.expire(msg.err, "Could not generate a schedule. Please try again.")
		a.sched.Fail(err.Error())
		if errors.Is(err, session.ErrSessionExpired) {
			a.toast = profile.Notice{Level: profile.Error, Text: err.Error()}
		}
		return a, nil
	}

	a.sched.Done(msg.sched)
	a.lastUpdate = time.Now()
	a.toast = profile.Notice{Level: profile.Success, Text: "Schedule ready"}
	return a, nil
}

// expire logs out on a 401 and otherwise returns the server message or
// fallback as an error
func (a *App) expire(err error, fallback string) error {
	if errors.Is(err, client.ErrUnauthorized) {
		return a.session.Expire(err)
	}
	if errors.Is(err, schedule.ErrNoCredential) || errors.Is(err, session.ErrNotLoggedIn) {
		return err
	}
	return errors.New(client.Message(err, fallback))
}

func (a *App) handleSessionChanged(st session.State) (tea.Model, tea.Cmd) {
	if st.LoggedIn() {
		if a.screen == ScreenMenu {
			return a, a.navigate(ScreenMenu)
		}
		return a, nil
	}

	a.lastUpdate = time.Time{}
	a.sched = scheduleview.New(a.cfg.ScheduleAttempts)
	a.sched.SetSize(a.contentWidth())
	switch {
	case a.screen.protected():
		// Re-run the guard for the screen the user is on
		return a, a.navigate(a.screen)
	case a.screen == ScreenMenu:
		return a, a.navigate(ScreenMenu)
	}
	return a, nil
}

func (a *App) fetchCatalog() tea.Cmd {
	return func() tea.Msg {
		return catalogLoadedMsg{err: a.catalog.Fetch(context.Background())}
	}
}

// refetchCatalog reloads the catalog on demand, even when already cached
func (a *App) refetchCatalog() tea.Cmd {
	if !a.session.LoggedIn() {
		return nil
	}
	return a.fetchCatalog()
}

func (a *App) refreshProfile() tea.Cmd {
	return func() tea.Msg {
		return profileRefreshedMsg{err: a.session.RefreshProfile(context.Background())}
	}
}

// View implements tea.Model
func (a *App) View() string {
	var content string

	switch a.screen {
	case ScreenMenu:
		content = a.viewMenu()
	case ScreenLogin, ScreenRegister:
		content = a.viewAuth()
	case ScreenAccount:
		if a.account != nil {
			content = a.account.View()
		}
	case ScreenSchedule:
		content = a.sched.View()
	default:
		content = a.viewMenu()
	}

	return a.wrapWithFrame(content)
}

// viewMenu renders the menu with a greeting
func (a *App) viewMenu() string {
	greeting := "Plan your semester with AI-generated schedules"
	if u := a.session.User(); u != nil && a.session.LoggedIn() {
		greeting = "Welcome back, " + u.Name
	}
	body := styles.Title.Render(icons.App.String()+" SchAIdule") + "\n" +
		styles.Subtitle.Render(greeting) + "\n" +
		a.menu.View()
	return styles.ActivePanel.Width(a.contentWidth()).Render(body)
}

func (a *App) viewAuth() string {
	if a.auth == nil {
		return ""
	}
	return styles.ActivePanel.Width(a.contentWidth()).Render(a.auth.View())
}

// frameWidth is the terminal width less one column, never below the minimum
func (a *App) frameWidth() int {
	width := a.width - 1
	if width < minTerminalWidth {
		width = minTerminalWidth
	}
	return width
}

// contentWidth is the width available inside a panel
func (a *App) contentWidth() int {
	return a.frameWidth() - panelPadding
}

// renderHeader creates the header bar with app branding and session context
func (a *App) renderHeader() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	contextStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	leftRendered := fmt.Sprintf(" %s %s ", icons.App.String(), titleStyle.Render("SchAIdule"))

	rightRendered := ""
	if a.session.LoggedIn() {
		label := icons.User.String() + " "
		if u := a.session.User(); u != nil && u.Name != "" {
			label += u.Name
		} else {
			label += "signed in"
		}
		if exp, ok := session.TokenExpiry(a.session.Token()); ok {
			label += " · expires " + humanize.Time(exp)
		}
		rightRendered = " " + contextStyle.Render(label) + " "
	}

	fillWidth := width - 4 - lipgloss.Width(leftRendered) - lipgloss.Width(rightRendered) // -4 for ╭─ and ─╮
	if fillWidth < 0 {
		fillWidth = 0
	}

	header := "╭─" + leftRendered + strings.Repeat("─", fillWidth) + rightRendered + "─╮"
	return borderStyle.Render(header)
}

// shortcuts returns the key hints for the current screen
func (a *App) shortcuts() []string {
	switch a.screen {
	case ScreenMenu:
		return []string{"↑↓ Navigate", "Enter Select", "q Quit"}
	case ScreenLogin, ScreenRegister:
		return []string{"Tab Next", "Enter Submit", "Esc Back"}
	case ScreenAccount:
		if a.account != nil && a.account.Searching() {
			return []string{"↑↓ Select", "Enter Add", "Esc Close"}
		}
		return []string{"Tab List", "a Add", "d Remove", "g Goals", "s Save", "b Back"}
	case ScreenSchedule:
		return []string{"g Generate", "r Refresh", "a Account", "b Back", "q Quit"}
	}
	return nil
}

// renderFooter creates the footer with keyboard shortcuts and status
func (a *App) renderFooter() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	keyStyle := lipgloss.NewStyle().Foreground(styles.Primary)
	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	statusStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	var styled []string
	for _, s := range a.shortcuts() {
		parts := strings.SplitN(s, " ", 2)
		if len(parts) == 2 {
			styled = append(styled, keyStyle.Render(parts[0])+" "+labelStyle.Render(parts[1]))
		} else {
			styled = append(styled, s)
		}
	}
	leftText := " " + strings.Join(styled, "  ") + " "

	// A toast takes the status slot over the last update time
	rightText := ""
	switch {
	case !a.toast.Empty():
		rightText = " " + widgets.NoticeText(a.toast) + " "
	case !a.lastUpdate.IsZero() && a.screen.protected():
		rightText = " " + statusStyle.Render("Updated "+humanize.Time(a.lastUpdate)) + " "
	}

	fillWidth := width - 4 - lipgloss.Width(leftText) - lipgloss.Width(rightText) // -4 for ╰─ and ─╯
	if fillWidth < 0 {
		fillWidth = 0
	}

	footer := "╰─" + leftText + strings.Repeat("─", fillWidth) + rightText + "─╯"
	return borderStyle.Render(footer)
}

// wrapWithFrame wraps content with header and footer
func (a *App) wrapWithFrame(content string) string {
	var sb strings.Builder

	sb.WriteString(a.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(content)
	sb.WriteString("\n")
	sb.WriteString(a.renderFooter())

	return sb.String()
}

// Run starts the TUI and blocks until the user quits
func Run(deps Deps) error {
	app := New(deps)
	defer app.Close()

	p := tea.NewProgram(
		app,
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
