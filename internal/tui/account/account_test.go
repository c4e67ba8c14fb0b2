// ABOUTME: Tests for the account screen
// ABOUTME: Drives key presses and checks draft edits, notices and save requests

package account

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/schaidule/schaidule-cli/internal/catalog"
	"github.com/schaidule/schaidule-cli/internal/client"
	"github.com/schaidule/schaidule-cli/internal/profile"
	"github.com/schaidule/schaidule-cli/internal/session"
	"github.com/schaidule/schaidule-cli/internal/storage"
	"github.com/schaidule/schaidule-cli/internal/tui/search"
)

type stubAPI struct{}

func (stubAPI) Courses(ctx context.Context, token string) ([]client.Course, error) {
	return []client.Course{
		{ID: 1, Title: "Intro CS"},
		{ID: 2, Title: "Calculus I"},
		{ID: 3, Title: "Varsity Soccer"},
	}, nil
}

func (stubAPI) UpdateAccount(ctx context.Context, token string, user *client.User) (*client.User, error) {
	return user.Clone(), nil
}

func newAccount(t *testing.T) (*Account, *profile.Editor) {
	t.Helper()
	s := session.New(storage.NewMemoryStore(), nil)
	s.Login(&client.User{
		Name:             "Ada",
		Email:            "ada@example.edu",
		CompletedCourses: []string{"Intro CS"},
	}, "tok")
	cache := catalog.New(stubAPI{}, s)
	if err := cache.Fetch(context.Background()); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	editor := profile.NewEditor(stubAPI{}, s)
	return New(editor, cache, time.Millisecond), editor
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(a *Account, s string) tea.Cmd {
	_, cmd := a.Update(key(s))
	return cmd
}

func TestPickedCourseIsAdded(t *testing.T) {
	a, editor := newAccount(t)

	press(a, "a")
	if !a.Searching() {
		t.Fatal("expected search to open")
	}
	_, cmd := a.Update(search.PickedMsg{Course: client.Course{Title: "Calculus I"}})
	if a.Searching() {
		t.Error("expected search to close after a pick")
	}
	if got := editor.Items(profile.CompletedCourses); len(got) != 2 || got[1] != "Calculus I" {
		t.Errorf("unexpected completed courses: %v", got)
	}
	msg, ok := cmd().(NoticeMsg)
	if !ok || msg.Notice.Level != profile.Success {
		t.Errorf("expected success notice, got %#v", msg)
	}
}

func TestDuplicatePickShowsInfo(t *testing.T) {
	a, editor := newAccount(t)

	press(a, "a")
	_, cmd := a.Update(search.PickedMsg{Course: client.Course{Title: "intro cs"}})
	msg := cmd().(NoticeMsg)
	if msg.Notice.Level != profile.Info {
		t.Errorf("expected informational notice, got %+v", msg.Notice)
	}
	if len(editor.Items(profile.CompletedCourses)) != 1 {
		t.Error("duplicate must not be added")
	}
}

func TestTabSwitchesToSports(t *testing.T) {
	a, editor := newAccount(t)

	press(a, "tab")
	press(a, "a")
	a.Update(search.PickedMsg{Course: client.Course{Title: "Varsity Soccer"}})
	if got := editor.Items(profile.Sports); len(got) != 1 {
		t.Errorf("expected sport to be added, got %v", got)
	}
	if len(editor.Items(profile.CompletedCourses)) != 1 {
		t.Error("completed courses should be untouched")
	}
}

func TestCancelledSearchLeavesDraft(t *testing.T) {
	a, editor := newAccount(t)

	press(a, "a")
	a.Update(search.CancelledMsg{})
	if a.Searching() {
		t.Error("expected search to close")
	}
	if editor.Editing() {
		t.Error("cancelling must not change the draft")
	}
}

func TestRemoveSelected(t *testing.T) {
	a, editor := newAccount(t)

	cmd := press(a, "d")
	if len(editor.Items(profile.CompletedCourses)) != 0 {
		t.Error("expected the selected course to be removed")
	}
	if cmd == nil {
		t.Fatal("expected a notice")
	}
	if cmd := press(a, "d"); cmd != nil {
		t.Error("removing from an empty list should do nothing")
	}
}

func TestEditGoals(t *testing.T) {
	a, editor := newAccount(t)

	press(a, "g")
	press(a, "Robotics")
	press(a, "enter")
	if got := editor.Draft().FutureGoals; got != "Robotics" {
		t.Errorf("expected goals to be set, got %q", got)
	}

	press(a, "g")
	press(a, " and more")
	press(a, "esc")
	if got := editor.Draft().FutureGoals; got != "Robotics" {
		t.Errorf("esc must discard goal edits, got %q", got)
	}
}

func TestSaveWithoutChanges(t *testing.T) {
	a, _ := newAccount(t)

	msg := press(a, "s")().(NoticeMsg)
	if msg.Notice.Level != profile.Info {
		t.Errorf("expected info notice, got %+v", msg.Notice)
	}
	if a.Saving() {
		t.Error("nothing to save")
	}
}

func TestSaveRequestAndFinish(t *testing.T) {
	a, _ := newAccount(t)

	press(a, "g")
	press(a, "Robotics")
	press(a, "enter")

	cmd := press(a, "s")
	if _, ok := cmd().(SaveMsg); !ok {
		t.Fatal("expected a save request")
	}
	if !a.Saving() {
		t.Error("expected saving state")
	}
	if cmd := press(a, "d"); cmd != nil || !a.Saving() {
		t.Error("keys should be ignored while saving")
	}

	n := a.Finish(nil, errors.New("boom"))
	if n.Level != profile.Error {
		t.Errorf("expected error notice, got %+v", n)
	}
	if a.Saving() || !a.Editing() {
		t.Error("failed save should keep the draft editable")
	}
}

func TestBack(t *testing.T) {
	a, _ := newAccount(t)

	if _, ok := press(a, "b")().(BackMsg); !ok {
		t.Error("expected back message")
	}
}

func TestView(t *testing.T) {
	a, _ := newAccount(t)
	a.SetSize(120, 40)

	view := a.View()
	for _, want := range []string{"Ada", "ada@example.edu", "Intro CS", "Not yet completed: 1", "2 courses, 1 sports/clubs"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}

	press(a, "g")
	press(a, "Robotics")
	press(a, "enter")
	if !strings.Contains(a.View(), "(unsaved)") {
		t.Error("expected unsaved marker while editing")
	}
}
