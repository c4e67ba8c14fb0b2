// ABOUTME: Tests for the profile edit commands
// ABOUTME: Verifies duplicate rejection, removal and saving through the backend

package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/schaidule/schaidule-cli/internal/profile"
)

func addCourse(title string) editFunc {
	return func(e *profile.Editor) profile.Notice { return e.Add(profile.CompletedCourses, title) }
}

func TestProfileEdit_AddCourse(t *testing.T) {
	f := newFakeBackend()
	loggedIn(t, f)

	var buf bytes.Buffer
	if code := runProfileEdit(context.Background(), &buf, addCourse("Calculus I")); code != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", code, buf.String())
	}
	if f.updates.Load() != 1 {
		t.Errorf("expected one update request, got %d", f.updates.Load())
	}
	if got := f.user.CompletedCourses; len(got) != 2 || got[1] != "Calculus I" {
		t.Errorf("expected backend to receive the appended list, got %v", got)
	}
	if !strings.Contains(buf.String(), "Profile updated") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

func TestProfileEdit_DuplicateSkipsSave(t *testing.T) {
	f := newFakeBackend()
	loggedIn(t, f)

	var buf bytes.Buffer
	if code := runProfileEdit(context.Background(), &buf, addCourse("  INTRO cs ")); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if f.updates.Load() != 0 {
		t.Error("a duplicate must not trigger a save")
	}
	if !strings.Contains(buf.String(), "already in your") {
		t.Errorf("expected duplicate notice, got: %s", buf.String())
	}
}

func TestProfileEdit_RemoveMissing(t *testing.T) {
	f := newFakeBackend()
	loggedIn(t, f)

	var buf bytes.Buffer
	runProfileEdit(context.Background(), &buf, removeFrom(profile.Sports, "Varsity Soccer"))
	if f.updates.Load() != 0 {
		t.Error("removing an absent title must not trigger a save")
	}
	if !strings.Contains(buf.String(), "is not in your") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

func TestProfileEdit_Remove(t *testing.T) {
	f := newFakeBackend()
	loggedIn(t, f)

	var buf bytes.Buffer
	if code := runProfileEdit(context.Background(), &buf, removeFrom(profile.CompletedCourses, "intro cs")); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if len(f.user.CompletedCourses) != 0 {
		t.Errorf("expected course removed on the backend, got %v", f.user.CompletedCourses)
	}
}

func TestProfileEdit_Expired(t *testing.T) {
	f := newFakeBackend()
	loggedIn(t, f)
	f.token = "rotated"

	var buf bytes.Buffer
	if code := runProfileEdit(context.Background(), &buf, addCourse("Calculus I")); code != 1 {
		t.Errorf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(buf.String(), "session expired") {
		t.Errorf("expected expiry message, got: %s", buf.String())
	}
}

func TestProfileEdit_NotLoggedIn(t *testing.T) {
	isolate(t, "http://localhost:99999")

	var buf bytes.Buffer
	if code := runProfileEdit(context.Background(), &buf, addCourse("Calculus I")); code != 1 {
		t.Errorf("expected exit code 1, got %d", code)
	}
}

func TestProfileEdit_SetGoals(t *testing.T) {
	f := newFakeBackend()
	loggedIn(t, f)

	var buf bytes.Buffer
	if code := runProfileEdit(context.Background(), &buf, setGoals("  become a robotics engineer ")); code != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", code, buf.String())
	}
	if f.updates.Load() != 1 {
		t.Errorf("expected one update request, got %d", f.updates.Load())
	}
	if f.user.FutureGoals != "become a robotics engineer" {
		t.Errorf("expected goals saved on the backend, got %q", f.user.FutureGoals)
	}
	if len(f.user.CompletedCourses) != 1 {
		t.Errorf("expected lists sent unchanged, got %v", f.user.CompletedCourses)
	}
	for _, want := range []string{"Goals updated", "Profile updated"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("expected %q in output, got: %s", want, buf.String())
		}
	}
}

func TestProfileEdit_SavesWhenNoticeIsEmpty(t *testing.T) {
	f := newFakeBackend()
	loggedIn(t, f)

	edit := func(e *profile.Editor) profile.Notice {
		e.SetGoals("Robotics")
		return profile.Notice{}
	}

	var buf bytes.Buffer
	if code := runProfileEdit(context.Background(), &buf, edit); code != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", code, buf.String())
	}
	if f.updates.Load() != 1 || f.user.FutureGoals != "Robotics" {
		t.Errorf("expected the edit to be saved, got %d updates, goals %q", f.updates.Load(), f.user.FutureGoals)
	}
	if !strings.Contains(buf.String(), "Profile updated") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}
