// ABOUTME: Tests for the whoami command
// ABOUTME: Verifies the route guard, profile refresh and forced logout on 401

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/schaidule/schaidule-cli/internal/client"
)

func TestWhoami_NotLoggedIn(t *testing.T) {
	isolate(t, "http://localhost:99999")

	var buf bytes.Buffer
	exitCode := runWhoami(context.Background(), &buf, false)

	if exitCode != 1 {
		t.Errorf("expected exit code 1, got %d", exitCode)
	}
	if !strings.Contains(buf.String(), "not logged in") {
		t.Errorf("expected route guard message, got: %s", buf.String())
	}
}

func TestWhoami_Refresh(t *testing.T) {
	f := newFakeBackend()
	loggedIn(t, f)
	f.user.Sports = []string{"Varsity Soccer"}

	var buf bytes.Buffer
	if code := runWhoami(context.Background(), &buf, true); code != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", code, buf.String())
	}
	if !strings.Contains(buf.String(), "Varsity Soccer") {
		t.Errorf("expected refreshed sports, got: %s", buf.String())
	}
}

func TestWhoami_RefreshExpired(t *testing.T) {
	f := newFakeBackend()
	loggedIn(t, f)
	f.token = "rotated"

	var buf bytes.Buffer
	if code := runWhoami(context.Background(), &buf, true); code != 1 {
		t.Errorf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(buf.String(), "session expired") {
		t.Errorf("expected expiry message, got: %s", buf.String())
	}

	buf.Reset()
	if code := runWhoami(context.Background(), &buf, false); code != 1 {
		t.Error("expected the expired session to be cleared")
	}
}

func TestWhoami_JSON(t *testing.T) {
	loggedIn(t, newFakeBackend())
	jsonOutput = true

	var buf bytes.Buffer
	if code := runWhoami(context.Background(), &buf, false); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}

	var out struct {
		User client.User `json:"user"`
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if out.User.Email != "ada@example.edu" {
		t.Errorf("unexpected user: %+v", out.User)
	}
}

func TestFormatProfileHuman(t *testing.T) {
	out := formatProfileHuman(&client.User{Name: "Ada", CompletedCourses: []string{"Intro CS", "Calculus I"}})
	if !strings.Contains(out, "Intro CS, Calculus I") {
		t.Errorf("expected joined course list, got: %s", out)
	}
	if !strings.Contains(out, "Sports:    -") {
		t.Errorf("expected placeholder for empty sports, got: %s", out)
	}
	if !strings.Contains(formatProfileHuman(nil), "No profile loaded") {
		t.Error("expected hint for missing profile")
	}
}

func TestFormatExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	if got := formatExpiry(now.Add(2*time.Hour), now); !strings.HasPrefix(got, "expires") {
		t.Errorf("expected future expiry, got %q", got)
	}
	if got := formatExpiry(now.Add(-time.Hour), now); !strings.HasPrefix(got, "expired") {
		t.Errorf("expected past expiry, got %q", got)
	}
}
