// ABOUTME: Tests for the schedule command
// ABOUTME: Verifies retry reporting, exhaustion and output formats

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/schaidule/schaidule-cli/internal/client"
)

func TestScheduleCommand_RetriesUntilFinal(t *testing.T) {
	f := newFakeBackend()
	f.finalAfter = 2
	loggedIn(t, f)

	var buf bytes.Buffer
	if code := runSchedule(context.Background(), &buf); code != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", code, buf.String())
	}
	out := buf.String()
	if !strings.Contains(out, "Attempt 1/3 failed") {
		t.Errorf("expected first attempt to be reported, got:\n%s", out)
	}
	if !strings.Contains(out, "final: take Calculus I") {
		t.Errorf("expected recommendation, got:\n%s", out)
	}
	if !strings.Contains(out, "1 academic course(s) left") {
		t.Errorf("expected remaining count, got:\n%s", out)
	}
	if f.schedules.Load() != 2 {
		t.Errorf("expected 2 requests, got %d", f.schedules.Load())
	}
}

func TestScheduleCommand_Exhausted(t *testing.T) {
	f := newFakeBackend()
	f.finalAfter = 0
	loggedIn(t, f)

	var buf bytes.Buffer
	if code := runSchedule(context.Background(), &buf); code != 2 {
		t.Errorf("expected exit code 2, got %d", code)
	}
	if f.schedules.Load() != 3 {
		t.Errorf("expected 3 requests, got %d", f.schedules.Load())
	}
	if !strings.Contains(buf.String(), "schedule generation failed") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

func TestScheduleCommand_AttemptsFromEnv(t *testing.T) {
	f := newFakeBackend()
	f.finalAfter = 0
	loggedIn(t, f)
	t.Setenv("SCHAIDULE_SCHEDULE_ATTEMPTS", "1")

	var buf bytes.Buffer
	runSchedule(context.Background(), &buf)
	if f.schedules.Load() != 1 {
		t.Errorf("expected 1 request, got %d", f.schedules.Load())
	}
}

func TestScheduleCommand_Expired(t *testing.T) {
	f := newFakeBackend()
	loggedIn(t, f)
	f.token = "rotated"

	var buf bytes.Buffer
	if code := runSchedule(context.Background(), &buf); code != 1 {
		t.Errorf("expected exit code 1, got %d", code)
	}
	if f.schedules.Load() != 0 {
		t.Error("expected the 401 not to be counted as a schedule call")
	}
}

func TestScheduleCommand_NotLoggedIn(t *testing.T) {
	isolate(t, "http://localhost:99999")

	var buf bytes.Buffer
	if code := runSchedule(context.Background(), &buf); code != 1 {
		t.Errorf("expected exit code 1, got %d", code)
	}
}

func TestScheduleCommand_JSON(t *testing.T) {
	loggedIn(t, newFakeBackend())
	jsonOutput = true

	var buf bytes.Buffer
	if code := runSchedule(context.Background(), &buf); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}

	var out struct {
		Schedule  client.Schedule `json:"schedule"`
		Remaining int             `json:"remaining_courses"`
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if len(out.Schedule.CourseIDs) != 1 || out.Schedule.CourseIDs[0] != 2 {
		t.Errorf("unexpected schedule: %+v", out.Schedule)
	}
	if out.Remaining != 1 {
		t.Errorf("expected 1 remaining course, got %d", out.Remaining)
	}
}

func TestFormatScheduleHuman_UnknownRemaining(t *testing.T) {
	out := formatScheduleHuman(&client.Schedule{Recommendations: []string{"final plan"}}, -1)
	if strings.Contains(out, "left in the catalog") {
		t.Error("expected no remaining line when the catalog was unavailable")
	}
}
