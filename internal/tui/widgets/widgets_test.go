// ABOUTME: Tests for TUI widget rendering
// ABOUTME: Covers badges, notice text and the attempt step meter

package widgets

import (
	"strings"
	"testing"

	"github.com/schaidule/schaidule-cli/internal/catalog"
	"github.com/schaidule/schaidule-cli/internal/profile"
)

func TestCategoryBadge(t *testing.T) {
	if got := CategoryBadge(catalog.Sports); !strings.Contains(got, "sports/club") {
		t.Errorf("expected sports label, got %q", got)
	}
	if got := CategoryBadge(catalog.Academic); !strings.Contains(got, "academic") {
		t.Errorf("expected academic label, got %q", got)
	}
}

func TestNoticeLevel(t *testing.T) {
	tests := []struct {
		level profile.Level
		want  StatusLevel
	}{
		{profile.Success, StatusOK},
		{profile.Error, StatusCritical},
		{profile.Info, StatusInfo},
	}
	for _, tt := range tests {
		if got := NoticeLevel(profile.Notice{Level: tt.level, Text: "x"}); got != tt.want {
			t.Errorf("NoticeLevel(%v) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestNoticeText(t *testing.T) {
	if got := NoticeText(profile.Notice{}); got != "" {
		t.Errorf("expected empty notice to render nothing, got %q", got)
	}
	got := NoticeText(profile.Notice{Level: profile.Info, Text: "Intro CS is already in your completed courses"})
	if !strings.Contains(got, "already in your completed courses") {
		t.Errorf("expected notice text, got %q", got)
	}
}

func TestSteps(t *testing.T) {
	if got := Steps(1, 0); got != "" {
		t.Errorf("expected nothing for zero total, got %q", got)
	}
	got := Steps(2, 3)
	if !strings.Contains(got, "attempt 2 of 3") {
		t.Errorf("expected attempt label, got %q", got)
	}
	if strings.Count(got, "✗") != 1 || strings.Count(got, "○") != 1 {
		t.Errorf("expected one failed and one pending marker, got %q", got)
	}
}
