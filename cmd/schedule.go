// ABOUTME: Schedule command for the schaidule CLI
// ABOUTME: Generates a recommended schedule from the saved profile with retries

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/schaidule/schaidule-cli/internal/catalog"
	"github.com/schaidule/schaidule-cli/internal/client"
	"github.com/schaidule/schaidule-cli/internal/schedule"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Generate a recommended schedule",
	Long: `Generate a recommended schedule from your completed courses, sports and goals.

The backend is asked up to 3 times (see schedule_attempts in config.yaml)
until it returns a finished recommendation.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if exitCode := runSchedule(ctx, os.Stdout); exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}

// runSchedule generates a schedule and returns exit code
func runSchedule(ctx context.Context, w io.Writer) int {
	a, err := openApp()
	if err != nil {
		return failure(w, err, "")
	}
	defer a.Close()

	if !a.requireSession(w) {
		return 1
	}

	remaining := -1
	cache := catalog.New(a.api, a.session)
	if err := cache.EnsureFetched(ctx); err != nil {
		slog.Warn("Catalog unavailable, skipping remaining count", "error", err)
	} else if u := a.session.User(); u != nil {
		remaining = len(cache.Remaining(u.CompletedCourses))
	}

	gen := schedule.New(a.api, a.session)
	gen.Attempts = a.cfg.ScheduleAttempts
	gen.Delay = a.cfg.ScheduleDelay
	if !IsJSONOutput() {
		gen.OnAttempt = func(attempt int, err error) {
			fmt.Fprintf(w, "Attempt %d/%d failed: %v\n", attempt, gen.Attempts, err)
		}
	}

	sched, err := gen.Generate(ctx)
	if err != nil {
		return failure(w, a.session.Expire(err), "Failed to generate schedule")
	}

	if IsJSONOutput() {
		out := map[string]interface{}{"schedule": sched}
		if remaining >= 0 {
			out["remaining_courses"] = remaining
		}
		writeJSON(w, out)
		return 0
	}
	fmt.Fprintln(w, formatScheduleHuman(sched, remaining))
	return 0
}

// formatScheduleHuman formats the generated schedule for human readability
func formatScheduleHuman(sched *client.Schedule, remaining int) string {
	out := "Recommended Schedule\n====================\n"
	if remaining >= 0 {
		out += fmt.Sprintf("%d academic course(s) left in the catalog after your completed ones\n", remaining)
	}
	out += "\n"
	for i, rec := range sched.Recommendations {
		out += fmt.Sprintf("%d. %s\n", i+1, rec)
	}
	if len(sched.CourseIDs) > 0 {
		out += fmt.Sprintf("\nCourse IDs: %v", sched.CourseIDs)
	}
	return out
}
