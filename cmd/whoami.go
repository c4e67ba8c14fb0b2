// ABOUTME: Whoami command for the schaidule CLI
// ABOUTME: Shows the saved profile and, with --refresh, re-reads it from the backend

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/schaidule/schaidule-cli/internal/client"
	"github.com/schaidule/schaidule-cli/internal/session"
)

var whoamiRefresh bool

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in profile",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if exitCode := runWhoami(ctx, os.Stdout, whoamiRefresh); exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	whoamiCmd.Flags().BoolVar(&whoamiRefresh, "refresh", false, "Re-read the profile from the backend first")
	rootCmd.AddCommand(whoamiCmd)
}

// runWhoami prints the current profile and returns exit code
func runWhoami(ctx context.Context, w io.Writer, refresh bool) int {
	a, err := openApp()
	if err != nil {
		return failure(w, err, "")
	}
	defer a.Close()

	if !a.requireSession(w) {
		return 1
	}
	if refresh {
		if err := a.session.RefreshProfile(ctx); err != nil {
			return failure(w, err, "Failed to load profile")
		}
	}

	snap := a.session.Snapshot()
	exp, hasExp := session.TokenExpiry(snap.Token)

	if IsJSONOutput() {
		out := map[string]interface{}{"user": snap.User}
		if hasExp {
			out["token_expires_at"] = exp.UTC().Format(time.RFC3339)
		}
		writeJSON(w, out)
		return 0
	}
	fmt.Fprintln(w, formatProfileHuman(snap.User))
	if hasExp {
		fmt.Fprintf(w, "\nSession:   %s\n", formatExpiry(exp, time.Now()))
	}
	return 0
}

// formatProfileHuman formats a profile for human readability
func formatProfileHuman(u *client.User) string {
	if u == nil {
		return "No profile loaded. Try 'schaidule whoami --refresh'."
	}
	goals := u.FutureGoals
	if goals == "" {
		goals = "-"
	}
	return fmt.Sprintf(`Name:      %s
Email:     %s
Completed: %s
Sports:    %s
Goals:     %s`, u.Name, u.Email, formatList(u.CompletedCourses), formatList(u.Sports), goals)
}

func formatList(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

// formatExpiry describes a token expiry relative to now
func formatExpiry(exp, now time.Time) string {
	if !exp.After(now) {
		return fmt.Sprintf("expired %s", humanize.RelTime(exp, now, "ago", "from now"))
	}
	return fmt.Sprintf("expires %s", humanize.RelTime(exp, now, "ago", "from now"))
}
