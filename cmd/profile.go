// ABOUTME: Profile commands: show and edit completed courses, sports and goals
// ABOUTME: Each edit is applied to a draft and saved in one authenticated write

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/schaidule/schaidule-cli/internal/profile"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or edit your profile",
}

// editFunc applies one change to the draft and describes it. A draft left
// unedited is not saved.
type editFunc func(e *profile.Editor) profile.Notice

func init() {
	profileCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the saved profile",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			if exitCode := runWhoami(ctx, os.Stdout, false); exitCode != 0 {
				os.Exit(exitCode)
			}
		},
	})

	profileCmd.AddCommand(
		editCommand("add-course <title>", "Add a completed course", func(title string) editFunc {
			return func(e *profile.Editor) profile.Notice { return e.Add(profile.CompletedCourses, title) }
		}),
		editCommand("remove-course <title>", "Remove a completed course", func(title string) editFunc {
			return removeFrom(profile.CompletedCourses, title)
		}),
		editCommand("add-sport <title>", "Add a sport or club", func(title string) editFunc {
			return func(e *profile.Editor) profile.Notice { return e.Add(profile.Sports, title) }
		}),
		editCommand("remove-sport <title>", "Remove a sport or club", func(title string) editFunc {
			return removeFrom(profile.Sports, title)
		}),
		editCommand("set-goals <text>", "Replace your future goals", func(goals string) editFunc {
			return setGoals(goals)
		}),
	)

	rootCmd.AddCommand(profileCmd)
}

// editCommand builds a subcommand whose arguments are joined into one value
func editCommand(use, short string, build func(string) editFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			edit := build(strings.Join(args, " "))
			if exitCode := runProfileEdit(ctx, os.Stdout, edit); exitCode != 0 {
				os.Exit(exitCode)
			}
		},
	}
}

func removeFrom(l profile.List, title string) editFunc {
	return func(e *profile.Editor) profile.Notice {
		if !e.Remove(l, title) {
			return profile.Notice{Level: profile.Info, Text: fmt.Sprintf("%s is not in your %s", title, l)}
		}
		return profile.Notice{Level: profile.Success, Text: fmt.Sprintf("Removed %s", title)}
	}
}

func setGoals(goals string) editFunc {
	return func(e *profile.Editor) profile.Notice {
		e.SetGoals(strings.TrimSpace(goals))
		return profile.Notice{Level: profile.Success, Text: "Goals updated"}
	}
}

// runProfileEdit applies edit to the saved profile and writes it back,
// returning exit code
func runProfileEdit(ctx context.Context, w io.Writer, edit editFunc) int {
	a, err := openApp()
	if err != nil {
		return failure(w, err, "")
	}
	defer a.Close()

	if !a.requireSession(w) {
		return 1
	}

	editor := profile.NewEditor(a.api, a.session)
	notice := edit(editor)
	if !editor.Editing() {
		if !notice.Empty() {
			printNotice(w, notice)
		}
		return 0
	}

	saved, err := editor.Save(ctx)
	if err != nil {
		if expired := a.session.Expire(err); expired != err {
			return failure(w, expired, "")
		}
		printNotice(w, saved)
		return exitCode(err)
	}

	if IsJSONOutput() {
		writeJSON(w, map[string]interface{}{"user": a.session.User(), "message": saved.Text})
		return 0
	}
	if !notice.Empty() {
		printNotice(w, notice)
	}
	printNotice(w, saved)
	return 0
}

func printNotice(w io.Writer, n profile.Notice) {
	if IsJSONOutput() {
		writeJSON(w, map[string]string{"message": n.Text})
		return
	}
	prefix := ""
	if n.Level == profile.Error {
		prefix = "Error: "
	}
	fmt.Fprintf(w, "%s%s\n", prefix, n.Text)
}
