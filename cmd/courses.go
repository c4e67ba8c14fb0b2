// ABOUTME: Courses command for the schaidule CLI
// ABOUTME: Lists or searches the deduplicated course catalog

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

	"github.com/schaidule/schaidule-cli/internal/catalog"
	"github.com/schaidule/schaidule-cli/internal/client"
)

var (
	coursesSports   bool
	coursesAcademic bool
)

var coursesCmd = &cobra.Command{
	Use:   "courses [search]",
	Short: "List or search the course catalog",
	Long: `List the course catalog, or search it by title (case-insensitive substring).

Examples:
  schaidule courses
  schaidule courses calc
  schaidule courses soccer --sports`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		term := ""
		if len(args) == 1 {
			term = args[0]
		}
		if exitCode := runCourses(ctx, os.Stdout, term, coursesSubset()); exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	coursesCmd.Flags().BoolVar(&coursesSports, "sports", false, "Only sports and club activities")
	coursesCmd.Flags().BoolVar(&coursesAcademic, "academic", false, "Only academic courses")
	rootCmd.AddCommand(coursesCmd)
}

func coursesSubset() catalog.Subset {
	switch {
	case coursesSports:
		return catalog.SubsetSports
	case coursesAcademic:
		return catalog.SubsetAcademic
	default:
		return catalog.SubsetAll
	}
}

// runCourses fetches the catalog and prints matches, returning exit code
func runCourses(ctx context.Context, w io.Writer, term string, subset catalog.Subset) int {
	a, err := openApp()
	if err != nil {
		return failure(w, err, "")
	}
	defer a.Close()

	if !a.requireSession(w) {
		return 1
	}

	cache := catalog.New(a.api, a.session)
	if err := cache.EnsureFetched(ctx); err != nil {
		return failure(w, a.session.Expire(err), "Failed to load courses")
	}

	// No term lists the whole subset; Search alone treats it as no query
	var courses []client.Course
	if strings.TrimSpace(term) == "" {
		courses = cache.Subset(subset)
	} else {
		courses = cache.Search(term, subset)
	}

	if IsJSONOutput() {
		writeJSON(w, formatCoursesJSON(courses))
		return 0
	}
	fmt.Fprintln(w, formatCoursesHuman(courses, term))
	return 0
}

type courseRow struct {
	ID       int    `json:"id"`
	Title    string `json:"course_title"`
	Section  string `json:"course_section,omitempty"`
	Category string `json:"category"`
}

func formatCoursesJSON(courses []client.Course) []courseRow {
	rows := make([]courseRow, 0, len(courses))
	for _, c := range courses {
		rows = append(rows, courseRow{
			ID:       c.ID,
			Title:    c.Title,
			Section:  c.Section,
			Category: catalog.Classify(c.Title).String(),
		})
	}
	return rows
}

// formatCoursesHuman formats catalog entries as an aligned table
func formatCoursesHuman(courses []client.Course, term string) string {
	if len(courses) == 0 {
		if term != "" {
			return fmt.Sprintf("No courses match %q", term)
		}
		return "The catalog is empty"
	}

	width := len("TITLE")
	for _, c := range courses {
		if len(c.Title) > width {
			width = len(c.Title)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-*s  %-14s  %s\n", width, "TITLE", "SECTION", "CATEGORY")
	for _, c := range courses {
		fmt.Fprintf(&b, "%-*s  %-14s  %s\n", width, c.Title, c.Section, catalog.Classify(c.Title))
	}
	fmt.Fprintf(&b, "\n%d course(s)", len(courses))
	return b.String()
}
