// ABOUTME: Title normalization, categorization and search over catalog entries
// ABOUTME: Pure helpers shared by the cache, the CLI and the TUI

package catalog

import (
	"strings"

	"github.com/schaidule/schaidule-cli/internal/client"
)

// Category is derived from an entry's title, never stored
type Category int

const (
	Academic Category = iota
	Sports
)

// String returns the display name of a Category
func (c Category) String() string {
	switch c {
	case Academic:
		return "academic"
	case Sports:
		return "sports/club"
	default:
		return "unknown"
	}
}

// Subset selects which partition of the cache to search
type Subset int

const (
	SubsetAll Subset = iota
	SubsetAcademic
	SubsetSports
)

// Normalize is the dedup and search key: case-folded and trimmed
func Normalize(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// Classify applies the title rule: "varsity", or both "wpe" and "club",
// marks a sports/club entry; everything else is academic.
func Classify(title string) Category {
	n := Normalize(title)
	if strings.Contains(n, "varsity") {
		return Sports
	}
	if strings.Contains(n, "wpe") && strings.Contains(n, "club") {
		return Sports
	}
	return Academic
}

// Dedup keeps the first entry for each normalized title
func Dedup(entries []client.Course) []client.Course {
	seen := make(map[string]struct{}, len(entries))
	out := make([]client.Course, 0, len(entries))
	for _, e := range entries {
		key := Normalize(e.Title)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, e)
	}
	return out
}

// Partition splits entries into academic and sports/club subsets,
// preserving order
func Partition(entries []client.Course) (academic, sports []client.Course) {
	academic = []client.Course{}
	sports = []client.Course{}
	for _, e := range entries {
		if Classify(e.Title) == Sports {
			sports = append(sports, e)
		} else {
			academic = append(academic, e)
		}
	}
	return academic, sports
}

// Filter returns entries whose normalized title contains term.
// An empty term matches nothing.
func Filter(entries []client.Course, term string) []client.Course {
	needle := Normalize(term)
	if needle == "" {
		return []client.Course{}
	}

	out := []client.Course{}
	for _, e := range entries {
		if strings.Contains(Normalize(e.Title), needle) {
			out = append(out, e)
		}
	}
	return out
}

// Without drops entries whose titles appear in taken
func Without(entries []client.Course, taken []string) []client.Course {
	skip := make(map[string]struct{}, len(taken))
	for _, t := range taken {
		skip[Normalize(t)] = struct{}{}
	}

	out := make([]client.Course, 0, len(entries))
	for _, e := range entries {
		if _, ok := skip[Normalize(e.Title)]; !ok {
			out = append(out, e)
		}
	}
	return out
}
