// ABOUTME: Icon system with Nerd Font detection and Unicode fallback
// ABOUTME: Provides consistent iconography across different terminal capabilities

package icons

import (
	"os"
	"strings"
	"sync"
)

var (
	useNerdFonts     bool
	nerdFontDetected sync.Once
)

// detectNerdFonts checks if Nerd Fonts should be used
func detectNerdFonts() bool {
	// Explicit override via environment variable
	if env := os.Getenv("SCHAIDULE_NERD_FONTS"); env != "" {
		return env == "1" || strings.ToLower(env) == "true"
	}

	// Terminals that commonly ship with a Nerd Font configured
	term := os.Getenv("TERM")
	termProgram := os.Getenv("TERM_PROGRAM")
	for _, t := range []string{"iTerm.app", "alacritty", "WezTerm", "kitty", "ghostty"} {
		if strings.Contains(termProgram, t) || strings.Contains(term, strings.ToLower(t)) {
			return true
		}
	}

	return os.Getenv("NERD_FONTS") == "1"
}

// HasNerdFonts returns true if Nerd Fonts are available
func HasNerdFonts() bool {
	nerdFontDetected.Do(func() {
		useNerdFonts = detectNerdFonts()
	})
	return useNerdFonts
}

// Icon represents an icon with Nerd Font and Unicode fallback variants
type Icon struct {
	NerdFont string
	Fallback string
}

// String returns the appropriate icon based on font availability
func (i Icon) String() string {
	if HasNerdFonts() {
		return i.NerdFont
	}
	return i.Fallback
}

// Icon definitions - Nerd Font codepoints with Unicode fallbacks
var (
	// Catalog and profile
	Course   = Icon{"󰂺", "▤"} // nf-md-book_open_variant
	Sport    = Icon{"󰔸", "⚑"} // nf-md-trophy
	Goal     = Icon{"󰓾", "◎"} // nf-md-target
	Schedule = Icon{"󰃭", "▦"} // nf-md-calendar
	Search   = Icon{"\uf422", "⌕"} // nf-oct-search
	User     = Icon{"\uf415", "☺"} // nf-oct-person

	// Status indicators
	CheckOK  = Icon{"\uf49e", "✓"} // nf-oct-check_circle
	Warning  = Icon{"\uf421", "⚠"} // nf-oct-alert
	Critical = Icon{"\uf52f", "✗"} // nf-oct-x_circle
	Info     = Icon{"\uf449", "ℹ"} // nf-oct-info

	// Actions
	Refresh = Icon{"󰑓", "↻"} // nf-md-refresh
	Save    = Icon{"󰆓", "⇓"} // nf-md-content_save
	Back    = Icon{"󰁍", "←"} // nf-md-arrow_left
	Quit    = Icon{"󰗼", "×"} // nf-md-exit_to_app
	Login   = Icon{"󰍂", "→"} // nf-md-login
	Logout  = Icon{"󰍃", "⇤"} // nf-md-logout

	// Application
	App = Icon{"󰃭", "◈"} // nf-md-calendar
)
