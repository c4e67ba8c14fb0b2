// ABOUTME: Profile editing flow for completed courses, sports and goals
// ABOUTME: Enforces duplicate-free lists and saves through the session store

package profile

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/schaidule/schaidule-cli/internal/catalog"
	"github.com/schaidule/schaidule-cli/internal/client"
	"github.com/schaidule/schaidule-cli/internal/session"
)

// List names one of the editable lists
type List int

const (
	CompletedCourses List = iota
	Sports
)

// String returns the display name of a List
func (l List) String() string {
	switch l {
	case CompletedCourses:
		return "completed courses"
	case Sports:
		return "sports/clubs"
	default:
		return "unknown"
	}
}

// Subset returns the catalog partition suggestions come from
func (l List) Subset() catalog.Subset {
	if l == Sports {
		return catalog.SubsetSports
	}
	return catalog.SubsetAcademic
}

// Level is the severity of a Notice
type Level int

const (
	Info Level = iota
	Success
	Error
)

// Notice is a transient, dismissable message for the user
type Notice struct {
	Level Level
	Text  string
}

// Empty reports whether there is nothing to show
func (n Notice) Empty() bool {
	return n.Text == ""
}

// Updater persists an edited profile
type Updater interface {
	UpdateAccount(ctx context.Context, token string, user *client.User) (*client.User, error)
}

// Editor holds an in-progress copy of the profile
type Editor struct {
	api     Updater
	session *session.Store
	draft   *client.User
	editing bool
}

// NewEditor starts editing a copy of the session's current profile
func NewEditor(api Updater, s *session.Store) *Editor {
	draft := s.User()
	if draft == nil {
		draft = &client.User{}
	}
	return &Editor{api: api, session: s, draft: draft}
}

// Draft returns a copy of the profile being edited
func (e *Editor) Draft() *client.User {
	return e.draft.Clone()
}

// Editing reports whether there are unsaved edits in progress
func (e *Editor) Editing() bool {
	return e.editing
}

// Items returns the current contents of list l
func (e *Editor) Items(l List) []string {
	return append([]string(nil), *e.list(l)...)
}

// Add appends title to list l. A title already present, compared
// case-insensitively, is rejected with an informational notice.
func (e *Editor) Add(l List, title string) Notice {
	title = strings.TrimSpace(title)
	if title == "" {
		return Notice{}
	}

	items := e.list(l)
	if Contains(*items, title) {
		return Notice{Level: Info, Text: fmt.Sprintf("%s is already in your %s", title, l)}
	}
	*items = append(*items, title)
	e.editing = true
	return Notice{Level: Success, Text: fmt.Sprintf("Added %s", title)}
}

// Remove deletes title from list l and reports whether it was present.
// Absent titles leave the draft untouched.
func (e *Editor) Remove(l List, title string) bool {
	items := e.list(l)
	key := catalog.Normalize(title)
	kept := (*items)[:0]
	for _, it := range *items {
		if catalog.Normalize(it) != key {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(*items) {
		return false
	}
	*items = kept
	e.editing = true
	return true
}

// SetGoals replaces the free-text future goals
func (e *Editor) SetGoals(goals string) {
	e.draft.FutureGoals = goals
	e.editing = true
}

// SetName replaces the display name
func (e *Editor) SetName(name string) {
	e.draft.Name = name
	e.editing = true
}

// Suggest searches the catalog subset matching list l, leaving out
// titles already in the list
func (e *Editor) Suggest(c *catalog.Cache, l List, term string) []client.Course {
	return catalog.Without(c.Search(term, l.Subset()), *e.list(l))
}

// Save sends the whole draft in one authenticated write. On success the
// session profile is replaced and edit mode ends; on failure the draft is
// kept and the server message, or a generic one, is returned.
func (e *Editor) Save(ctx context.Context) (Notice, error) {
	token, draft, err := e.Request()
	if err != nil {
		return Notice{Level: Error, Text: err.Error()}, err
	}
	saved, err := e.api.UpdateAccount(ctx, token, draft)
	return e.Finish(saved, err), err
}

// Request returns the token and a copy of the draft for a write that runs
// elsewhere, such as a TUI command. Pass its outcome to Finish.
func (e *Editor) Request() (string, *client.User, error) {
	token := e.session.Token()
	if token == "" {
		return "", nil, session.ErrNotLoggedIn
	}
	return token, e.draft.Clone(), nil
}

// Finish applies the outcome of a write started from Request
func (e *Editor) Finish(saved *client.User, err error) Notice {
	if err != nil {
		slog.Error("Failed to update account", "error", err)
		return Notice{Level: Error, Text: client.Message(err, "Failed to update account")}
	}

	if err := e.session.UpdateUser(saved); err != nil {
		slog.Warn("Saved profile not applied to session", "error", err)
	}
	e.draft = saved.Clone()
	e.editing = false
	return Notice{Level: Success, Text: "Profile updated"}
}

func (e *Editor) list(l List) *[]string {
	if l == Sports {
		return &e.draft.Sports
	}
	return &e.draft.CompletedCourses
}

// Contains reports whether title is in items under normalized comparison
func Contains(items []string, title string) bool {
	key := catalog.Normalize(title)
	for _, it := range items {
		if catalog.Normalize(it) == key {
			return true
		}
	}
	return false
}
