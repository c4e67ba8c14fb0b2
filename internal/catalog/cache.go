// ABOUTME: In-memory catalog cache fetched once per session
// ABOUTME: Deduplicates, partitions and serves searches without extra network calls

package catalog

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/schaidule/schaidule-cli/internal/client"
	"github.com/schaidule/schaidule-cli/internal/session"
)

// CourseLister lists catalog entries for a bearer token
type CourseLister interface {
	Courses(ctx context.Context, token string) ([]client.Course, error)
}

// TokenSource supplies the current bearer credential
type TokenSource interface {
	Token() string
}

// Cache holds the deduplicated catalog and its derived subsets
type Cache struct {
	api    CourseLister
	tokens TokenSource
	group  singleflight.Group

	mu        sync.Mutex
	entries   []client.Course
	academic  []client.Course
	sports    []client.Course
	loading   bool
	err       string
	fetched   bool
	requested bool
	owner     string // email of the account the contents belong to
	gen       uint64 // bumped on reset; fetches from an older generation are dropped
}

// New creates an empty cache
func New(api CourseLister, tokens TokenSource) *Cache {
	c := &Cache{api: api, tokens: tokens}
	c.resetLocked()
	return c
}

// Fetch loads the catalog. On failure the previous contents are kept and
// the error is recorded. Concurrent calls share one request.
func (c *Cache) Fetch(ctx context.Context) error {
	token := c.tokens.Token()
	if token == "" {
		return session.ErrNotLoggedIn
	}

	c.mu.Lock()
	c.loading = true
	gen := c.gen
	c.mu.Unlock()

	v, err, _ := c.group.Do(token, func() (interface{}, error) {
		return c.api.Courses(ctx, token)
	})

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		slog.Debug("Discarding catalog fetched for a previous session")
		return nil
	}
	c.loading = false
	c.requested = false

	if err != nil {
		c.err = err.Error()
		slog.Error("Failed to fetch catalog", "error", err)
		return err
	}

	c.setLocked(v.([]client.Course))
	slog.Debug("Catalog cached", "entries", len(c.entries), "academic", len(c.academic), "sports", len(c.sports))
	return nil
}

// EnsureFetched fetches once per session when logged in
func (c *Cache) EnsureFetched(ctx context.Context) error {
	c.mu.Lock()
	fetched := c.fetched
	c.mu.Unlock()

	if fetched || c.tokens.Token() == "" {
		return nil
	}
	return c.Fetch(ctx)
}

// HandleSession applies a session change: logout or a switch to another
// account resets the cache, and a logged-in session with nothing cached
// reports that a fetch is needed. It reports true at most once until the
// fetch completes or a reset.
func (c *Cache) HandleSession(st session.State) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !st.LoggedIn() {
		c.resetLocked()
		return false
	}
	if st.User != nil && st.User.Email != "" {
		if c.owner != "" && !strings.EqualFold(c.owner, st.User.Email) {
			slog.Debug("Session switched accounts, clearing catalog")
			c.resetLocked()
		}
		c.owner = st.User.Email
	}
	if c.fetched || c.requested || c.loading {
		return false
	}
	c.requested = true
	return true
}

// Attach subscribes the cache to session changes. fetch is called whenever
// a fetch is needed; nil runs Fetch in the background. The current session
// is evaluated immediately so a hydrated login fetches too.
func (c *Cache) Attach(s *session.Store, fetch func()) (detach func()) {
	if fetch == nil {
		fetch = func() {
			go c.Fetch(context.Background())
		}
	}

	detach = s.Subscribe(func(st session.State) {
		if c.HandleSession(st) {
			fetch()
		}
	})

	if c.HandleSession(s.Snapshot()) {
		fetch()
	}
	return detach
}

// Reset drops everything cached
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
}

// Entries returns the deduplicated catalog
func (c *Cache) Entries() []client.Course {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]client.Course(nil), c.entries...)
}

// Academic returns the academic subset
func (c *Cache) Academic() []client.Course {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]client.Course(nil), c.academic...)
}

// Sports returns the sports/club subset
func (c *Cache) Sports() []client.Course {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]client.Course(nil), c.sports...)
}

// Subset returns the entries for s
func (c *Cache) Subset(s Subset) []client.Course {
	switch s {
	case SubsetAcademic:
		return c.Academic()
	case SubsetSports:
		return c.Sports()
	default:
		return c.Entries()
	}
}

// Search matches term against normalized titles in the chosen subset
func (c *Cache) Search(term string, s Subset) []client.Course {
	return Filter(c.Subset(s), term)
}

// Remaining returns academic entries not yet completed
func (c *Cache) Remaining(completed []string) []client.Course {
	return Without(c.Academic(), completed)
}

// Loading reports whether a fetch is in flight
func (c *Cache) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Err returns the last fetch error, or ""
func (c *Cache) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Fetched reports whether the catalog has been loaded this session
func (c *Cache) Fetched() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetched
}

func (c *Cache) setLocked(raw []client.Course) {
	c.entries = Dedup(raw)
	c.academic, c.sports = Partition(c.entries)
	c.err = ""
	c.fetched = true
}

func (c *Cache) resetLocked() {
	c.entries = []client.Course{}
	c.academic = []client.Course{}
	c.sports = []client.Course{}
	c.loading = false
	c.err = ""
	c.fetched = false
	c.requested = false
	c.owner = ""
	c.gen++
}

// CancelRequest withdraws a fetch reported by HandleSession that will not
// be carried out, so the next session change can request it again
func (c *Cache) CancelRequest() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loading {
		c.requested = false
	}
}
