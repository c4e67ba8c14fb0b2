// ABOUTME: Tests for catalog classification, dedup, search and caching
// ABOUTME: Includes session-driven fetch and reset behavior

package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/schaidule/schaidule-cli/internal/client"
	"github.com/schaidule/schaidule-cli/internal/session"
	"github.com/schaidule/schaidule-cli/internal/storage"
)

type fakeLister struct {
	mu      sync.Mutex
	courses []client.Course
	err     error
	calls   int
	tokens  []string
}

func (f *fakeLister) Courses(ctx context.Context, token string) ([]client.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.tokens = append(f.tokens, token)
	return f.courses, f.err
}

func (f *fakeLister) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type staticToken string

func (s staticToken) Token() string { return string(s) }

func sample() []client.Course {
	return []client.Course{
		{ID: 1, Title: "Intro CS"},
		{ID: 2, Title: "intro cs "},
		{ID: 3, Title: "Varsity Soccer"},
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		title string
		want  Category
	}{
		{"Varsity Soccer", Sports},
		{"  VARSITY basketball", Sports},
		{"WPE Rowing Club", Sports},
		{"wpe club fencing", Sports},
		{"WPE 1000 Fitness", Academic},
		{"Chess Club", Academic},
		{"Intro CS", Academic},
	}

	for _, tc := range tests {
		t.Run(tc.title, func(t *testing.T) {
			if got := Classify(tc.title); got != tc.want {
				t.Errorf("Classify(%q) = %v, want %v", tc.title, got, tc.want)
			}
		})
	}
}

func TestCategoryString(t *testing.T) {
	if Academic.String() != "academic" || Sports.String() != "sports/club" {
		t.Error("unexpected category names")
	}
	if Category(9).String() != "unknown" {
		t.Error("expected unknown for out-of-range category")
	}
}

func TestFetchDedupsAndPartitions(t *testing.T) {
	f := &fakeLister{courses: sample()}
	c := New(f, staticToken("tok"))

	if err := c.Fetch(context.Background()); err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}

	entries := c.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 deduplicated entries, got %d", len(entries))
	}
	academic := c.Academic()
	if len(academic) != 1 || academic[0].Title != "Intro CS" {
		t.Errorf("expected first occurrence 'Intro CS', got %+v", academic)
	}
	sports := c.Sports()
	if len(sports) != 1 || sports[0].Title != "Varsity Soccer" {
		t.Errorf("expected 'Varsity Soccer' in sports, got %+v", sports)
	}
	if f.tokens[0] != "tok" {
		t.Errorf("expected bearer token forwarded, got %q", f.tokens[0])
	}
}

func TestSearch(t *testing.T) {
	c := New(&fakeLister{courses: sample()}, staticToken("tok"))
	c.Fetch(context.Background())

	got := c.Search("cs", SubsetAcademic)
	if len(got) != 1 || got[0].Title != "Intro CS" {
		t.Errorf("expected one academic match, got %+v", got)
	}
	if got := c.Search("", SubsetAcademic); len(got) != 0 {
		t.Errorf("expected empty term to match nothing, got %+v", got)
	}
	if got := c.Search("   ", SubsetAll); len(got) != 0 {
		t.Errorf("expected blank term to match nothing, got %+v", got)
	}
	if got := c.Search("SOCCER", SubsetSports); len(got) != 1 {
		t.Errorf("expected case-insensitive sports match, got %+v", got)
	}
	if got := c.Search("soccer", SubsetAcademic); len(got) != 0 {
		t.Errorf("expected subset to restrict matches, got %+v", got)
	}
}

func TestFetchFailureKeepsPreviousContents(t *testing.T) {
	f := &fakeLister{courses: sample()}
	c := New(f, staticToken("tok"))
	c.Fetch(context.Background())

	f.err = errors.New("backend returned status 500")
	if err := c.Fetch(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if len(c.Entries()) != 2 {
		t.Error("expected previous contents kept after failure")
	}
	if c.Err() == "" {
		t.Error("expected error recorded")
	}
	if c.Loading() {
		t.Error("expected loading reset after failure")
	}
}

func TestFetchRequiresToken(t *testing.T) {
	f := &fakeLister{}
	c := New(f, staticToken(""))
	if err := c.Fetch(context.Background()); !errors.Is(err, session.ErrNotLoggedIn) {
		t.Errorf("expected ErrNotLoggedIn, got %v", err)
	}
	if f.calls != 0 {
		t.Error("expected no request without a token")
	}
}

func TestRemaining(t *testing.T) {
	c := New(&fakeLister{courses: []client.Course{
		{Title: "Intro CS"}, {Title: "Calculus I"}, {Title: "Varsity Soccer"},
	}}, staticToken("tok"))
	c.Fetch(context.Background())

	got := c.Remaining([]string{" intro cs"})
	if len(got) != 1 || got[0].Title != "Calculus I" {
		t.Errorf("expected only Calculus I remaining, got %+v", got)
	}
}

func TestAttach_LogoutClearsAndReloginRefetchesOnce(t *testing.T) {
	f := &fakeLister{courses: sample()}
	store := session.New(storage.NewMemoryStore(), nil)
	c := New(f, store)

	var fetches int
	c.Attach(store, func() {
		fetches++
		c.Fetch(context.Background())
	})

	store.Login(&client.User{Email: "ada@example.edu"}, "tok-ada")
	if fetches != 1 || len(c.Entries()) != 2 {
		t.Fatalf("expected one fetch on login, got %d fetches, %d entries", fetches, len(c.Entries()))
	}

	store.Logout()
	if len(c.Entries()) != 0 || c.Fetched() {
		t.Fatal("expected cache cleared on logout")
	}

	store.Login(&client.User{Email: "grace@example.edu"}, "tok-grace")
	if fetches != 2 {
		t.Errorf("expected exactly one re-fetch after re-login, got %d total", fetches)
	}
	if got := f.tokens[len(f.tokens)-1]; got != "tok-grace" {
		t.Errorf("expected re-fetch with new account's token, got %q", got)
	}
	if f.callCount() != 2 {
		t.Errorf("expected 2 network calls, got %d", f.callCount())
	}
}

func TestAttach_AccountSwitchWithoutLogoutRefetches(t *testing.T) {
	f := &fakeLister{courses: sample()}
	store := session.New(storage.NewMemoryStore(), nil)
	c := New(f, store)

	var fetches int
	c.Attach(store, func() {
		fetches++
		c.Fetch(context.Background())
	})

	store.Login(&client.User{Email: "ada@example.edu"}, "tok-ada")
	store.Login(&client.User{Email: "ADA@example.edu"}, "tok-ada-2")
	if fetches != 1 {
		t.Fatalf("expected the same account to keep its catalog, got %d fetches", fetches)
	}

	store.Login(&client.User{Email: "grace@example.edu"}, "tok-grace")
	if fetches != 2 {
		t.Fatalf("expected a re-fetch for the new account, got %d fetches", fetches)
	}
	if got := f.tokens[len(f.tokens)-1]; got != "tok-grace" {
		t.Errorf("expected re-fetch with new account's token, got %q", got)
	}
}

func TestCancelRequestAllowsNewRequest(t *testing.T) {
	c := New(&fakeLister{}, staticToken("tok"))
	in := session.State{Token: "tok"}

	if !c.HandleSession(in) {
		t.Fatal("expected first logged-in event to request a fetch")
	}
	c.CancelRequest()
	if !c.HandleSession(in) {
		t.Error("expected a cancelled request to be requested again")
	}
}

func TestAttach_HydratedSessionFetchesImmediately(t *testing.T) {
	st := storage.NewMemoryStore()
	st.Set(storage.KeyAccessToken, "tok")
	store := session.New(st, nil)
	c := New(&fakeLister{courses: sample()}, store)

	fetches := 0
	c.Attach(store, func() { fetches++ })
	if fetches != 1 {
		t.Errorf("expected fetch for hydrated session, got %d", fetches)
	}
}

func TestHandleSession_NoDuplicateRequests(t *testing.T) {
	c := New(&fakeLister{}, staticToken("tok"))
	in := session.State{Token: "tok"}

	if !c.HandleSession(in) {
		t.Fatal("expected first logged-in event to request a fetch")
	}
	if c.HandleSession(in) {
		t.Error("expected pending request to suppress a second fetch")
	}
}

func TestFetchAfterResetIsDiscarded(t *testing.T) {
	store := session.New(storage.NewMemoryStore(), nil)
	store.Login(&client.User{Email: "ada@example.edu"}, "tok")

	var c *Cache
	lister := &hookLister{courses: sample(), hook: func() { c.Reset() }}
	c = New(lister, store)

	if err := c.Fetch(context.Background()); err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if len(c.Entries()) != 0 {
		t.Error("expected response from before the reset to be dropped")
	}
}

type hookLister struct {
	courses []client.Course
	hook    func()
}

func (h *hookLister) Courses(ctx context.Context, token string) ([]client.Course, error) {
	h.hook()
	return h.courses, nil
}
