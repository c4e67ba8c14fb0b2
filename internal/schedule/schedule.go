// ABOUTME: Schedule generation with a bounded retry policy
// ABOUTME: Rejects backend output that lacks the "final" sentinel marker

package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/schaidule/schaidule-cli/internal/client"
	"github.com/schaidule/schaidule-cli/internal/session"
)

// Sentinel is the marker a finished recommendation must contain.
// This is a heuristic: a draft mentioning "final" passes early and a
// finished answer without it is retried until the bound.
const Sentinel = "final"

// Defaults for the retry policy
const (
	DefaultAttempts = 3
	DefaultDelay    = 2 * time.Second
)

var (
	// ErrNoCredential is returned without any request when logged out
	ErrNoCredential = errors.New("you must be logged in to generate a schedule")

	// ErrNotFinal marks a response that is still in progress
	ErrNotFinal = errors.New("schedule is not final yet")

	// ErrRetriesExhausted wraps the last error once attempts run out
	ErrRetriesExhausted = errors.New("schedule generation failed")
)

// Requester issues one generation request
type Requester interface {
	GenerateSchedule(ctx context.Context, token string, user *client.User) (*client.Schedule, error)
}

// Generator requests a schedule for the current session's profile
type Generator struct {
	API      Requester
	Session  *session.Store
	Attempts int
	Delay    time.Duration

	// OnAttempt, when set, is called after each failed attempt
	OnAttempt func(attempt int, err error)
}

// New creates a generator with the default retry policy
func New(api Requester, s *session.Store) *Generator {
	return &Generator{
		API:      api,
		Session:  s,
		Attempts: DefaultAttempts,
		Delay:    DefaultDelay,
	}
}

// Generate requests a schedule, retrying rejected or non-final responses
// up to Attempts times with Delay between them. 401 is not retried.
func (g *Generator) Generate(ctx context.Context) (*client.Schedule, error) {
	snap := g.Session.Snapshot()
	if snap.Token == "" {
		return nil, ErrNoCredential
	}
	user := snap.User
	if user == nil {
		user = &client.User{}
	}

	attempts := g.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		sched, err := g.API.GenerateSchedule(ctx, snap.Token, user)
		if err == nil {
			err = Validate(sched)
		}
		if err == nil {
			slog.Info("Schedule generated", "attempt", attempt)
			return sched, nil
		}

		lastErr = err
		slog.Warn("Schedule attempt failed", "attempt", attempt, "of", attempts, "error", err)
		if g.OnAttempt != nil {
			g.OnAttempt(attempt, err)
		}

		if errors.Is(err, client.ErrUnauthorized) {
			break
		}
		if ctx.Err() != nil {
			lastErr = ctx.Err()
			break
		}
		if attempt < attempts {
			if err := sleep(ctx, g.Delay); err != nil {
				lastErr = err
				break
			}
		}
	}

	return nil, fmt.Errorf("%w: %w", ErrRetriesExhausted, lastErr)
}

// Validate checks presence and the sentinel marker. A response with only
// course ids is accepted on presence.
func Validate(s *client.Schedule) error {
	if s == nil || (len(s.Recommendations) == 0 && len(s.CourseIDs) == 0) {
		return fmt.Errorf("%w: empty response", ErrNotFinal)
	}
	if len(s.Recommendations) == 0 {
		return nil
	}
	if !IsFinal(s.Recommendations) {
		return ErrNotFinal
	}
	return nil
}

// IsFinal reports whether the concatenated text contains Sentinel
func IsFinal(recommendations []string) bool {
	return strings.Contains(strings.Join(recommendations, ""), Sentinel)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
