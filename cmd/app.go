// ABOUTME: Shared wiring for commands: config, API client, storage and session
// ABOUTME: Also holds the route guard and exit code mapping

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/schaidule/schaidule-cli/internal/client"
	"github.com/schaidule/schaidule-cli/internal/config"
	"github.com/schaidule/schaidule-cli/internal/schedule"
	"github.com/schaidule/schaidule-cli/internal/session"
	"github.com/schaidule/schaidule-cli/internal/storage"
)

// errValidation marks input rejected before any request was sent
var errValidation = errors.New("invalid input")

type app struct {
	cfg     *config.Config
	api     *client.Client
	store   storage.Store
	session *session.Store
}

// openApp loads config and hydrates the saved session
func openApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	st, err := storage.Open(cfg.Storage, cfg.Dir)
	if err != nil {
		return nil, err
	}
	api := client.NewWithTimeout(cfg.APIURL, cfg.RequestTimeout)
	return &app{
		cfg:     cfg,
		api:     api,
		store:   st,
		session: session.New(st, api),
	}, nil
}

func (a *app) Close() {
	a.store.Close()
}

// requireSession is the route guard for commands that need a bearer token
func (a *app) requireSession(w io.Writer) bool {
	if a.session.LoggedIn() {
		return true
	}
	fmt.Fprintln(w, "Error: not logged in. Run 'schaidule login' first.")
	return false
}

// exitCode maps an error to 1 for user-level failures and 2 for backend
// or transport failures
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errValidation),
		errors.Is(err, session.ErrNotLoggedIn),
		errors.Is(err, session.ErrSessionExpired),
		errors.Is(err, schedule.ErrNoCredential):
		return 1
	default:
		return 2
	}
}

// failure prints err and returns its exit code. Backend rejections show
// the server message or fallback; transport errors show their own text.
func failure(w io.Writer, err error, fallback string) int {
	msg := err.Error()
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		msg = client.Message(err, fallback)
	}
	fmt.Fprintf(w, "Error: %s\n", msg)
	return exitCode(err)
}

func writeJSON(w io.Writer, v interface{}) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(w, string(data))
}
