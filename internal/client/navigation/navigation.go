// Package navigation tracks where the client currently is and guards the
// routes that need a session.
package navigation

import (
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/marketplace/storefront/internal/core/ports"
)

// Client routes.
const (
	PathHome           = "/"
	PathAuth           = "/auth"
	PathSell           = "/sell"
	PathMyPublications = "/my-publications"
)

// EditPublicationPath is the edit route of one publication.
func EditPublicationPath(id string) string {
	return "/edit-publication/" + id
}

// Tracker is the client's navigable location.
type Tracker struct {
	mu       sync.Mutex
	location string
	history  []string
	log      zerolog.Logger
}

var _ ports.Navigator = (*Tracker)(nil)

func NewTracker(start string, log zerolog.Logger) *Tracker {
	start = normalize(start)
	return &Tracker{location: start, history: []string{start}, log: log}
}

func (t *Tracker) Location() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.location
}

// Navigate moves to path. Navigating to the current location is a no-op.
func (t *Tracker) Navigate(path string) {
	path = normalize(path)
	t.mu.Lock()
	defer t.mu.Unlock()
	if path == t.location {
		return
	}
	t.log.Debug().Str("from", t.location).Str("to", path).Msg("navigate")
	t.location = path
	t.history = append(t.history, path)
}

// History returns every location visited, oldest first.
func (t *Tracker) History() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.history...)
}

func normalize(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return PathHome
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

// Guard decides whether a route may be entered with the current session.
type Guard struct {
	session   ports.SessionReader
	nav       ports.Navigator
	loginPath string
}

func NewGuard(session ports.SessionReader, nav ports.Navigator, loginPath string) *Guard {
	if loginPath == "" {
		loginPath = PathAuth
	}
	return &Guard{session: session, nav: nav, loginPath: loginPath}
}

// Private enters path when a session is active and redirects to the login
// surface otherwise. It reports whether path was entered.
func (g *Guard) Private(path string) bool {
	if !g.session.IsAuthenticated() {
		g.nav.Navigate(g.loginPath)
		return false
	}
	g.nav.Navigate(path)
	return true
}

// AuthOnly enters the login surface for anonymous users and sends
// authenticated users home instead. It reports whether the login surface
// was entered.
func (g *Guard) AuthOnly() bool {
	if g.session.IsAuthenticated() {
		g.nav.Navigate(PathHome)
		return false
	}
	g.nav.Navigate(g.loginPath)
	return true
}

// Public enters path unconditionally.
func (g *Guard) Public(path string) {
	g.nav.Navigate(path)
}
