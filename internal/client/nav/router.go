// Package nav tracks which view of the client is shown and keeps guarded
// views out of reach without a session.
//
// Navigation keeps a history stack like a browser. Arriving on a guarded
// route by any means (Navigate, Replace or Back) runs its guard; a refused
// arrival replaces the history entry with the redirect route, so going back
// from the login view never lands on the guarded view again. Guards are
// evaluated on every arrival and never cached.
package nav

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/expensekeeper/internal/client/session"
)

type Route string

const (
	RouteLogin  Route = "/"
	RouteSignUp Route = "/signup"
	RouteHome   Route = "/home"
)

// Guard decides whether a route may be entered.
type Guard interface {
	Allow(ctx context.Context) bool
}

// GuardFunc adapts a function to Guard.
type GuardFunc func(ctx context.Context) bool

func (f GuardFunc) Allow(ctx context.Context) bool { return f(ctx) }

// RequireSession admits while store holds a token. Token validity is not
// checked; the backend rejects stale tokens on use.
func RequireSession(store session.Store) Guard {
	return GuardFunc(func(ctx context.Context) bool {
		return session.Present(ctx, store)
	})
}

type Router struct {
	mu       sync.Mutex
	history  []Route
	guards   map[Route]Guard
	redirect Route
}

// NewRouter starts at start; refused arrivals are sent to redirect.
func NewRouter(start, redirect Route) *Router {
	return &Router{
		history:  []Route{start},
		guards:   make(map[Route]Guard),
		redirect: redirect,
	}
}

// Protect installs g on route. The redirect route cannot be protected.
func (r *Router) Protect(route Route, g Guard) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if route == r.redirect {
		return
	}
	r.guards[route] = g
}

// Navigate pushes to and returns the route actually shown.
func (r *Router) Navigate(ctx context.Context, to Route) Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = append(r.history, to)
	return r.resolveLocked(ctx)
}

// Replace swaps the current entry for to.
func (r *Router) Replace(ctx context.Context, to Route) Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history[len(r.history)-1] = to
	return r.resolveLocked(ctx)
}

// Back pops the current entry. At the first entry it stays put and reports
// false.
func (r *Router) Back(ctx context.Context) (Route, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.history) < 2 {
		return r.history[0], false
	}
	r.history = r.history[:len(r.history)-1]
	return r.resolveLocked(ctx), true
}

// stack returns a copy of the history, oldest first.
func (r *Router) stack() []Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Route(nil), r.history...)
}

func (r *Router) resolveLocked(ctx context.Context) Route {
	top := len(r.history) - 1
	if g, ok := r.guards[r.history[top]]; ok && !g.Allow(ctx) {
		r.history[top] = r.redirect
	}
	return r.history[top]
}
